package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Backend)
	assert.Equal(t, "stash.db", cfg.Database)
	assert.Equal(t, "stash_users", cfg.DynamoTable)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("STASH_BACKEND", "hash")
	t.Setenv("STASH_DB", "/tmp/other.db")
	t.Setenv("STASH_DYNAMO_TABLE", "my_users")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "hash", cfg.Backend)
	assert.Equal(t, "/tmp/other.db", cfg.Database)
	assert.Equal(t, "my_users", cfg.DynamoTable)
}
