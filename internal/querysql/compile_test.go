package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_NoPredicates(t *testing.T) {
	sql, params, err := Select("SELECT id, name FROM users", nil, 0)
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, name FROM users", sql, "base select passes through untouched")
	assert.Empty(t, params)
}

func TestSelect_SinglePredicate(t *testing.T) {
	sql, params, err := Select("SELECT id, name FROM users", []Predicate{
		{Field: "name", Value: "Carol"},
	}, 0)
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, name FROM users WHERE name = ?", sql)
	assert.Equal(t, []any{"Carol"}, params)

	// Value is parameterized, never interpolated.
	assert.NotContains(t, sql, "Carol")
}

func TestSelect_ConjunctionKeepsOrder(t *testing.T) {
	sql, params, err := Select("SELECT id, desc FROM tasks", []Predicate{
		{Field: "owner_id", Value: int64(7)},
		{Field: "done", Value: true},
	}, 0)
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, desc FROM tasks WHERE owner_id = ? AND done = ?", sql)
	assert.Equal(t, []any{int64(7), true}, params)
}

func TestSelect_Limit(t *testing.T) {
	sql, _, err := Select("SELECT id, name FROM users", []Predicate{
		{Field: "name", Value: "C"},
	}, 1)
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, name FROM users WHERE name = ? LIMIT 1", sql)
}

func TestSelect_LimitWithoutPredicates(t *testing.T) {
	sql, params, err := Select("SELECT id, name FROM users", nil, 3)
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, name FROM users LIMIT 3", sql)
	assert.Empty(t, params)
}

func TestSelect_NoLimitWhenZeroOrNegative(t *testing.T) {
	for _, limit := range []int{0, -1, -100} {
		sql, _, err := Select("SELECT id, name FROM users", nil, limit)
		require.NoError(t, err)
		assert.NotContains(t, sql, "LIMIT")
	}
}

func TestSelect_RejectsNonIdentifierField(t *testing.T) {
	bad := []string{
		"name; DROP TABLE users",
		"name = ? OR 1=1 --",
		"na me",
		"",
		"1name",
	}

	for _, field := range bad {
		_, _, err := Select("SELECT id, name FROM users", []Predicate{
			{Field: field, Value: "x"},
		}, 0)
		assert.Error(t, err, "field %q should be rejected", field)
	}
}

func TestSelect_UnderscoreFieldAllowed(t *testing.T) {
	sql, _, err := Select("SELECT id, desc FROM tasks", []Predicate{
		{Field: "owner_id", Value: int64(1)},
	}, 0)
	require.NoError(t, err)
	assert.Contains(t, sql, "owner_id = ?")
}
