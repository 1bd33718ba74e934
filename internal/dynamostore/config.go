package dynamostore

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Config holds configuration for the document store.
type Config struct {
	// Table is the DynamoDB table holding user documents.
	// Default: "stash_users"
	Table string
}

// DefaultConfig returns the default table name.
func DefaultConfig() Config {
	return Config{Table: "stash_users"}
}

// validate fills in defaults for zero-valued fields.
func (c *Config) validate() {
	if c.Table == "" {
		c.Table = "stash_users"
	}
}

// NewClient builds a DynamoDB client from the default AWS configuration
// chain (environment, shared config, instance role).
func NewClient(ctx context.Context) (*dynamodb.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}
