// Package dynamostore is the document backend: users stored as single
// DynamoDB items with their task lists nested, keyed by random string
// tokens. It implements the same storage contract as the relational and
// in-memory backends over a structurally different storage scheme.
package dynamostore
