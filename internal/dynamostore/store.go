package dynamostore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/stashkit/stash/internal/repo"
	"github.com/stashkit/stash/internal/todo"
)

// Client is the slice of the DynamoDB API the store uses. Tests substitute
// a stub; production passes *dynamodb.Client.
type Client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// KeyGenerator draws document key tokens. The default draws random UUIDs.
type KeyGenerator interface {
	NewKey() (uuid.UUID, error)
}

type randomKeys struct{}

func (randomKeys) NewKey() (uuid.UUID, error) { return uuid.NewRandom() }

var _ repo.Searchable[todo.User, string] = (*Store)(nil)

// Store is the document backend: whole users stored as single DynamoDB
// items with their task lists nested, keyed by a random string token.
// It satisfies the same storage contract as the relational and in-memory
// backends, which is the point - the contract is not SQL-shaped.
//
// All and Find order is unspecified (scan order). Find filters server-side
// but caps results client-side, because a DynamoDB Limit applies before
// filtering.
type Store struct {
	client Client
	config Config
	keys   KeyGenerator
}

// New creates a store over the given client.
func New(client Client, config Config) *Store {
	return NewWithKeys(client, config, randomKeys{})
}

// NewWithKeys creates a store drawing document keys from keys. Tests use
// this to pin identities.
func NewWithKeys(client Client, config Config, keys KeyGenerator) *Store {
	config.validate()
	return &Store{client: client, config: config, keys: keys}
}

// All returns every stored user, in unspecified order.
func (s *Store) All(ctx context.Context) ([]todo.User, error) {
	return s.scan(ctx, "dynamostore.all", nil, 0)
}

// Get returns the user stored under id. A missing item is ok=false with a
// nil error.
func (s *Store) Get(ctx context.Context, id string) (todo.User, bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.config.Table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return todo.User{}, false, repo.NewError(repo.ErrCodeConnection, "dynamostore.get", err)
	}
	if out.Item == nil {
		return todo.User{}, false, nil
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return todo.User{}, false, repo.NewError(repo.ErrCodeScan, "dynamostore.get", err)
	}
	return fromItem(item), true, nil
}

// Save stores a copy of the user under a fresh token and returns it. The
// put is conditional on the key not existing, so a colliding draw fails
// instead of overwriting.
func (s *Store) Save(ctx context.Context, u todo.User) (string, error) {
	key, err := s.keys.NewKey()
	if err != nil {
		return "", repo.NewError(repo.ErrCodeKeyGen, "dynamostore.save", err)
	}
	id := key.String()

	av, err := attributevalue.MarshalMap(toItem(id, u))
	if err != nil {
		return "", repo.NewError(repo.ErrCodeStatement, "dynamostore.save", fmt.Errorf("marshal user: %w", err))
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.config.Table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var conflict *types.ConditionalCheckFailedException
		if errors.As(err, &conflict) {
			return "", repo.NewError(repo.ErrCodeKeyGen, "dynamostore.save", fmt.Errorf("duplicate key %s", id))
		}
		return "", repo.NewError(repo.ErrCodeConnection, "dynamostore.save", err)
	}

	return id, nil
}

// Find returns the users matching the conjunction of all credentials, in
// unspecified order, capped at limit when limit > 0.
func (s *Store) Find(ctx context.Context, creds []repo.Credential, limit int) ([]todo.User, error) {
	return s.scan(ctx, "dynamostore.find", creds, limit)
}

// scan pages through the table, filtering server-side on the credential
// conjunction and truncating client-side at limit.
func (s *Store) scan(ctx context.Context, op string, creds []repo.Credential, limit int) ([]todo.User, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.config.Table),
	}
	if len(creds) > 0 {
		filter, names, values, err := buildFilter(creds)
		if err != nil {
			return nil, repo.NewError(repo.ErrCodeStatement, op, err)
		}
		input.FilterExpression = aws.String(filter)
		input.ExpressionAttributeNames = names
		input.ExpressionAttributeValues = values
	}

	users := []todo.User{}
	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, repo.NewError(repo.ErrCodeConnection, op, err)
		}
		for _, raw := range page.Items {
			var item userItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, repo.NewError(repo.ErrCodeScan, op, err)
			}
			users = append(users, fromItem(item))
			if limit > 0 && len(users) == limit {
				return users, nil
			}
		}
	}

	return users, nil
}

// buildFilter folds credentials into a filter expression: one "#fN = :vN"
// clause per credential, joined by AND in the given order. Field names
// only ever travel as expression attribute names, values as expression
// attribute values.
func buildFilter(creds []repo.Credential) (string, map[string]string, map[string]types.AttributeValue, error) {
	clauses := make([]string, 0, len(creds))
	names := make(map[string]string, len(creds))
	values := make(map[string]types.AttributeValue, len(creds))

	for i, c := range creds {
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)

		av, err := attributevalue.Marshal(c.CredentialValue())
		if err != nil {
			return "", nil, nil, fmt.Errorf("marshal credential %s: %w", c.CredentialField(), err)
		}

		names[nameKey] = c.CredentialField()
		values[valueKey] = av
		clauses = append(clauses, fmt.Sprintf("%s = %s", nameKey, valueKey))
	}

	return strings.Join(clauses, " AND "), names, values, nil
}
