package dynamostore

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stashkit/stash/internal/repo"
	"github.com/stashkit/stash/internal/testutil"
	"github.com/stashkit/stash/internal/todo"
)

// stubClient is an in-memory stand-in for the DynamoDB API surface the
// store uses. It honors attribute_not_exists conditions and evaluates the
// equality-and-AND filter expressions the store generates.
type stubClient struct {
	items map[string]map[string]types.AttributeValue
}

func newStubClient() *stubClient {
	return &stubClient{items: map[string]map[string]types.AttributeValue{}}
}

func itemID(item map[string]types.AttributeValue) string {
	id, ok := item["id"].(*types.AttributeValueMemberS)
	if !ok {
		return ""
	}
	return id.Value
}

func (c *stubClient) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	id := itemID(params.Item)
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(id)" {
		if _, exists := c.items[id]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	c.items[id] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (c *stubClient) GetItem(_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	item, ok := c.items[itemID(params.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func (c *stubClient) Scan(_ context.Context, params *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	var out []map[string]types.AttributeValue
	for _, item := range c.items {
		if matchesFilter(item, params) {
			out = append(out, item)
		}
	}
	return &dynamodb.ScanOutput{Items: out}, nil
}

// matchesFilter evaluates "#f0 = :v0 AND ..." against an item.
func matchesFilter(item map[string]types.AttributeValue, params *dynamodb.ScanInput) bool {
	if params.FilterExpression == nil {
		return true
	}
	for _, clause := range strings.Split(*params.FilterExpression, " AND ") {
		parts := strings.Split(clause, " = ")
		field := params.ExpressionAttributeNames[parts[0]]
		want := params.ExpressionAttributeValues[parts[1]]
		if !reflect.DeepEqual(item[field], want) {
			return false
		}
	}
	return true
}

func createTestStore(t *testing.T) (*Store, *stubClient) {
	t.Helper()
	client := newStubClient()
	return NewWithKeys(client, Config{}, testutil.SequentialKeyGenerator(16)), client
}

func TestSave_RoundTrip(t *testing.T) {
	store, _ := createTestStore(t)
	ctx := context.Background()

	buy := todo.NewTask("Buy Milk").DueAt(time.Date(2026, 8, 29, 12, 24, 0, 0, time.UTC))
	buy.Tags = []string{"urgent"}
	done := todo.NewTask("Call back")
	done.Finish()
	mike := todo.NewUser("Mike", buy, done)

	id, err := store.Save(ctx, mike)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err, "identity should be a uuid string")

	got, ok, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Equal(mike), "round-trip mismatch: %+v vs %+v", mike, got)
}

func TestSave_DuplicateKeyFails(t *testing.T) {
	dup := uuid.MustParse("44444444-4444-4444-8444-444444444444")
	store := NewWithKeys(newStubClient(), Config{}, testutil.NewFixedKeyGenerator(dup, dup))
	ctx := context.Background()

	_, err := store.Save(ctx, todo.NewUser("first"))
	require.NoError(t, err)

	_, err = store.Save(ctx, todo.NewUser("second"))
	require.Error(t, err)
	assert.True(t, repo.IsCode(err, repo.ErrCodeKeyGen))
}

func TestGet_Absent(t *testing.T) {
	store, _ := createTestStore(t)

	_, ok, err := store.Get(context.Background(), uuid.NewString())
	assert.NoError(t, err, "absence is not an error")
	assert.False(t, ok)
}

func TestFind_ByName(t *testing.T) {
	store, _ := createTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C", "D"} {
		_, err := store.Save(ctx, todo.NewUser(name))
		require.NoError(t, err)
	}

	matches, err := store.Find(ctx, []repo.Credential{todo.ByName("C")}, 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "C", matches[0].Name)
}

func TestFind_EmptyCredentialsBehavesLikeAll(t *testing.T) {
	store, _ := createTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		_, err := store.Save(ctx, todo.NewUser(name))
		require.NoError(t, err)
	}

	matches, err := store.Find(ctx, nil, 0)
	require.NoError(t, err)
	assert.Len(t, matches, 3)

	capped, err := store.Find(ctx, nil, 2)
	require.NoError(t, err)
	assert.Len(t, capped, 2)
}

func TestAll_ReturnsEverything(t *testing.T) {
	store, _ := createTestStore(t)
	ctx := context.Background()

	names := map[string]bool{"A": false, "B": false}
	for name := range names {
		_, err := store.Save(ctx, todo.NewUser(name))
		require.NoError(t, err)
	}

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, u := range all {
		names[u.Name] = true
	}
	for name, found := range names {
		assert.True(t, found, "user %s missing", name)
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{}
	cfg.validate()
	assert.Equal(t, "stash_users", cfg.Table)
}
