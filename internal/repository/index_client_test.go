package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"blog-generator/internal/domain"
)

type fakeDynamo struct {
	putErr       error
	lastPutInput *dynamodb.PutItemInput
	puts         int
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.puts++
	f.lastPutInput = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

func mustNewClient(t *testing.T, db *fakeDynamo) *Client {
	t.Helper()
	c, err := New(db, "blog-index")
	require.NoError(t, err)
	return c
}

func stubID(t *testing.T, id string) {
	t.Helper()
	orig := newID
	newID = func() string { return id }
	t.Cleanup(func() { newID = orig })
}

func strVal(t *testing.T, item map[string]types.AttributeValue, key string) string {
	t.Helper()
	v, ok := item[key].(*types.AttributeValueMemberS)
	require.True(t, ok, "attribute %q is not a string", key)
	return v.Value
}

func numVal(t *testing.T, item map[string]types.AttributeValue, key string) string {
	t.Helper()
	v, ok := item[key].(*types.AttributeValueMemberN)
	require.True(t, ok, "attribute %q is not a number", key)
	return v.Value
}

func TestNewPostRecord_Fields(t *testing.T) {
	stubID(t, "id-1")
	now := time.Date(2026, 10, 19, 23, 59, 1, 5, time.UTC)
	rec := NewPostRecord(domain.Post{Topic: "Go", ModelID: "m", Body: "hello"}, "bucket", "blog_output/235901.txt", now)

	require.Equal(t, "BLOG#2026-10-19", rec.PK)
	require.Equal(t, "POST#2026-10-19T23:59:01.000000005Z#id-1", rec.SK)
	require.Equal(t, "id-1", rec.ID)
	require.Equal(t, "Go", rec.Topic)
	require.Equal(t, "m", rec.ModelID)
	require.Equal(t, "bucket", rec.Bucket)
	require.Equal(t, "blog_output/235901.txt", rec.Key)
	require.Equal(t, 5, rec.Length)
	require.Equal(t, "2026-10-19T23:59:01Z", rec.CreatedAt)
	require.Equal(t, now.Add(30*24*time.Hour).Unix(), rec.TTL)
}

func TestDayPK_UsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	ts := time.Date(2026, 10, 20, 3, 0, 0, 0, loc)
	require.Equal(t, "BLOG#2026-10-19", dayPK(ts))
}

func TestRecord_HappyPath(t *testing.T) {
	stubID(t, "id-2")
	db := &fakeDynamo{}
	c := mustNewClient(t, db)

	err := c.Record(context.Background(), domain.Post{Topic: "Go", ModelID: "m", Body: "text"}, "bucket", "blog_output/101010.txt")
	require.NoError(t, err)
	require.Equal(t, 1, db.puts)

	in := db.lastPutInput
	require.Equal(t, "blog-index", *in.TableName)
	require.Equal(t, "attribute_not_exists(PK) AND attribute_not_exists(SK)", *in.ConditionExpression)
	require.Equal(t, "id-2", strVal(t, in.Item, "id"))
	require.Equal(t, "Go", strVal(t, in.Item, "topic"))
	require.Equal(t, "blog_output/101010.txt", strVal(t, in.Item, "key"))
	require.Equal(t, "4", numVal(t, in.Item, "length"))
	require.NotEmpty(t, numVal(t, in.Item, "ttl"))
}

func TestRecord_DynamoError(t *testing.T) {
	db := &fakeDynamo{putErr: errors.New("ConditionalCheckFailedException")}
	c := mustNewClient(t, db)
	err := c.Record(context.Background(), domain.Post{Topic: "Go", Body: "x"}, "bucket", "k")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Record")
	require.ErrorContains(t, err, "ConditionalCheckFailedException")
}

func TestPutRecord_MissingKeys(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)

	err := c.PutRecord(context.Background(), domain.PostRecord{SK: "POST#ts#id"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "required")

	err = c.PutRecord(context.Background(), domain.PostRecord{PK: "BLOG#2026-10-19"})
	require.Error(t, err)
	require.Zero(t, db.puts)
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil, "blog-index")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be nil")
}

func TestNew_EmptyTableName(t *testing.T) {
	_, err := New(&fakeDynamo{}, " ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be empty")
}
