package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"blog-generator/internal/domain"
)

const (
	pkPrefixDay  = "BLOG#"
	skPrefixPost = "POST#"
	dayLayout    = "2006-01-02"
	ttlDuration  = 30 * 24 * time.Hour // 30-day TTL
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Client records stored posts in a DynamoDB table, one partition per UTC day.
type Client struct {
	api       dynamodbAPI
	tableName string
}

func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

func dayPK(ts time.Time) string {
	return pkPrefixDay + ts.UTC().Format(dayLayout)
}

func postSK(ts time.Time, id string) string {
	return skPrefixPost + ts.UTC().Format(time.RFC3339Nano) + "#" + id
}

var newID = func() string {
	return uuid.NewString()
}

// NewPostRecord builds the index entry for a post stored at bucket/key.
func NewPostRecord(post domain.Post, bucket, key string, now time.Time) domain.PostRecord {
	id := newID()
	return domain.PostRecord{
		PK:        dayPK(now),
		SK:        postSK(now, id),
		ID:        id,
		Topic:     post.Topic,
		ModelID:   post.ModelID,
		Bucket:    bucket,
		Key:       key,
		Length:    len(post.Body),
		CreatedAt: now.UTC().Format(time.RFC3339),
		TTL:       now.Add(ttlDuration).Unix(),
	}
}

// Record stores a post's index entry. Entries are create-once.
func (c *Client) Record(ctx context.Context, post domain.Post, bucket, key string) error {
	rec := NewPostRecord(post, bucket, key, time.Now())
	if err := c.PutRecord(ctx, rec); err != nil {
		return fmt.Errorf("repository: Record: %w", err)
	}
	return nil
}

// PutRecord writes rec, refusing to overwrite an existing entry.
func (c *Client) PutRecord(ctx context.Context, rec domain.PostRecord) error {
	if rec.PK == "" || rec.SK == "" {
		return errors.New("repository: PutRecord: PK and SK are required")
	}

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                recordItem(rec),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return fmt.Errorf("repository: PutRecord: %w", err)
	}
	return nil
}

func recordItem(rec domain.PostRecord) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":        &types.AttributeValueMemberS{Value: rec.PK},
		"SK":        &types.AttributeValueMemberS{Value: rec.SK},
		"id":        &types.AttributeValueMemberS{Value: rec.ID},
		"topic":     &types.AttributeValueMemberS{Value: rec.Topic},
		"modelId":   &types.AttributeValueMemberS{Value: rec.ModelID},
		"bucket":    &types.AttributeValueMemberS{Value: rec.Bucket},
		"key":       &types.AttributeValueMemberS{Value: rec.Key},
		"length":    &types.AttributeValueMemberN{Value: strconv.Itoa(rec.Length)},
		"createdAt": &types.AttributeValueMemberS{Value: rec.CreatedAt},
		"ttl":       &types.AttributeValueMemberN{Value: strconv.FormatInt(rec.TTL, 10)},
	}
}
