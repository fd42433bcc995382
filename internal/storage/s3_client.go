package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	keyTimeLayout   = "150405" // HHMMSS
	keySuffix       = ".txt"
	textContentType = "text/plain; charset=utf-8"
)

// s3API is the minimal S3 interface required by Client.
// *s3.Client from aws-sdk-go-v2 satisfies this interface.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Client writes generated posts to a single bucket.
type Client struct {
	api    s3API
	bucket string
}

// New creates a Client for bucket.
func New(api s3API, bucket string) (*Client, error) {
	if api == nil {
		return nil, errors.New("storage: api must not be nil")
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("storage: bucket must not be empty")
	}
	return &Client{api: api, bucket: bucket}, nil
}

// Bucket returns the bucket objects are written to.
func (c *Client) Bucket() string {
	return c.bucket
}

// ObjectKey returns "<prefix>/<HHMMSS>.txt" for t. Two posts stored within the
// same second share a key and the later one wins.
func ObjectKey(prefix string, t time.Time) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	name := t.Format(keyTimeLayout) + keySuffix
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// Put writes body under key.
func (c *Client) Put(ctx context.Context, key, body string) error {
	if c.api == nil {
		return errors.New("storage: client not initialized")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("storage: key is required")
	}

	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader([]byte(body)),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(textContentType),
	})
	if err != nil {
		return fmt.Errorf("storage: put object s3://%s/%s: %w", c.bucket, key, err)
	}
	return nil
}
