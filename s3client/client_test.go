package s3client

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storageward/s3-acceptor/config"
)

func TestNewUsesConfiguredEndpoint(t *testing.T) {
	cfg := config.Default()
	cfg.Endpoint = "http://localhost:9999"

	client, err := New(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, client)

	opts := client.Options()
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://localhost:9999", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, "us-east-1", opts.Region)
}

func TestUniqueBucketName(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		name := UniqueBucketName("s3acc")
		assert.False(t, seen[name], "duplicate bucket name %s", name)
		seen[name] = true
		assert.LessOrEqual(t, len(name), 63, "bucket name too long: %s", name)
		assert.Contains(t, name, "s3acc-")
	}
}

type fakeAPIError struct {
	code string
}

func (e *fakeAPIError) Error() string                 { return e.code }
func (e *fakeAPIError) ErrorCode() string             { return e.code }
func (e *fakeAPIError) ErrorMessage() string          { return e.code }
func (e *fakeAPIError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "NoSuchKey", ErrorCode(&fakeAPIError{code: "NoSuchKey"}))
	assert.Equal(t, "NoSuchBucket", ErrorCode(fmt.Errorf("wrapped: %w", &fakeAPIError{code: "NoSuchBucket"})))
	assert.Equal(t, "", ErrorCode(errors.New("plain error")))
	assert.Equal(t, "", ErrorCode(nil))
}
