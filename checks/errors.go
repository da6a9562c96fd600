package checks

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/storageward/s3-acceptor/config"
	"github.com/storageward/s3-acceptor/registry"
	"github.com/storageward/s3-acceptor/s3client"
	"github.com/storageward/s3-acceptor/types"
)

func init() {
	registry.Add("errors", "300_get_missing_object", GetMissingObject)
	registry.Add("errors", "301_get_missing_bucket", GetMissingBucket)
	registry.Add("errors", "302_delete_missing_object", DeleteMissingObject)
	registry.Add("errors", "303_create_duplicate_bucket", CreateDuplicateBucket)
}

// GetMissingObject verifies the endpoint returns NoSuchKey for a key that
// was never written.
func GetMissingObject(ctx context.Context, client *s3.Client, cfg *config.Config) error {
	return withBucket(ctx, client, func(bucket string) error {
		_, err := client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: &bucket,
			Key:    aws.String("never-written"),
		})
		if err == nil {
			return types.Assertf("GetObject on a missing key succeeded")
		}
		if code := s3client.ErrorCode(err); code != "NoSuchKey" {
			return types.Assertf("error code mismatch: expected NoSuchKey, got %q", code)
		}
		return nil
	})
}

// GetMissingBucket verifies the endpoint returns NoSuchBucket for a bucket
// that does not exist.
func GetMissingBucket(ctx context.Context, client *s3.Client, cfg *config.Config) error {
	bucket := s3client.UniqueBucketName(bucketPrefix + "-missing")
	_, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    aws.String("anything"),
	})
	if err == nil {
		return types.Assertf("GetObject against a missing bucket succeeded")
	}
	if code := s3client.ErrorCode(err); code != "NoSuchBucket" {
		return types.Assertf("error code mismatch: expected NoSuchBucket, got %q", code)
	}
	return nil
}

// DeleteMissingObject verifies delete is idempotent: removing a key that
// does not exist must not fail.
func DeleteMissingObject(ctx context.Context, client *s3.Client, cfg *config.Config) error {
	return withBucket(ctx, client, func(bucket string) error {
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: &bucket,
			Key:    aws.String("never-written"),
		}); err != nil {
			return types.Assertf("DeleteObject on a missing key failed: %v", err)
		}
		return nil
	})
}

// CreateDuplicateBucket verifies re-creating an owned bucket reports
// BucketAlreadyOwnedByYou (or BucketAlreadyExists).
func CreateDuplicateBucket(ctx context.Context, client *s3.Client, cfg *config.Config) error {
	return withBucket(ctx, client, func(bucket string) error {
		err := createBucket(ctx, client, bucket)
		if err == nil {
			// Some services treat this as an idempotent no-op, which AWS
			// also does in us-east-1.
			return nil
		}
		code := s3client.ErrorCode(err)
		if code != "BucketAlreadyOwnedByYou" && code != "BucketAlreadyExists" {
			return types.Assertf("error code mismatch: expected BucketAlreadyOwnedByYou, got %q", code)
		}
		return nil
	})
}
