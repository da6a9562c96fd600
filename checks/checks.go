// Package checks provides the built-in compatibility test units. Each
// check registers itself under its group and numeric ID at package init;
// binaries pull the whole catalog in with a blank import.
//
// Every check creates its own uniquely-named bucket, works inside it and
// deletes it on exit. Cleanup is best-effort so one check's leftover state
// cannot fail another.
package checks

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/storageward/s3-acceptor/s3client"
)

const bucketPrefix = "s3acc"

// withBucket runs fn inside a freshly created, uniquely-named bucket and
// tears the bucket down afterwards, swallowing cleanup errors.
func withBucket(ctx context.Context, client *s3.Client, fn func(bucket string) error) error {
	bucket := s3client.UniqueBucketName(bucketPrefix)
	if err := createBucket(ctx, client, bucket); err != nil {
		return err
	}
	defer func() {
		_ = s3client.ForceDeleteBucket(ctx, client, bucket)
	}()
	return fn(bucket)
}

func createBucket(ctx context.Context, client *s3.Client, bucket string) error {
	_, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: &bucket})
	return err
}
