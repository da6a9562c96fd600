package checks

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/storageward/s3-acceptor/config"
	"github.com/storageward/s3-acceptor/registry"
	"github.com/storageward/s3-acceptor/types"
)

func init() {
	registry.Add("basic", "001_create_bucket", CreateBucket)
	registry.Add("basic", "002_head_bucket", HeadBucket)
	registry.Add("basic", "003_put_object", PutObject)
	registry.Add("basic", "004_get_object", GetObject)
	registry.Add("basic", "005_delete_object", DeleteObject)
	registry.Add("basic", "006_list_objects", ListObjects)
	registry.Add("basic", "007_object_metadata", ObjectMetadata)
	registry.Add("basic", "008_copy_object", CopyObject)
}

// CreateBucket verifies that a bucket can be created and subsequently
// listed.
func CreateBucket(ctx context.Context, client *s3.Client, cfg *config.Config) error {
	return withBucket(ctx, client, func(bucket string) error {
		out, err := client.ListBuckets(ctx, &s3.ListBucketsInput{})
		if err != nil {
			return err
		}
		for _, b := range out.Buckets {
			if aws.ToString(b.Name) == bucket {
				return nil
			}
		}
		return types.Assertf("bucket %s not present in ListBuckets after creation", bucket)
	})
}

// HeadBucket verifies that HeadBucket succeeds on an existing bucket.
func HeadBucket(ctx context.Context, client *s3.Client, cfg *config.Config) error {
	return withBucket(ctx, client, func(bucket string) error {
		if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &bucket}); err != nil {
			return types.Assertf("HeadBucket failed on existing bucket: %v", err)
		}
		return nil
	})
}

// PutObject verifies a basic object write returns a non-empty ETag.
func PutObject(ctx context.Context, client *s3.Client, cfg *config.Config) error {
	return withBucket(ctx, client, func(bucket string) error {
		out, err := client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      &bucket,
			Key:         aws.String("hello.txt"),
			Body:        strings.NewReader("Hello, World!"),
			ContentType: aws.String("text/plain"),
		})
		if err != nil {
			return err
		}
		if aws.ToString(out.ETag) == "" {
			return types.Assertf("PutObject returned empty ETag")
		}
		return nil
	})
}

// GetObject verifies read-after-write: the body and size must round-trip.
func GetObject(ctx context.Context, client *s3.Client, cfg *config.Config) error {
	return withBucket(ctx, client, func(bucket string) error {
		content := []byte("read-after-write payload")
		if _, err := client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: &bucket,
			Key:    aws.String("raw.bin"),
			Body:   bytes.NewReader(content),
		}); err != nil {
			return err
		}

		out, err := client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: &bucket,
			Key:    aws.String("raw.bin"),
		})
		if err != nil {
			return err
		}
		defer out.Body.Close()

		got, err := io.ReadAll(out.Body)
		if err != nil {
			return err
		}
		if len(got) != len(content) {
			return types.Assertf("Size mismatch: expected %d, got %d", len(content), len(got))
		}
		if !bytes.Equal(got, content) {
			return types.Assertf("object body mismatch after round-trip")
		}
		return nil
	})
}

// DeleteObject verifies a deleted object is no longer readable.
func DeleteObject(ctx context.Context, client *s3.Client, cfg *config.Config) error {
	return withBucket(ctx, client, func(bucket string) error {
		key := aws.String("doomed.txt")
		if _, err := client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: &bucket,
			Key:    key,
			Body:   strings.NewReader("x"),
		}); err != nil {
			return err
		}
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &bucket, Key: key}); err != nil {
			return err
		}
		if _, err := client.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: key}); err == nil {
			return types.Assertf("GetObject succeeded on deleted object")
		}
		return nil
	})
}

// ListObjects verifies ListObjectsV2 returns exactly the written keys.
func ListObjects(ctx context.Context, client *s3.Client, cfg *config.Config) error {
	return withBucket(ctx, client, func(bucket string) error {
		keys := []string{"list/a.txt", "list/b.txt", "list/c.txt"}
		for _, k := range keys {
			if _, err := client.PutObject(ctx, &s3.PutObjectInput{
				Bucket: &bucket,
				Key:    aws.String(k),
				Body:   strings.NewReader(k),
			}); err != nil {
				return err
			}
		}

		out, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{Bucket: &bucket})
		if err != nil {
			return err
		}
		if int(aws.ToInt32(out.KeyCount)) != len(keys) {
			return types.Assertf("KeyCount mismatch: expected %d, got %d", len(keys), aws.ToInt32(out.KeyCount))
		}
		found := make(map[string]bool)
		for _, obj := range out.Contents {
			found[aws.ToString(obj.Key)] = true
		}
		for _, k := range keys {
			if !found[k] {
				return types.Assertf("key %s missing from listing", k)
			}
		}
		return nil
	})
}

// ObjectMetadata verifies user metadata round-trips through HeadObject.
func ObjectMetadata(ctx context.Context, client *s3.Client, cfg *config.Config) error {
	return withBucket(ctx, client, func(bucket string) error {
		key := aws.String("meta.txt")
		if _, err := client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:   &bucket,
			Key:      key,
			Body:     strings.NewReader("meta"),
			Metadata: map[string]string{"purpose": "compat-check"},
		}); err != nil {
			return err
		}

		head, err := client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &bucket, Key: key})
		if err != nil {
			return err
		}
		if head.Metadata["purpose"] != "compat-check" {
			return types.Assertf("metadata mismatch: expected %q, got %q", "compat-check", head.Metadata["purpose"])
		}
		return nil
	})
}

// CopyObject verifies server-side copy preserves the object body.
func CopyObject(ctx context.Context, client *s3.Client, cfg *config.Config) error {
	return withBucket(ctx, client, func(bucket string) error {
		content := "copy source payload"
		if _, err := client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: &bucket,
			Key:    aws.String("src.txt"),
			Body:   strings.NewReader(content),
		}); err != nil {
			return err
		}

		if _, err := client.CopyObject(ctx, &s3.CopyObjectInput{
			Bucket:     &bucket,
			Key:        aws.String("dst.txt"),
			CopySource: aws.String(bucket + "/src.txt"),
		}); err != nil {
			return err
		}

		out, err := client.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: aws.String("dst.txt")})
		if err != nil {
			return err
		}
		defer out.Body.Close()
		got, err := io.ReadAll(out.Body)
		if err != nil {
			return err
		}
		if string(got) != content {
			return types.Assertf("copied object body mismatch")
		}
		return nil
	})
}
