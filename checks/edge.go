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
	registry.Add("edge", "400_zero_byte_object", ZeroByteObject)
	registry.Add("edge", "401_unicode_key", UnicodeKey)
	registry.Add("edge", "402_deep_key_path", DeepKeyPath)
}

// ZeroByteObject verifies an empty object can be written and read back.
func ZeroByteObject(ctx context.Context, client *s3.Client, cfg *config.Config) error {
	return withBucket(ctx, client, func(bucket string) error {
		key := aws.String("empty.bin")
		if _, err := client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: &bucket,
			Key:    key,
			Body:   bytes.NewReader(nil),
		}); err != nil {
			return err
		}

		out, err := client.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: key})
		if err != nil {
			return err
		}
		defer out.Body.Close()
		got, err := io.ReadAll(out.Body)
		if err != nil {
			return err
		}
		if len(got) != 0 {
			return types.Assertf("Size mismatch: expected 0, got %d", len(got))
		}
		return nil
	})
}

// UnicodeKey verifies keys with non-ASCII characters round-trip.
func UnicodeKey(ctx context.Context, client *s3.Client, cfg *config.Config) error {
	return withBucket(ctx, client, func(bucket string) error {
		key := aws.String("ユニコード/ключ/🗝.txt")
		if _, err := client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: &bucket,
			Key:    key,
			Body:   strings.NewReader("unicode"),
		}); err != nil {
			return err
		}

		out, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{Bucket: &bucket})
		if err != nil {
			return err
		}
		for _, obj := range out.Contents {
			if aws.ToString(obj.Key) == aws.ToString(key) {
				return nil
			}
		}
		return types.Assertf("unicode key missing from listing")
	})
}

// DeepKeyPath verifies a deeply nested key is accepted and retrievable.
func DeepKeyPath(ctx context.Context, client *s3.Client, cfg *config.Config) error {
	return withBucket(ctx, client, func(bucket string) error {
		key := aws.String(strings.Repeat("nested/", 50) + "leaf.txt")
		if _, err := client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: &bucket,
			Key:    key,
			Body:   strings.NewReader("deep"),
		}); err != nil {
			return err
		}
		if _, err := client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &bucket, Key: key}); err != nil {
			return types.Assertf("HeadObject failed on deeply nested key: %v", err)
		}
		return nil
	})
}
