package checks

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/storageward/s3-acceptor/config"
	"github.com/storageward/s3-acceptor/registry"
	"github.com/storageward/s3-acceptor/s3client"
	"github.com/storageward/s3-acceptor/types"
)

func init() {
	registry.Add("versioning", "200_enable_versioning", EnableVersioning)
	registry.Add("versioning", "201_versioned_put", VersionedPut)
	registry.Add("versioning", "202_delete_marker", DeleteMarker)
}

// enableVersioning turns versioning on for the bucket, converting a
// NotImplemented fault into a skip since versioning is optional for many
// S3-compatible services.
func enableVersioning(ctx context.Context, client *s3.Client, bucket string) error {
	_, err := client.PutBucketVersioning(ctx, &s3.PutBucketVersioningInput{
		Bucket: &bucket,
		VersioningConfiguration: &s3types.VersioningConfiguration{
			Status: s3types.BucketVersioningStatusEnabled,
		},
	})
	if err != nil {
		if code := s3client.ErrorCode(err); code == "NotImplemented" {
			return types.Skipf("endpoint does not implement bucket versioning")
		}
		return err
	}
	return nil
}

// EnableVersioning verifies the versioning status round-trips.
func EnableVersioning(ctx context.Context, client *s3.Client, cfg *config.Config) error {
	return withBucket(ctx, client, func(bucket string) error {
		if err := enableVersioning(ctx, client, bucket); err != nil {
			return err
		}
		out, err := client.GetBucketVersioning(ctx, &s3.GetBucketVersioningInput{Bucket: &bucket})
		if err != nil {
			return err
		}
		if out.Status != s3types.BucketVersioningStatusEnabled {
			return types.Assertf("versioning status mismatch: expected Enabled, got %q", out.Status)
		}
		return nil
	})
}

// VersionedPut verifies two writes to the same key produce two distinct
// versions.
func VersionedPut(ctx context.Context, client *s3.Client, cfg *config.Config) error {
	return withBucket(ctx, client, func(bucket string) error {
		if err := enableVersioning(ctx, client, bucket); err != nil {
			return err
		}
		key := aws.String("versioned.txt")
		var versionIDs []string
		for _, body := range []string{"v1", "v2"} {
			out, err := client.PutObject(ctx, &s3.PutObjectInput{
				Bucket: &bucket,
				Key:    key,
				Body:   strings.NewReader(body),
			})
			if err != nil {
				return err
			}
			versionIDs = append(versionIDs, aws.ToString(out.VersionId))
		}

		if versionIDs[0] == "" || versionIDs[1] == "" {
			return types.Assertf("PutObject did not return version IDs on a versioned bucket")
		}
		if versionIDs[0] == versionIDs[1] {
			return types.Assertf("two writes produced the same version ID %s", versionIDs[0])
		}

		versions, err := client.ListObjectVersions(ctx, &s3.ListObjectVersionsInput{Bucket: &bucket})
		if err != nil {
			return err
		}
		if len(versions.Versions) != 2 {
			return types.Assertf("expected 2 object versions, got %d", len(versions.Versions))
		}
		return nil
	})
}

// DeleteMarker verifies deleting a versioned object creates a delete
// marker instead of removing the versions.
func DeleteMarker(ctx context.Context, client *s3.Client, cfg *config.Config) error {
	return withBucket(ctx, client, func(bucket string) error {
		if err := enableVersioning(ctx, client, bucket); err != nil {
			return err
		}
		key := aws.String("marked.txt")
		if _, err := client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: &bucket,
			Key:    key,
			Body:   strings.NewReader("to be marked"),
		}); err != nil {
			return err
		}

		del, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &bucket, Key: key})
		if err != nil {
			return err
		}
		if !aws.ToBool(del.DeleteMarker) && aws.ToString(del.VersionId) == "" {
			return types.Assertf("delete on versioned bucket produced no delete marker")
		}

		versions, err := client.ListObjectVersions(ctx, &s3.ListObjectVersionsInput{Bucket: &bucket})
		if err != nil {
			return err
		}
		if len(versions.DeleteMarkers) != 1 {
			return types.Assertf("expected 1 delete marker, got %d", len(versions.DeleteMarkers))
		}
		if len(versions.Versions) != 1 {
			return types.Assertf("expected original version to survive, got %d versions", len(versions.Versions))
		}
		return nil
	})
}
