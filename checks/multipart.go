package checks

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/storageward/s3-acceptor/config"
	"github.com/storageward/s3-acceptor/registry"
	"github.com/storageward/s3-acceptor/types"
)

func init() {
	registry.Add("multipart", "100_multipart_upload", MultipartUpload)
	registry.Add("multipart", "101_abort_multipart", AbortMultipart)
	registry.Add("multipart", "102_list_parts", ListParts)
}

// minPartSize is the smallest part size S3 accepts for all parts but the
// last.
const minPartSize = 5 * 1024 * 1024

// MultipartUpload verifies a two-part upload completes and the assembled
// object has the expected size.
func MultipartUpload(ctx context.Context, client *s3.Client, cfg *config.Config) error {
	return withBucket(ctx, client, func(bucket string) error {
		key := aws.String("multipart.bin")
		create, err := client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
			Bucket: &bucket,
			Key:    key,
		})
		if err != nil {
			return err
		}

		part1 := bytes.Repeat([]byte("a"), minPartSize)
		part2 := bytes.Repeat([]byte("b"), 1024)
		var completed []s3types.CompletedPart
		for i, body := range [][]byte{part1, part2} {
			num := int32(i + 1)
			up, err := client.UploadPart(ctx, &s3.UploadPartInput{
				Bucket:     &bucket,
				Key:        key,
				UploadId:   create.UploadId,
				PartNumber: aws.Int32(num),
				Body:       bytes.NewReader(body),
			})
			if err != nil {
				return fmt.Errorf("uploading part %d: %w", num, err)
			}
			completed = append(completed, s3types.CompletedPart{
				ETag:       up.ETag,
				PartNumber: aws.Int32(num),
			})
		}

		if _, err := client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
			Bucket:          &bucket,
			Key:             key,
			UploadId:        create.UploadId,
			MultipartUpload: &s3types.CompletedMultipartUpload{Parts: completed},
		}); err != nil {
			return err
		}

		head, err := client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &bucket, Key: key})
		if err != nil {
			return err
		}
		wantSize := int64(len(part1) + len(part2))
		if aws.ToInt64(head.ContentLength) != wantSize {
			return types.Assertf("Size mismatch: expected %d, got %d", wantSize, aws.ToInt64(head.ContentLength))
		}
		return nil
	})
}

// AbortMultipart verifies an aborted upload leaves no readable object and
// no pending upload behind.
func AbortMultipart(ctx context.Context, client *s3.Client, cfg *config.Config) error {
	return withBucket(ctx, client, func(bucket string) error {
		key := aws.String("aborted.bin")
		create, err := client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
			Bucket: &bucket,
			Key:    key,
		})
		if err != nil {
			return err
		}
		if _, err := client.UploadPart(ctx, &s3.UploadPartInput{
			Bucket:     &bucket,
			Key:        key,
			UploadId:   create.UploadId,
			PartNumber: aws.Int32(1),
			Body:       bytes.NewReader([]byte("partial")),
		}); err != nil {
			return err
		}

		if _, err := client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
			Bucket:   &bucket,
			Key:      key,
			UploadId: create.UploadId,
		}); err != nil {
			return err
		}

		if _, err := client.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: key}); err == nil {
			return types.Assertf("object readable after multipart upload was aborted")
		}

		uploads, err := client.ListMultipartUploads(ctx, &s3.ListMultipartUploadsInput{Bucket: &bucket})
		if err != nil {
			return err
		}
		for _, u := range uploads.Uploads {
			if aws.ToString(u.UploadId) == aws.ToString(create.UploadId) {
				return types.Assertf("aborted upload still listed as in progress")
			}
		}
		return nil
	})
}

// ListParts verifies uploaded parts are visible through ListParts before
// completion.
func ListParts(ctx context.Context, client *s3.Client, cfg *config.Config) error {
	return withBucket(ctx, client, func(bucket string) error {
		key := aws.String("parts.bin")
		create, err := client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
			Bucket: &bucket,
			Key:    key,
		})
		if err != nil {
			return err
		}
		defer func() {
			_, _ = client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
				Bucket:   &bucket,
				Key:      key,
				UploadId: create.UploadId,
			})
		}()

		body := io.Reader(bytes.NewReader([]byte("single part")))
		if _, err := client.UploadPart(ctx, &s3.UploadPartInput{
			Bucket:     &bucket,
			Key:        key,
			UploadId:   create.UploadId,
			PartNumber: aws.Int32(1),
			Body:       body,
		}); err != nil {
			return err
		}

		parts, err := client.ListParts(ctx, &s3.ListPartsInput{
			Bucket:   &bucket,
			Key:      key,
			UploadId: create.UploadId,
		})
		if err != nil {
			return err
		}
		if len(parts.Parts) != 1 {
			return types.Assertf("expected 1 uploaded part, got %d", len(parts.Parts))
		}
		if aws.ToInt32(parts.Parts[0].PartNumber) != 1 {
			return types.Assertf("part number mismatch: expected 1, got %d", aws.ToInt32(parts.Parts[0].PartNumber))
		}
		return nil
	})
}
