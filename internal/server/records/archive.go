package records

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Indirections for tests.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// archiveStorageKey returns a fresh object key like exports/2026/8/30/<uuid>.csv.
func archiveStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("exports/%d/%d/%d/%v.csv", d.Year(), int(d.Month()), d.Day(), uuid.New())
}

func (s *Service) getS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, nil
}

// ArchiveEnabled reports whether the export archive bucket is configured.
func (s *Service) ArchiveEnabled() bool {
	return s.config.S3ArchiveEnabled
}

// ArchiveExport uploads a finished CSV export to the configured bucket and
// returns a presigned GET URL valid for 15 minutes.
func (s *Service) ArchiveExport(ctx context.Context, body []byte) (string, error) {
	client, err := s.getS3Client(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	key := archiveStorageKey()
	contentType := "text/csv; charset=utf-8"

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("error uploading export: %w", err)
	}

	presignClient := newS3PresignClient(client)
	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", fmt.Errorf("error presigning export url: %w", err)
	}

	s.logger.Info(ctx, "export archived", "key", key)
	return req.URL, nil
}
