package records

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/gabrielslopes/labelcheck/internal/logging"
	"github.com/gabrielslopes/labelcheck/internal/server/config"
)

func newArchiveService() *Service {
	cfg := &config.Config{
		S3ArchiveEnabled:    true,
		S3Region:            "us-east-1",
		S3RootUser:          "minioadmin",
		S3RootPassword:      "minioadmin",
		S3BaseEndpoint:      "http://127.0.0.1:9000",
		S3Bucket:            "exports",
		RecordFlushInterval: 400,
	}
	return &Service{config: cfg, flushInterval: 400, logger: logging.NewNopLogger()}
}

func stubS3(t *testing.T) {
	t.Helper()

	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	origPut := putObject
	origPresignGet := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		putObject = origPut
		presignGetObject = origPresignGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				t.Fatalf("load options fn error: %v", err)
			}
		}
		if lo.Region != "us-east-1" {
			t.Fatalf("region not applied: %q", lo.Region)
		}
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		if opts.BaseEndpoint == nil || *opts.BaseEndpoint != "http://127.0.0.1:9000" {
			t.Fatalf("BaseEndpoint not applied")
		}
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}
}

func TestArchiveExport_UploadsAndPresigns(t *testing.T) {
	svc := newArchiveService()
	stubS3(t)

	var uploadedKey string
	var uploadedBody []byte
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		if *in.Bucket != "exports" {
			t.Fatalf("bucket mismatch: %q", *in.Bucket)
		}
		uploadedKey = *in.Key
		b, err := io.ReadAll(in.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		uploadedBody = b
		return &s3.PutObjectOutput{}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		if *in.Key != uploadedKey {
			t.Fatalf("presign key mismatch: %q vs %q", *in.Key, uploadedKey)
		}
		return &v4.PresignedHTTPRequest{URL: "http://signed/" + *in.Key}, nil
	}

	url, err := svc.ArchiveExport(context.Background(), []byte("csv-data"))
	if err != nil {
		t.Fatalf("ArchiveExport err: %v", err)
	}
	if !strings.HasPrefix(uploadedKey, "exports/") || !strings.HasSuffix(uploadedKey, ".csv") {
		t.Fatalf("unexpected storage key: %q", uploadedKey)
	}
	if string(uploadedBody) != "csv-data" {
		t.Fatalf("uploaded body mismatch: %q", uploadedBody)
	}
	if url != "http://signed/"+uploadedKey {
		t.Fatalf("unexpected url: %q", url)
	}
}

func TestArchiveExport_Errors(t *testing.T) {
	svc := newArchiveService()
	stubS3(t)

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return nil, errors.New("put-fail")
	}
	_, err := svc.ArchiveExport(context.Background(), []byte("x"))
	if err == nil || !strings.Contains(err.Error(), "put-fail") {
		t.Fatalf("expected put-fail, got %v", err)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return &s3.PutObjectOutput{}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign-fail")
	}
	_, err = svc.ArchiveExport(context.Background(), []byte("x"))
	if err == nil || !strings.Contains(err.Error(), "presign-fail") {
		t.Fatalf("expected presign-fail, got %v", err)
	}

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	_, err = svc.ArchiveExport(context.Background(), []byte("x"))
	if err == nil || !strings.Contains(err.Error(), "load-fail") {
		t.Fatalf("expected load-fail, got %v", err)
	}
}
