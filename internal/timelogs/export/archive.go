package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/worklog-app/worklog-backend/config"
)

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type getPresigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// loadDefaultAWSConfig is a seam for testing config.LoadDefaultConfig.
var loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

type ArchiveResult struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Archiver uploads rendered exports and hands back a presigned download link.
type Archiver struct {
	putter    objectPutter
	presigner getPresigner
	bucket    string
	ttl       time.Duration
	now       func() time.Time
}

// NewS3Archiver builds an Archiver from S3 settings. A custom endpoint
// (MinIO, localstack) switches to path-style addressing.
func NewS3Archiver(ctx context.Context, cfg config.S3Config) (*Archiver, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newArchiver(client, s3.NewPresignClient(client), cfg.Bucket, cfg.PresignTTL), nil
}

func newArchiver(putter objectPutter, presigner getPresigner, bucket string, ttl time.Duration) *Archiver {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Archiver{
		putter:    putter,
		presigner: presigner,
		bucket:    bucket,
		ttl:       ttl,
		now:       time.Now,
	}
}

// StorageKey returns exports/{user}/{yyyy}/{mm}/{dd}/{uuid}.{ext}.
func StorageKey(userID string, f Format, at time.Time) string {
	return fmt.Sprintf("exports/%s/%04d/%02d/%02d/%s.%s",
		userID, at.Year(), int(at.Month()), at.Day(), uuid.NewString(), f.Extension())
}

func (a *Archiver) Archive(ctx context.Context, userID string, f Format, body []byte) (*ArchiveResult, error) {
	now := a.now().UTC()
	key := StorageKey(userID, f, now)

	_, err := a.putter.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(f.ContentType()),
	})
	if err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}

	req, err := a.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(a.ttl))
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}

	return &ArchiveResult{Key: key, URL: req.URL, ExpiresAt: now.Add(a.ttl)}, nil
}
