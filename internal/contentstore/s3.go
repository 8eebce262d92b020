package contentstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"heirloom-go/internal/heirloom"
)

// presignTTL bounds how long a resolved locator stays fetchable.
const presignTTL = 15 * time.Minute

// S3Store is an S3-backed content store. Objects are content-addressed:
// the key is the SHA-256 of the ciphertext under a configurable prefix, so
// uploads are idempotent.
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	presign  *s3.PresignClient
	bucket   string
	prefix   string
	region   string
}

var _ heirloom.ContentStore = (*S3Store)(nil)

// S3Options configures an S3Store. AccessKey/SecretKey are optional; when
// empty the default AWS credential chain is used.
type S3Options struct {
	Bucket    string
	Prefix    string
	Region    string
	AccessKey string
	SecretKey string
}

// NewS3Store creates an S3-backed store.
func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 store requires a bucket")
	}
	if opts.Region == "" {
		return nil, fmt.Errorf("s3 store requires a region")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		presign:  s3.NewPresignClient(client),
		bucket:   opts.Bucket,
		prefix:   opts.Prefix,
		region:   opts.Region,
	}, nil
}

// Upload stores data under its SHA-256 hash and returns the hash.
func (s *S3Store) Upload(ctx context.Context, _ string, data []byte) (string, error) {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(hash)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", &heirloom.UploadError{Err: fmt.Errorf("uploading to s3://%s: %w", s.bucket, err)}
	}

	return hash, nil
}

func (s *S3Store) Fetch(ctx context.Context, contentHash string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(contentHash)),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching %s from s3://%s: %w", contentHash, s.bucket, err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// ResolveURL returns a presigned GET locator so the bucket can stay
// private; on presign failure it falls back to the plain object URL.
func (s *S3Store) ResolveURL(contentHash string) string {
	req, err := s.presign.PresignGetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(contentHash)),
	}, func(o *s3.PresignOptions) { o.Expires = presignTTL })
	if err != nil {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, s.key(contentHash))
	}
	return req.URL
}

func (s *S3Store) key(contentHash string) string {
	return path.Join(s.prefix, contentHash)
}
