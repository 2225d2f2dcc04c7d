package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3Options configure an S3 or S3-compatible (MinIO, Supabase) endpoint.
type S3Options struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	ForcePathStyle  bool
	PublicBaseURL   string
}

type S3Store struct {
	client   *s3.S3
	uploader *s3manager.Uploader
	opts     S3Options
}

func NewS3Store(opts S3Options) (*S3Store, error) {
	awsCfg := aws.NewConfig().
		WithRegion(opts.Region).
		WithS3ForcePathStyle(opts.ForcePathStyle)
	if opts.Endpoint != "" {
		awsCfg = awsCfg.WithEndpoint(opts.Endpoint)
	}
	if opts.AccessKeyID != "" {
		awsCfg = awsCfg.WithCredentials(credentials.NewStaticCredentials(opts.AccessKeyID, opts.SecretAccessKey, ""))
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("NewS3Store: %w", err)
	}
	return &S3Store{
		client:   s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		opts:     opts,
	}, nil
}

func (s *S3Store) Upload(ctx context.Context, bucket, originalName string, r io.Reader) (string, error) {
	key := ObjectName(originalName, time.Now())
	if err := s.put(ctx, bucket, key, r); err != nil {
		return "", fmt.Errorf("S3Store.Upload: %w", err)
	}
	return s.PublicURL(bucket, key), nil
}

func (s *S3Store) Promote(ctx context.Context, bucket, tempPath, name string) (string, error) {
	f, err := os.Open(tempPath)
	if err != nil {
		return "", fmt.Errorf("S3Store.Promote open: %w", err)
	}
	defer f.Close()

	key := path.Base(name)
	if err := s.put(ctx, bucket, key, f); err != nil {
		return "", fmt.Errorf("S3Store.Promote: %w", err)
	}
	return s.PublicURL(bucket, key), nil
}

func (s *S3Store) put(ctx context.Context, bucket, key string, body io.Reader) error {
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(ContentType(key)),
		ACL:         aws.String(s3.ObjectCannedACLPublicRead),
	})
	return err
}

func (s *S3Store) Remove(ctx context.Context, bucket, ref string) error {
	key := strings.TrimPrefix(ref, s.PublicURL(bucket, ""))
	if key == ref {
		key = path.Base(ref)
	}
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("S3Store.Remove: %w", err)
	}
	return nil
}

func (s *S3Store) EnsureBucket(ctx context.Context, bucket string) {
	out, err := s.client.ListBucketsWithContext(ctx, &s3.ListBucketsInput{})
	if err != nil {
		log.Printf("ERROR: could not list buckets: %v", err)
		return
	}
	for _, b := range out.Buckets {
		if aws.StringValue(b.Name) == bucket {
			log.Printf("INFO: bucket %s already exists", bucket)
			return
		}
	}

	input := &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
		ACL:    aws.String(s3.BucketCannedACLPublicRead),
	}
	if s.opts.Region != "" && s.opts.Region != "us-east-1" {
		input.CreateBucketConfiguration = &s3.CreateBucketConfiguration{
			LocationConstraint: aws.String(s.opts.Region),
		}
	}
	if _, err := s.client.CreateBucketWithContext(ctx, input); err != nil {
		log.Printf("ERROR: could not create bucket %s: %v", bucket, err)
		return
	}
	log.Printf("INFO: bucket %s created", bucket)
}

// PublicURL resolves the URL clients use to download key from bucket.
func (s *S3Store) PublicURL(bucket, key string) string {
	switch {
	case s.opts.PublicBaseURL != "":
		return strings.TrimRight(s.opts.PublicBaseURL, "/") + "/" + bucket + "/" + key
	case s.opts.Endpoint != "" && s.opts.ForcePathStyle:
		return strings.TrimRight(s.opts.Endpoint, "/") + "/" + bucket + "/" + key
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, s.opts.Region, key)
	}
}
