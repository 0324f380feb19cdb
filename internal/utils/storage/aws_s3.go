package storage

import (
	"Receipt-Scanner-Backend/internal/utils"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// AllowImage holds the accepted receipt image content types.
var AllowImage = []string{"image/jpeg", "image/jpg", "image/png", "image/webp", "image/heic"}

type (
	AwsS3 interface {
		UploadFile(ctx context.Context, objectKey string, data []byte, contentType string, metadata map[string]string) (string, error)
		DownloadFile(ctx context.Context, objectKey string) ([]byte, error)
		DeleteFile(ctx context.Context, objectKey string) error
		PresignLink(ctx context.Context, objectKey string, expires time.Duration) (string, error)
		BucketName() string
	}

	awsS3 struct {
		client  *s3.Client
		presign *s3.PresignClient
		bucket  string
	}
)

func NewAwsS3() (AwsS3, error) {
	region := utils.GetConfig("AWS_S3_REGION")
	accessKey := utils.GetConfig("AWS_ACCESS_KEY")
	secretKey := utils.GetConfig("AWS_SECRET_KEY")
	bucket := utils.GetConfig("AWS_S3_BUCKET")

	cfg, err := config.LoadDefaultConfig(
		context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &awsS3{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
	}, nil
}

func (s *awsS3) UploadFile(ctx context.Context, objectKey string, data []byte, contentType string, metadata map[string]string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		Metadata:    metadata,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", objectKey, err)
	}
	return FormatS3URI(s.bucket, objectKey), nil
}

func (s *awsS3) DownloadFile(ctx context.Context, objectKey string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download object %s: %w", objectKey, err)
	}
	defer result.Body.Close()

	return io.ReadAll(result.Body)
}

func (s *awsS3) DeleteFile(ctx context.Context, objectKey string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", objectKey, err)
	}
	return nil
}

func (s *awsS3) PresignLink(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", objectKey, err)
	}
	return req.URL, nil
}

func (s *awsS3) BucketName() string {
	return s.bucket
}

// FormatS3URI builds the s3://bucket/key reference stored on a receipt.
func FormatS3URI(bucket, objectKey string) string {
	return fmt.Sprintf("s3://%s/%s", bucket, objectKey)
}

// ParseS3URI splits an s3://bucket/key reference back into bucket and key.
func ParseS3URI(uri string) (bucket string, objectKey string, ok bool) {
	if !strings.HasPrefix(uri, "s3://") {
		return "", "", false
	}
	rest := strings.TrimPrefix(uri, "s3://")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// AllowedImageType reports whether the declared content type is an
// accepted receipt image type.
func AllowedImageType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	for _, allowed := range AllowImage {
		if ct == allowed {
			return true
		}
	}
	return false
}
