package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/PavelDubrovin93/foodgram/internal/utils"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

const base64Prefix = "data:image/"

var ErrInvalidImagePayload = errors.New("invalid base64 image payload")

type (
	// AwsS3 is the blob-storage collaborator: it accepts image payloads
	// and hands back opaque object keys. Nothing else in the system
	// interprets image bytes.
	AwsS3 interface {
		UploadBase64(ctx context.Context, payload, dir string) (string, error)
		UploadBytes(ctx context.Context, data []byte, objectKey, contentType string) (string, error)
		GetPublicLinkKey(objectKey string) string
		DeleteObject(ctx context.Context, objectKey string) error
	}

	awsS3 struct {
		client *s3.Client
		bucket string
		region string
	}
)

func NewAwsS3() AwsS3 {
	region := utils.GetConfig("AWS_S3_REGION")
	cfg, err := awsconfig.LoadDefaultConfig(
		context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			utils.GetConfig("AWS_ACCESS_KEY"),
			utils.GetConfig("AWS_SECRET_KEY"),
			"",
		)),
	)
	if err != nil {
		log.Fatalf("error loading AWS config: %v", err)
	}

	return &awsS3{
		client: s3.NewFromConfig(cfg),
		bucket: utils.GetConfig("AWS_S3_BUCKET"),
		region: region,
	}
}

// IsBase64Payload reports whether the string is an embedded image
// payload ("data:image/<ext>;base64,<data>") rather than a stored
// object reference.
func IsBase64Payload(payload string) bool {
	return strings.HasPrefix(payload, base64Prefix)
}

// DecodeBase64Image splits an embedded payload into raw bytes and the
// image extension taken from the MIME prefix.
func DecodeBase64Image(payload string) ([]byte, string, error) {
	if !IsBase64Payload(payload) {
		return nil, "", ErrInvalidImagePayload
	}
	parts := strings.SplitN(payload, ";base64,", 2)
	if len(parts) != 2 {
		return nil, "", ErrInvalidImagePayload
	}

	ext := strings.TrimPrefix(parts[0], base64Prefix)
	data, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, "", ErrInvalidImagePayload
	}
	return data, ext, nil
}

func (s *awsS3) UploadBase64(ctx context.Context, payload, dir string) (string, error) {
	data, ext, err := DecodeBase64Image(payload)
	if err != nil {
		return "", err
	}

	objectKey := fmt.Sprintf("%s/%s.%s", dir, uuid.New().String(), ext)
	return s.UploadBytes(ctx, data, objectKey, "image/"+ext)
}

func (s *awsS3) UploadBytes(ctx context.Context, data []byte, objectKey, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return objectKey, nil
}

func (s *awsS3) GetPublicLinkKey(objectKey string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, objectKey)
}

func (s *awsS3) DeleteObject(ctx context.Context, objectKey string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	return err
}
