package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Presigner is the subset of *s3.PresignClient used for meal photos
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// MealPhotoService hands out presigned URLs so clients upload plate photos
// straight to S3, where the analysis producer picks them up.
type MealPhotoService struct {
	Presigner Presigner
	Bucket    string
	Expires   time.Duration
	Now       func() time.Time
}

const mealPhotoPrefix = "meal-photos/"

// NewMealPhotoService builds the S3 client from the default AWS config chain
func NewMealPhotoService(ctx context.Context, region, bucket string) (*MealPhotoService, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &MealPhotoService{
		Presigner: s3.NewPresignClient(s3.NewFromConfig(cfg)),
		Bucket:    bucket,
		Expires:   5 * time.Minute,
		Now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// GenerateUploadURL generates a presigned URL for uploading a meal photo
func (m *MealPhotoService) GenerateUploadURL(ctx context.Context, userID, fileName, fileType string) (string, string, error) {
	key := mealPhotoPrefix + path.Base(userID) + "/" + m.Now().Format("20060102150405") + "-" + path.Base(fileName)
	params := &s3.PutObjectInput{
		Bucket:      aws.String(m.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(fileType),
	}
	presigned, err := m.Presigner.PresignPutObject(ctx, params, s3.WithPresignExpires(m.Expires))
	if err != nil {
		return "", "", fmt.Errorf("failed to presign upload: %w", err)
	}
	return presigned.URL, key, nil
}

// GenerateReadURL generates a presigned URL for reading a meal photo
func (m *MealPhotoService) GenerateReadURL(ctx context.Context, key string) (string, error) {
	if !strings.HasPrefix(key, mealPhotoPrefix) || strings.Contains(key, "..") {
		return "", malformed("key %q is not a meal photo", key)
	}
	params := &s3.GetObjectInput{
		Bucket: aws.String(m.Bucket),
		Key:    aws.String(key),
	}
	presigned, err := m.Presigner.PresignGetObject(ctx, params, s3.WithPresignExpires(m.Expires))
	if err != nil {
		return "", fmt.Errorf("failed to presign read: %w", err)
	}
	return presigned.URL, nil
}
