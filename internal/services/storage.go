package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"skillbridge-server/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	awscreds "github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageService stores avatar images in MinIO when an endpoint is
// configured, otherwise in AWS S3.
type StorageService struct {
	cfg         *config.Config
	s3Client    *s3.S3
	minioClient *minio.Client
	useMinIO    bool
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	service := &StorageService{cfg: cfg}

	if cfg.MinIOEndpoint != "" {
		service.useMinIO = true
		minioClient, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
			Secure: cfg.MinIOUseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create MinIO client: %w", err)
		}
		service.minioClient = minioClient
	} else {
		sess, err := session.NewSession(&aws.Config{
			Region: aws.String(cfg.AWSRegion),
			Credentials: awscreds.NewStaticCredentials(
				cfg.AWSAccessKeyID,
				cfg.AWSSecretAccessKey,
				"",
			),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %w", err)
		}
		service.s3Client = s3.New(sess)
	}

	return service, nil
}

func (s *StorageService) UploadFile(ctx context.Context, file io.Reader, filename, contentType string) (string, error) {
	if s.useMinIO {
		return s.uploadToMinIO(ctx, file, filename, contentType)
	}
	return s.uploadToS3(file, filename, contentType)
}

func (s *StorageService) DeleteFile(ctx context.Context, url string) error {
	key := s.extractKeyFromURL(url)
	if key == "" {
		return fmt.Errorf("invalid file URL")
	}

	if s.useMinIO {
		return s.deleteFromMinIO(ctx, key)
	}
	return s.deleteFromS3(key)
}

func (s *StorageService) uploadToS3(file io.Reader, filename, contentType string) (string, error) {
	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	_, err = s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.S3Bucket),
		Key:         aws.String(filename),
		Body:        bytes.NewReader(fileBytes),
		ContentType: aws.String(contentType),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.S3Bucket, s.cfg.AWSRegion, filename)
	return url, nil
}

func (s *StorageService) uploadToMinIO(ctx context.Context, file io.Reader, filename, contentType string) (string, error) {
	_, err := s.minioClient.PutObject(ctx, s.cfg.S3Bucket, filename, file, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to MinIO: %w", err)
	}

	protocol := "http"
	if s.cfg.MinIOUseSSL {
		protocol = "https"
	}
	url := fmt.Sprintf("%s://%s/%s/%s", protocol, s.cfg.MinIOEndpoint, s.cfg.S3Bucket, filename)
	return url, nil
}

func (s *StorageService) deleteFromS3(key string) error {
	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

func (s *StorageService) deleteFromMinIO(ctx context.Context, key string) error {
	if err := s.minioClient.RemoveObject(ctx, s.cfg.S3Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete from MinIO: %w", err)
	}
	return nil
}

func (s *StorageService) extractKeyFromURL(url string) string {
	if strings.Contains(url, "amazonaws.com") {
		parts := strings.Split(url, "/")
		if len(parts) > 3 {
			return strings.Join(parts[3:], "/")
		}
	}

	if s.cfg.MinIOEndpoint != "" && strings.Contains(url, s.cfg.MinIOEndpoint) {
		parts := strings.SplitN(url, s.cfg.S3Bucket+"/", 2)
		if len(parts) == 2 {
			return parts[1]
		}
	}

	return ""
}

// EnsureBucket creates the avatar bucket if it does not exist yet.
func (s *StorageService) EnsureBucket(ctx context.Context) error {
	if !s.useMinIO {
		_, err := s.s3Client.CreateBucket(&s3.CreateBucketInput{
			Bucket: aws.String(s.cfg.S3Bucket),
		})
		if err != nil && !strings.Contains(err.Error(), "BucketAlreadyOwnedByYou") {
			return fmt.Errorf("failed to create S3 bucket: %w", err)
		}
		return nil
	}

	exists, err := s.minioClient.BucketExists(ctx, s.cfg.S3Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := s.minioClient.MakeBucket(ctx, s.cfg.S3Bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create MinIO bucket: %w", err)
		}
	}
	return nil
}

// GenerateUniqueFilename keeps the original extension but replaces the name
// with a UUID so uploads never collide.
func GenerateUniqueFilename(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return uuid.New().String() + ext
}
