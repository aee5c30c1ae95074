package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/config"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/pkg/apperr"
)

// fileService складывает вложения в S3 и возвращает публичный URL.
// Сервер хранит только ссылку; сообщение ссылается на неё в file_url.
type fileService struct {
	config   *config.Config
	uploader *manager.Uploader
}

func NewFileService(cfg *config.Config) FileService {
	s3Opts := []func(*s3.Options){}

	if cfg.S3Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true // Обязательно для MinIO
		})
	}

	credsProvider := credentials.NewStaticCredentialsProvider(
		cfg.S3AccessKeyID,
		cfg.S3SecretAccessKey,
		"",
	)

	awsCfg := aws.Config{
		Region:      cfg.S3Region,
		Credentials: credsProvider,
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)

	return &fileService{
		config:   cfg,
		uploader: manager.NewUploader(client),
	}
}

func (s *fileService) Upload(ctx context.Context, userID uint, filename, contentType string, data []byte) (string, error) {
	if userID == 0 {
		return "", apperr.New(apperr.Unauthorized, "missing user id")
	}
	if len(data) == 0 {
		return "", apperr.New(apperr.InvalidArgument, "file data required")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		ext = "bin"
	}

	key := fmt.Sprintf("%d/%s/%s.%s",
		userID,
		time.Now().Format("20060102"),
		strings.ReplaceAll(uuid.New().String(), "-", ""),
		ext,
	)

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "failed to upload file", err)
	}

	base := strings.TrimSuffix(s.config.S3PublicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("%s/%s", strings.TrimSuffix(s.config.S3Endpoint, "/"), s.config.S3Bucket)
	}
	return fmt.Sprintf("%s/%s", base, key), nil
}
