package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	cfg "github.com/postdeckhq/postdeck/configs"
	"github.com/postdeckhq/postdeck/internal/models"
	"github.com/postdeckhq/postdeck/internal/repository"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var allowedExtensions = map[string]struct{}{
	"mp4": {}, "mov": {}, "jpeg": {}, "png": {}, "jpg": {},
}

type StorageService struct {
	config cfg.Config
	ma     repository.MediaAssetRepository
}

func NewStorageService(cfg cfg.Config, ma repository.MediaAssetRepository) *StorageService {
	return &StorageService{config: cfg, ma: ma}
}

func (s *StorageService) R2Client() (*s3.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.config.R2.AccessKey, s.config.R2.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", s.config.R2.AccountID))
	}), nil
}

// Upload sniffs the file, pushes it to R2 under a fresh key, and records the
// asset row. The media kind is classified from the MIME prefix only; the
// bytes are never inspected beyond type sniffing.
func (s *StorageService) Upload(ctx context.Context, userID int64, file []byte) (*models.MediaAsset, error) {
	kind, err := filetype.Match(file)
	if err != nil || kind == types.Unknown {
		return nil, errors.New("unsupported file type")
	}
	if _, ok := allowedExtensions[kind.Extension]; !ok {
		return nil, fmt.Errorf("file type %s is not allowed", kind.Extension)
	}

	mediaKind := models.MediaKindImage
	if strings.HasPrefix(kind.MIME.Value, "video/") {
		mediaKind = models.MediaKindVideo
	}

	key, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	if err := s.uploadToR2(ctx, key, file, kind.MIME.Value); err != nil {
		return nil, fmt.Errorf("error uploading file: %w", err)
	}

	asset := &models.MediaAsset{
		UserID:    userID,
		FileName:  key,
		FileType:  kind.MIME.Value,
		MediaKind: mediaKind,
		FileSize:  int64(len(file)),
		FileURL:   fmt.Sprintf("%s/%s", strings.TrimSuffix(s.config.R2.PublicURL, "/"), key),
	}

	assetID, err := s.ma.Create(ctx, nil, asset)
	if err != nil {
		return nil, fmt.Errorf("error saving media asset: %w", err)
	}
	asset.ID = assetID

	return asset, nil
}

func (s *StorageService) uploadToR2(ctx context.Context, key string, file []byte, contentType string) error {
	client, err := s.R2Client()
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.config.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(contentType),
	}

	if _, err := client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}
