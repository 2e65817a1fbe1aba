package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"shuttlecast/config"
	"shuttlecast/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MaxArtworkSize caps how much of an object is read into memory.
const MaxArtworkSize = 20 << 20

var (
	ErrArtworkNotFound = errors.New("artwork not found")
	ErrArtworkTooLarge = errors.New("artwork too large")
)

// ArtworkStore 从 MinIO 存储桶中读写封面图片
type ArtworkStore struct {
	client *minio.Client
	bucket string
}

// NewArtworkStore 创建 MinIO 客户端，不会发起网络请求
func NewArtworkStore(cfg *config.Config) (*ArtworkStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 MinIO 客户端失败: %w", err)
	}
	return &ArtworkStore{client: client, bucket: cfg.MinioBucket}, nil
}

// Bucket 返回存储桶名称
func (s *ArtworkStore) Bucket() string {
	return s.bucket
}

// EnsureBucket 检查存储桶是否存在，不存在则创建
func (s *ArtworkStore) EnsureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("检查存储桶失败: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("创建存储桶失败: %w", err)
	}
	logger.Info("成功创建存储桶", logger.String("bucket", s.bucket))
	return nil
}

// GetArtwork 读取对象的全部内容
func (s *ArtworkStore) GetArtwork(ctx context.Context, key string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapError(key, err)
	}
	defer object.Close()

	data, err := io.ReadAll(io.LimitReader(object, MaxArtworkSize+1))
	if err != nil {
		return nil, s.mapError(key, err)
	}
	if len(data) > MaxArtworkSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrArtworkTooLarge, key, MaxArtworkSize)
	}
	return data, nil
}

// PutArtwork 上传封面图片
func (s *ArtworkStore) PutArtwork(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("上传封面失败 %s: %w", key, err)
	}
	logger.Info("封面上传成功",
		logger.String("bucket", s.bucket),
		logger.String("key", key),
		logger.Int("size", len(data)))
	return nil
}

func (s *ArtworkStore) mapError(key string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%w: %s/%s", ErrArtworkNotFound, s.bucket, key)
	}
	return fmt.Errorf("读取封面失败 %s/%s: %w", s.bucket, key, err)
}
