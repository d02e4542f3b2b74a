package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"julekalender_backend/internal/config"
	"julekalender_backend/internal/model"
	"julekalender_backend/internal/util"
	"julekalender_backend/pkg/logger"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider stores task media objects under a key.
type StorageProvider interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	GetURL(key string) string
}

// LocalStorageProvider writes below LocalPath; the router serves that
// directory at /uploads.
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(p.Config.LocalPath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}
	return p.GetURL(key), nil
}

func (p *LocalStorageProvider) Delete(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(p.Config.LocalPath, filepath.FromSlash(key)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (p *LocalStorageProvider) GetURL(key string) string {
	return "/uploads/" + key
}

type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioSecure,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(key), nil
}

func (p *MinioStorageProvider) Delete(ctx context.Context, key string) error {
	return p.Client.RemoveObject(ctx, p.Config.MinioBucket, key, minio.RemoveObjectOptions{})
}

func (p *MinioStorageProvider) GetURL(key string) string {
	return "/" + p.Config.MinioBucket + "/" + key
}

type OSSStorageProvider struct {
	Config *config.StorageConfig
	Client *oss.Client
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{Config: cfg, Client: client}, nil
}

func (p *OSSStorageProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return "", err
	}
	if err := bucket.PutObject(key, reader, oss.ContentType(contentType), oss.WithContext(ctx)); err != nil {
		return "", err
	}
	return p.GetURL(key), nil
}

func (p *OSSStorageProvider) Delete(ctx context.Context, key string) error {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return err
	}
	return bucket.DeleteObject(key, oss.WithContext(ctx))
}

func (p *OSSStorageProvider) GetURL(key string) string {
	return fmt.Sprintf("https://%s.%s/%s", p.Config.OSSBucket, p.Config.OSSEndpoint, key)
}

type StorageService struct {
	Provider StorageProvider
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	var (
		provider StorageProvider
		err      error
	)
	switch cfg.Storage.Type {
	case util.StorageMinio:
		provider, err = NewMinioStorageProvider(&cfg.Storage)
	case util.StorageOSS:
		provider, err = NewOSSStorageProvider(&cfg.Storage)
	default:
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}
	if err != nil {
		return nil, fmt.Errorf("init %s storage: %w", cfg.Storage.Type, err)
	}
	return &StorageService{Provider: provider}, nil
}

// sniffLen is how much of an upload is buffered for type detection.
const sniffLen = 3072

// StoredMedia describes an uploaded task attachment.
type StoredMedia struct {
	Key       string
	URL       string
	MediaType string
}

// SaveTaskMedia sniffs the upload, rejects anything but the supported media
// kinds and stores it under tasks/<date>/.
func (s *StorageService) SaveTaskMedia(ctx context.Context, date, fileName string, reader io.Reader, size int64) (*StoredMedia, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(reader, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	head = head[:n]

	kind, mimeType, err := util.DetectMediaType(bytes.NewReader(head), fileName)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(path.Ext(fileName))
	key := path.Join("tasks", date, model.GenerateUUID()+ext)
	url, err := s.Provider.Upload(ctx, key, io.MultiReader(bytes.NewReader(head), reader), size, mimeType)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Task media stored",
		zap.String("key", key),
		zap.String("media_type", kind),
		zap.Int64("size", size),
	)
	return &StoredMedia{Key: key, URL: url, MediaType: kind}, nil
}

func (s *StorageService) Delete(ctx context.Context, key string) error {
	return s.Provider.Delete(ctx, key)
}
