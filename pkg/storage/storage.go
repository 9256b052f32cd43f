// Package storage stores user uploads on Google Cloud Storage or on local disk.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"ourcodingkiddos/backend/config"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrInvalidKey      = errors.New("invalid object key")
)

// Storage object store for uploads
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// New builds the configured driver
func New(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (Storage, error) {
	switch cfg.Driver {
	case "gcs":
		client, err := gcs.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create gcs client: %w", err)
		}
		logger.Info("upload storage: gcs", zap.String("bucket", cfg.Bucket))
		return NewGCS(client, cfg.Bucket, cfg.PublicBaseURL), nil
	default:
		logger.Info("upload storage: local", zap.String("dir", cfg.LocalDir))
		return NewLocal(cfg.LocalDir, cfg.PublicBaseURL)
	}
}

// ── image checks ──

var imageExts = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DetectImage sniffs the first bytes of an upload and returns its content type and extension
func DetectImage(head []byte) (contentType, ext string, err error) {
	ct := http.DetectContentType(head)
	ext, ok := imageExts[ct]
	if !ok {
		return "", "", ErrUnsupportedType
	}
	return ct, ext, nil
}

func cleanKey(key string) (string, error) {
	key = strings.TrimLeft(filepath.ToSlash(filepath.Clean("/"+key)), "/")
	if key == "" || key == "." {
		return "", ErrInvalidKey
	}
	return key, nil
}

// ── GCS ──

type gcsStorage struct {
	client  *gcs.Client
	bucket  string
	baseURL string
}

// NewGCS bucket-backed storage. Objects are served from baseURL, or from the public
// storage.googleapis.com endpoint when baseURL is empty.
func NewGCS(client *gcs.Client, bucket, baseURL string) Storage {
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com/" + bucket
	}
	return &gcsStorage{client: client, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *gcsStorage) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write gcs object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close gcs writer: %w", err)
	}
	return s.URL(key), nil
}

func (s *gcsStorage) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	err = s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return err
}

func (s *gcsStorage) URL(key string) string {
	return s.baseURL + "/" + key
}

// ── local disk ──

type localStorage struct {
	dir     string
	baseURL string
}

// NewLocal stores objects under dir; the router serves dir at baseURL
func NewLocal(dir, baseURL string) (Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &localStorage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *localStorage) Put(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return s.URL(key), nil
}

func (s *localStorage) Delete(_ context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.dir, filepath.FromSlash(key)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *localStorage) URL(key string) string {
	return s.baseURL + "/" + key
}
