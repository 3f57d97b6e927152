// Package storage archives uploaded food photos on local disk or in S3.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"alttabwell/internal/config"
)

// Storage is the image archive used by the nutrition upload endpoint.
type Storage interface {
	// Upload stores data and returns the storage path recorded on the nutrition entry.
	Upload(ctx context.Context, fileID uuid.UUID, filename string, data io.Reader) (string, error)
	Delete(ctx context.Context, storagePath string) error
}

const (
	TypeLocal = "local"
	TypeS3    = "s3"
)

func NewStorage(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case TypeLocal:
		return NewLocalStorage(cfg.LocalPath)
	case TypeS3:
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// storagePath shards by the first two characters of the id.
func storagePath(fileID uuid.UUID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\':
			return '_'
		}
		return r
	}, base)
	id := fileID.String()
	return fmt.Sprintf("food/%s/%s_%s%s", id[:2], id, base, ext)
}

func contentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".heic":
		return "image/heic"
	default:
		return "application/octet-stream"
	}
}
