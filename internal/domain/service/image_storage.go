package service

import (
	"context"
	"io"
)

// ImageStorage persists listing photos and returns their public URL.
type ImageStorage interface {
	Upload(ctx context.Context, file io.Reader, contentType, folder string) (string, error)
	Delete(ctx context.Context, url string) error
	Close() error
}
