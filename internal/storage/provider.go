// Package storage: архив PDF отчётов: локальная папка или S3-совместимый бакет.
package storage

import (
	"context"
	"errors"
	"io"
)

var ErrNotExist = errors.New("object does not exist")

// Provider: минимальный набор операций над архивом отчётов.
type Provider interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}
