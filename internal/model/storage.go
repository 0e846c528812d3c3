package model

import (
	"context"
	"io"
	"time"
)

// Storage is an object store for habit backups.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// Backup describes a stored snapshot of one owner's habits.
type Backup struct {
	Key       string
	CreatedAt time.Time
	Habits    []Habit
}
