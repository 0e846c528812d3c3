package client

import (
	"context"

	"github.com/ZazenCloud/Habit-Tracker/internal/api/grpc/rpc"
	"github.com/ZazenCloud/Habit-Tracker/internal/model"
)

// Backups manages server-side snapshots of the signed-in user's habits.
type Backups struct {
	client *rpc.BackupClient
}

func NewBackups(conn *Conn) *Backups {
	return &Backups{client: rpc.NewBackupClient(conn.cc)}
}

// Create snapshots the current habits and returns the backup without its habits.
func (b *Backups) Create(ctx context.Context) (model.Backup, error) {
	resp, err := b.client.CreateBackup(ctx)
	if err != nil {
		return model.Backup{}, fromStatus(err)
	}
	return model.Backup{Key: resp.Key, CreatedAt: resp.CreatedAt}, nil
}

// List returns the keys of stored backups, oldest first.
func (b *Backups) List(ctx context.Context) ([]string, error) {
	resp, err := b.client.ListBackups(ctx)
	if err != nil {
		return nil, fromStatus(err)
	}
	return resp.Keys, nil
}

func (b *Backups) Get(ctx context.Context, key string) (model.Backup, error) {
	resp, err := b.client.GetBackup(ctx, &rpc.BackupRequest{Key: key})
	if err != nil {
		return model.Backup{}, fromStatus(err)
	}
	return model.Backup{Key: resp.Key, CreatedAt: resp.CreatedAt, Habits: rpc.HabitModels(resp.Habits)}, nil
}

func (b *Backups) Delete(ctx context.Context, key string) error {
	_, err := b.client.DeleteBackup(ctx, &rpc.BackupRequest{Key: key})
	return fromStatus(err)
}
