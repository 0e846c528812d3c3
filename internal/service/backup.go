package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/ZazenCloud/Habit-Tracker/internal/logger"
	"github.com/ZazenCloud/Habit-Tracker/internal/model"
)

// Backup snapshots an owner's habits into object storage.
type Backup struct {
	habitStore model.HabitStore
	storage    model.Storage
	logger     *logger.Logger
	now        func() time.Time
}

func NewBackup(habitStore model.HabitStore, storage model.Storage, logger *logger.Logger) *Backup {
	return &Backup{
		habitStore: habitStore,
		storage:    storage,
		logger:     logger,
		now:        time.Now,
	}
}

type snapshot struct {
	OwnerID   uuid.UUID       `json:"ownerId"`
	CreatedAt time.Time       `json:"created"`
	Habits    []snapshotHabit `json:"habits"`
}

type snapshotHabit struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	OwnerID        uuid.UUID `json:"ownerId"`
	CreatedAt      time.Time `json:"created"`
	Streak         int       `json:"streak"`
	CompletedDates []string  `json:"completedDates"`
	Position       int       `json:"position"`
}

func backupPrefix(ownerID uuid.UUID) string {
	return fmt.Sprintf("user-%s/", ownerID)
}

// CreateBackup writes the current habits of ownerID as a new snapshot.
func (s *Backup) CreateBackup(ctx context.Context, ownerID uuid.UUID) (model.Backup, error) {
	habits, err := s.habitStore.GetByOwner(ctx, ownerID)
	if err != nil {
		return model.Backup{}, fmt.Errorf("failed to get habits by owner: %w", err)
	}

	now := s.now().UTC()
	snap := snapshot{OwnerID: ownerID, CreatedAt: now, Habits: make([]snapshotHabit, 0, len(habits))}
	for _, h := range habits {
		snap.Habits = append(snap.Habits, snapshotHabit{
			ID:             h.ID,
			Name:           h.Name,
			OwnerID:        h.OwnerID,
			CreatedAt:      h.CreatedAt,
			Streak:         h.Streak,
			CompletedDates: h.Clone().CompletedDates,
			Position:       h.Position,
		})
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return model.Backup{}, fmt.Errorf("failed to marshal backup: %w", err)
	}

	key := fmt.Sprintf("%sbackup-%d.json", backupPrefix(ownerID), now.UnixNano())
	if err := s.storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data))); err != nil {
		s.logger.Error("Backup service: failed to upload backup",
			"owner_id", ownerID,
			"key", key,
			"error", err.Error())
		return model.Backup{}, fmt.Errorf("failed to upload backup: %w", err)
	}

	s.logger.Info("Backup service: backup created",
		"owner_id", ownerID,
		"key", key,
		"habits", len(habits))

	return model.Backup{Key: key, CreatedAt: now, Habits: habits}, nil
}

// ListBackups returns the snapshot keys of ownerID, oldest first.
func (s *Backup) ListBackups(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	keys, err := s.storage.List(ctx, backupPrefix(ownerID))
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

// GetBackup reads one snapshot of ownerID.
func (s *Backup) GetBackup(ctx context.Context, ownerID uuid.UUID, key string) (model.Backup, error) {
	if err := s.checkKey(ownerID, key); err != nil {
		return model.Backup{}, err
	}

	exists, err := s.storage.Exists(ctx, key)
	if err != nil {
		return model.Backup{}, fmt.Errorf("failed to check backup: %w", err)
	}
	if !exists {
		return model.Backup{}, model.ErrNotFound
	}

	rc, err := s.storage.Download(ctx, key)
	if err != nil {
		return model.Backup{}, fmt.Errorf("failed to download backup: %w", err)
	}
	defer rc.Close()

	var snap snapshot
	if err := json.NewDecoder(rc).Decode(&snap); err != nil {
		return model.Backup{}, fmt.Errorf("failed to decode backup: %w", err)
	}

	backup := model.Backup{Key: key, CreatedAt: snap.CreatedAt, Habits: make([]model.Habit, 0, len(snap.Habits))}
	for _, h := range snap.Habits {
		backup.Habits = append(backup.Habits, model.Habit{
			ID:             h.ID,
			OwnerID:        h.OwnerID,
			Name:           h.Name,
			CreatedAt:      h.CreatedAt,
			CompletedDates: h.CompletedDates,
			Streak:         h.Streak,
			Position:       h.Position,
		}.Clone())
	}

	return backup, nil
}

// DeleteBackup removes one snapshot of ownerID.
func (s *Backup) DeleteBackup(ctx context.Context, ownerID uuid.UUID, key string) error {
	if err := s.checkKey(ownerID, key); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete backup: %w", err)
	}

	s.logger.Info("Backup service: backup deleted",
		"owner_id", ownerID,
		"key", key)

	return nil
}

func (s *Backup) checkKey(ownerID uuid.UUID, key string) error {
	if key == "" {
		return fmt.Errorf("%w: backup key is required", model.ErrValidation)
	}
	if !strings.HasPrefix(key, backupPrefix(ownerID)) || strings.Contains(key, "..") {
		s.logger.Warn("Backup service: foreign backup key rejected",
			"owner_id", ownerID,
			"key", key)
		return model.ErrPermissionDenied
	}
	return nil
}
