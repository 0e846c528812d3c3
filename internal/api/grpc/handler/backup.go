package handler

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ZazenCloud/Habit-Tracker/internal/api/grpc/rpc"
	"github.com/ZazenCloud/Habit-Tracker/internal/logger"
	"github.com/ZazenCloud/Habit-Tracker/internal/model"
)

// BackupService defines habit snapshot operations.
type BackupService interface {
	CreateBackup(ctx context.Context, ownerID uuid.UUID) (model.Backup, error)
	ListBackups(ctx context.Context, ownerID uuid.UUID) ([]string, error)
	GetBackup(ctx context.Context, ownerID uuid.UUID, key string) (model.Backup, error)
	DeleteBackup(ctx context.Context, ownerID uuid.UUID, key string) error
}

var _ rpc.BackupServer = (*Backup)(nil)

// Backup handles gRPC endpoints for habit snapshots.
type Backup struct {
	backupService  BackupService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewBackup(backupService BackupService, contextManager model.ContextManager, logger *logger.Logger) *Backup {
	return &Backup{
		backupService:  backupService,
		contextManager: contextManager,
		logger:         logger,
	}
}

func (h *Backup) CreateBackup(ctx context.Context, _ *rpc.Empty) (*rpc.CreateBackupResponse, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "user ID not found in context")
	}

	backup, err := h.backupService.CreateBackup(ctx, userID)
	if err != nil {
		h.logger.Error("Backup handler: create backup failed",
			"user_id", userID,
			"error", err.Error())
		return nil, handleError(err)
	}

	return &rpc.CreateBackupResponse{Key: backup.Key, CreatedAt: backup.CreatedAt, Count: len(backup.Habits)}, nil
}

func (h *Backup) ListBackups(ctx context.Context, _ *rpc.Empty) (*rpc.ListBackupsResponse, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "user ID not found in context")
	}

	keys, err := h.backupService.ListBackups(ctx, userID)
	if err != nil {
		return nil, handleError(err)
	}

	return &rpc.ListBackupsResponse{Keys: keys}, nil
}

func (h *Backup) GetBackup(ctx context.Context, req *rpc.BackupRequest) (*rpc.GetBackupResponse, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "user ID not found in context")
	}

	backup, err := h.backupService.GetBackup(ctx, userID, req.Key)
	if err != nil {
		h.logger.Error("Backup handler: get backup failed",
			"user_id", userID,
			"key", req.Key,
			"error", err.Error())
		return nil, handleError(err)
	}

	return &rpc.GetBackupResponse{Key: backup.Key, CreatedAt: backup.CreatedAt, Habits: rpc.NewHabits(backup.Habits)}, nil
}

func (h *Backup) DeleteBackup(ctx context.Context, req *rpc.BackupRequest) (*rpc.Empty, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "user ID not found in context")
	}

	if err := h.backupService.DeleteBackup(ctx, userID, req.Key); err != nil {
		return nil, handleError(err)
	}

	return &rpc.Empty{}, nil
}
