package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ZazenCloud/Habit-Tracker/internal/model"
)

// fromStatus maps a gRPC error back to the model sentinels.
func fromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", model.ErrValidation, st.Message())
	case codes.NotFound:
		return model.ErrNotFound
	case codes.AlreadyExists:
		return model.ErrEmailTaken
	case codes.Unauthenticated:
		if st.Message() == model.ErrInvalidCredentials.Error() {
			return model.ErrInvalidCredentials
		}
		return fmt.Errorf("%w: %s", model.ErrUnauthenticated, st.Message())
	case codes.PermissionDenied:
		return model.ErrPermissionDenied
	case codes.Canceled:
		return context.Canceled
	case codes.DeadlineExceeded:
		return context.DeadlineExceeded
	default:
		return fmt.Errorf("remote call failed: %w", err)
	}
}
