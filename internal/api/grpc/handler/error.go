package handler

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ZazenCloud/Habit-Tracker/internal/model"
)

// handleError maps service errors to gRPC statuses. Validation messages are
// passed through; everything unexpected becomes Internal.
func handleError(err error) error {
	if _, ok := err.(interface{ GRPCStatus() *status.Status }); ok {
		return err
	}

	switch {
	case errors.Is(err, model.ErrValidation):
		return status.Error(codes.InvalidArgument, validationMessage(err))
	case errors.Is(err, model.ErrNotFound):
		return status.Error(codes.NotFound, model.ErrNotFound.Error())
	case errors.Is(err, model.ErrEmailTaken):
		return status.Error(codes.AlreadyExists, model.ErrEmailTaken.Error())
	case errors.Is(err, model.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, model.ErrInvalidCredentials.Error())
	case errors.Is(err, model.ErrTokenRevoked),
		errors.Is(err, model.ErrTokenExpired),
		errors.Is(err, model.ErrTokenMismatch),
		errors.Is(err, model.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, "session expired, please sign in again")
	case errors.Is(err, model.ErrPermissionDenied):
		return status.Error(codes.PermissionDenied, model.ErrPermissionDenied.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}

// validationMessage strips the sentinel prefix: "validation failed: name is required" -> "name is required".
func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, model.ErrValidation.Error()+": "); i >= 0 {
		return msg[i+len(model.ErrValidation.Error())+2:]
	}
	return msg
}
