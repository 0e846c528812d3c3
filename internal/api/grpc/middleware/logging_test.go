package middleware

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ZazenCloud/Habit-Tracker/internal/logger"
)

func TestLogging_Unary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		handler  grpc.UnaryHandler
		wantCode codes.Code
		wantLog  string
	}{
		{
			name: "success path",
			handler: func(ctx context.Context, req any) (any, error) {
				return "ok", nil
			},
			wantCode: codes.OK,
			wantLog:  "grpc.code=OK",
		},
		{
			name: "grpc error propagates",
			handler: func(ctx context.Context, req any) (any, error) {
				return nil, status.Error(codes.InvalidArgument, "bad input")
			},
			wantCode: codes.InvalidArgument,
			wantLog:  "grpc.code=InvalidArgument",
		},
		{
			name: "non-grpc error is logged as Unknown",
			handler: func(ctx context.Context, req any) (any, error) {
				return nil, errors.New("boom")
			},
			wantCode: codes.Unknown,
			wantLog:  "grpc.code=Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			interceptor := NewLogging(logger.NewWithWriter(-4, &buf)).Unary()

			info := &grpc.UnaryServerInfo{FullMethod: "/habits.v1.Habits/ListHabits"}
			resp, err := interceptor(context.Background(), struct{}{}, info, tt.handler)

			if tt.wantCode == codes.OK {
				assert.NoError(t, err)
				assert.Equal(t, "ok", resp)
			} else {
				assert.Equal(t, tt.wantCode, status.Code(err))
			}
			assert.Contains(t, buf.String(), "grpc.method=ListHabits")
			assert.Contains(t, buf.String(), tt.wantLog)
		})
	}
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	interceptor := Recovery(logger.NewWithWriter(0, &buf))

	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/x/y"}, func(context.Context, any) (any, error) {
		panic("kaboom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.Contains(t, buf.String(), "kaboom")
}
