package middleware

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/ZazenCloud/Habit-Tracker/internal/mocks"
	"github.com/ZazenCloud/Habit-Tracker/internal/testutil"
)

func TestAuthenticate_AuthFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		mdAuthHeader   string
		callsTokenSvc  bool
		tokenSvcUserID uuid.UUID
		tokenSvcErr    error
		wantErr        bool
	}{
		{
			name:         "missing authorization header",
			mdAuthHeader: "",
			wantErr:      true,
		},
		{
			name:         "wrong scheme",
			mdAuthHeader: "Basic abc",
			wantErr:      true,
		},
		{
			name:          "invalid token",
			mdAuthHeader:  "Bearer invalid",
			callsTokenSvc: true,
			tokenSvcErr:   assert.AnError,
			wantErr:       true,
		},
		{
			name:           "nil user id from token",
			mdAuthHeader:   "Bearer token",
			callsTokenSvc:  true,
			tokenSvcUserID: uuid.Nil,
			wantErr:        true,
		},
		{
			name:           "valid token",
			mdAuthHeader:   "Bearer token",
			callsTokenSvc:  true,
			tokenSvcUserID: uuid.New(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cm := mocks.NewContextManager(t)
			if !tt.wantErr {
				cm.On("SetUserIDToContext", mock.Anything, tt.tokenSvcUserID).Return(context.Background()).Once()
			}

			svc := mocks.NewTokenService(t)
			if tt.callsTokenSvc {
				svc.On("GetUserID", mock.Anything, mock.AnythingOfType("string")).Return(tt.tokenSvcUserID, tt.tokenSvcErr).Once()
			}
			m := NewAuthenticate(svc, cm, testutil.MakeNoopLogger())

			ctx := context.Background()
			if tt.mdAuthHeader != "" {
				ctx = metadata.NewIncomingContext(ctx, metadata.Pairs("authorization", tt.mdAuthHeader))
			}

			newCtx, err := m.AuthFunc(ctx)

			if tt.wantErr {
				st, ok := status.FromError(err)
				assert.True(t, ok)
				assert.Equal(t, codes.Unauthenticated, st.Code())
				assert.Nil(t, newCtx)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, newCtx)
		})
	}
}
