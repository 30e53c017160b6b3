package grpchealth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/patric-chuzhbe/usrlinks/internal/logger"
)

func TestUnaryLoggingInterceptor(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	saved := logger.Log
	logger.Log = zap.New(core).Sugar()
	defer func() { logger.Log = saved }()

	interceptor := UnaryLoggingInterceptor([]string{"/svc/Logged"})
	failing := func(context.Context, interface{}) (interface{}, error) {
		return nil, status.Error(codes.Unavailable, "down")
	}

	tests := []struct {
		name       string
		method     string
		ctx        context.Context
		expectLogs int
		expectedID string
	}{
		{
			name:       "caller request id",
			method:     "/svc/Logged",
			ctx:        metadata.NewIncomingContext(context.Background(), metadata.Pairs(requestIDKey, "req-42")),
			expectLogs: 1,
			expectedID: "req-42",
		},
		{
			name:       "generated request id",
			method:     "/svc/Logged",
			ctx:        context.Background(),
			expectLogs: 1,
		},
		{
			name:   "method not listed",
			method: "/svc/Quiet",
			ctx:    context.Background(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs.TakeAll()

			_, err := interceptor(tt.ctx, nil, &grpc.UnaryServerInfo{FullMethod: tt.method}, failing)
			assert.Equal(t, codes.Unavailable, status.Code(err))

			entries := logs.TakeAll()
			require.Len(t, entries, tt.expectLogs)
			if tt.expectLogs == 0 {
				return
			}

			fields := entries[0].ContextMap()
			assert.Equal(t, tt.method, fields["method"])
			assert.Equal(t, codes.Unavailable.String(), fields["code"])

			id, _ := fields["request_id"].(string)
			if tt.expectedID != "" {
				assert.Equal(t, tt.expectedID, id)
				return
			}
			_, parseErr := uuid.Parse(id)
			assert.NoError(t, parseErr)
		})
	}
}
