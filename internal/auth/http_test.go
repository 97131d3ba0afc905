// ABOUTME: Tests for the HTTP auth middleware and gRPC interceptor
// ABOUTME: Verifies rejection of missing or bad tokens and identity propagation

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestHTTPMiddleware(t *testing.T) {
	v := newTestVerifier(t)
	valid, err := v.Generate("kiosk", time.Hour)
	require.NoError(t, err)

	var gotSubject string
	handler := HTTPMiddleware(v, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := FromContext(r.Context()); id != nil {
			gotSubject = id.Subject
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantError  string
	}{
		{"valid token", "Bearer " + valid, http.StatusNoContent, ""},
		{"missing header", "", http.StatusUnauthorized, "missing authorization header"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "invalid authorization header format"},
		{"empty token", "Bearer ", http.StatusUnauthorized, "empty token"},
		{"bad token", "Bearer nope", http.StatusUnauthorized, "invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSubject = ""
			req := httptest.NewRequest(http.MethodPost, "/api/agents/restaurant/tool-calls", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantError == "" {
				assert.Equal(t, "kiosk", gotSubject)
				return
			}
			assert.Empty(t, gotSubject)
			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}

func TestUnaryInterceptor(t *testing.T) {
	v := newTestVerifier(t)
	valid, err := v.Generate("kiosk", time.Hour)
	require.NoError(t, err)

	interceptor := UnaryInterceptor(v, nil)
	handler := func(ctx context.Context, req any) (any, error) {
		id := FromContext(ctx)
		if id == nil {
			return "anonymous", nil
		}
		return id.Subject, nil
	}
	dispatch := &grpc.UnaryServerInfo{FullMethod: "/concierge.v1.ToolDispatch/HandleToolCall"}
	health := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	t.Run("valid token", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+valid))
		resp, err := interceptor(ctx, nil, dispatch, handler)
		require.NoError(t, err)
		assert.Equal(t, "kiosk", resp)
	})

	t.Run("missing metadata", func(t *testing.T) {
		_, err := interceptor(context.Background(), nil, dispatch, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("bad token", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer nope"))
		_, err := interceptor(ctx, nil, dispatch, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("health bypass", func(t *testing.T) {
		resp, err := interceptor(context.Background(), nil, health, handler)
		require.NoError(t, err)
		assert.Equal(t, "anonymous", resp)
	})
}
