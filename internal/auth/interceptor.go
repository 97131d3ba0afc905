// ABOUTME: gRPC unary interceptor that authenticates requests with bearer JWTs
// ABOUTME: Health checks pass through unauthenticated

package auth

import (
	"context"
	"log/slog"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

const healthServicePrefix = "/grpc.health.v1.Health/"

// UnaryInterceptor returns a gRPC unary interceptor that requires an
// "authorization: Bearer <jwt>" metadata entry on every call except health checks.
func UnaryInterceptor(verifier TokenVerifier, logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "auth")

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if strings.HasPrefix(info.FullMethod, healthServicePrefix) {
			return handler(ctx, req)
		}

		subject, err := authenticate(ctx, verifier)
		if err != nil {
			attrs := []any{"reason", status.Convert(err).Message(), "method", info.FullMethod}
			if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
				attrs = append(attrs, "peer_addr", p.Addr.String())
			}
			logger.Warn("auth failure", attrs...)
			return nil, err
		}

		return handler(WithIdentity(ctx, &Identity{Subject: subject}), req)
	}
}

func authenticate(ctx context.Context, verifier TokenVerifier) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing metadata")
	}

	values := md.Get("authorization")
	if len(values) == 0 {
		return "", status.Error(codes.Unauthenticated, "missing authorization header")
	}

	token, errMsg := extractBearerToken(values[0])
	if errMsg != "" {
		return "", status.Error(codes.Unauthenticated, errMsg)
	}

	subject, err := verifier.Verify(token)
	if err != nil {
		return "", status.Error(codes.Unauthenticated, "invalid token")
	}
	return subject, nil
}
