// Package auth provides optional bearer-token authentication for the
// concierge gateway's tool-call APIs.
//
// Tokens are HS256 JWTs whose "sub" claim names the caller (usually a voice
// frontend deployment). The same verifier backs the HTTP middleware and the
// gRPC unary interceptor; both attach an Identity to the request context.
//
//	v, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
//	token, err := v.Generate("kiosk-frontend", 24*time.Hour)
//	mux.Handle("/api/...", auth.HTTPMiddleware(v, logger)(handler))
package auth
