// Package gateway orchestrates the concierge-gateway server components.
//
// # Overview
//
// The gateway package wires the tool registry, one tools.Handler per agent
// category, the restaurant backend, and the audit store behind an HTTP
// server and a gRPC server.
//
// # Gateway Struct
//
//	type Gateway struct {
//	    config     *config.Config
//	    store      *store.SQLiteStore
//	    registry   *tools.Registry
//	    handlers   map[tools.AgentType]*tools.Handler
//	    catalog    *agents.Catalog
//	    dedupe     *dedupe.Cache
//	    limiter    *clientLimiter
//	    grpcServer *grpc.Server
//	    httpServer *http.Server
//	    // ...
//	}
//
// # HTTP API
//
// Endpoints in api.go:
//
//   - GET /health - Liveness check
//   - GET /health/ready - Readiness check (store ping)
//   - GET /api/agents - List concierge personas
//   - GET /api/agents/{category}/tools - Tools available to a category
//   - POST /api/agents/{category}/tool-calls - Dispatch a tool call
//   - GET /api/tool-calls - Tool-call audit history
//
// The restaurant routes (/api/restaurant/...) are mounted on the same mux
// so the default tool table resolves against this process.
//
// A dispatched tool call always answers 200 with a tool_response or
// tool_error body. Non-200 statuses mean the call was never dispatched:
// bad JSON, unknown category, duplicate tool_call_id, rate limit, or auth.
//
// # gRPC Service
//
//	service ToolDispatch {
//	    rpc HandleToolCall(google.protobuf.Struct) returns (google.protobuf.Struct);
//	}
//
// The request struct carries agent_type plus the tool-call event fields; the
// response struct is the outcome. The standard grpc.health.v1 service is
// registered alongside it.
//
// # Lifecycle
//
//	gw, err := gateway.New(cfg, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	go gw.Run(ctx)
//
//	cancel() // Run shuts the servers down and closes the store
//
// # Key Files
//
//   - gateway.go: Gateway struct, initialization, Run/Shutdown
//   - api.go: HTTP handlers
//   - grpc.go: ToolDispatch gRPC service and client helper
//   - recorder.go: audit store adapter for tools.Recorder
//   - ratelimit.go: per-client rate limiting
package gateway
