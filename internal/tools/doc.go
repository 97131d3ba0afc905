// Package tools implements tool-call dispatch for the voice concierge agents.
//
// # Overview
//
// A tool is a named capability the remote conversational agent may invoke in
// the middle of a conversation (fetch a menu, create a reservation). Each tool
// is backed by an HTTP endpoint and belongs to exactly one agent category.
//
// # Architecture
//
//   - Registry: static table of tool definitions, built once at startup
//   - Handler: one per agent category, validates and executes tool calls
//
// # Dispatch
//
// Handler.HandleToolCall runs a linear pipeline:
//
//  1. Look up the tool by name
//  2. Reject tools that belong to another agent category
//  3. Parse POST parameters as JSON
//  4. Call the backend endpoint
//  5. Normalize the result into a tool_response or tool_error Outcome
//
// HandleToolCall never returns an error. Every failure becomes a tool_error
// Outcome carrying the caller's tool_call_id.
//
// # Usage
//
//	registry, err := tools.NewRegistry(tools.DefaultDefinitions("http://localhost:8080")...)
//	handler, err := tools.NewHandler(tools.HandlerConfig{
//		AgentType: tools.AgentRestaurant,
//		Registry:  registry,
//		Logger:    logger,
//	})
//	outcome := handler.HandleToolCall(ctx, event)
package tools
