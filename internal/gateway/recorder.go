// ABOUTME: Adapts the audit store to the tools.Recorder interface
// ABOUTME: Every dispatched tool call is appended to the tool_calls table

package gateway

import (
	"context"

	"github.com/2389/concierge-gateway/internal/store"
	"github.com/2389/concierge-gateway/internal/tools"
)

// toolCallAppender is the slice of store.Store the recorder writes to.
type toolCallAppender interface {
	AppendToolCall(ctx context.Context, rec *store.ToolCallRecord) error
}

// storeRecorder persists tool-call outcomes as audit records.
type storeRecorder struct {
	store toolCallAppender
}

var _ tools.Recorder = (*storeRecorder)(nil)

func newStoreRecorder(s toolCallAppender) *storeRecorder {
	return &storeRecorder{store: s}
}

// RecordToolCall converts rec into a store.ToolCallRecord and appends it.
func (r *storeRecorder) RecordToolCall(ctx context.Context, rec tools.Record) error {
	return r.store.AppendToolCall(ctx, &store.ToolCallRecord{
		ToolCallID: rec.Event.ToolCallID,
		AgentType:  string(rec.AgentType),
		ToolName:   rec.Event.Name,
		Kind:       string(rec.Outcome.Kind),
		Category:   string(rec.Outcome.Category),
		Error:      rec.Outcome.Error,
		Content:    rec.Outcome.Content,
		Level:      string(rec.Outcome.Severity),
		DurationMS: rec.Duration.Milliseconds(),
	})
}
