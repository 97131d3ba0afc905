// ABOUTME: Tool-call audit history: append-only log of dispatched calls and outcomes
// ABOUTME: Records are listed newest first and can be filtered by agent and tool

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	defaultToolCallLimit = 100
	maxToolCallLimit     = 1000
)

// AppendToolCall inserts an audit record. ID and CreatedAt default when empty.
func (s *SQLiteStore) AppendToolCall(ctx context.Context, rec *ToolCallRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tool_calls (id, tool_call_id, agent_type, tool_name, kind, category,
		                        error, content, level, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.ToolCallID, rec.AgentType, rec.ToolName, rec.Kind, rec.Category,
		rec.Error, rec.Content, rec.Level, rec.DurationMS, formatTime(rec.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting tool call: %w", err)
	}
	return nil
}

// ListToolCalls returns audit records matching filter, newest first
func (s *SQLiteStore) ListToolCalls(ctx context.Context, filter ToolCallFilter) ([]*ToolCallRecord, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultToolCallLimit
	}
	if limit > maxToolCallLimit {
		limit = maxToolCallLimit
	}

	query := `
		SELECT id, tool_call_id, agent_type, tool_name, kind, category,
		       error, content, level, duration_ms, created_at
		FROM tool_calls
		WHERE 1=1
	`
	var args []any
	if filter.AgentType != "" {
		query += " AND agent_type = ?"
		args = append(args, filter.AgentType)
	}
	if filter.ToolName != "" {
		query += " AND tool_name = ?"
		args = append(args, filter.ToolName)
	}
	query += " ORDER BY created_at DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tool calls: %w", err)
	}
	defer rows.Close()

	records := []*ToolCallRecord{}
	for rows.Next() {
		var (
			rec       ToolCallRecord
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.ToolCallID, &rec.AgentType, &rec.ToolName, &rec.Kind,
			&rec.Category, &rec.Error, &rec.Content, &rec.Level, &rec.DurationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning tool call: %w", err)
		}
		if rec.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tool calls: %w", err)
	}
	return records, nil
}
