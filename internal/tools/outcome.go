// ABOUTME: Inbound tool-call events and the two outbound outcome shapes.
// ABOUTME: Outcomes serialize to the voice provider's tool_response / tool_error messages.

package tools

// Event is a tool call received from the voice session.
type Event struct {
	Name       string `json:"name"`
	Parameters string `json:"parameters"`
	ToolCallID string `json:"tool_call_id"`

	// Pass-through metadata, not interpreted by the dispatcher.
	ResponseRequired bool   `json:"response_required,omitempty"`
	ToolType         string `json:"tool_type,omitempty"`
}

// Kind tags which of the two outcome shapes an Outcome is.
type Kind string

const (
	KindResponse Kind = "tool_response"
	KindError    Kind = "tool_error"
)

// Severity is the level reported with a tool_error.
type Severity string

const (
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Category classifies why a tool call failed.
type Category string

const (
	CategoryNone                      Category = ""
	CategoryToolNotFound              Category = "ToolNotFound"
	CategoryToolNotAuthorizedForAgent Category = "ToolNotAuthorizedForAgent"
	CategoryMalformedParameters       Category = "MalformedParameters"
	CategoryBackendCallFailed         Category = "BackendCallFailed"
	CategoryExecutionException        Category = "ExecutionException"
)

// Short error labels carried in the tool_error "error" field.
const (
	ErrorToolNotFound     = "Tool not found"
	ErrorToolNotAvailable = "Tool not available"
	ErrorExecutionFailed  = "Execution failed"
)

// Outcome is the normalized result of a tool call.
// Kind decides which fields are meaningful: a tool_response carries only
// ToolCallID and Content, a tool_error adds Error and Severity.
type Outcome struct {
	Kind       Kind     `json:"type"`
	ToolCallID string   `json:"tool_call_id"`
	Content    string   `json:"content"`
	Error      string   `json:"error,omitempty"`
	Severity   Severity `json:"level,omitempty"`

	// Category is the failure taxonomy entry; empty for responses.
	Category Category `json:"-"`
}

// Success builds a tool_response outcome.
func Success(toolCallID, content string) Outcome {
	return Outcome{
		Kind:       KindResponse,
		ToolCallID: toolCallID,
		Content:    content,
	}
}

// Failure builds a tool_error outcome for the given category.
func Failure(toolCallID string, category Category, detail string) Outcome {
	return Outcome{
		Kind:       KindError,
		ToolCallID: toolCallID,
		Content:    detail,
		Error:      category.label(),
		Severity:   category.severity(),
		Category:   category,
	}
}

// IsError reports whether o is a tool_error.
func (o Outcome) IsError() bool {
	return o.Kind == KindError
}

func (c Category) label() string {
	switch c {
	case CategoryToolNotFound:
		return ErrorToolNotFound
	case CategoryToolNotAuthorizedForAgent:
		return ErrorToolNotAvailable
	default:
		return ErrorExecutionFailed
	}
}

// severity is warn for calls rejected before execution, error once a backend was involved.
func (c Category) severity() Severity {
	switch c {
	case CategoryToolNotFound, CategoryToolNotAuthorizedForAgent, CategoryMalformedParameters:
		return SeverityWarn
	default:
		return SeverityError
	}
}
