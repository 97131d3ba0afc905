// ABOUTME: ToolDispatch gRPC service carrying tool calls and outcomes as google.protobuf.Struct
// ABOUTME: Hand-written service descriptor plus a client helper used by the CLI

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/2389/concierge-gateway/internal/tools"
)

// ToolDispatch service and method names.
const (
	ToolDispatchServiceName  = "concierge.v1.ToolDispatch"
	HandleToolCallFullMethod = "/" + ToolDispatchServiceName + "/HandleToolCall"
)

// ToolDispatchServer is the server API for the ToolDispatch service.
type ToolDispatchServer interface {
	HandleToolCall(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

func handleToolCallHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ToolDispatchServer).HandleToolCall(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: HandleToolCallFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ToolDispatchServer).HandleToolCall(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var toolDispatchServiceDesc = grpc.ServiceDesc{
	ServiceName: ToolDispatchServiceName,
	HandlerType: (*ToolDispatchServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "HandleToolCall",
			Handler:    handleToolCallHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "concierge/v1/tool_dispatch.proto",
}

func registerToolDispatchServer(s grpc.ServiceRegistrar, srv ToolDispatchServer) {
	s.RegisterService(&toolDispatchServiceDesc, srv)
}

// toolDispatchServer implements ToolDispatchServer on top of the gateway.
type toolDispatchServer struct {
	gateway *Gateway
	logger  *slog.Logger
}

func newToolDispatchServer(gw *Gateway, logger *slog.Logger) *toolDispatchServer {
	return &toolDispatchServer{
		gateway: gw,
		logger:  logger,
	}
}

// HandleToolCall dispatches the event in req for req's agent_type.
// Refusals map to gRPC status codes; dispatched calls return the outcome.
func (s *toolDispatchServer) HandleToolCall(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	category, ev := EventFromStruct(req)

	client := "grpc"
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		client = clientKey(p.Addr.String())
	}

	out, err := s.gateway.dispatchToolCall(ctx, category, client, ev)
	if err != nil {
		return nil, status.Error(refusalCode(err), err.Error())
	}

	resp, err := OutcomeToStruct(out)
	if err != nil {
		s.logger.Error("failed to encode outcome", "tool_call_id", out.ToolCallID, "error", err)
		return nil, status.Errorf(codes.Internal, "encoding outcome: %v", err)
	}
	return resp, nil
}

// refusalCode maps a dispatch refusal to its gRPC status code.
func refusalCode(err error) codes.Code {
	switch {
	case errors.Is(err, ErrUnknownAgent), errors.Is(err, ErrMissingToolCallID):
		return codes.InvalidArgument
	case errors.Is(err, ErrDuplicateToolCall):
		return codes.AlreadyExists
	case errors.Is(err, ErrRateLimited):
		return codes.ResourceExhausted
	default:
		return codes.Internal
	}
}

// EventToStruct encodes a tool-call request for agentType.
func EventToStruct(agentType tools.AgentType, ev tools.Event) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"agent_type":        string(agentType),
		"name":              ev.Name,
		"parameters":        ev.Parameters,
		"tool_call_id":      ev.ToolCallID,
		"response_required": ev.ResponseRequired,
		"tool_type":         ev.ToolType,
	})
}

// EventFromStruct decodes a tool-call request. Missing fields decode as zero values.
func EventFromStruct(s *structpb.Struct) (agentType string, ev tools.Event) {
	f := s.GetFields()
	ev = tools.Event{
		Name:             f["name"].GetStringValue(),
		Parameters:       f["parameters"].GetStringValue(),
		ToolCallID:       f["tool_call_id"].GetStringValue(),
		ResponseRequired: f["response_required"].GetBoolValue(),
		ToolType:         f["tool_type"].GetStringValue(),
	}
	return f["agent_type"].GetStringValue(), ev
}

// OutcomeToStruct encodes an outcome with the same field names as its JSON form.
func OutcomeToStruct(out tools.Outcome) (*structpb.Struct, error) {
	fields := map[string]any{
		"type":         string(out.Kind),
		"tool_call_id": out.ToolCallID,
		"content":      out.Content,
	}
	if out.IsError() {
		fields["error"] = out.Error
		fields["level"] = string(out.Severity)
	}
	return structpb.NewStruct(fields)
}

// OutcomeFromStruct decodes an outcome. The failure Category is not carried on the wire.
func OutcomeFromStruct(s *structpb.Struct) tools.Outcome {
	f := s.GetFields()
	return tools.Outcome{
		Kind:       tools.Kind(f["type"].GetStringValue()),
		ToolCallID: f["tool_call_id"].GetStringValue(),
		Content:    f["content"].GetStringValue(),
		Error:      f["error"].GetStringValue(),
		Severity:   tools.Severity(f["level"].GetStringValue()),
	}
}

// InvokeToolCall calls ToolDispatch.HandleToolCall over conn.
func InvokeToolCall(ctx context.Context, conn grpc.ClientConnInterface, agentType tools.AgentType, ev tools.Event, opts ...grpc.CallOption) (tools.Outcome, error) {
	req, err := EventToStruct(agentType, ev)
	if err != nil {
		return tools.Outcome{}, fmt.Errorf("encoding tool call: %w", err)
	}

	resp := new(structpb.Struct)
	if err := conn.Invoke(ctx, HandleToolCallFullMethod, req, resp, opts...); err != nil {
		return tools.Outcome{}, err
	}
	return OutcomeFromStruct(resp), nil
}
