// ABOUTME: call subcommand: dispatches one tool call through the gateway's gRPC service
// ABOUTME: Prints the tool_response content or the tool_error details

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/2389/concierge-gateway/internal/gateway"
	"github.com/2389/concierge-gateway/internal/tools"
)

// EnvToken names the environment variable holding a bearer token for call.
const EnvToken = "CONCIERGE_TOKEN"

func runCall(ctx context.Context, args []string) error {
	flags, _, err := parseFlags(args, "agent", "tool", "params", "id", "token")
	if err != nil {
		return err
	}

	agentType, err := tools.ParseAgentType(flags["agent"])
	if err != nil {
		return fmt.Errorf("--agent: %w", err)
	}
	if flags["tool"] == "" {
		return errors.New("--tool flag is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ev := tools.Event{
		Name:       flags["tool"],
		Parameters: flags["params"],
		ToolCallID: flags["id"],
	}
	if ev.ToolCallID == "" {
		ev.ToolCallID = "cli-" + uuid.New().String()
	}

	conn, err := grpc.NewClient(dialAddr(cfg.Server.GRPCAddr),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return fmt.Errorf("connecting to gateway: %w", err)
	}
	defer conn.Close()

	token := flags["token"]
	if token == "" {
		token = os.Getenv(EnvToken)
	}
	if token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	out, err := gateway.InvokeToolCall(ctx, conn, agentType, ev)
	if err != nil {
		return fmt.Errorf("tool call refused: %w", err)
	}

	gray := color.New(color.FgHiBlack)
	gray.Printf("tool_call_id: %s\n", out.ToolCallID)
	if out.IsError() {
		color.New(color.FgRed, color.Bold).Printf("%s [%s]\n", out.Error, out.Severity)
		fmt.Println(out.Content)
		return nil
	}
	color.New(color.FgGreen).Println("tool_response")
	fmt.Println(out.Content)
	return nil
}

// dialAddr replaces an unspecified listen host with localhost.
func dialAddr(listenAddr string) string {
	host, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return listenAddr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
