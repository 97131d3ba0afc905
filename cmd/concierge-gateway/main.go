// ABOUTME: Entry point for the concierge-gateway tool dispatch server
// ABOUTME: Subcommands serve the gateway, inspect tools, mint tokens, and bridge voice sessions

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/concierge-gateway/internal/config"
	"github.com/2389/concierge-gateway/internal/gateway"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
                     _                                  _
  ___ ___  _ __  ___(_) ___ _ __ __ _  ___    __ _  __ _| |_ _____      ____ _ _   _
 / __/ _ \| '_ \/ __| |/ _ \ '__/ _' |/ _ \  / _' |/ _' | __/ _ \ \ /\ / / _' | | | |
| (_| (_) | | | \__ \ |  __/ | | (_| |  __/ | (_| | (_| | ||  __/\ V  V / (_| | |_| |
 \___\___/|_| |_|___/_|\___|_|  \__, |\___|  \__, |\__,_|\__\___| \_/\_/ \__,_|\__, |
                                |___/        |___/                             |___/
`

func usage() {
	fmt.Println("Usage: concierge-gateway <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve                              Start the gateway server")
	fmt.Println("  init                               Create a new config file interactively")
	fmt.Println("  tools [CATEGORY]                   List registered tools")
	fmt.Println("  token --subject NAME [--ttl DUR]   Issue a bearer token for the tool-call API")
	fmt.Println("  call --agent CATEGORY --tool NAME  Dispatch a tool call over gRPC")
	fmt.Println("  attach --agent CATEGORY            Bridge a voice session to the tool dispatcher")
	fmt.Println("  health                             Check gateway health")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	args := os.Args[2:]
	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "tools":
		err = runTools(args)
	case "token":
		err = runToken(args)
	case "call":
		err = runCall(ctx, args)
	case "attach":
		err = runAttach(ctx, args)
	case "health":
		err = runHealth(ctx)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the config file at config.DefaultPath, falling back to defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context) error {
	configPath := config.DefaultPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := setupLogger(cfg)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("gRPC:      %s\n", cfg.Server.GRPCAddr)
	green.Print("    ▶ ")
	fmt.Printf("Tools:     %s\n", cfg.ToolsBaseURL())
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s\n", cfg.Database.Path)
	if !cfg.Auth.Enabled() {
		yellow.Println("    ! auth disabled (no auth.jwt_secret)")
	}
	fmt.Println()

	logger.Info("starting concierge-gateway",
		"config", configPath,
		"grpc_addr", cfg.Server.GRPCAddr,
		"http_addr", cfg.Server.HTTPAddr,
	)

	gw, err := gateway.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	return gw.Run(ctx)
}

func runHealth(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	url := cfg.ToolsBaseURL() + "/health/ready"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

// parseFlags reads "--name value" and "--name=value" pairs for the allowed names.
// Positional arguments are returned separately.
func parseFlags(args []string, allowed ...string) (map[string]string, []string, error) {
	known := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		known[name] = true
	}

	values := make(map[string]string)
	var positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			positional = append(positional, arg)
			continue
		}

		name, value, hasValue := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if !known[name] {
			return nil, nil, fmt.Errorf("unknown flag: %s", arg)
		}
		if !hasValue {
			if i+1 >= len(args) {
				return nil, nil, fmt.Errorf("--%s requires a value", name)
			}
			value = args[i+1]
			i++
		}
		values[name] = value
	}
	return values, positional, nil
}
