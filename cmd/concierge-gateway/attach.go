// ABOUTME: attach subcommand: connects a voice session for one agent and answers its tool calls
// ABOUTME: Runs until interrupted or the provider closes the session

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"

	"github.com/2389/concierge-gateway/internal/agents"
	"github.com/2389/concierge-gateway/internal/dedupe"
	"github.com/2389/concierge-gateway/internal/httpc"
	"github.com/2389/concierge-gateway/internal/tools"
	"github.com/2389/concierge-gateway/internal/voice"
)

func runAttach(ctx context.Context, args []string) error {
	flags, _, err := parseFlags(args, "agent", "config-id")
	if err != nil {
		return err
	}

	agentType, err := tools.ParseAgentType(flags["agent"])
	if err != nil {
		return fmt.Errorf("--agent: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Voice.APIKey == "" {
		return errors.New("voice.api_key is not configured")
	}
	logger := setupLogger(cfg)

	configID := flags["config-id"]
	if configID == "" {
		catalog, err := agents.NewCatalog(cfg.Voice.ConfigIDs)
		if err != nil {
			return err
		}
		if configID, err = catalog.VoiceConfigID(agentType); err != nil {
			return err
		}
	}

	registry, err := tools.NewRegistry(tools.DefaultDefinitions(cfg.ToolsBaseURL())...)
	if err != nil {
		return fmt.Errorf("building tool registry: %w", err)
	}
	handler, err := tools.NewHandler(tools.HandlerConfig{
		AgentType:          agentType,
		Registry:           registry,
		Client:             httpc.NewClient(cfg.Tools.Timeout),
		Logger:             logger.With("component", "tools"),
		ValidateParameters: cfg.Tools.ValidateParameters,
	})
	if err != nil {
		return err
	}

	client := voice.NewClient(voice.ClientConfig{
		URL:          cfg.Voice.URL,
		PingInterval: cfg.Voice.PingInterval,
		Logger:       logger,
	})

	creds := voice.Credentials{APIKey: cfg.Voice.APIKey, SecretKey: cfg.Voice.SecretKey}
	if err := client.Connect(ctx, creds, configID); err != nil {
		return err
	}
	defer client.Disconnect()

	speaking := color.New(color.FgMagenta)
	bridge, err := voice.NewBridge(voice.BridgeConfig{
		Session:    client,
		Dispatcher: handler,
		Logger:     logger,
		Dedupe: dedupe.New(dedupe.Options{
			TTL:     cfg.Dedupe.TTL,
			MaxSize: cfg.Dedupe.MaxSize,
		}),
		OnSpeakingChange: func(on bool) {
			if on {
				speaking.Println("  ♪ assistant speaking")
			} else {
				speaking.Println("  ♪ assistant finished")
			}
		},
	})
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Printf("  ▶ attached %s agent (config %s), Ctrl-C to stop\n", agentType, configID)

	runErr := bridge.Run(ctx)
	_ = client.Disconnect()
	bridge.Wait()

	stats := bridge.Stats()
	logger.Info("voice session ended",
		"dispatched", stats.Dispatched,
		"duplicates", stats.Duplicates,
		"delivered", stats.Delivered,
		"discarded", stats.Discarded,
	)

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}
