// ABOUTME: tools and token subcommands
// ABOUTME: Lists the static tool table and issues JWTs for API callers

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/2389/concierge-gateway/internal/auth"
	"github.com/2389/concierge-gateway/internal/tools"
)

func runTools(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("usage: concierge-gateway tools [CATEGORY]")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registry, err := tools.NewRegistry(tools.DefaultDefinitions(cfg.ToolsBaseURL())...)
	if err != nil {
		return fmt.Errorf("building tool registry: %w", err)
	}

	categories := tools.AgentTypes
	if len(args) == 1 {
		agentType, err := tools.ParseAgentType(args[0])
		if err != nil {
			return err
		}
		categories = []tools.AgentType{agentType}
	}

	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	gray := color.New(color.FgHiBlack)

	for _, agentType := range categories {
		cyan.Printf("%s\n", agentType)
		defs := registry.ListForAgent(agentType)
		if len(defs) == 0 {
			gray.Println("  (no tools)")
		}
		for _, def := range defs {
			green.Printf("  %-20s", def.Name)
			fmt.Printf(" %-4s %s\n", def.Method, def.Endpoint)
			gray.Printf("  %-20s %s\n", "", def.Description)
		}
		fmt.Println()
	}
	return nil
}

func runToken(args []string) error {
	flags, _, err := parseFlags(args, "subject", "ttl")
	if err != nil {
		return err
	}
	subject := flags["subject"]
	if subject == "" {
		return errors.New("--subject flag is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Auth.Enabled() {
		return errors.New("auth.jwt_secret is not configured; tokens are not required")
	}

	ttl := cfg.Auth.TokenTTL
	if raw := flags["ttl"]; raw != "" {
		ttl, err = time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("parsing --ttl: %w", err)
		}
	}

	verifier, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return fmt.Errorf("creating JWT verifier: %w", err)
	}
	token, err := verifier.Generate(subject, ttl)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	fmt.Println(token)
	return nil
}
