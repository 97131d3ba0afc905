// ABOUTME: Interactive config file creation for concierge-gateway
// ABOUTME: Prompts for listeners, database, voice credentials and auth, then writes YAML

package main

import (
	"bufio"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/2389/concierge-gateway/internal/config"
)

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("concierge-gateway configuration setup")
	fmt.Println("=====================================")
	fmt.Println()

	defaults := config.Default()

	outputFile := prompt(reader, "Config file path", config.DefaultPath())
	if _, err := os.Stat(outputFile); err == nil {
		if !yes(prompt(reader, "File exists. Overwrite?", "no")) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	cfg := config.Default()

	fmt.Println("\n--- Server Configuration ---")
	cfg.Server.HTTPAddr = prompt(reader, "HTTP address", "localhost:8080")
	cfg.Server.GRPCAddr = prompt(reader, "gRPC address", "localhost:50051")
	cfg.Tools.BaseURL = prompt(reader, "Tool backend base URL (empty = this server)", "")

	fmt.Println("\n--- Database Configuration ---")
	cfg.Database.Path = prompt(reader, "SQLite database path", defaults.Database.Path)

	fmt.Println("\n--- Voice Provider ---")
	cfg.Voice.URL = prompt(reader, "Voice chat URL", defaults.Voice.URL)
	cfg.Voice.APIKey = prompt(reader, "API key (use ${VAR} to read from env)", "${HUME_API_KEY}")
	cfg.Voice.SecretKey = prompt(reader, "Secret key (use ${VAR} to read from env)", "${HUME_SECRET_KEY}")

	fmt.Println("\n--- Authentication ---")
	if yes(prompt(reader, "Require bearer tokens on the tool-call API?", "yes")) {
		secret, err := generateSecret()
		if err != nil {
			return err
		}
		cfg.Auth.JWTSecret = secret
	}

	fmt.Println("\n--- Logging Configuration ---")
	cfg.Logging.Level = prompt(reader, "Log level (debug/info/warn/error)", "info")
	cfg.Logging.Format = prompt(reader, "Log format (text/json)", "text")

	if err := config.WriteFile(outputFile, cfg); err != nil {
		return err
	}

	dataDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("\n  ✓ Config written to %s\n", outputFile)
	green.Printf("  ✓ Data directory: %s\n", dataDir)
	fmt.Println("\nTo start the server:")
	fmt.Println("  concierge-gateway serve")
	if cfg.Auth.Enabled() {
		fmt.Println("\nTo issue a token for the voice frontend:")
		fmt.Println("  concierge-gateway token --subject voice-frontend")
	}

	return nil
}

// generateSecret returns a random base64 JWT signing secret.
func generateSecret() (string, error) {
	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return "", fmt.Errorf("generating JWT secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(secretBytes), nil
}

func yes(answer string) bool {
	answer = strings.ToLower(answer)
	return answer == "yes" || answer == "y"
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
