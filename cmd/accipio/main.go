package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/accipio/internal/app"
	"github.com/ternarybob/accipio/internal/common"
	"github.com/ternarybob/accipio/internal/server"
	"github.com/ternarybob/arbor"
)

var (
	configFile   = flag.String("config", "", "Configuration file path")
	configFileC  = flag.String("c", "", "Configuration file path (shorthand)")
	serverPort   = flag.Int("port", 0, "Server port (overrides config)")
	serverPortP  = flag.Int("p", 0, "Server port (shorthand, overrides config)")
	serverHost   = flag.String("host", "", "Server host (overrides config)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Accipio version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Merge shorthand flags (shorthand takes precedence)
	finalPort := *serverPort
	if *serverPortP != 0 {
		finalPort = *serverPortP
	}
	finalConfig := *configFile
	if *configFileC != "" {
		finalConfig = *configFileC
	}

	// Auto-discover config file if not specified
	if finalConfig == "" {
		if _, err := os.Stat("accipio.toml"); err == nil {
			finalConfig = "accipio.toml"
		}
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file -> env)
	// 2. Apply CLI overrides (highest priority)
	// 3. Initialize logger
	// 4. Print banner
	config, err := common.LoadFromFile(finalConfig)
	if err != nil {
		arbor.NewLogger().Fatal().Err(err).Str("path", finalConfig).Msg("Failed to load configuration")
		os.Exit(1)
	}
	common.ApplyFlagOverrides(config, finalPort, *serverHost)

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Str("config_file", finalConfig).
		Int("port", config.Server.Port).
		Str("host", config.Server.Host).
		Str("environment", config.Environment).
		Msg("Application configuration loaded")

	if !config.HasDefaultCredentials() {
		logger.Warn().Msg("No portal credentials configured - session recovery will fail on expired sessions")
	}

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	srv := server.New(application)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Fatal().Str("panic", fmt.Sprintf("%v", r)).Msg("Server goroutine panicked")
			}
		}()

		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	logger.Info().
		Str("url", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)).
		Msg("Server ready - Press Ctrl+C to stop")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info().Msg("Interrupt signal received")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}

	logger.Info().Msg("Server stopped")
}
