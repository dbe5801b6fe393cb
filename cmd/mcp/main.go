package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panverse/rules-agent/internal/mcpadapter"
	"github.com/panverse/rules-agent/internal/setup"
	setuplog "github.com/panverse/rules-agent/internal/setup/logger"
	"github.com/rs/zerolog/log"
)

func main() {
	// Stdout carries the MCP protocol; logs are JSON on stderr.
	log.Logger = setuplog.New(os.Getenv("LOG_LEVEL"), false)
	logger := log.Logger

	// Load env
	_ = godotenv.Load()

	// Graceful shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load Config
	cfg := setup.LoadConfig()

	// Wire dependencies
	deps, err := setup.Wire(cfg, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("Unable to load dependencies")
		os.Exit(1)
	}

	// Create MCP Server
	server := createMCPServer(deps)

	// Run over stdio
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		// EOF / "server is closing" is expected when stdin closes
		if errors.Is(err, io.EOF) || strings.Contains(err.Error(), "server is closing") {
			logger.Debug().Err(err).Msg("MCP server stopped")
			return
		}
		logger.Error().Err(err).Msg("Failed to run mcp server")
		os.Exit(1)
	}
}

func createMCPServer(deps *setup.Dependencies) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "rules-agent",
			Version: "1.0.0",
		}, nil,
	)

	// Add Tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_content",
		Description: "Validate generated tabletop game content (monster, spell, item, class, race, equipment, mechanics, encounter, location, treasure, or campaign) against the rule corpus and return issues with a quality score",
	}, mcpadapter.NewValidateHandler(deps.Dispatcher))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_encounter_balance",
		Description: "Check whether a group of monsters of one challenge rating is a fair fight for a party of the given level and size",
	}, mcpadapter.NewBalanceHandler(deps.Checker))
	return server
}
