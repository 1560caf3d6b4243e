package main

import (
	"os"

	"github.com/lox/drawpoker/internal/server"
)

// ServerCmd runs the HTTP API
type ServerCmd struct {
	Config   string `short:"c" default:"drawpoker.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Address to bind to (overrides config)"`
	Port     int    `short:"p" help:"Port to listen on (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}

	// Apply command line overrides
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := setupLogger(os.Stderr, cfg.Server.LogLevel)
	logger.Info("Starting draw poker server",
		"addr", cfg.GetServerAddress(),
		"prefix", cfg.Server.Prefix,
		"session_ttl", cfg.Server.SessionTTL)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return server.NewServer(cfg, logger).Run(ctx)
}
