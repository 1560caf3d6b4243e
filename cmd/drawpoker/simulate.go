package main

import (
	"os"

	"github.com/lox/drawpoker/internal/fileutil"
	"github.com/lox/drawpoker/internal/randutil"
	"github.com/lox/drawpoker/internal/server"
	"github.com/lox/drawpoker/internal/simulator"
)

// SimulateCmd plays hands with the human seat on autopilot
type SimulateCmd struct {
	Config  string `short:"c" default:"drawpoker.hcl" help:"Path to HCL configuration file for table rules"`
	Hands   int    `short:"n" default:"10000" help:"Number of hands to play"`
	Seed    *int64 `help:"Seed for the first hand (random if unset)"`
	Workers int    `short:"w" help:"Concurrent hands (defaults to GOMAXPROCS)"`
	Output  string `short:"o" help:"Also write a JSON report to this file"`
	Debug   bool   `help:"Enable debug logging"`
}

func (c *SimulateCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := "info"
	if c.Debug {
		level = "debug"
	}
	logger := setupLogger(os.Stderr, level)

	seed := randutil.Seed()
	if c.Seed != nil {
		seed = *c.Seed
	}
	logger.Info("Starting simulation", "hands", c.Hands, "seed", seed)

	ctx, cancel := signalContext(logger)
	defer cancel()

	stats, err := simulator.New(simulator.Config{
		Hands:   c.Hands,
		Seed:    seed,
		Workers: c.Workers,
		Rules:   cfg.Rules(),
		Logger:  logger,
	}).Run(ctx)
	if err != nil {
		return err
	}
	simulator.PrintSummary(os.Stdout, stats)

	if c.Output != "" {
		if err := fileutil.WriteJSON(c.Output, simulator.NewReport(seed, stats)); err != nil {
			return err
		}
		logger.Info("Report written", "path", c.Output)
	}
	return nil
}
