package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/lox/drawpoker/internal/game"
	"github.com/lox/drawpoker/internal/gameid"
	"github.com/lox/drawpoker/internal/randutil"
	"github.com/lox/drawpoker/internal/server"
	"github.com/lox/drawpoker/internal/tui"
)

// PlayCmd starts the terminal client
type PlayCmd struct {
	Config  string `short:"c" default:"drawpoker.hcl" help:"Path to HCL configuration file for table rules"`
	Seed    *int64 `help:"Seed for the first hand; later hands use the following seeds"`
	LogFile string `help:"Write debug logs to this file"`
}

func (c *PlayCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// The terminal belongs to the TUI, so logs go to a file or nowhere
	var out io.Writer = io.Discard
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Error("Failed to close log file", "error", err)
			}
		}()
		out = f
	}
	logger := setupLogger(out, "debug")

	model, err := tui.NewTUIModel(c.dealer(cfg.Rules()), logger)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// dealer deals each hand from the next seed
func (c *PlayCmd) dealer(rules game.Rules) tui.Dealer {
	seed := randutil.Seed()
	if c.Seed != nil {
		seed = *c.Seed
	}
	return func() (*game.Session, error) {
		s, err := game.NewSession(gameid.Generate(), seed, rules)
		seed++
		return s, err
	}
}
