package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/drawpoker/internal/game"
)

// Config represents the complete server configuration
type Config struct {
	Server *ServerSettings `hcl:"server,block"`
	Table  *TableSettings  `hcl:"table,block"`
	Policy *PolicySettings `hcl:"policy,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	// Prefix is prepended to every game route
	Prefix        string `hcl:"prefix,optional"`
	SessionTTL    string `hcl:"session_ttl,optional"`
	SweepInterval string `hcl:"sweep_interval,optional"`
}

// TableSettings defines the chips and bets of every hand
type TableSettings struct {
	StartingChips    int      `hcl:"starting_chips,optional"`
	OpponentChipsMin int      `hcl:"opponent_chips_min,optional"`
	OpponentChipsMax int      `hcl:"opponent_chips_max,optional"`
	OpeningBet       *int     `hcl:"opening_bet,optional"`
	SecondRoundBet   *int     `hcl:"second_round_bet,optional"`
	RaiseUnits       int      `hcl:"raise_units,optional"`
	MaxRaises        *int     `hcl:"max_raises,optional"`
	Opponents        []string `hcl:"opponents,optional"`
}

// PolicySettings tunes the computer opponents
type PolicySettings struct {
	RaiseThreshold *float64 `hcl:"raise_threshold,optional"`
	CallThreshold  *float64 `hcl:"call_threshold,optional"`
	CheapCallRatio *float64 `hcl:"cheap_call_ratio,optional"`
	CostWeight     *float64 `hcl:"cost_weight,optional"`
	Jitter         *float64 `hcl:"jitter,optional"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	rules := game.DefaultRules()
	openingBet, secondRoundBet, maxRaises := rules.OpeningBet, rules.SecondRoundBet, rules.MaxRaises
	p := rules.Policy
	return &Config{
		Server: &ServerSettings{
			Address:       "localhost",
			Port:          8080,
			LogLevel:      "info",
			Prefix:        "/api/v1",
			SessionTTL:    "30m",
			SweepInterval: "1m",
		},
		Table: &TableSettings{
			StartingChips:    rules.StartingChips,
			OpponentChipsMin: rules.OpponentChipsMin,
			OpponentChipsMax: rules.OpponentChipsMax,
			OpeningBet:       &openingBet,
			SecondRoundBet:   &secondRoundBet,
			RaiseUnits:       rules.RaiseUnits,
			MaxRaises:        &maxRaises,
			Opponents:        rules.OpponentNames[:],
		},
		Policy: &PolicySettings{
			RaiseThreshold: &p.RaiseThreshold,
			CallThreshold:  &p.CallThreshold,
			CheapCallRatio: &p.CheapCallRatio,
			CostWeight:     &p.CostWeight,
			Jitter:         &p.Jitter,
		},
	}
}

// LoadConfig loads configuration from an HCL file. A missing file yields the
// defaults; values left out of the file are filled from the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()

	if c.Server == nil {
		c.Server = def.Server
	}
	if c.Server.Address == "" {
		c.Server.Address = def.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = def.Server.LogLevel
	}
	if c.Server.Prefix == "" {
		c.Server.Prefix = def.Server.Prefix
	}
	if c.Server.SessionTTL == "" {
		c.Server.SessionTTL = def.Server.SessionTTL
	}
	if c.Server.SweepInterval == "" {
		c.Server.SweepInterval = def.Server.SweepInterval
	}

	if c.Table == nil {
		c.Table = def.Table
	}
	if c.Table.StartingChips == 0 {
		c.Table.StartingChips = def.Table.StartingChips
	}
	if c.Table.OpponentChipsMin == 0 {
		c.Table.OpponentChipsMin = def.Table.OpponentChipsMin
	}
	if c.Table.OpponentChipsMax == 0 {
		c.Table.OpponentChipsMax = def.Table.OpponentChipsMax
	}
	if c.Table.OpeningBet == nil {
		c.Table.OpeningBet = def.Table.OpeningBet
	}
	if c.Table.SecondRoundBet == nil {
		c.Table.SecondRoundBet = def.Table.SecondRoundBet
	}
	if c.Table.RaiseUnits == 0 {
		c.Table.RaiseUnits = def.Table.RaiseUnits
	}
	if c.Table.MaxRaises == nil {
		c.Table.MaxRaises = def.Table.MaxRaises
	}
	if len(c.Table.Opponents) == 0 {
		c.Table.Opponents = def.Table.Opponents
	}

	if c.Policy == nil {
		c.Policy = def.Policy
	}
	if c.Policy.RaiseThreshold == nil {
		c.Policy.RaiseThreshold = def.Policy.RaiseThreshold
	}
	if c.Policy.CallThreshold == nil {
		c.Policy.CallThreshold = def.Policy.CallThreshold
	}
	if c.Policy.CheapCallRatio == nil {
		c.Policy.CheapCallRatio = def.Policy.CheapCallRatio
	}
	if c.Policy.CostWeight == nil {
		c.Policy.CostWeight = def.Policy.CostWeight
	}
	if c.Policy.Jitter == nil {
		c.Policy.Jitter = def.Policy.Jitter
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.Prefix != "" && c.Server.Prefix[0] != '/' {
		return fmt.Errorf("prefix %q must start with /", c.Server.Prefix)
	}
	if _, err := c.SessionTTL(); err != nil {
		return err
	}
	if _, err := c.SweepInterval(); err != nil {
		return err
	}
	if len(c.Table.Opponents) != game.NumSeats-1 {
		return fmt.Errorf("table: exactly %d opponents must be named, got %d", game.NumSeats-1, len(c.Table.Opponents))
	}
	if err := c.Rules().Validate(); err != nil {
		return fmt.Errorf("table: %w", err)
	}
	return nil
}

// Rules converts the table and policy blocks into engine rules
func (c *Config) Rules() game.Rules {
	rules := game.Rules{
		StartingChips:    c.Table.StartingChips,
		OpponentChipsMin: c.Table.OpponentChipsMin,
		OpponentChipsMax: c.Table.OpponentChipsMax,
		OpeningBet:       *c.Table.OpeningBet,
		SecondRoundBet:   *c.Table.SecondRoundBet,
		RaiseUnits:       c.Table.RaiseUnits,
		MaxRaises:        *c.Table.MaxRaises,
		Policy: game.Policy{
			RaiseThreshold: *c.Policy.RaiseThreshold,
			CallThreshold:  *c.Policy.CallThreshold,
			CheapCallRatio: *c.Policy.CheapCallRatio,
			CostWeight:     *c.Policy.CostWeight,
			Jitter:         *c.Policy.Jitter,
		},
	}
	copy(rules.OpponentNames[:], c.Table.Opponents)
	return rules
}

// SessionTTL is how long an untouched session is kept
func (c *Config) SessionTTL() (time.Duration, error) {
	return parsePositiveDuration("session_ttl", c.Server.SessionTTL)
}

// SweepInterval is how often idle sessions are evicted
func (c *Config) SweepInterval() (time.Duration, error) {
	return parsePositiveDuration("sweep_interval", c.Server.SweepInterval)
}

func parsePositiveDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, value)
	}
	return d, nil
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
