package main

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/drawpoker/internal/game"
)

func TestSetupLoggerLevels(t *testing.T) {
	tests := []struct {
		level string
		want  log.Level
	}{
		{"debug", log.DebugLevel},
		{"warn", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"nonsense", log.InfoLevel},
		{"", log.InfoLevel},
	}
	for _, tt := range tests {
		logger := setupLogger(&bytes.Buffer{}, tt.level)
		assert.Equal(t, tt.want, logger.GetLevel(), "level %q", tt.level)
	}
}

func TestPlayDealerAdvancesSeed(t *testing.T) {
	seed := int64(41)
	cmd := &PlayCmd{Seed: &seed}
	deal := cmd.dealer(game.DefaultRules())

	first, err := deal()
	require.NoError(t, err)
	second, err := deal()
	require.NoError(t, err)

	assert.Equal(t, int64(41), first.Seed)
	assert.Equal(t, int64(42), second.Seed)
	assert.NotEqual(t, first.ID, second.ID)

	again, err := game.NewSession("again", 41, game.DefaultRules())
	require.NoError(t, err)
	assert.Equal(t, again.Seats, first.Seats)
}
