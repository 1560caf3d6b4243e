package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/drawpoker/internal/game"
)

// processAction handles one line of input and reports whether to continue
func (m *TUIModel) processAction(input string) bool {
	parts := strings.Fields(strings.ToLower(input))
	action, args := "", []string(nil)
	if len(parts) > 0 {
		action, args = parts[0], parts[1:]
	}
	m.logger.Debug("Processing action", "action", action, "args", args)

	var err error
	switch action {
	case "quit", "q", "exit":
		return false
	case "help", "?":
		m.handleHelp()
		return true
	case "":
		err = m.handleContinue()
	case "new", "deal", "n":
		err = m.handleNewHand()
	case "call", "c", "check", "ch":
		err = m.handleBet(game.Call, 0)
	case "fold", "f":
		err = m.handleBet(game.Fold, 0)
	case "raise", "r":
		err = m.handleRaise(args)
	case "draw", "d", "discard":
		err = m.handleDraw(args)
	case "stand", "s", "pat":
		err = m.handleDraw(nil)
	default:
		err = fmt.Errorf("unknown command: %s. Type 'help' for available commands", action)
	}

	if err != nil {
		m.AddLogEntry(ErrorStyle.Render("Error: " + describeError(err)))
	}
	m.syncLog()
	return true
}

// handleContinue deals the next hand once the current one is over
func (m *TUIModel) handleContinue() error {
	if m.session.Phase == game.PhaseFinished {
		return m.newHand()
	}
	return nil
}

func (m *TUIModel) handleNewHand() error {
	if m.session.Phase != game.PhaseFinished {
		return errors.New("finish the current hand first")
	}
	return m.newHand()
}

func (m *TUIModel) handleBet(action game.Action, amount int) error {
	return m.session.Bet(action, amount)
}

func (m *TUIModel) handleRaise(args []string) error {
	if len(args) == 0 {
		return errors.New("specify the amount to raise to: 'raise <amount>'")
	}
	amount, err := strconv.Atoi(strings.TrimPrefix(args[0], "$"))
	if err != nil {
		return fmt.Errorf("invalid amount: %s", args[0])
	}
	return m.handleBet(game.Raise, amount)
}

// handleDraw takes 1-based positions as shown on screen
func (m *TUIModel) handleDraw(args []string) error {
	discards, err := parsePositions(args)
	if err != nil {
		return err
	}
	return m.session.Draw(discards)
}

// parsePositions converts 1-based card positions to hand indices. Positions
// may be separated by spaces or commas, or run together as in "145".
func parsePositions(args []string) ([]int, error) {
	var discards []int
	for _, arg := range args {
		for _, field := range strings.Split(arg, ",") {
			if field == "" {
				continue
			}
			if _, err := strconv.Atoi(field); err != nil {
				return nil, fmt.Errorf("invalid card position: %s", field)
			}
			for _, r := range field {
				discards = append(discards, int(r-'0')-1)
			}
		}
	}
	return discards, nil
}

func (m *TUIModel) handleHelp() {
	m.AddLogEntry("Available commands:")
	m.AddLogEntry("Betting:")
	m.AddLogEntry("  call         - Call the current bet (check when nothing is owed)")
	m.AddLogEntry("  raise <amt>  - Raise the bet to <amt>")
	m.AddLogEntry("  fold         - Fold your hand")
	m.AddLogEntry("Drawing:")
	m.AddLogEntry("  draw 1 3 5   - Replace the cards at those positions")
	m.AddLogEntry("  stand        - Keep all five cards")
	m.AddLogEntry("Utility:")
	m.AddLogEntry("  new          - Deal the next hand (or press Enter)")
	m.AddLogEntry("  help         - Show this help")
	m.AddLogEntry("  quit         - Quit the game")
}

// describeError turns engine errors into short player-facing messages
func describeError(err error) string {
	switch {
	case errors.Is(err, game.ErrInvalidPhase):
		return "that is not possible right now"
	case errors.Is(err, game.ErrInsufficientChips):
		return "you don't have enough chips"
	case errors.Is(err, game.ErrInvalidIndices):
		return "choose up to five different positions between 1 and 5"
	case errors.Is(err, game.ErrInvalidAction):
		msg := err.Error()
		if _, detail, ok := strings.Cut(msg, ": "); ok {
			return detail
		}
		return msg
	default:
		return err.Error()
	}
}
