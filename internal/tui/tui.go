package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/drawpoker/internal/game"
	"github.com/lox/drawpoker/poker"
)

// Dealer starts a new hand
type Dealer func() (*game.Session, error)

// TUIModel is the Bubble Tea model for playing hands against the computer
type TUIModel struct {
	deal    Dealer
	session *game.Session
	logger  *log.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	gameLog []string
	// logged counts the session events already written to gameLog
	logged int
	hands  int
	// net is the chips won or lost across hands
	net         int
	reported    bool
	quitting    bool
	focusedPane int // 0 = log, 1 = input

	// Dimensions
	width       int
	height      int
	initialized bool // Track if viewport has been properly sized
}

// NewTUIModel creates a model and deals the first hand
func NewTUIModel(deal Dealer, logger *log.Logger) (*TUIModel, error) {
	// Properly sized when the first WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(focusedBorder).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	m := &TUIModel{
		deal:        deal,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		actionInput: ti,
		focusedPane: 1, // Start with input focused
	}
	if err := m.newHand(); err != nil {
		return nil, err
	}
	return m, nil
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := strings.TrimSpace(m.actionInput.Value())
				m.actionInput.SetValue("")
				if !m.processAction(input) {
					m.quitting = true
					return m, tea.Quit
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}

	// Don't render until we have valid dimensions
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)

	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(mutedBorder).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1))
	if m.focusedPane == 1 {
		actionStyle = actionStyle.BorderForeground(focusedBorder)
	}
	actionPane := actionStyle.Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 28)
	paneHeight := max(m.height-actionHeight-4, 1) // borders and action pane

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(mutedBorder).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))

	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(mutedBorder).
		Width(logWidth).
		Height(paneHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(focusedBorder)
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderSidebarPane shows the pot, the bet and every opponent
func (m *TUIModel) renderSidebarPane() string {
	state := m.session.State()
	var content strings.Builder

	content.WriteString(HeaderStyle.Render(fmt.Sprintf(" Hand #%d ", m.hands)))
	content.WriteString("\n\n")
	content.WriteString(WarningStyle.Render(fmt.Sprintf("Pot: $%d", state.Pot)))
	if state.CurrentBet > 0 {
		content.WriteString(" | ")
		content.WriteString(WarningStyle.Render(fmt.Sprintf("Bet: $%d", state.CurrentBet)))
	}
	content.WriteString("\n")
	content.WriteString(InfoStyle.Render(fmt.Sprintf("Phase: %s", phaseLabel(state))))
	content.WriteString("\n\n")

	for _, op := range state.Opponents {
		line := fmt.Sprintf("%s: $%d", op.Name, op.Chips)
		if op.Status == game.Folded {
			line = FoldedStyle.Render(line)
		} else if op.Status == game.AllIn {
			line += " " + WarningStyle.Render("all-in")
		}
		content.WriteString(line)
		content.WriteString("\n  ")
		content.WriteString(formatCardViews(op.Hand, op.CardCount))
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(InfoStyle.Render(fmt.Sprintf("Session: %+d", m.net)))
	return content.String()
}

// renderActionPane shows the human's hand, the legal actions and the input
func (m *TUIModel) renderActionPane() string {
	state := m.session.State()
	var content strings.Builder

	content.WriteString(HandInfoStyle.Render(fmt.Sprintf("Your hand: %s  Chips: $%d",
		formatCardViews(state.PlayerHand, len(state.PlayerHand)), state.PlayerChips)))
	content.WriteString("\n")
	content.WriteString(m.renderAvailableActions(state))
	content.WriteString("\n")

	m.actionInput.Placeholder = placeholderFor(state.Phase)
	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	help := "Tab to scroll log • Enter to submit • 'help' for commands • Ctrl+C to quit"
	if m.focusedPane == 0 {
		help = "Log focused: ↑↓ scroll, PgUp/PgDn half page, Tab to input"
	}
	content.WriteString(InfoStyle.Render(help))
	return content.String()
}

// renderAvailableActions lists what the human may do next
func (m *TUIModel) renderAvailableActions(state game.GameState) string {
	var actions []string

	switch state.Phase {
	case game.PhaseBetting:
		if state.CanCall {
			if state.ToCall == 0 {
				actions = append(actions, SuccessStyle.Render("[check]"))
			} else {
				actions = append(actions, SuccessStyle.Render(fmt.Sprintf("[call $%d]", state.ToCall)))
			}
		}
		if state.CanRaise {
			actions = append(actions, WarningStyle.Render(fmt.Sprintf("[raise >$%d]", state.CurrentBet)))
		}
		if state.CanFold {
			actions = append(actions, ErrorStyle.Render("[fold]"))
		}
	case game.PhaseDrawing:
		actions = append(actions, SuccessStyle.Render("[draw 1-5 ...]"), SuccessStyle.Render("[stand]"))
	case game.PhaseFinished:
		actions = append(actions, SuccessStyle.Render("[enter: next hand]"))
	}

	if len(actions) == 0 {
		actions = append(actions, ErrorStyle.Render("[no actions available]"))
	}
	return ActionsStyle.Render("Actions: " + strings.Join(actions, " "))
}

func placeholderFor(phase game.Phase) string {
	switch phase {
	case game.PhaseBetting:
		return "call, check, raise <amount>, fold"
	case game.PhaseDrawing:
		return "draw <positions>, e.g. draw 1 4 5, or stand"
	default:
		return "Enter for the next hand, 'quit' to exit"
	}
}

func phaseLabel(state game.GameState) string {
	if state.Phase == game.PhaseBetting {
		return fmt.Sprintf("betting round %d", state.BettingRound)
	}
	return string(state.Phase)
}

// formatCardViews renders cards with colours, or face down when hidden
func formatCardViews(cards []game.CardView, count int) string {
	if len(cards) == 0 {
		return HiddenCardStyle.Render(strings.TrimSpace(strings.Repeat("## ", count)))
	}

	formatted := make([]string, len(cards))
	for i, cv := range cards {
		card := poker.NewCard(cv.Rank, cv.Suit)
		style := BlackCardStyle
		if card.Suit.IsRed() {
			style = RedCardStyle
		}
		if cv.Selected {
			style = style.Inherit(DrawnCardStyle)
		}
		formatted[i] = style.Render(card.Pretty())
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

// AddLogEntry adds an entry to the game log and scrolls to it
func (m *TUIModel) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))

	// Only scroll once the viewport has been sized
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// newHand deals a fresh session
func (m *TUIModel) newHand() error {
	session, err := m.deal()
	if err != nil {
		return fmt.Errorf("dealing hand: %w", err)
	}
	m.session = session
	m.logged = 0
	m.reported = false
	m.hands++
	m.logger.Debug("Hand dealt", "hand", m.hands, "game", session.ID, "seed", session.Seed)

	if m.hands > 1 {
		m.AddLogEntry("")
	}
	m.AddLogEntry(HeaderStyle.Render(fmt.Sprintf(" Hand #%d ", m.hands)))
	state := session.State()
	m.AddLogEntry(fmt.Sprintf("Dealt to you: %s", formatCardViews(state.PlayerHand, len(state.PlayerHand))))
	m.syncLog()
	return nil
}

// syncLog appends session events not yet shown
func (m *TUIModel) syncLog() {
	events := m.session.Log[m.logged:]
	m.logged = len(m.session.Log)

	for _, e := range events {
		switch e.Type {
		case game.EventDeal:
			continue
		case game.EventRound:
			m.AddLogEntry(InfoStyle.Render("*** " + strings.ToUpper(e.Detail) + " ***"))
		case game.EventWin:
			m.AddLogEntry(SuccessStyle.Render(e.String()))
		case game.EventDraw:
			entry := e.String()
			if e.Seat == game.HumanSeat {
				state := m.session.State()
				entry = fmt.Sprintf("You draw %d: %s", e.Amount, formatCardViews(state.PlayerHand, len(state.PlayerHand)))
			}
			m.AddLogEntry(entry)
		default:
			m.AddLogEntry(e.String())
		}
	}

	if m.session.Phase == game.PhaseFinished && !m.reported {
		m.finishHand()
	}
}

// finishHand records the result of a completed hand
func (m *TUIModel) finishHand() {
	result := m.session.Payouts[game.HumanSeat] - m.session.Seats[game.HumanSeat].Contributed
	m.net += result
	m.reported = true
	m.logger.Info("Hand finished", "hand", m.hands, "winners", m.session.WinnerNames(), "result", result)

	switch {
	case result > 0:
		m.AddLogEntry(SuccessStyle.Render(fmt.Sprintf("You won $%d", result)))
	case result < 0:
		m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("You lost $%d", -result)))
	default:
		m.AddLogEntry("You broke even")
	}
	m.AddLogEntry(InfoStyle.Render("Press Enter for the next hand"))
}
