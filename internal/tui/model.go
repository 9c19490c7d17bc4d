// Package tui renders a blackjack session in the terminal with Bubble Tea
package tui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/strategy"
)

// Model is the Bubble Tea model for one blackjack session
type Model struct {
	session     *game.Session
	logger      *log.Logger
	feed        *feed
	unsubscribe func()

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	gameLog     []string
	focusedPane int // 0 = log, 1 = input
	busy        bool
	lastBet     float64
	showHint    bool
	quitting    bool

	// Dimensions
	width       int
	height      int
	initialized bool
}

// actionDoneMsg reports a session action that ran off the program loop
type actionDoneMsg struct {
	command string
	ok      bool
}

// NewModel creates a model bound to the session's events
func NewModel(session *game.Session, logger *log.Logger) *Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	// Sized properly when WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "bet 50, deal, hit, stand, double, split, surrender, help"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(focusColor).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	m := &Model{
		session:     session,
		logger:      logger.WithPrefix("tui"),
		feed:        newFeed(),
		logViewport: vp,
		actionInput: ti,
		focusedPane: 1,
		lastBet:     session.Settings().MinBet,
	}
	m.unsubscribe = session.Subscribe(m.feed)
	m.AddLogEntry(HeaderStyle.Render(" Blackjack "))
	m.AddLogEntry("Type 'help' for commands. Enter repeats the obvious next step.")
	return m
}

// Close detaches the model from the session
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Run plays the session interactively until the user quits
func Run(session *game.Session, logger *log.Logger) error {
	m := NewModel(session, logger)
	defer m.Close()

	program := tea.NewProgram(m, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.feed.wait())
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case eventsMsg:
		for _, e := range msg {
			if line := describe(e); line != "" {
				m.AddLogEntry(line)
			}
		}
		return m, m.feed.wait()

	case actionDoneMsg:
		m.busy = false
		if !msg.ok {
			m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Cannot %s now", msg.command)))
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
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
				if cmd := m.submit(input); cmd != nil {
					cmds = append(cmds, cmd)
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
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
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

// submit turns a line of input into a session action
func (m *Model) submit(input string) tea.Cmd {
	parts := strings.Fields(strings.ToLower(input))
	command := ""
	var args []string
	if len(parts) > 0 {
		command, args = parts[0], parts[1:]
	}

	s := m.session
	switch command {
	case "":
		return m.next()
	case "quit", "q", "exit":
		m.quitting = true
		return tea.Sequence(tea.ClearScreen, tea.Quit)
	case "help", "?":
		m.help()
		return nil
	case "hint":
		m.showHint = !m.showHint
		return nil
	case "bet", "b":
		amount, ok := m.amount(args)
		if !ok {
			return nil
		}
		m.lastBet = amount
		return m.run("bet", func() bool { return s.PlaceBet(amount) })
	case "clear":
		return m.run("clear the bet", s.ClearBet)
	case "deal":
		return m.run("deal", s.Deal)
	case "hit", "h":
		return m.run("hit", s.Hit)
	case "stand", "s":
		return m.run("stand", s.Stand)
	case "double", "d":
		return m.run("double", s.Double)
	case "split", "p":
		return m.run("split", s.Split)
	case "surrender", "r":
		return m.run("surrender", s.Surrender)
	case "y", "yes":
		return m.run("take insurance", func() bool { return s.Insurance(true) })
	case "n", "no":
		return m.run("decline insurance", func() bool { return s.Insurance(false) })
	case "new":
		return m.run("start a new round", s.NewRound)
	case "shuffle":
		return m.run("reshuffle", s.Reshuffle)
	case "funds":
		amount, ok := m.amount(args)
		if !ok {
			return nil
		}
		return m.run("add funds", func() bool { return s.AddFunds(amount) })
	case "reset":
		return m.run("reset statistics", s.ResetStatistics)
	default:
		m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Unknown command %q, try 'help'", command)))
		return nil
	}
}

// next picks the obvious step for an empty line
func (m *Model) next() tea.Cmd {
	s := m.session
	switch s.Phase() {
	case game.PhaseGameOver:
		return m.run("start a new round", s.NewRound)
	case game.PhaseBetting:
		if s.Bet() > 0 {
			return m.run("deal", s.Deal)
		}
		bet := m.lastBet
		return m.run("bet", func() bool { return s.PlaceBet(bet) && s.Deal() })
	case game.PhaseInsurance:
		m.AddLogEntry(WarningStyle.Render("Insurance? y/n"))
	case game.PhasePlayerTurn:
		if action, ok := s.Hint(); ok {
			m.AddLogEntry(InfoStyle.Render("Basic strategy says " + action.String()))
		}
	}
	return nil
}

func (m *Model) amount(args []string) (float64, bool) {
	if len(args) != 1 {
		m.AddLogEntry(ErrorStyle.Render("Expected an amount"))
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimPrefix(args[0], "$"), 64)
	if err != nil {
		m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Invalid amount %q", args[0])))
		return 0, false
	}
	return v, true
}

// run executes fn off the program loop. Card pacing blocks inside the
// session, and events stream back through the feed meanwhile.
func (m *Model) run(command string, fn func() bool) tea.Cmd {
	if m.busy {
		m.AddLogEntry(InfoStyle.Render("Dealing, please wait"))
		return nil
	}
	m.busy = true
	return func() tea.Msg {
		return actionDoneMsg{command: command, ok: fn()}
	}
}

func (m *Model) help() {
	for _, line := range []string{
		"Commands:",
		"  bet <amount>, clear, deal",
		"  hit (h), stand (s), double (d), split (p), surrender (r)",
		"  y / n to take or decline insurance",
		"  new, shuffle, funds <amount>, reset, hint, quit",
	} {
		m.AddLogEntry(line)
	}
}

// describe renders an event as a log line. Events shown elsewhere return "".
func describe(e game.Event) string {
	switch e := e.(type) {
	case game.PhaseChangedEvent:
		switch e.To {
		case game.PhaseDealing:
			return InfoStyle.Render("--- New round ---")
		case game.PhasePlayerTurn:
			return "Your turn"
		case game.PhaseDealerTurn:
			return "Dealer plays"
		}
	case game.CardDealtEvent:
		card := formatCard(e.Card)
		switch {
		case e.Reveal:
			return "Dealer reveals " + card
		case e.Dealer:
			return "Dealer: " + card
		default:
			return fmt.Sprintf("Hand %d: %s", e.HandIndex+1, card)
		}
	case game.HandResolvedEvent:
		return resultStyle(e.Amount).Render(fmt.Sprintf("Hand %d: %s %s", e.HandIndex+1, e.Result, money(e.Amount)))
	case game.RoundResolvedEvent:
		return resultStyle(e.Net).Render(fmt.Sprintf("Round %s, net %s", e.Outcome, money(e.Net)))
	case game.InsuranceOfferedEvent:
		return WarningStyle.Render(fmt.Sprintf("Dealer shows an ace. Insurance costs $%.2f, y/n?", e.Cost))
	case game.ShoeReshuffledEvent:
		return WarningStyle.Render(fmt.Sprintf("Shoe reshuffled (%d cards)", e.Cards))
	}
	return ""
}

func resultStyle(net float64) lipgloss.Style {
	switch {
	case net > 0:
		return SuccessStyle
	case net < 0:
		return ErrorStyle
	default:
		return WarningStyle
	}
}

func money(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-$%.2f", -v)
	}
	return fmt.Sprintf("+$%.2f", v)
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	snap := m.session.Snapshot()

	// Action pane (bottom, full width)
	actionContent := m.renderActionPane(snap)
	actionHeight := lipgloss.Height(actionContent)
	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(focusColor).
		Width(max(1, m.width-2)).
		Render(actionContent)

	// Table pane (top, full width)
	tableContent := m.renderTablePane(snap)
	tableHeight := lipgloss.Height(tableContent)
	tablePane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(max(1, m.width-2)).
		Render(tableContent)

	// Sidebar and log fill the middle
	middleHeight := max(1, m.height-actionHeight-tableHeight-6)

	sidebarContent := m.renderSidebarPane(snap)
	sidebarWidth := max(25, lipgloss.Width(sidebarContent))
	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(sidebarWidth).
		Height(middleHeight).
		Render(sidebarContent)

	logWidth := max(1, m.width-sidebarWidth-4)
	m.logViewport.Width = logWidth
	m.logViewport.Height = middleHeight
	if !m.initialized && logWidth > 1 && middleHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(logWidth).
		Height(middleHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(focusColor)
	}
	logPane := logStyle.Render(m.logViewport.View())

	middle := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, tablePane, middle, actionPane)
}

// renderTablePane shows the dealer and every player hand
func (m *Model) renderTablePane(snap game.Snapshot) string {
	var content strings.Builder

	content.WriteString("Dealer: ")
	if len(snap.Dealer.Cards) > 0 {
		content.WriteString(formatCards(snap.Dealer.Cards))
		content.WriteString(fmt.Sprintf(" %d", snap.Dealer.Value))
	}
	content.WriteString("\n")

	if len(snap.Hands) == 0 {
		content.WriteString(InfoStyle.Render("No hands in play"))
		return content.String()
	}
	for i, h := range snap.Hands {
		content.WriteString("\n")
		line := fmt.Sprintf("Hand %d: %s %s  $%.2f", i+1, formatCards(h.Cards), describeHand(h), h.Bet)
		if h.Settled {
			line += "  " + resultStyle(h.Net).Render(fmt.Sprintf("%s %s", h.Result, money(h.Net)))
		}
		if snap.Phase == game.PhasePlayerTurn && i == snap.Active {
			content.WriteString(ActiveHandStyle.Render("> ") + line)
		} else {
			content.WriteString("  " + line)
		}
	}
	return content.String()
}

func describeHand(h game.HandView) string {
	label := strconv.Itoa(h.Value)
	if h.Soft {
		label = "soft " + label
	}
	var flags []string
	switch {
	case h.Blackjack:
		flags = append(flags, "blackjack")
	case h.Busted:
		flags = append(flags, "bust")
	case h.Surrendered:
		flags = append(flags, "surrendered")
	}
	if h.Doubled {
		flags = append(flags, "doubled")
	}
	if h.Split {
		flags = append(flags, "split")
	}
	if h.Insurance > 0 {
		flags = append(flags, fmt.Sprintf("insured $%.2f", h.Insurance))
	}
	if len(flags) > 0 {
		label += " (" + strings.Join(flags, ", ") + ")"
	}
	return label
}

// renderSidebarPane shows the bankroll, shoe, count and statistics
func (m *Model) renderSidebarPane(snap game.Snapshot) string {
	var content strings.Builder

	content.WriteString(WarningStyle.Render(fmt.Sprintf("Balance: $%.2f", snap.Balance)))
	content.WriteString("\n")
	if snap.Bet > 0 {
		content.WriteString(WarningStyle.Render(fmt.Sprintf("Bet: $%.2f", snap.Bet)))
		content.WriteString("\n")
	}
	content.WriteString(fmt.Sprintf("Limits: $%.0f-$%.0f\n", snap.Settings.MinBet, snap.Settings.MaxBet))
	content.WriteString(fmt.Sprintf("Shoe: %d/%d\n", snap.ShoeRemaining, snap.ShoeTotal))
	if snap.Settings.CountingEnabled {
		content.WriteString(fmt.Sprintf("Count: %+d (true %+d)\n", snap.RunningCount, snap.TrueCount))
	}

	st := snap.Stats
	content.WriteString("\n")
	content.WriteString(InfoStyle.Render("Statistics"))
	content.WriteString("\n")
	content.WriteString(fmt.Sprintf("Rounds: %d\n", st.RoundsPlayed))
	content.WriteString(fmt.Sprintf("W/L/P: %d/%d/%d\n", st.HandsWon, st.HandsLost, st.HandsPushed))
	content.WriteString(fmt.Sprintf("Win rate: %.1f%%\n", st.WinRate()))
	content.WriteString(fmt.Sprintf("Net: %s\n", money(st.NetProfit)))
	content.WriteString(fmt.Sprintf("Streak: %d (best %d)\n", st.CurrentStreak, st.LongestWinStreak))

	if m.showHint {
		content.WriteString("\n")
		content.WriteString(m.renderHint())
	}
	return content.String()
}

func (m *Model) renderHint() string {
	s := m.session
	if s.Phase() == game.PhaseInsurance {
		if s.InsuranceHint() {
			return HandInfoStyle.Render("Hint: take insurance")
		}
		return HandInfoStyle.Render("Hint: decline insurance")
	}
	action, ok := s.Hint()
	if !ok {
		return InfoStyle.Render("Hint: -")
	}
	hint := HandInfoStyle.Render("Hint: " + action.String())
	if ex, ok := s.DeviationHint(); ok {
		hint += "\n" + InfoStyle.Render(ex.Reason)
	}
	return hint
}

// renderActionPane shows legal actions and the input field
func (m *Model) renderActionPane(snap game.Snapshot) string {
	var content strings.Builder

	var actions []string
	switch snap.Phase {
	case game.PhaseBetting:
		if snap.Bet > 0 {
			actions = append(actions, SuccessStyle.Render("[deal]"), InfoStyle.Render("[clear]"))
		} else {
			actions = append(actions, SuccessStyle.Render(fmt.Sprintf("[bet %.0f]", m.lastBet)))
		}
	case game.PhaseInsurance:
		actions = append(actions, WarningStyle.Render(fmt.Sprintf("[y] insure $%.2f", snap.InsuranceCost)), InfoStyle.Render("[n] decline"))
	case game.PhasePlayerTurn:
		for _, a := range m.session.Available().Actions() {
			actions = append(actions, actionLabel(a))
		}
	case game.PhaseGameOver:
		actions = append(actions, SuccessStyle.Render("[new]"))
	default:
		actions = append(actions, InfoStyle.Render("Dealing..."))
	}
	content.WriteString(ActionsStyle.Render("Actions: ") + strings.Join(actions, " "))
	content.WriteString("\n")

	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	if m.focusedPane == 0 {
		content.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, Home/End, Tab to input"))
	} else {
		content.WriteString(InfoStyle.Render("Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	}
	return content.String()
}

func actionLabel(a strategy.Action) string {
	switch a {
	case strategy.Hit, strategy.Stand:
		return SuccessStyle.Render("[" + a.String() + "]")
	case strategy.Surrender:
		return ErrorStyle.Render("[surrender]")
	default:
		return WarningStyle.Render("[" + a.String() + "]")
	}
}

// formatCards formats cards with colors
func formatCards(cards []deck.Card) string {
	if len(cards) == 0 {
		return ""
	}
	formatted := make([]string, 0, len(cards))
	for _, card := range cards {
		formatted = append(formatted, formatCard(card))
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

func formatCard(card deck.Card) string {
	switch {
	case !card.FaceUp:
		return HiddenCardStyle.Render(card.String())
	case card.Color() == deck.Red:
		return RedCardStyle.Render(card.String())
	default:
		return BlackCardStyle.Render(card.String())
	}
}

// AddLogEntry adds an entry to the game log
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Log returns a copy of the game log
func (m *Model) Log() []string {
	out := make([]string, len(m.gameLog))
	copy(out, m.gameLog)
	return out
}
