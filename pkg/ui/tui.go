package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/crossarb/pkg/ui/components"
)

// ConnectionInfo holds a venue's connection state and latency.
type ConnectionInfo struct {
	Connected bool
	Latency   time.Duration
	LastSeen  time.Time
}

// ErrorEntry represents an error with its timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main Bubble Tea model for the dashboard.
type Model struct {
	quotes        *components.QuotesComponent
	opportunities *components.OpportunitiesComponent
	executions    *components.ExecutionsComponent
	spin          spinner.Model

	ready    bool
	quitting bool
	width    int
	height   int

	connectionState map[string]*ConnectionInfo
	activityFeed    []string
	errors          []ErrorEntry
	scanCount       uint64
	lastUpdate      time.Time
}

// New creates the dashboard model for the given venue names.
func New(venues []string) Model {
	connections := make(map[string]*ConnectionInfo, len(venues))
	for _, v := range venues {
		connections[v] = &ConnectionInfo{}
	}
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(ColorSuccess)
	return Model{
		quotes:          components.NewQuotesComponent(venues),
		spin:            spin,
		opportunities:   components.NewOpportunitiesComponent(20),
		executions:      components.NewExecutionsComponent(20),
		connectionState: connections,
		activityFeed:    make([]string, 0, 8),
		errors:          make([]ErrorEntry, 0, 3),
	}
}

// Init starts the refresh ticker and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.spin.Tick)
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "c":
			m.opportunities.Clear()
			return m, nil
		case "e":
			m.errors = m.errors[:0]
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case TickMsg:
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case QuoteMsg:
		m.quotes.Set(msg.Quote.Pair.String(), msg.Quote.Exchange, msg.Quote.Price)
		m.scanCount++
		m.lastUpdate = time.Now()

	case OpportunityMsg:
		opp := msg.Opportunity
		m.opportunities.Add(components.OpportunityRow{
			Time:      opp.Timestamp.Format("15:04:05"),
			Pair:      opp.Pair.String(),
			Direction: string(opp.Direction),
			SpreadPct: opp.SpreadPct,
			Quantity:  opp.Quantity,
			Notional:  opp.Notional(),
		})
		m.activityFeed = addActivity(m.activityFeed, fmt.Sprintf("%s spread %s%% (%s)",
			opp.Pair.String(), opp.SpreadPct.StringFixed(3), opp.Direction))
		m.lastUpdate = time.Now()

	case ExecutionMsg:
		result := msg.Result
		m.executions.Add(components.ExecutionRow{
			Time:      result.CompletedAt.Format("15:04:05"),
			Pair:      result.Opportunity.Pair.String(),
			Direction: string(result.Opportunity.Direction),
			Status:    string(result.Status),
			Profit:    result.RealizedProfit,
			DryRun:    result.DryRun,
		})
		if result.Exposed() {
			m.errors = addError(m.errors, "ONE-SIDED EXPOSURE on "+result.Opportunity.Pair.String()+": "+result.Reason)
		}
		m.lastUpdate = time.Now()

	case SkipMsg:
		m.activityFeed = addActivity(m.activityFeed,
			fmt.Sprintf("%s skipped: %s", msg.Pair.String(), msg.Reason))

	case ConnectionStatusMsg:
		m.connectionState[msg.Name] = &ConnectionInfo{
			Connected: msg.Connected,
			Latency:   msg.Latency,
			LastSeen:  time.Now(),
		}
		m.lastUpdate = time.Now()

	case LogMsg:
		m.activityFeed = addActivity(m.activityFeed, msg.Level+": "+msg.Message)

	case ErrorMsg:
		m.errors = addError(m.errors, msg.Error.Error())
	}

	return m, nil
}

// addActivity appends an activity line and keeps the last 6.
func addActivity(feed []string, message string) []string {
	line := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), message)
	feed = append(feed, line)
	if len(feed) > 6 {
		feed = feed[len(feed)-6:]
	}
	return feed
}

// addError appends an error entry and keeps the last 3.
func addError(errs []ErrorEntry, message string) []ErrorEntry {
	errs = append(errs, ErrorEntry{Message: message, Timestamp: time.Now()})
	if len(errs) > 3 {
		errs = errs[len(errs)-3:]
	}
	return errs
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}
	if !m.ready {
		return "\n  Starting...\n"
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(" Cross-Exchange Arbitrage "))
	b.WriteString("\n\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	leftCol := m.quotes.View() + "\n\n" + m.renderActivityFeed()
	rightCol := m.opportunities.View() + "\n\n" + m.executions.View()

	if m.width > 110 {
		left := BoxStyle.Width(m.width/2 - 2).Render(leftCol)
		right := BoxStyle.Width(m.width/2 - 2).Render(rightCol)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	} else {
		b.WriteString(BoxStyle.Width(m.width - 4).Render(leftCol))
		b.WriteString("\n")
		b.WriteString(BoxStyle.Width(m.width - 4).Render(rightCol))
	}
	b.WriteString("\n\n")

	if len(m.errors) > 0 {
		errorHeader := lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)
		b.WriteString(errorHeader.Render("ERRORS"))
		b.WriteString(MutedValue.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, err := range m.errors {
			ago := time.Since(err.Timestamp).Round(time.Second)
			b.WriteString(NegativeValue.Render("  • " + err.Message + " "))
			b.WriteString(MutedValue.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("q: quit • c: clear opportunities • e: clear errors"))

	return b.String()
}

func (m Model) renderActivityFeed() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("ACTIVITY"))
	sb.WriteString("\n\n")

	if len(m.activityFeed) == 0 {
		sb.WriteString(MutedValue.Render("  Waiting for the first scan..."))
		return sb.String()
	}
	for _, line := range m.activityFeed {
		sb.WriteString(MutedValue.Render("  " + line))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) renderStatusBar() string {
	parts := []string{m.spin.View() + "scanning"}

	for name, info := range m.connectionState {
		if info != nil && info.Connected {
			label := name
			if info.Latency > 0 {
				label = fmt.Sprintf("%s (%dms)", name, info.Latency.Milliseconds())
			}
			parts = append(parts, StatusConnected.Render("● "+label))
		} else {
			parts = append(parts, StatusDisconnected.Render("○ "+name))
		}
	}

	if m.scanCount > 0 {
		parts = append(parts, PositiveValue.Render(fmt.Sprintf("Quotes: %d", m.scanCount)))
	}
	if !m.lastUpdate.IsZero() {
		ago := time.Since(m.lastUpdate).Round(time.Second)
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Updated: %s ago", ago)))
	}

	return strings.Join(parts, "  │  ")
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// Run starts the Bubble Tea program and blocks until it exits.
func Run(venues []string) error {
	Program = tea.NewProgram(New(venues), tea.WithAltScreen())
	_, err := Program.Run()
	return err
}

// Send sends a message to the running program, dropping it when no program
// is active.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
}
