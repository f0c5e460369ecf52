package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// ExecutionRow represents one finished execution attempt.
type ExecutionRow struct {
	Time      string
	Pair      string
	Direction string
	Status    string
	Profit    decimal.Decimal
	DryRun    bool
}

// ExecutionsComponent renders the recent executions list, newest first.
type ExecutionsComponent struct {
	rows    []ExecutionRow
	maxRows int

	totalProfit decimal.Decimal
	filled      int
	exposed     int
}

// NewExecutionsComponent creates an executions component.
func NewExecutionsComponent(maxRows int) *ExecutionsComponent {
	return &ExecutionsComponent{
		rows:    make([]ExecutionRow, 0, maxRows),
		maxRows: maxRows,
	}
}

// Add prepends an execution and updates the running totals.
func (e *ExecutionsComponent) Add(row ExecutionRow) {
	e.rows = append([]ExecutionRow{row}, e.rows...)
	if len(e.rows) > e.maxRows {
		e.rows = e.rows[:e.maxRows]
	}
	switch row.Status {
	case "both_filled":
		e.filled++
		e.totalProfit = e.totalProfit.Add(row.Profit)
	case "one_leg_failed":
		e.exposed++
	}
}

// View renders the executions list with a summary line.
func (e *ExecutionsComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	badStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("EXECUTIONS"))
	sb.WriteString("  ")
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("filled: %d  exposed: %d  P&L: $%s",
		e.filled, e.exposed, e.totalProfit.StringFixed(2))))
	sb.WriteString("\n\n")

	if len(e.rows) == 0 {
		sb.WriteString(mutedStyle.Render("  No executions yet..."))
		return sb.String()
	}

	for _, row := range e.rows {
		style := okStyle
		icon := "✓"
		switch row.Status {
		case "one_leg_failed":
			style = badStyle
			icon = "✗"
		case "aborted", "rejected":
			style = mutedStyle
			icon = "○"
		}

		label := row.Status
		if row.DryRun {
			label += " (dry)"
		}
		sb.WriteString(fmt.Sprintf("  %s %-9s %-10s %-18s %-20s %s\n",
			style.Render(icon),
			row.Time,
			row.Pair,
			row.Direction,
			style.Render(label),
			"$"+row.Profit.StringFixed(2),
		))
	}

	return sb.String()
}
