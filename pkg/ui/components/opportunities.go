package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// OpportunityRow represents one detected opportunity in the list.
type OpportunityRow struct {
	Time      string
	Pair      string
	Direction string
	SpreadPct decimal.Decimal
	Quantity  decimal.Decimal
	Notional  decimal.Decimal
}

// OpportunitiesComponent renders the recent opportunities list, newest first.
type OpportunitiesComponent struct {
	rows    []OpportunityRow
	maxRows int
}

// NewOpportunitiesComponent creates an opportunities component.
func NewOpportunitiesComponent(maxRows int) *OpportunitiesComponent {
	return &OpportunitiesComponent{
		rows:    make([]OpportunityRow, 0, maxRows),
		maxRows: maxRows,
	}
}

// Add prepends a new opportunity, dropping the oldest past maxRows.
func (o *OpportunitiesComponent) Add(row OpportunityRow) {
	o.rows = append([]OpportunityRow{row}, o.rows...)
	if len(o.rows) > o.maxRows {
		o.rows = o.rows[:o.maxRows]
	}
}

// Clear removes every row.
func (o *OpportunitiesComponent) Clear() {
	o.rows = o.rows[:0]
}

// View renders the opportunities list.
func (o *OpportunitiesComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("OPPORTUNITIES"))
	sb.WriteString("\n\n")

	if len(o.rows) == 0 {
		sb.WriteString(mutedStyle.Render("  No opportunities detected yet..."))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("  %-9s %-10s %-18s %8s %10s %12s\n",
		"Time", "Pair", "Direction", "Spread", "Qty", "Notional"))
	for _, row := range o.rows {
		sb.WriteString(fmt.Sprintf("  %-9s %-10s %-18s %7s%% %10s %12s\n",
			row.Time,
			row.Pair,
			row.Direction,
			row.SpreadPct.StringFixed(3),
			row.Quantity.String(),
			"$"+row.Notional.StringFixed(2),
		))
	}

	return sb.String()
}
