// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// QuoteRow holds the latest price from each venue for one pair.
type QuoteRow struct {
	Pair   string
	Prices map[string]decimal.Decimal // venue -> last price
}

// QuotesComponent renders a per-pair price comparison table.
type QuotesComponent struct {
	venues []string
	rows   map[string]*QuoteRow
}

// NewQuotesComponent creates a quotes component for the given venues.
func NewQuotesComponent(venues []string) *QuotesComponent {
	return &QuotesComponent{
		venues: venues,
		rows:   make(map[string]*QuoteRow),
	}
}

// Set records the latest price for a pair on a venue.
func (q *QuotesComponent) Set(pair, venue string, price decimal.Decimal) {
	row, ok := q.rows[pair]
	if !ok {
		row = &QuoteRow{Pair: pair, Prices: make(map[string]decimal.Decimal)}
		q.rows[pair] = row
	}
	row.Prices[venue] = price
}

// View renders the quotes table.
func (q *QuotesComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	spreadStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("MARKET PRICES"))
	sb.WriteString("\n\n")

	if len(q.rows) == 0 {
		sb.WriteString(mutedStyle.Render("  Waiting for quotes..."))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("  %-10s", "Pair"))
	for _, venue := range q.venues {
		sb.WriteString(fmt.Sprintf(" %12s", venue))
	}
	sb.WriteString(fmt.Sprintf(" %10s\n", "Spread"))

	pairs := make([]string, 0, len(q.rows))
	for pair := range q.rows {
		pairs = append(pairs, pair)
	}
	sort.Strings(pairs)

	for _, pair := range pairs {
		row := q.rows[pair]
		sb.WriteString(fmt.Sprintf("  %-10s", row.Pair))
		for _, venue := range q.venues {
			if price, ok := row.Prices[venue]; ok {
				sb.WriteString(fmt.Sprintf(" %12s", price.StringFixed(4)))
			} else {
				sb.WriteString(fmt.Sprintf(" %12s", "-"))
			}
		}
		sb.WriteString(" " + spreadStyle.Render(fmt.Sprintf("%10s", q.spread(row))))
		sb.WriteString("\n")
	}

	return sb.String()
}

// spread returns the relative spread between the two venue prices in percent.
func (q *QuotesComponent) spread(row *QuoteRow) string {
	if len(q.venues) != 2 {
		return "-"
	}
	a, okA := row.Prices[q.venues[0]]
	b, okB := row.Prices[q.venues[1]]
	if !okA || !okB || !a.IsPositive() || !b.IsPositive() {
		return "-"
	}
	low, high := a, b
	if low.GreaterThan(high) {
		low, high = high, low
	}
	pct := high.Sub(low).Div(low).Mul(decimal.NewFromInt(100))
	return pct.StringFixed(3) + "%"
}
