package infra

import (
	"context"

	"github.com/fd1az/crossarb/business/arbitrage/domain"
	exchange "github.com/fd1az/crossarb/business/exchange/domain"
	"github.com/fd1az/crossarb/pkg/ui"
)

// TUIReporter implements Reporter by forwarding events to the Bubble Tea
// dashboard. ui.Send is non-blocking when no program is running, so the
// reporter is safe to wire even before the TUI starts.
type TUIReporter struct{}

// NewTUIReporter creates a TUIReporter.
func NewTUIReporter() *TUIReporter {
	return &TUIReporter{}
}

// Start is a no-op; the TUI program is started by main.
func (r *TUIReporter) Start(_ context.Context) error { return nil }

// ReportOpportunity sends the opportunity to the dashboard.
func (r *TUIReporter) ReportOpportunity(opp domain.Opportunity) {
	ui.Send(ui.OpportunityMsg{Opportunity: opp})
}

// ReportExecution sends the execution outcome to the dashboard.
func (r *TUIReporter) ReportExecution(result domain.ExecutionResult) {
	ui.Send(ui.ExecutionMsg{Result: result})
}

// ReportSkip sends the skip to the dashboard activity feed.
func (r *TUIReporter) ReportSkip(pair exchange.Pair, reason string) {
	ui.Send(ui.SkipMsg{Pair: pair, Reason: reason})
}

// UpdateQuote sends a fresh venue price to the dashboard.
func (r *TUIReporter) UpdateQuote(quote exchange.Quote) {
	ui.Send(ui.QuoteMsg{Quote: quote})
}

// Stop is a no-op; the TUI program is owned by main.
func (r *TUIReporter) Stop() error { return nil }
