package ui

import (
	"time"

	"github.com/fd1az/crossarb/business/arbitrage/domain"
	exchange "github.com/fd1az/crossarb/business/exchange/domain"
)

// Message types for TUI updates

// QuoteMsg is sent when a venue reports a fresh price.
type QuoteMsg struct {
	Quote exchange.Quote
}

// OpportunityMsg is sent when a qualifying spread is detected.
type OpportunityMsg struct {
	Opportunity domain.Opportunity
}

// ExecutionMsg is sent when an execution attempt finishes.
type ExecutionMsg struct {
	Result domain.ExecutionResult
}

// SkipMsg is sent when a pair is skipped during a scan.
type SkipMsg struct {
	Pair   exchange.Pair
	Reason string
}

// ConnectionStatusMsg is sent when a venue connection changes state.
type ConnectionStatusMsg struct {
	Name      string
	Connected bool
	Latency   time.Duration
}

// LogMsg is sent to display a log line in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// ErrorMsg is sent when an error should be surfaced to the operator.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI refreshes.
type TickMsg struct{}
