// Package app contains application services and port definitions for the arbitrage context.
package app

import (
	"context"

	"github.com/fd1az/crossarb/business/arbitrage/domain"
	exchange "github.com/fd1az/crossarb/business/exchange/domain"
)

// Reporter receives detection and execution events. Implementations must
// return quickly; the scan loop never waits on a reporter.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// ReportOpportunity records a qualifying spread before execution.
	ReportOpportunity(opp domain.Opportunity)

	// ReportExecution records the outcome of an execution attempt.
	ReportExecution(result domain.ExecutionResult)

	// ReportSkip records a pair skipped during a scan cycle and why.
	ReportSkip(pair exchange.Pair, reason string)

	// UpdateQuote pushes a fresh venue quote for display.
	UpdateQuote(quote exchange.Quote)

	// Stop gracefully shuts down the reporter.
	Stop() error
}

// MultiReporter fans events out to several reporters.
type MultiReporter []Reporter

func (m MultiReporter) Start(ctx context.Context) error {
	for _, r := range m {
		if err := r.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiReporter) ReportOpportunity(opp domain.Opportunity) {
	for _, r := range m {
		r.ReportOpportunity(opp)
	}
}

func (m MultiReporter) ReportExecution(result domain.ExecutionResult) {
	for _, r := range m {
		r.ReportExecution(result)
	}
}

func (m MultiReporter) ReportSkip(pair exchange.Pair, reason string) {
	for _, r := range m {
		r.ReportSkip(pair, reason)
	}
}

func (m MultiReporter) UpdateQuote(quote exchange.Quote) {
	for _, r := range m {
		r.UpdateQuote(quote)
	}
}

func (m MultiReporter) Stop() error {
	var firstErr error
	for _, r := range m {
		if err := r.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
