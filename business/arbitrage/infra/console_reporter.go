// Package infra contains infrastructure adapters for the arbitrage context.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fd1az/crossarb/business/arbitrage/domain"
	exchange "github.com/fd1az/crossarb/business/exchange/domain"
)

// ConsoleReporter implements Reporter for plain CLI output.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a ConsoleReporter writing to stdout.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{out: os.Stdout}
}

// Start prints the startup banner.
func (r *ConsoleReporter) Start(_ context.Context) error {
	fmt.Fprintln(r.out, "Cross-Exchange Arbitrage Started")
	fmt.Fprintln(r.out, "================================")
	return nil
}

// ReportOpportunity prints a detected opportunity.
func (r *ConsoleReporter) ReportOpportunity(opp domain.Opportunity) {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintln(r.out, "OPPORTUNITY DETECTED")
	fmt.Fprintf(r.out, "Timestamp:   %s\n", opp.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(r.out, "Pair:        %s\n", opp.Pair.String())
	fmt.Fprintf(r.out, "Direction:   %s\n", opp.Direction)
	fmt.Fprintf(r.out, "Buy:         %s @ %s\n", opp.BuyExchange, opp.BuyPrice.StringFixed(4))
	fmt.Fprintf(r.out, "Sell:        %s @ %s\n", opp.SellExchange, opp.SellPrice.StringFixed(4))
	fmt.Fprintf(r.out, "Spread:      %s%%\n", opp.SpreadPct.StringFixed(4))
	fmt.Fprintf(r.out, "Quantity:    %s %s\n", opp.Quantity.String(), opp.Pair.Base)
	fmt.Fprintf(r.out, "Notional:    $%s\n", opp.Notional().StringFixed(2))
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
}

// ReportExecution prints the outcome of an execution attempt.
func (r *ConsoleReporter) ReportExecution(result domain.ExecutionResult) {
	label := string(result.Status)
	if result.DryRun {
		label += " (dry run)"
	}
	fmt.Fprintf(r.out, "[%s] EXECUTION %s: %s %s",
		result.CompletedAt.Format("15:04:05"),
		label,
		result.Opportunity.Pair.String(),
		result.Opportunity.Direction,
	)
	if result.Succeeded() {
		fmt.Fprintf(r.out, " profit $%s", result.RealizedProfit.StringFixed(4))
	}
	if result.Reason != "" {
		fmt.Fprintf(r.out, " (%s)", result.Reason)
	}
	fmt.Fprintln(r.out, "")

	if result.Exposed() {
		fmt.Fprintln(r.out, "!!! ONE-SIDED EXPOSURE - MANUAL INTERVENTION REQUIRED !!!")
		if result.LegBuy != nil {
			fmt.Fprintf(r.out, "    Holding %s %s bought on %s (order %s)\n",
				result.LegBuy.Quantity.String(),
				result.Opportunity.Pair.Base,
				result.LegBuy.Exchange,
				result.LegBuy.OrderID,
			)
		}
	}
}

// ReportSkip is quiet on the console; skips are routine.
func (r *ConsoleReporter) ReportSkip(_ exchange.Pair, _ string) {}

// UpdateQuote is quiet on the console; quotes stream too fast to print.
func (r *ConsoleReporter) UpdateQuote(_ exchange.Quote) {}

// Stop prints the shutdown line.
func (r *ConsoleReporter) Stop() error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Cross-Exchange Arbitrage Stopped")
	return nil
}
