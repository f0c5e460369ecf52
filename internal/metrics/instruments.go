package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instruments holds the meters recorded by the detection and execution loops.
// When no meter provider is installed the otel API falls back to no-ops, so a
// zero-telemetry run records nothing without branching at call sites.
type Instruments struct {
	ScanCycles     metric.Int64Counter
	Opportunities  metric.Int64Counter
	Skips          metric.Int64Counter
	Executions     metric.Int64Counter
	SpreadPct      metric.Float64Histogram
	FillConfirmDur metric.Float64Histogram
}

// NewInstruments registers the application instruments on the global meter.
func NewInstruments() (*Instruments, error) {
	meter := otel.Meter("crossarb")

	scanCycles, err := meter.Int64Counter("crossarb.scan_cycles",
		metric.WithDescription("Completed market scan cycles"))
	if err != nil {
		return nil, err
	}

	opportunities, err := meter.Int64Counter("crossarb.opportunities",
		metric.WithDescription("Opportunities that cleared the spread threshold"))
	if err != nil {
		return nil, err
	}

	skips, err := meter.Int64Counter("crossarb.skips",
		metric.WithDescription("Opportunities skipped before execution, by reason"))
	if err != nil {
		return nil, err
	}

	executions, err := meter.Int64Counter("crossarb.executions",
		metric.WithDescription("Trade executions, by outcome"))
	if err != nil {
		return nil, err
	}

	spreadPct, err := meter.Float64Histogram("crossarb.spread_pct",
		metric.WithDescription("Observed cross-exchange spread in percent"))
	if err != nil {
		return nil, err
	}

	fillDur, err := meter.Float64Histogram("crossarb.fill_confirm_seconds",
		metric.WithDescription("Time to confirm both legs filled"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &Instruments{
		ScanCycles:     scanCycles,
		Opportunities:  opportunities,
		Skips:          skips,
		Executions:     executions,
		SpreadPct:      spreadPct,
		FillConfirmDur: fillDur,
	}, nil
}

// RecordSkip increments the skip counter with a reason attribute.
func (i *Instruments) RecordSkip(ctx context.Context, pair, reason string) {
	i.Skips.Add(ctx, 1,
		metric.WithAttributes(attribute.String("pair", pair), attribute.String("reason", reason)))
}

// RecordExecution increments the execution counter with an outcome attribute.
func (i *Instruments) RecordExecution(ctx context.Context, pair, status string) {
	i.Executions.Add(ctx, 1,
		metric.WithAttributes(attribute.String("pair", pair), attribute.String("status", status)))
}
