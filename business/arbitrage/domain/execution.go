package domain

import (
	"time"

	"github.com/shopspring/decimal"

	exchange "github.com/fd1az/crossarb/business/exchange/domain"
)

// LegStatus is the lifecycle state of one order leg. Terminal states are
// filled, failed and timeout.
type LegStatus string

const (
	LegPending LegStatus = "pending"
	LegFilled  LegStatus = "filled"
	LegFailed  LegStatus = "failed"
	LegTimeout LegStatus = "timeout"
)

// OrderLeg tracks one side of an execution. Status is its only mutable field.
type OrderLeg struct {
	Exchange string
	Pair     exchange.Pair
	Side     exchange.Side
	Quantity decimal.Decimal
	Price    decimal.Decimal // Average fill price once filled
	OrderID  string
	Status   LegStatus
	Error    string
}

// ExecutionStatus is the overall outcome of a two-leg execution.
type ExecutionStatus string

const (
	// StatusBothFilled: both legs confirmed filled.
	StatusBothFilled ExecutionStatus = "both_filled"

	// StatusOneLegFailed: the sell leg failed after the buy leg filled,
	// leaving one-sided exposure. Requires operator attention.
	StatusOneLegFailed ExecutionStatus = "one_leg_failed"

	// StatusAborted: the buy leg failed or timed out before any position
	// was taken. Safe to retry on a later cycle.
	StatusAborted ExecutionStatus = "aborted"

	// StatusRejected: quantity no longer cleared the venue filters at
	// submission time; nothing was sent.
	StatusRejected ExecutionStatus = "rejected"
)

// ExecutionResult is the immutable record of one execution attempt.
type ExecutionResult struct {
	Opportunity    Opportunity
	LegBuy         *OrderLeg
	LegSell        *OrderLeg
	RealizedProfit decimal.Decimal // Quote units; meaningful only when both filled
	Status         ExecutionStatus
	Reason         string // Populated for rejected/aborted outcomes
	DryRun         bool
	CompletedAt    time.Time
}

// Succeeded reports whether both legs confirmed filled.
func (r *ExecutionResult) Succeeded() bool {
	return r.Status == StatusBothFilled
}

// Exposed reports whether the attempt left an unhedged position.
func (r *ExecutionResult) Exposed() bool {
	return r.Status == StatusOneLegFailed
}
