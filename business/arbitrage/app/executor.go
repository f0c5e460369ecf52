package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/crossarb/business/arbitrage/domain"
	exchangeApp "github.com/fd1az/crossarb/business/exchange/app"
	exchange "github.com/fd1az/crossarb/business/exchange/domain"
	"github.com/fd1az/crossarb/internal/logger"
	"github.com/fd1az/crossarb/internal/metrics"
	"github.com/fd1az/crossarb/internal/notify"
)

// ExecutorConfig holds execution tuning knobs.
type ExecutorConfig struct {
	FillPollAttempts int
	FillPollInterval time.Duration
	DryRun           bool
}

// Executor places the two legs of an arbitrage trade. The buy leg always goes
// first; the sell leg is never submitted until the buy leg is confirmed
// filled, so the worst case is holding inventory, never a naked short.
type Executor struct {
	registry    *exchangeApp.Registry
	notifier    *notify.Notifier
	instruments *metrics.Instruments
	config      ExecutorConfig
	logger      logger.LoggerInterface
	now         func() time.Time
}

// NewExecutor creates an Executor.
func NewExecutor(
	registry *exchangeApp.Registry,
	notifier *notify.Notifier,
	instruments *metrics.Instruments,
	config ExecutorConfig,
	log logger.LoggerInterface,
) *Executor {
	if config.FillPollAttempts <= 0 {
		config.FillPollAttempts = 6
	}
	if config.FillPollInterval <= 0 {
		config.FillPollInterval = 500 * time.Millisecond
	}
	return &Executor{
		registry:    registry,
		notifier:    notifier,
		instruments: instruments,
		config:      config,
		logger:      log.With("component", "executor"),
		now:         time.Now,
	}
}

// Execute runs the full two-leg state machine for a claimed opportunity and
// returns the outcome. It never returns an error: every failure mode is a
// terminal ExecutionStatus.
func (e *Executor) Execute(ctx context.Context, opp domain.Opportunity) domain.ExecutionResult {
	legBuy := &domain.OrderLeg{
		Exchange: opp.BuyExchange,
		Pair:     opp.Pair,
		Side:     exchange.SideBuy,
		Quantity: opp.Quantity,
		Status:   domain.LegPending,
	}
	legSell := &domain.OrderLeg{
		Exchange: opp.SellExchange,
		Pair:     opp.Pair,
		Side:     exchange.SideSell,
		Quantity: opp.Quantity,
		Status:   domain.LegPending,
	}

	buyVenue, err := e.registry.Get(opp.BuyExchange)
	if err != nil {
		return e.finish(ctx, opp, legBuy, legSell, domain.StatusRejected, err.Error())
	}
	sellVenue, err := e.registry.Get(opp.SellExchange)
	if err != nil {
		return e.finish(ctx, opp, legBuy, legSell, domain.StatusRejected, err.Error())
	}

	// Filters may have shifted since sizing; re-validate right before money moves.
	if reason := e.revalidate(ctx, buyVenue, sellVenue, opp); reason != "" {
		return e.finish(ctx, opp, legBuy, legSell, domain.StatusRejected, reason)
	}

	if e.config.DryRun {
		return e.simulate(ctx, opp, legBuy, legSell)
	}

	// Leg 1: buy on the cheaper venue.
	buyOrder, err := buyVenue.SubmitOrder(ctx, exchange.OrderRequest{
		Pair:     opp.Pair,
		Side:     exchange.SideBuy,
		Quantity: opp.Quantity,
	})
	if err != nil {
		legBuy.Status = domain.LegFailed
		legBuy.Error = err.Error()
		return e.finish(ctx, opp, legBuy, legSell, domain.StatusAborted, "buy leg submission failed")
	}
	legBuy.OrderID = buyOrder.ID

	buyFill, legStatus, err := e.confirmFill(ctx, buyVenue, opp.Pair, buyOrder)
	if err != nil {
		legBuy.Status = legStatus
		legBuy.Error = err.Error()
		return e.finish(ctx, opp, legBuy, legSell, domain.StatusAborted, "buy leg not confirmed")
	}
	legBuy.Status = domain.LegFilled
	legBuy.Quantity = buyFill.FilledQty
	legBuy.Price = buyFill.AvgPrice

	// Leg 2: sell exactly what the buy leg filled.
	sellOrder, err := sellVenue.SubmitOrder(ctx, exchange.OrderRequest{
		Pair:     opp.Pair,
		Side:     exchange.SideSell,
		Quantity: buyFill.FilledQty,
	})
	if err != nil {
		legSell.Status = domain.LegFailed
		legSell.Error = err.Error()
		return e.exposed(ctx, opp, legBuy, legSell, "sell leg submission failed")
	}
	legSell.OrderID = sellOrder.ID
	legSell.Quantity = buyFill.FilledQty

	sellFill, legStatus, err := e.confirmFill(ctx, sellVenue, opp.Pair, sellOrder)
	if err != nil {
		legSell.Status = legStatus
		legSell.Error = err.Error()
		return e.exposed(ctx, opp, legBuy, legSell, "sell leg not confirmed")
	}
	legSell.Status = domain.LegFilled
	legSell.Quantity = sellFill.FilledQty
	legSell.Price = sellFill.AvgPrice

	matched := decimal.Min(buyFill.FilledQty, sellFill.FilledQty)
	profit := sellFill.AvgPrice.Sub(buyFill.AvgPrice).Mul(matched)

	result := e.finish(ctx, opp, legBuy, legSell, domain.StatusBothFilled, "")
	result.RealizedProfit = profit
	e.logger.Info(ctx, "execution complete",
		"pair", opp.Pair.String(),
		"direction", string(opp.Direction),
		"matched_qty", matched.String(),
		"realized_profit", profit.String(),
	)
	return result
}

// confirmFill polls the venue until the order reaches a terminal state or the
// attempt budget runs out. Partial fills that never complete count as timeout.
func (e *Executor) confirmFill(
	ctx context.Context,
	venue exchangeApp.Adapter,
	pair exchange.Pair,
	order *exchange.Order,
) (*exchange.Order, domain.LegStatus, error) {
	start := e.now()
	if order.IsFilled() {
		return order, domain.LegFilled, nil
	}

	var last *exchange.Order
	for attempt := 1; attempt <= e.config.FillPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, domain.LegTimeout, ctx.Err()
		case <-time.After(e.config.FillPollInterval):
		}

		polled, err := venue.PollOrder(ctx, pair, order.ID)
		if err != nil {
			e.logger.Warn(ctx, "fill poll failed",
				"exchange", venue.Name(),
				"order_id", order.ID,
				"attempt", attempt,
				"error", err,
			)
			continue
		}
		last = polled

		if polled.IsFilled() {
			e.instruments.FillConfirmDur.Record(ctx, e.now().Sub(start).Seconds())
			return polled, domain.LegFilled, nil
		}
		if polled.Status.IsTerminal() {
			return nil, domain.LegFailed, fmt.Errorf("order %s ended %s", order.ID, polled.Status)
		}
	}

	status := "unknown"
	if last != nil {
		status = string(last.Status)
	}
	return nil, domain.LegTimeout, fmt.Errorf("order %s not filled after %d polls, last status %s",
		order.ID, e.config.FillPollAttempts, status)
}

func (e *Executor) revalidate(ctx context.Context, buyVenue, sellVenue exchangeApp.Adapter, opp domain.Opportunity) string {
	buyFilter, err := buyVenue.GetTradingFilters(ctx, opp.Pair)
	if err != nil {
		return fmt.Sprintf("%s filters unavailable: %v", buyVenue.Name(), err)
	}
	if !buyFilter.Validate(opp.Quantity, opp.BuyPrice) {
		return fmt.Sprintf("quantity %s violates %s filters", opp.Quantity, buyVenue.Name())
	}

	sellFilter, err := sellVenue.GetTradingFilters(ctx, opp.Pair)
	if err != nil {
		return fmt.Sprintf("%s filters unavailable: %v", sellVenue.Name(), err)
	}
	if !sellFilter.Validate(opp.Quantity, opp.SellPrice) {
		return fmt.Sprintf("quantity %s violates %s filters", opp.Quantity, sellVenue.Name())
	}
	return ""
}

// simulate fills both legs at the observed prices without touching a venue.
func (e *Executor) simulate(ctx context.Context, opp domain.Opportunity, legBuy, legSell *domain.OrderLeg) domain.ExecutionResult {
	legBuy.Status = domain.LegFilled
	legBuy.Price = opp.BuyPrice
	legBuy.OrderID = "dry-run"
	legSell.Status = domain.LegFilled
	legSell.Price = opp.SellPrice
	legSell.OrderID = "dry-run"

	result := e.finish(ctx, opp, legBuy, legSell, domain.StatusBothFilled, "")
	result.DryRun = true
	result.RealizedProfit = opp.SellPrice.Sub(opp.BuyPrice).Mul(opp.Quantity)
	e.logger.Info(ctx, "dry run execution",
		"pair", opp.Pair.String(),
		"direction", string(opp.Direction),
		"quantity", opp.Quantity.String(),
		"simulated_profit", result.RealizedProfit.String(),
	)
	return result
}

// exposed builds a one-sided exposure result and alerts through every
// configured channel, bypassing the event filter.
func (e *Executor) exposed(ctx context.Context, opp domain.Opportunity, legBuy, legSell *domain.OrderLeg, reason string) domain.ExecutionResult {
	e.logger.Error(ctx, "one-sided exposure",
		"pair", opp.Pair.String(),
		"buy_exchange", opp.BuyExchange,
		"buy_order_id", legBuy.OrderID,
		"held_qty", legBuy.Quantity.String(),
		"reason", reason,
	)
	_ = e.notifier.NotifyAll(ctx, "One-sided exposure",
		fmt.Sprintf("Bought %s %s on %s but the sell leg on %s failed: %s. Manual intervention required.",
			legBuy.Quantity, opp.Pair.Base, opp.BuyExchange, opp.SellExchange, reason),
	)
	return e.finish(ctx, opp, legBuy, legSell, domain.StatusOneLegFailed, reason)
}

func (e *Executor) finish(
	ctx context.Context,
	opp domain.Opportunity,
	legBuy, legSell *domain.OrderLeg,
	status domain.ExecutionStatus,
	reason string,
) domain.ExecutionResult {
	e.instruments.RecordExecution(ctx, opp.Pair.Symbol(), string(status))
	return domain.ExecutionResult{
		Opportunity: opp,
		LegBuy:      legBuy,
		LegSell:     legSell,
		Status:      status,
		Reason:      reason,
		CompletedAt: e.now(),
	}
}
