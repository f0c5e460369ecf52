package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fd1az/crossarb/business/arbitrage/domain"
	exchange "github.com/fd1az/crossarb/business/exchange/domain"
)

// Store persists opportunities, executions and skips.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store on the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// SaveOpportunity inserts a detected opportunity.
func (s *Store) SaveOpportunity(ctx context.Context, opp domain.Opportunity) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO opportunities (id, pair, buy_exchange, sell_exchange, buy_price, sell_price, spread_pct, quantity, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING`,
		opp.ID, opp.Pair.String(), opp.BuyExchange, opp.SellExchange,
		opp.BuyPrice, opp.SellPrice, opp.SpreadPct, opp.Quantity, opp.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert opportunity: %w", err)
	}
	return nil
}

// SaveExecution inserts an execution result with both legs.
func (s *Store) SaveExecution(ctx context.Context, result domain.ExecutionResult) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var execID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO executions (opportunity_id, pair, direction, status, reason, realized_profit, dry_run, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		result.Opportunity.ID, result.Opportunity.Pair.String(), string(result.Opportunity.Direction),
		string(result.Status), result.Reason, result.RealizedProfit, result.DryRun, result.CompletedAt,
	).Scan(&execID)
	if err != nil {
		return fmt.Errorf("postgres: insert execution: %w", err)
	}

	for _, leg := range []*domain.OrderLeg{result.LegBuy, result.LegSell} {
		if leg == nil {
			continue
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO execution_legs (execution_id, exchange, side, quantity, price, order_id, status, error)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			execID, leg.Exchange, string(leg.Side), leg.Quantity, leg.Price,
			leg.OrderID, string(leg.Status), leg.Error,
		)
		if err != nil {
			return fmt.Errorf("postgres: insert execution leg: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// SaveSkip records a skipped pair.
func (s *Store) SaveSkip(ctx context.Context, pair exchange.Pair, reason string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO skips (pair, reason) VALUES ($1, $2)`,
		pair.String(), reason,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert skip: %w", err)
	}
	return nil
}

// SumRealizedProfit returns the total realized profit of live executions
// completed since the given time.
func (s *Store) SumRealizedProfit(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(realized_profit), 0)
		FROM executions
		WHERE completed_at >= $1 AND dry_run = FALSE AND status = 'both_filled'`,
		since,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("postgres: sum realized profit: %w", err)
	}
	return sum, nil
}
