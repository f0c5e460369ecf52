package infra

import (
	"context"
	"time"

	"github.com/fd1az/crossarb/business/arbitrage/domain"
	"github.com/fd1az/crossarb/business/arbitrage/infra/postgres"
	exchange "github.com/fd1az/crossarb/business/exchange/domain"
	"github.com/fd1az/crossarb/internal/logger"
)

const persistTimeout = 5 * time.Second

// PostgresReporter implements Reporter by persisting events. Writes happen on
// background goroutines with their own deadline so a slow database can never
// stall a scan cycle; failed writes are logged and dropped.
type PostgresReporter struct {
	store  *postgres.Store
	logger logger.LoggerInterface
}

// NewPostgresReporter creates a PostgresReporter on the given store.
func NewPostgresReporter(store *postgres.Store, log logger.LoggerInterface) *PostgresReporter {
	return &PostgresReporter{
		store:  store,
		logger: log.With("component", "postgres_reporter"),
	}
}

// Start is a no-op; the pool is managed by the module.
func (r *PostgresReporter) Start(_ context.Context) error { return nil }

// ReportOpportunity persists the opportunity in the background.
func (r *PostgresReporter) ReportOpportunity(opp domain.Opportunity) {
	go r.persist("opportunity", func(ctx context.Context) error {
		return r.store.SaveOpportunity(ctx, opp)
	})
}

// ReportExecution persists the execution result in the background.
func (r *PostgresReporter) ReportExecution(result domain.ExecutionResult) {
	go r.persist("execution", func(ctx context.Context) error {
		return r.store.SaveExecution(ctx, result)
	})
}

// ReportSkip persists the skip in the background.
func (r *PostgresReporter) ReportSkip(pair exchange.Pair, reason string) {
	go r.persist("skip", func(ctx context.Context) error {
		return r.store.SaveSkip(ctx, pair, reason)
	})
}

// UpdateQuote is not persisted; quote volume would swamp the table.
func (r *PostgresReporter) UpdateQuote(_ exchange.Quote) {}

// Stop is a no-op; the pool is closed by the module.
func (r *PostgresReporter) Stop() error { return nil }

func (r *PostgresReporter) persist(kind string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		r.logger.Error(ctx, "persist failed", "kind", kind, "error", err)
	}
}
