package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/fd1az/crossarb/business/arbitrage/domain"
	exchangeApp "github.com/fd1az/crossarb/business/exchange/app"
	exchange "github.com/fd1az/crossarb/business/exchange/domain"
	"github.com/fd1az/crossarb/internal/cache"
	"github.com/fd1az/crossarb/internal/logger"
	"github.com/fd1az/crossarb/internal/metrics"
)

// Skip reasons recorded per pair per cycle.
const (
	SkipPriceUnavailable   = "price_unavailable"
	SkipFiltersUnavailable = "filters_unavailable"
	SkipBalanceUnavailable = "balance_unavailable"
	SkipQuantityTooLow     = "quantity_too_low"
	SkipCooldown           = "cooldown"
)

// PipelineConfig holds the scan loop configuration.
type PipelineConfig struct {
	Pairs           []exchange.Pair
	SpreadThreshold decimal.Decimal
	PollInterval    time.Duration
	Workers         int
	FilterTTL       time.Duration
}

// Pipeline runs the detection loop: fetch quotes from both venues, evaluate
// the spread, size the trade, and hand qualifying opportunities to the
// executor. Pairs are scanned concurrently but one pair's failure never
// affects another.
type Pipeline struct {
	venueA      exchangeApp.Adapter
	venueB      exchangeApp.Adapter
	sizer       domain.Sizer
	cooldown    *Cooldown
	executor    *Executor
	reporter    Reporter
	instruments *metrics.Instruments
	config      PipelineConfig
	logger      logger.LoggerInterface

	// balances is purged at the start of every cycle so each scan sees
	// post-trade balances. filters live for FilterTTL since venues change
	// them rarely.
	balances *cache.TTL[string, decimal.Decimal]
	filters  *cache.TTL[string, exchange.TradingFilter]
}

// NewPipeline creates a Pipeline scanning the two given venues.
func NewPipeline(
	venueA, venueB exchangeApp.Adapter,
	sizer domain.Sizer,
	cooldown *Cooldown,
	executor *Executor,
	reporter Reporter,
	instruments *metrics.Instruments,
	config PipelineConfig,
	log logger.LoggerInterface,
) *Pipeline {
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}
	if config.Workers <= 0 {
		config.Workers = 4
	}
	if config.FilterTTL <= 0 {
		config.FilterTTL = 10 * time.Minute
	}
	return &Pipeline{
		venueA:      venueA,
		venueB:      venueB,
		sizer:       sizer,
		cooldown:    cooldown,
		executor:    executor,
		reporter:    reporter,
		instruments: instruments,
		config:      config,
		logger:      log.With("component", "pipeline"),
		balances:    cache.NewTTL[string, decimal.Decimal](config.PollInterval),
		filters:     cache.NewTTL[string, exchange.TradingFilter](config.FilterTTL),
	}
}

// Run blocks scanning until the context is canceled. The first scan starts
// immediately.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info(ctx, "pipeline starting",
		"pairs", len(p.config.Pairs),
		"poll_interval", p.config.PollInterval.String(),
		"workers", p.config.Workers,
	)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.Scan(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info(ctx, "pipeline stopping", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			p.Scan(ctx)
		}
	}
}

// Scan runs one detection cycle over all configured pairs.
func (p *Pipeline) Scan(ctx context.Context) {
	p.balances.Purge()
	p.instruments.ScanCycles.Add(ctx, 1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Workers)
	for _, pair := range p.config.Pairs {
		g.Go(func() error {
			p.scanPair(gctx, pair)
			return nil
		})
	}
	_ = g.Wait()
}

func (p *Pipeline) scanPair(ctx context.Context, pair exchange.Pair) {
	quoteA, err := p.venueA.FetchPrice(ctx, pair)
	if err != nil {
		p.skip(ctx, pair, SkipPriceUnavailable, p.venueA.Name(), err)
		return
	}
	quoteB, err := p.venueB.FetchPrice(ctx, pair)
	if err != nil {
		p.skip(ctx, pair, SkipPriceUnavailable, p.venueB.Name(), err)
		return
	}
	p.reporter.UpdateQuote(*quoteA)
	p.reporter.UpdateQuote(*quoteB)

	opp := domain.Evaluate(pair, *quoteA, *quoteB, p.config.SpreadThreshold)
	if opp == nil {
		p.logger.Debug(ctx, "no qualifying spread",
			"pair", pair.String(),
			"price_a", quoteA.Price.String(),
			"price_b", quoteB.Price.String(),
		)
		return
	}
	p.instruments.SpreadPct.Record(ctx, opp.SpreadPct.InexactFloat64())

	qty, reason, err := p.sizeOpportunity(ctx, opp)
	if err != nil {
		p.skip(ctx, pair, reason, string(opp.Direction), err)
		return
	}
	if qty.IsZero() {
		p.skip(ctx, pair, SkipQuantityTooLow, string(opp.Direction), nil)
		return
	}

	claimed := opp.WithQuantity(qty)
	claimed.ID = uuid.NewString()
	p.instruments.Opportunities.Add(ctx, 1)
	p.reporter.ReportOpportunity(claimed)
	p.logger.Info(ctx, "opportunity detected",
		"pair", pair.String(),
		"direction", string(claimed.Direction),
		"spread_pct", claimed.SpreadPct.StringFixed(4),
		"quantity", claimed.Quantity.String(),
	)

	if !p.cooldown.TryAcquire(pair) {
		p.skip(ctx, pair, SkipCooldown, string(claimed.Direction), nil)
		return
	}

	result := p.executor.Execute(ctx, claimed)
	p.reporter.ReportExecution(result)
}

// sizeOpportunity computes the executable quantity: the smaller of what the
// buy-side quote balance and the sell-side base balance can fund, each
// truncated to its venue's filters.
func (p *Pipeline) sizeOpportunity(ctx context.Context, opp *domain.Opportunity) (decimal.Decimal, string, error) {
	buyVenue, sellVenue := p.venueA, p.venueB
	if buyVenue.Name() != opp.BuyExchange {
		buyVenue, sellVenue = p.venueB, p.venueA
	}

	buyFilter, err := p.venueFilter(ctx, buyVenue, opp.Pair)
	if err != nil {
		return decimal.Zero, SkipFiltersUnavailable, err
	}
	sellFilter, err := p.venueFilter(ctx, sellVenue, opp.Pair)
	if err != nil {
		return decimal.Zero, SkipFiltersUnavailable, err
	}

	quoteBalance, err := p.venueBalance(ctx, buyVenue, opp.Pair.Quote)
	if err != nil {
		return decimal.Zero, SkipBalanceUnavailable, err
	}
	baseBalance, err := p.venueBalance(ctx, sellVenue, opp.Pair.Base)
	if err != nil {
		return decimal.Zero, SkipBalanceUnavailable, err
	}

	buyQty := p.sizer.Size(buyFilter, quoteBalance, opp.BuyPrice, exchange.SideBuy)
	sellQty := p.sizer.Size(sellFilter, baseBalance, opp.SellPrice, exchange.SideSell)
	if buyQty.IsZero() || sellQty.IsZero() {
		return decimal.Zero, "", nil
	}
	return decimal.Min(buyQty, sellQty), "", nil
}

func (p *Pipeline) venueFilter(ctx context.Context, venue exchangeApp.Adapter, pair exchange.Pair) (exchange.TradingFilter, error) {
	key := venue.Name() + ":" + pair.Symbol()
	if f, ok := p.filters.Get(key); ok {
		return f, nil
	}
	f, err := venue.GetTradingFilters(ctx, pair)
	if err != nil {
		return exchange.TradingFilter{}, err
	}
	p.filters.Set(key, *f)
	return *f, nil
}

func (p *Pipeline) venueBalance(ctx context.Context, venue exchangeApp.Adapter, asset string) (decimal.Decimal, error) {
	key := venue.Name() + ":" + asset
	if b, ok := p.balances.Get(key); ok {
		return b, nil
	}
	b, err := venue.GetBalance(ctx, asset)
	if err != nil {
		return decimal.Zero, err
	}
	p.balances.Set(key, b)
	return b, nil
}

func (p *Pipeline) skip(ctx context.Context, pair exchange.Pair, reason, detail string, err error) {
	p.instruments.RecordSkip(ctx, pair.Symbol(), reason)
	p.reporter.ReportSkip(pair, reason)
	if err != nil {
		p.logger.Warn(ctx, "pair skipped",
			"pair", pair.String(),
			"reason", reason,
			"detail", detail,
			"error", err,
		)
		return
	}
	p.logger.Debug(ctx, "pair skipped",
		"pair", pair.String(),
		"reason", reason,
		"detail", detail,
	)
}
