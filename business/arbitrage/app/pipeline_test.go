package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fd1az/crossarb/business/arbitrage/domain"
	exchange "github.com/fd1az/crossarb/business/exchange/domain"
)

// fakeReporter records pipeline events for assertions.
type fakeReporter struct {
	mu            sync.Mutex
	opportunities []domain.Opportunity
	executions    []domain.ExecutionResult
	skips         map[string][]string // pair symbol -> reasons
	quotes        int
}

func newFakeReporter() *fakeReporter {
	return &fakeReporter{skips: map[string][]string{}}
}

func (r *fakeReporter) Start(context.Context) error { return nil }
func (r *fakeReporter) Stop() error                 { return nil }

func (r *fakeReporter) ReportOpportunity(opp domain.Opportunity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opportunities = append(r.opportunities, opp)
}

func (r *fakeReporter) ReportExecution(result domain.ExecutionResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executions = append(r.executions, result)
}

func (r *fakeReporter) ReportSkip(pair exchange.Pair, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skips[pair.Symbol()] = append(r.skips[pair.Symbol()], reason)
}

func (r *fakeReporter) UpdateQuote(exchange.Quote) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quotes++
}

func (r *fakeReporter) skipReasons(symbol string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.skips[symbol]...)
}

func newTestPipeline(t *testing.T, venueA, venueB *fakeVenue, reporter Reporter, pairs ...exchange.Pair) *Pipeline {
	t.Helper()
	exec := newTestExecutor(t, venueA, venueB, nil, true)
	sizer := domain.NewSizer(dec("0.95"), dec("1"), dec("500"))
	return NewPipeline(
		venueA, venueB,
		sizer,
		NewCooldown(time.Minute),
		exec,
		reporter,
		testInstruments(t),
		PipelineConfig{
			Pairs:           pairs,
			SpreadThreshold: dec("0.5"),
			PollInterval:    time.Second,
			Workers:         2,
		},
		testLogger(),
	)
}

func fundedVenues() (*fakeVenue, *fakeVenue) {
	a := newFakeVenue("binance")
	a.prices["ETHUSDC"] = dec("100.00")
	a.balances["USDC"] = dec("1000")
	a.balances["ETH"] = dec("50")
	b := newFakeVenue("bybit")
	b.prices["ETHUSDC"] = dec("100.60")
	b.balances["USDC"] = dec("1000")
	b.balances["ETH"] = dec("50")
	return a, b
}

func TestPipelineScanDetectsAndExecutes(t *testing.T) {
	venueA, venueB := fundedVenues()
	reporter := newFakeReporter()
	pair := exchange.Pair{Base: "ETH", Quote: "USDC"}
	p := newTestPipeline(t, venueA, venueB, reporter, pair)

	p.Scan(context.Background())

	if len(reporter.opportunities) != 1 {
		t.Fatalf("opportunities = %d, want 1", len(reporter.opportunities))
	}
	opp := reporter.opportunities[0]
	if opp.BuyExchange != "binance" || opp.SellExchange != "bybit" {
		t.Errorf("direction = %s, want binance->bybit", opp.Direction)
	}
	// usable 1000*0.95-1 = 949, capped to 500, 500/100 = 5
	if want := dec("5"); !opp.Quantity.Equal(want) {
		t.Errorf("Quantity = %s, want %s", opp.Quantity, want)
	}

	if len(reporter.executions) != 1 {
		t.Fatalf("executions = %d, want 1", len(reporter.executions))
	}
	result := reporter.executions[0]
	if result.Status != domain.StatusBothFilled || !result.DryRun {
		t.Errorf("execution = %s dryRun=%v, want both_filled dry run", result.Status, result.DryRun)
	}
	if result.Opportunity.ID == "" {
		t.Error("executed opportunity must carry a claim ID")
	}
	if reporter.quotes != 2 {
		t.Errorf("quote updates = %d, want 2", reporter.quotes)
	}
}

func TestPipelineCooldownThrottles(t *testing.T) {
	venueA, venueB := fundedVenues()
	reporter := newFakeReporter()
	pair := exchange.Pair{Base: "ETH", Quote: "USDC"}
	p := newTestPipeline(t, venueA, venueB, reporter, pair)

	p.Scan(context.Background())
	p.Scan(context.Background())

	if len(reporter.executions) != 1 {
		t.Fatalf("executions = %d, want 1 (second scan inside cooldown)", len(reporter.executions))
	}
	reasons := reporter.skipReasons("ETHUSDC")
	if len(reasons) != 1 || reasons[0] != SkipCooldown {
		t.Errorf("skip reasons = %v, want [%s]", reasons, SkipCooldown)
	}
}

func TestPipelinePairFailureIsolation(t *testing.T) {
	venueA, venueB := fundedVenues()
	venueA.priceErr["BTCUSDC"] = errors.New("upstream 503")
	reporter := newFakeReporter()
	ethPair := exchange.Pair{Base: "ETH", Quote: "USDC"}
	btcPair := exchange.Pair{Base: "BTC", Quote: "USDC"}
	p := newTestPipeline(t, venueA, venueB, reporter, ethPair, btcPair)

	p.Scan(context.Background())

	reasons := reporter.skipReasons("BTCUSDC")
	if len(reasons) != 1 || reasons[0] != SkipPriceUnavailable {
		t.Errorf("BTC skip reasons = %v, want [%s]", reasons, SkipPriceUnavailable)
	}
	if len(reporter.executions) != 1 {
		t.Errorf("executions = %d, want 1 (ETH pair must survive the BTC failure)", len(reporter.executions))
	}
}

func TestPipelineQuantityTooLowSkips(t *testing.T) {
	venueA, venueB := fundedVenues()
	venueA.balances["USDC"] = dec("5") // cannot clear min notional
	reporter := newFakeReporter()
	pair := exchange.Pair{Base: "ETH", Quote: "USDC"}
	p := newTestPipeline(t, venueA, venueB, reporter, pair)

	p.Scan(context.Background())

	reasons := reporter.skipReasons("ETHUSDC")
	if len(reasons) != 1 || reasons[0] != SkipQuantityTooLow {
		t.Errorf("skip reasons = %v, want [%s]", reasons, SkipQuantityTooLow)
	}
	if len(reporter.executions) != 0 {
		t.Errorf("executions = %d, want 0", len(reporter.executions))
	}
}

func TestPipelineBalanceFailureSkips(t *testing.T) {
	venueA, venueB := fundedVenues()
	venueB.balanceErr = errors.New("wallet endpoint down")
	reporter := newFakeReporter()
	pair := exchange.Pair{Base: "ETH", Quote: "USDC"}
	p := newTestPipeline(t, venueA, venueB, reporter, pair)

	p.Scan(context.Background())

	reasons := reporter.skipReasons("ETHUSDC")
	if len(reasons) != 1 || reasons[0] != SkipBalanceUnavailable {
		t.Errorf("skip reasons = %v, want [%s]", reasons, SkipBalanceUnavailable)
	}
}

func TestPipelineBelowThresholdIsQuiet(t *testing.T) {
	venueA, venueB := fundedVenues()
	venueB.prices["ETHUSDC"] = dec("100.10")
	reporter := newFakeReporter()
	pair := exchange.Pair{Base: "ETH", Quote: "USDC"}
	p := newTestPipeline(t, venueA, venueB, reporter, pair)

	p.Scan(context.Background())

	if len(reporter.opportunities) != 0 || len(reporter.executions) != 0 {
		t.Error("sub-threshold spread must not produce opportunities or executions")
	}
	if reasons := reporter.skipReasons("ETHUSDC"); len(reasons) != 0 {
		t.Errorf("skip reasons = %v, want none", reasons)
	}
}
