package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/crossarb/business/arbitrage/domain"
	exchangeApp "github.com/fd1az/crossarb/business/exchange/app"
	exchange "github.com/fd1az/crossarb/business/exchange/domain"
	"github.com/fd1az/crossarb/internal/logger"
	"github.com/fd1az/crossarb/internal/metrics"
	"github.com/fd1az/crossarb/internal/notify"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testLogger() *logger.Logger {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func testInstruments(t *testing.T) *metrics.Instruments {
	t.Helper()
	ins, err := metrics.NewInstruments()
	if err != nil {
		t.Fatalf("NewInstruments: %v", err)
	}
	return ins
}

// fakeVenue is an in-memory Adapter for exercising the pipeline and executor.
type fakeVenue struct {
	mu   sync.Mutex
	name string

	prices     map[string]decimal.Decimal
	priceErr   map[string]error
	balances   map[string]decimal.Decimal
	balanceErr error
	filter     exchange.TradingFilter
	filterErr  error

	fillPrice   decimal.Decimal
	fillAfter   int // polls that report pending before the terminal state
	finalStatus exchange.OrderStatus
	submitErr   map[exchange.Side]error
	pollErr     error

	submissions []exchange.OrderRequest
	orders      map[string]*fakeOrder
	nextID      int
}

type fakeOrder struct {
	order exchange.Order
	polls int
}

func newFakeVenue(name string) *fakeVenue {
	return &fakeVenue{
		name:     name,
		prices:   map[string]decimal.Decimal{},
		priceErr: map[string]error{},
		balances: map[string]decimal.Decimal{},
		filter: exchange.TradingFilter{
			MinQuantity: dec("0.001"),
			MinNotional: dec("10"),
			StepSize:    dec("0.001"),
		},
		submitErr: map[exchange.Side]error{},
		orders:    map[string]*fakeOrder{},
	}
}

func (f *fakeVenue) Name() string { return f.name }

func (f *fakeVenue) FetchPrice(_ context.Context, pair exchange.Pair) (*exchange.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.priceErr[pair.Symbol()]; err != nil {
		return nil, err
	}
	price, ok := f.prices[pair.Symbol()]
	if !ok {
		return nil, errors.New("no price configured")
	}
	return &exchange.Quote{Exchange: f.name, Pair: pair, Price: price, Timestamp: time.Now()}, nil
}

func (f *fakeVenue) GetBalance(_ context.Context, asset string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balanceErr != nil {
		return decimal.Zero, f.balanceErr
	}
	return f.balances[asset], nil
}

func (f *fakeVenue) GetTradingFilters(_ context.Context, pair exchange.Pair) (*exchange.TradingFilter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.filterErr != nil {
		return nil, f.filterErr
	}
	filter := f.filter
	filter.Pair = pair
	return &filter, nil
}

func (f *fakeVenue) SubmitOrder(_ context.Context, req exchange.OrderRequest) (*exchange.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.submitErr[req.Side]; err != nil {
		return nil, err
	}
	f.nextID++
	order := exchange.Order{
		ID:          fmt.Sprintf("%s-%d", f.name, f.nextID),
		Exchange:    f.name,
		Pair:        req.Pair,
		Side:        req.Side,
		Quantity:    req.Quantity,
		Status:      exchange.OrderStatusNew,
		SubmittedAt: time.Now(),
	}
	f.orders[order.ID] = &fakeOrder{order: order}
	f.submissions = append(f.submissions, req)
	return &order, nil
}

func (f *fakeVenue) PollOrder(_ context.Context, _ exchange.Pair, orderID string) (*exchange.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	fo, ok := f.orders[orderID]
	if !ok {
		return nil, errors.New("order not found")
	}
	fo.polls++

	order := fo.order
	if fo.polls <= f.fillAfter {
		return &order, nil
	}
	status := f.finalStatus
	if status == "" {
		status = exchange.OrderStatusFilled
	}
	order.Status = status
	if status == exchange.OrderStatusFilled {
		order.FilledQty = order.Quantity
		order.AvgPrice = f.fillPrice
	}
	fo.order = order
	return &order, nil
}

func (f *fakeVenue) submittedSides() []exchange.Side {
	f.mu.Lock()
	defer f.mu.Unlock()
	sides := make([]exchange.Side, len(f.submissions))
	for i, req := range f.submissions {
		sides[i] = req.Side
	}
	return sides
}

// fakeSender records every alert it is asked to deliver.
type fakeSender struct {
	mu       sync.Mutex
	messages []string
}

func (s *fakeSender) Send(_ context.Context, title, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, title+": "+message)
	return nil
}

func (s *fakeSender) Name() string { return "fake" }

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func testOpportunity(buy, sell string) domain.Opportunity {
	pair := exchange.Pair{Base: "ETH", Quote: "USDC"}
	return domain.Opportunity{
		ID:           "opp-1",
		Pair:         pair,
		BuyExchange:  buy,
		SellExchange: sell,
		BuyPrice:     dec("100"),
		SellPrice:    dec("101"),
		SpreadPct:    dec("1"),
		Quantity:     dec("1"),
		Direction:    domain.NewDirection(buy, sell),
		Timestamp:    time.Now(),
	}
}

func newTestExecutor(t *testing.T, buy, sell *fakeVenue, sender notify.Sender, dryRun bool) *Executor {
	t.Helper()
	registry := exchangeApp.NewRegistry()
	registry.Register(buy)
	registry.Register(sell)

	var senders []notify.Sender
	if sender != nil {
		senders = append(senders, sender)
	}
	// Filter allows only executions so the test proves exposure alerts bypass it.
	notifier := notify.NewNotifier(senders, []string{notify.EventExecution}, testLogger())

	return NewExecutor(registry, notifier, testInstruments(t), ExecutorConfig{
		FillPollAttempts: 3,
		FillPollInterval: time.Millisecond,
		DryRun:           dryRun,
	}, testLogger())
}

func TestExecutorDryRun(t *testing.T) {
	buy := newFakeVenue("binance")
	sell := newFakeVenue("bybit")
	exec := newTestExecutor(t, buy, sell, nil, true)

	result := exec.Execute(context.Background(), testOpportunity("binance", "bybit"))

	if result.Status != domain.StatusBothFilled {
		t.Fatalf("Status = %s, want %s", result.Status, domain.StatusBothFilled)
	}
	if !result.DryRun {
		t.Error("DryRun flag not set")
	}
	if want := dec("1"); !result.RealizedProfit.Equal(want) {
		t.Errorf("RealizedProfit = %s, want %s", result.RealizedProfit, want)
	}
	if len(buy.submissions) != 0 || len(sell.submissions) != 0 {
		t.Error("dry run must not submit orders")
	}
}

func TestExecutorBothLegsFill(t *testing.T) {
	buy := newFakeVenue("binance")
	buy.fillPrice = dec("100.05")
	sell := newFakeVenue("bybit")
	sell.fillPrice = dec("100.95")
	exec := newTestExecutor(t, buy, sell, nil, false)

	result := exec.Execute(context.Background(), testOpportunity("binance", "bybit"))

	if result.Status != domain.StatusBothFilled {
		t.Fatalf("Status = %s, want %s (reason: %s)", result.Status, domain.StatusBothFilled, result.Reason)
	}
	if want := dec("0.9"); !result.RealizedProfit.Equal(want) {
		t.Errorf("RealizedProfit = %s, want %s", result.RealizedProfit, want)
	}
	if got := buy.submittedSides(); len(got) != 1 || got[0] != exchange.SideBuy {
		t.Errorf("buy venue submissions = %v", got)
	}
	if got := sell.submittedSides(); len(got) != 1 || got[0] != exchange.SideSell {
		t.Errorf("sell venue submissions = %v", got)
	}
	if !sell.submissions[0].Quantity.Equal(buy.orders["binance-1"].order.FilledQty) {
		t.Error("sell leg must trade exactly the buy leg's filled quantity")
	}
}

func TestExecutorBuySubmitFailureAborts(t *testing.T) {
	buy := newFakeVenue("binance")
	buy.submitErr[exchange.SideBuy] = errors.New("insufficient balance")
	sell := newFakeVenue("bybit")
	exec := newTestExecutor(t, buy, sell, nil, false)

	result := exec.Execute(context.Background(), testOpportunity("binance", "bybit"))

	if result.Status != domain.StatusAborted {
		t.Fatalf("Status = %s, want %s", result.Status, domain.StatusAborted)
	}
	if result.LegBuy.Status != domain.LegFailed {
		t.Errorf("LegBuy.Status = %s, want %s", result.LegBuy.Status, domain.LegFailed)
	}
	if len(sell.submissions) != 0 {
		t.Error("sell leg must never be submitted when the buy leg failed")
	}
}

func TestExecutorBuyTimeoutAborts(t *testing.T) {
	buy := newFakeVenue("binance")
	buy.fillAfter = 100 // never fills within the poll budget
	sell := newFakeVenue("bybit")
	exec := newTestExecutor(t, buy, sell, nil, false)

	result := exec.Execute(context.Background(), testOpportunity("binance", "bybit"))

	if result.Status != domain.StatusAborted {
		t.Fatalf("Status = %s, want %s", result.Status, domain.StatusAborted)
	}
	if result.LegBuy.Status != domain.LegTimeout {
		t.Errorf("LegBuy.Status = %s, want %s", result.LegBuy.Status, domain.LegTimeout)
	}
	if len(sell.submissions) != 0 {
		t.Error("sell leg must never be submitted before the buy leg confirms")
	}
}

func TestExecutorSellFailureLeavesExposure(t *testing.T) {
	buy := newFakeVenue("binance")
	buy.fillPrice = dec("100")
	sell := newFakeVenue("bybit")
	sell.submitErr[exchange.SideSell] = errors.New("connection reset")
	sender := &fakeSender{}
	exec := newTestExecutor(t, buy, sell, sender, false)

	result := exec.Execute(context.Background(), testOpportunity("binance", "bybit"))

	if result.Status != domain.StatusOneLegFailed {
		t.Fatalf("Status = %s, want %s", result.Status, domain.StatusOneLegFailed)
	}
	if !result.Exposed() {
		t.Error("Exposed() should report true")
	}
	if result.LegBuy.Status != domain.LegFilled {
		t.Errorf("LegBuy.Status = %s, want %s", result.LegBuy.Status, domain.LegFilled)
	}
	if result.LegSell.Status != domain.LegFailed {
		t.Errorf("LegSell.Status = %s, want %s", result.LegSell.Status, domain.LegFailed)
	}
	if sender.count() != 1 {
		t.Errorf("exposure alert count = %d, want 1 (must bypass the event filter)", sender.count())
	}
}

func TestExecutorSellTimeoutLeavesExposure(t *testing.T) {
	buy := newFakeVenue("binance")
	buy.fillPrice = dec("100")
	sell := newFakeVenue("bybit")
	sell.fillAfter = 100
	sender := &fakeSender{}
	exec := newTestExecutor(t, buy, sell, sender, false)

	result := exec.Execute(context.Background(), testOpportunity("binance", "bybit"))

	if result.Status != domain.StatusOneLegFailed {
		t.Fatalf("Status = %s, want %s", result.Status, domain.StatusOneLegFailed)
	}
	if result.LegSell.Status != domain.LegTimeout {
		t.Errorf("LegSell.Status = %s, want %s", result.LegSell.Status, domain.LegTimeout)
	}
	if sender.count() != 1 {
		t.Errorf("exposure alert count = %d, want 1", sender.count())
	}
}

func TestExecutorBuyCancellationAborts(t *testing.T) {
	buy := newFakeVenue("binance")
	buy.finalStatus = exchange.OrderStatusCanceled
	sell := newFakeVenue("bybit")
	exec := newTestExecutor(t, buy, sell, nil, false)

	result := exec.Execute(context.Background(), testOpportunity("binance", "bybit"))

	if result.Status != domain.StatusAborted {
		t.Fatalf("Status = %s, want %s", result.Status, domain.StatusAborted)
	}
	if result.LegBuy.Status != domain.LegFailed {
		t.Errorf("LegBuy.Status = %s, want %s", result.LegBuy.Status, domain.LegFailed)
	}
}

func TestExecutorRevalidateRejects(t *testing.T) {
	buy := newFakeVenue("binance")
	sell := newFakeVenue("bybit")
	exec := newTestExecutor(t, buy, sell, nil, false)

	opp := testOpportunity("binance", "bybit")
	opp.Quantity = dec("0.0001") // below the venue minimum

	result := exec.Execute(context.Background(), opp)

	if result.Status != domain.StatusRejected {
		t.Fatalf("Status = %s, want %s", result.Status, domain.StatusRejected)
	}
	if len(buy.submissions) != 0 || len(sell.submissions) != 0 {
		t.Error("rejected opportunities must not reach a venue")
	}
}
