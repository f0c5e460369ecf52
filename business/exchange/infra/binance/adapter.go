package binance

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fd1az/crossarb/business/exchange/domain"
	"github.com/fd1az/crossarb/internal/logger"
)

// Name is the venue identifier used across the application.
const Name = "binance"

// Adapter implements the exchange Adapter port for Binance spot. Prices come
// from the bookTicker stream when it is live and fresh; everything else, and
// stale-price fallback, goes through REST.
type Adapter struct {
	client *Client
	stream *Stream // nil when streaming is disabled
	logger logger.LoggerInterface
}

// NewAdapter creates a Binance adapter. stream may be nil.
func NewAdapter(client *Client, stream *Stream, log logger.LoggerInterface) *Adapter {
	return &Adapter{
		client: client,
		stream: stream,
		logger: log,
	}
}

// Name returns the venue identifier.
func (a *Adapter) Name() string {
	return Name
}

// FetchPrice returns the current price, preferring the stream cache.
func (a *Adapter) FetchPrice(ctx context.Context, pair domain.Pair) (*domain.Quote, error) {
	symbol := a.symbol(pair)

	if a.stream != nil {
		if price, ok := a.stream.LatestPrice(symbol); ok {
			q := domain.NewQuote(Name, pair, price)
			return &q, nil
		}
		a.logger.Debug(ctx, "stream quote stale, falling back to REST", "symbol", symbol)
	}

	price, err := a.client.GetTickerPrice(ctx, symbol)
	if err != nil {
		return nil, err
	}

	q := domain.NewQuote(Name, pair, price)
	return &q, nil
}

// GetBalance returns the free balance of one asset.
func (a *Adapter) GetBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	return a.client.GetBalance(ctx, strings.ToUpper(asset))
}

// GetTradingFilters returns the venue's order constraints for pair.
func (a *Adapter) GetTradingFilters(ctx context.Context, pair domain.Pair) (*domain.TradingFilter, error) {
	filters, err := a.client.GetSymbolFilters(ctx, a.symbol(pair))
	if err != nil {
		return nil, err
	}

	return &domain.TradingFilter{
		Pair:        pair,
		MinQuantity: filters.MinQty,
		MinNotional: filters.MinNotional,
		StepSize:    filters.StepSize,
	}, nil
}

// SubmitOrder places a market order.
func (a *Adapter) SubmitOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error) {
	ack, err := a.client.SubmitMarketOrder(ctx, a.symbol(req.Pair), sideParam(req.Side), req.Quantity)
	if err != nil {
		return nil, err
	}
	return ackToOrder(ack, req.Pair, req.Side, req.Quantity), nil
}

// PollOrder returns the current state of an order.
func (a *Adapter) PollOrder(ctx context.Context, pair domain.Pair, orderID string) (*domain.Order, error) {
	ack, err := a.client.GetOrder(ctx, a.symbol(pair), orderID)
	if err != nil {
		return nil, err
	}
	order := ackToOrder(ack, pair, "", decimal.Zero)
	return order, nil
}

// symbol maps a pair to Binance's concatenated notation (ETH/USDC -> ETHUSDC).
func (a *Adapter) symbol(pair domain.Pair) string {
	return pair.Symbol()
}

func sideParam(side domain.Side) string {
	return strings.ToUpper(string(side))
}

func ackToOrder(ack *OrderAck, pair domain.Pair, side domain.Side, qty decimal.Decimal) *domain.Order {
	return &domain.Order{
		ID:          ack.OrderID,
		Exchange:    Name,
		Pair:        pair,
		Side:        side,
		Quantity:    qty,
		FilledQty:   ack.ExecutedQty,
		AvgPrice:    ack.AvgPrice,
		Status:      mapStatus(ack.Status),
		SubmittedAt: ack.Timestamp,
	}
}

// mapStatus converts Binance order states to domain states.
func mapStatus(status string) domain.OrderStatus {
	switch status {
	case "NEW":
		return domain.OrderStatusNew
	case "PARTIALLY_FILLED":
		return domain.OrderStatusPartiallyFilled
	case "FILLED":
		return domain.OrderStatusFilled
	case "CANCELED", "EXPIRED", "EXPIRED_IN_MATCH":
		return domain.OrderStatusCanceled
	case "REJECTED":
		return domain.OrderStatusRejected
	default:
		return domain.OrderStatusNew
	}
}
