package bybit

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fd1az/crossarb/business/exchange/domain"
	"github.com/fd1az/crossarb/internal/logger"
)

// Name is the venue identifier used across the application.
const Name = "bybit"

// Adapter implements the exchange Adapter port for Bybit spot.
type Adapter struct {
	client *Client
	logger logger.LoggerInterface
}

// NewAdapter creates a Bybit adapter.
func NewAdapter(client *Client, log logger.LoggerInterface) *Adapter {
	return &Adapter{
		client: client,
		logger: log,
	}
}

// Name returns the venue identifier.
func (a *Adapter) Name() string {
	return Name
}

// FetchPrice returns the venue's current price for pair.
func (a *Adapter) FetchPrice(ctx context.Context, pair domain.Pair) (*domain.Quote, error) {
	price, err := a.client.GetTickerPrice(ctx, a.symbol(pair))
	if err != nil {
		return nil, err
	}

	q := domain.NewQuote(Name, pair, price)
	return &q, nil
}

// GetBalance returns the available balance of one coin.
func (a *Adapter) GetBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	return a.client.GetBalance(ctx, strings.ToUpper(asset))
}

// GetTradingFilters returns the venue's order constraints for pair.
func (a *Adapter) GetTradingFilters(ctx context.Context, pair domain.Pair) (*domain.TradingFilter, error) {
	filters, err := a.client.GetInstrumentFilters(ctx, a.symbol(pair))
	if err != nil {
		return nil, err
	}

	return &domain.TradingFilter{
		Pair:        pair,
		MinQuantity: filters.MinOrderQty,
		MinNotional: filters.MinOrderAmt,
		StepSize:    filters.BasePrecision,
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
	return ackToOrder(ack, pair, "", decimal.Zero), nil
}

// symbol maps a pair to Bybit's concatenated notation (ETH/USDC -> ETHUSDC).
func (a *Adapter) symbol(pair domain.Pair) string {
	return pair.Symbol()
}

// sideParam maps domain sides to Bybit's title-cased values.
func sideParam(side domain.Side) string {
	if side == domain.SideBuy {
		return "Buy"
	}
	return "Sell"
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

// mapStatus converts Bybit order states to domain states.
func mapStatus(status string) domain.OrderStatus {
	switch status {
	case "New", "Created", "Untriggered":
		return domain.OrderStatusNew
	case "PartiallyFilled":
		return domain.OrderStatusPartiallyFilled
	case "Filled":
		return domain.OrderStatusFilled
	case "Cancelled", "PartiallyFilledCanceled", "Deactivated":
		return domain.OrderStatusCanceled
	case "Rejected":
		return domain.OrderStatusRejected
	default:
		return domain.OrderStatusNew
	}
}
