// Package binance implements the Binance spot adapter.
package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/crossarb/internal/apperror"
	"github.com/fd1az/crossarb/internal/httpclient"
	"github.com/fd1az/crossarb/internal/logger"
	"github.com/fd1az/crossarb/internal/ratelimit"
)

const (
	BaseAPIURL = "https://api.binance.com"

	tracerName = "exchange/binance"

	tickerEndpoint       = "/api/v3/ticker/price"
	accountEndpoint      = "/api/v3/account"
	exchangeInfoEndpoint = "/api/v3/exchangeInfo"
	orderEndpoint        = "/api/v3/order"

	httpTimeout = 10 * time.Second
	recvWindow  = 5000 // ms
)

// Config holds configuration for the Binance REST client.
type Config struct {
	BaseURL      string
	APIKey       string
	APISecret    string
	Timeout      time.Duration
	RateLimitRPM int
}

// Client provides Binance spot REST API access.
type Client struct {
	client  httpclient.Client
	config  Config
	logger  logger.LoggerInterface
	tracer  trace.Tracer
	limiter *ratelimit.Limiter
	breaker *gobreaker.CircuitBreaker[*httpclient.Response]
	now     func() time.Time
}

// NewClient creates a new Binance REST client.
func NewClient(cfg Config, log logger.LoggerInterface) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseAPIURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = httpTimeout
	}

	rpm := cfg.RateLimitRPM
	if rpm == 0 {
		rpm = 1200
	}

	headers := map[string]string{"Accept": "application/json"}
	if cfg.APIKey != "" {
		headers["X-MBX-APIKEY"] = cfg.APIKey
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("binance"),
		httpclient.WithBaseURL(baseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithHeaders(headers),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker[*httpclient.Response](gobreaker.Settings{
		Name:        "binance",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn(context.Background(), "circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		client:  client,
		config:  cfg,
		logger:  log,
		tracer:  otel.Tracer(tracerName),
		limiter: ratelimit.New(rpm),
		breaker: breaker,
		now:     time.Now,
	}, nil
}

// HasCredentials reports whether signed endpoints can be used.
func (c *Client) HasCredentials() bool {
	return c.config.APIKey != "" && c.config.APISecret != ""
}

// GetTickerPrice fetches the last trade price for a symbol.
func (c *Client) GetTickerPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	ctx, span := c.tracer.Start(ctx, "binance.get_ticker_price",
		trace.WithAttributes(attribute.String("symbol", symbol)),
	)
	defer span.End()

	var result tickerPriceResponse
	_, err := c.do(ctx, func(req httpclient.Request) (*httpclient.Response, error) {
		return req.
			SetQueryParam("symbol", symbol).
			SetResult(&result).
			Get(ctx, tickerEndpoint)
	})
	if err != nil {
		span.RecordError(err)
		return decimal.Zero, apperror.Wrap(err, apperror.CodePriceUnavailable, "binance ticker "+symbol)
	}

	price, err := decimal.NewFromString(result.Price)
	if err != nil {
		return decimal.Zero, apperror.New(apperror.CodeInvalidFormat,
			apperror.WithCause(err),
			apperror.WithContext("binance ticker price "+result.Price))
	}

	return price, nil
}

// GetBalance fetches the free balance of one asset from the signed account endpoint.
func (c *Client) GetBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	ctx, span := c.tracer.Start(ctx, "binance.get_balance",
		trace.WithAttributes(attribute.String("asset", asset)),
	)
	defer span.End()

	if !c.HasCredentials() {
		return decimal.Zero, apperror.New(apperror.CodeMissingCredentials,
			apperror.WithContext("binance account access"))
	}

	var result accountResponse
	_, err := c.do(ctx, func(req httpclient.Request) (*httpclient.Response, error) {
		return req.
			SetRawQuery(c.sign(url.Values{})).
			SetResult(&result).
			Get(ctx, accountEndpoint)
	})
	if err != nil {
		span.RecordError(err)
		return decimal.Zero, apperror.Wrap(err, apperror.CodeBalanceUnavailable, "binance account")
	}

	for _, b := range result.Balances {
		if b.Asset == asset {
			free, err := decimal.NewFromString(b.Free)
			if err != nil {
				return decimal.Zero, apperror.New(apperror.CodeInvalidFormat,
					apperror.WithCause(err),
					apperror.WithContext("binance balance "+b.Free))
			}
			return free, nil
		}
	}

	// Asset absent from the account means a zero balance, not an error.
	return decimal.Zero, nil
}

// SymbolFilters holds the order constraints Binance publishes per symbol.
type SymbolFilters struct {
	MinQty      decimal.Decimal
	StepSize    decimal.Decimal
	MinNotional decimal.Decimal
}

// GetSymbolFilters fetches LOT_SIZE and NOTIONAL filters for a symbol.
func (c *Client) GetSymbolFilters(ctx context.Context, symbol string) (*SymbolFilters, error) {
	ctx, span := c.tracer.Start(ctx, "binance.get_symbol_filters",
		trace.WithAttributes(attribute.String("symbol", symbol)),
	)
	defer span.End()

	var result exchangeInfoResponse
	_, err := c.do(ctx, func(req httpclient.Request) (*httpclient.Response, error) {
		return req.
			SetQueryParam("symbol", symbol).
			SetResult(&result).
			Get(ctx, exchangeInfoEndpoint)
	})
	if err != nil {
		span.RecordError(err)
		return nil, apperror.Wrap(err, apperror.CodeFiltersUnavailable, "binance exchangeInfo "+symbol)
	}

	for _, info := range result.Symbols {
		if info.Symbol != symbol {
			continue
		}

		filters := &SymbolFilters{}
		for _, f := range info.Filters {
			switch f.FilterType {
			case "LOT_SIZE":
				filters.MinQty = parseDecimal(f.MinQty)
				filters.StepSize = parseDecimal(f.StepSize)
			case "NOTIONAL", "MIN_NOTIONAL":
				filters.MinNotional = parseDecimal(f.MinNotional)
			}
		}
		return filters, nil
	}

	return nil, apperror.New(apperror.CodeFiltersUnavailable,
		apperror.WithContext("symbol not in exchangeInfo: "+symbol))
}

// OrderAck is the client's view of a submitted or polled order.
type OrderAck struct {
	OrderID     string
	Status      string
	ExecutedQty decimal.Decimal
	AvgPrice    decimal.Decimal
	Timestamp   time.Time
}

// SubmitMarketOrder places a market order on the signed order endpoint.
func (c *Client) SubmitMarketOrder(ctx context.Context, symbol, side string, qty decimal.Decimal) (*OrderAck, error) {
	ctx, span := c.tracer.Start(ctx, "binance.submit_market_order",
		trace.WithAttributes(
			attribute.String("symbol", symbol),
			attribute.String("side", side),
			attribute.String("quantity", qty.String()),
		),
	)
	defer span.End()

	if !c.HasCredentials() {
		return nil, apperror.New(apperror.CodeMissingCredentials,
			apperror.WithContext("binance order placement"))
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", side)
	params.Set("type", "MARKET")
	params.Set("quantity", qty.String())
	params.Set("newOrderRespType", "FULL")

	var result orderResponse
	_, err := c.do(ctx, func(req httpclient.Request) (*httpclient.Response, error) {
		return req.
			SetRawQuery(c.sign(params)).
			SetResult(&result).
			Post(ctx, orderEndpoint)
	})
	if err != nil {
		span.RecordError(err)
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, apperror.New(apperror.CodeOrderRejected,
				apperror.WithCause(apiErr),
				apperror.WithContext("binance order "+symbol))
		}
		return nil, apperror.Wrap(err, apperror.CodeExchangeAPIError, "binance order "+symbol)
	}

	return result.toAck(), nil
}

// GetOrder fetches the current state of an order.
func (c *Client) GetOrder(ctx context.Context, symbol, orderID string) (*OrderAck, error) {
	ctx, span := c.tracer.Start(ctx, "binance.get_order",
		trace.WithAttributes(
			attribute.String("symbol", symbol),
			attribute.String("order_id", orderID),
		),
	)
	defer span.End()

	if !c.HasCredentials() {
		return nil, apperror.New(apperror.CodeMissingCredentials,
			apperror.WithContext("binance order status"))
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("orderId", orderID)

	var result orderResponse
	_, err := c.do(ctx, func(req httpclient.Request) (*httpclient.Response, error) {
		return req.
			SetRawQuery(c.sign(params)).
			SetResult(&result).
			Get(ctx, orderEndpoint)
	})
	if err != nil {
		span.RecordError(err)
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Code == -2013 {
			return nil, apperror.New(apperror.CodeOrderNotFound,
				apperror.WithCause(apiErr),
				apperror.WithContext("binance order "+orderID))
		}
		return nil, apperror.Wrap(err, apperror.CodeExchangeAPIError, "binance order status "+orderID)
	}

	return result.toAck(), nil
}

// do runs one request through the rate limiter and circuit breaker.
func (c *Client) do(ctx context.Context, fn func(httpclient.Request) (*httpclient.Response, error)) (*httpclient.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.breaker.Execute(func() (*httpclient.Response, error) {
		req := c.client.NewRequestWithOptions(
			httpclient.WithResponseErrorHandler(errorHandler),
		)
		return fn(req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apperror.New(apperror.CodeCircuitOpen,
				apperror.WithCause(err),
				apperror.WithContext("binance"))
		}
		return nil, err
	}
	return resp, nil
}

// sign appends timestamp, recvWindow and the HMAC-SHA256 signature to the
// query. The returned string must reach the wire byte for byte.
func (c *Client) sign(params url.Values) string {
	params.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))
	params.Set("recvWindow", strconv.Itoa(recvWindow))

	query := params.Encode()

	mac := hmac.New(sha256.New, []byte(c.config.APISecret))
	mac.Write([]byte(query))
	signature := hex.EncodeToString(mac.Sum(nil))

	return query + "&signature=" + signature
}

func (r *orderResponse) toAck() *OrderAck {
	executed := parseDecimal(r.ExecutedQty)
	quote := parseDecimal(r.CummulativeQuoteQty)

	avg := decimal.Zero
	if executed.IsPositive() {
		avg = quote.Div(executed)
	}

	ts := r.TransactTime
	if ts == 0 {
		ts = r.Time
	}

	return &OrderAck{
		OrderID:     strconv.FormatInt(r.OrderID, 10),
		Status:      r.Status,
		ExecutedQty: executed,
		AvgPrice:    avg,
		Timestamp:   time.UnixMilli(ts),
	}
}

func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
