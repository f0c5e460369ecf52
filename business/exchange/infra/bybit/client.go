// Package bybit implements the Bybit spot adapter using the v5 API.
package bybit

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
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
	BaseAPIURL = "https://api.bybit.com"

	tracerName = "exchange/bybit"

	tickersEndpoint     = "/v5/market/tickers"
	instrumentsEndpoint = "/v5/market/instruments-info"
	walletEndpoint      = "/v5/account/wallet-balance"
	createOrderEndpoint = "/v5/order/create"
	orderStatusEndpoint = "/v5/order/realtime"

	categorySpot = "spot"
	httpTimeout  = 10 * time.Second
	recvWindow   = "5000" // ms
)

// Config holds configuration for the Bybit REST client.
type Config struct {
	BaseURL      string
	APIKey       string
	APISecret    string
	Timeout      time.Duration
	RateLimitRPM int
}

// Client provides Bybit v5 spot REST API access.
type Client struct {
	client  httpclient.Client
	config  Config
	logger  logger.LoggerInterface
	tracer  trace.Tracer
	limiter *ratelimit.Limiter
	breaker *gobreaker.CircuitBreaker[*httpclient.Response]
	now     func() time.Time
}

// NewClient creates a new Bybit REST client.
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
		rpm = 600
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("bybit"),
		httpclient.WithBaseURL(baseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithHeaders(map[string]string{"Accept": "application/json"}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker[*httpclient.Response](gobreaker.Settings{
		Name:        "bybit",
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

// GetTickerPrice fetches the last trade price for a spot symbol.
func (c *Client) GetTickerPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	ctx, span := c.tracer.Start(ctx, "bybit.get_ticker_price",
		trace.WithAttributes(attribute.String("symbol", symbol)),
	)
	defer span.End()

	params := url.Values{}
	params.Set("category", categorySpot)
	params.Set("symbol", symbol)

	var result tickersResult
	if err := c.get(ctx, tickersEndpoint, params, false, &result); err != nil {
		span.RecordError(err)
		return decimal.Zero, apperror.Wrap(err, apperror.CodePriceUnavailable, "bybit ticker "+symbol)
	}

	if len(result.List) == 0 {
		return decimal.Zero, apperror.New(apperror.CodePriceUnavailable,
			apperror.WithContext("bybit ticker list empty for "+symbol))
	}

	price, err := decimal.NewFromString(result.List[0].LastPrice)
	if err != nil {
		return decimal.Zero, apperror.New(apperror.CodeInvalidFormat,
			apperror.WithCause(err),
			apperror.WithContext("bybit ticker price "+result.List[0].LastPrice))
	}

	return price, nil
}

// GetBalance fetches the wallet balance of one coin from the unified account.
func (c *Client) GetBalance(ctx context.Context, coin string) (decimal.Decimal, error) {
	ctx, span := c.tracer.Start(ctx, "bybit.get_balance",
		trace.WithAttributes(attribute.String("coin", coin)),
	)
	defer span.End()

	if !c.HasCredentials() {
		return decimal.Zero, apperror.New(apperror.CodeMissingCredentials,
			apperror.WithContext("bybit wallet access"))
	}

	params := url.Values{}
	params.Set("accountType", "UNIFIED")
	params.Set("coin", coin)

	var result walletBalanceResult
	if err := c.get(ctx, walletEndpoint, params, true, &result); err != nil {
		span.RecordError(err)
		return decimal.Zero, apperror.Wrap(err, apperror.CodeBalanceUnavailable, "bybit wallet")
	}

	for _, account := range result.List {
		for _, entry := range account.Coins {
			if entry.Coin == coin {
				balance, err := decimal.NewFromString(entry.WalletBalance)
				if err != nil {
					return decimal.Zero, apperror.New(apperror.CodeInvalidFormat,
						apperror.WithCause(err),
						apperror.WithContext("bybit balance "+entry.WalletBalance))
				}
				locked := parseDecimal(entry.Locked)
				return balance.Sub(locked), nil
			}
		}
	}

	return decimal.Zero, nil
}

// InstrumentFilters holds the order constraints Bybit publishes per symbol.
type InstrumentFilters struct {
	MinOrderQty   decimal.Decimal
	MinOrderAmt   decimal.Decimal
	BasePrecision decimal.Decimal // Quantity step, e.g. 0.0001
}

// GetInstrumentFilters fetches lot size constraints for a spot symbol.
func (c *Client) GetInstrumentFilters(ctx context.Context, symbol string) (*InstrumentFilters, error) {
	ctx, span := c.tracer.Start(ctx, "bybit.get_instrument_filters",
		trace.WithAttributes(attribute.String("symbol", symbol)),
	)
	defer span.End()

	params := url.Values{}
	params.Set("category", categorySpot)
	params.Set("symbol", symbol)

	var result instrumentsResult
	if err := c.get(ctx, instrumentsEndpoint, params, false, &result); err != nil {
		span.RecordError(err)
		return nil, apperror.Wrap(err, apperror.CodeFiltersUnavailable, "bybit instruments "+symbol)
	}

	for _, entry := range result.List {
		if entry.Symbol != symbol {
			continue
		}
		return &InstrumentFilters{
			MinOrderQty:   parseDecimal(entry.LotSizeFilter.MinOrderQty),
			MinOrderAmt:   parseDecimal(entry.LotSizeFilter.MinOrderAmt),
			BasePrecision: parseDecimal(entry.LotSizeFilter.BasePrecision),
		}, nil
	}

	return nil, apperror.New(apperror.CodeFiltersUnavailable,
		apperror.WithContext("symbol not in instruments-info: "+symbol))
}

// OrderAck is the client's view of a submitted or polled order.
type OrderAck struct {
	OrderID     string
	Status      string
	ExecutedQty decimal.Decimal
	AvgPrice    decimal.Decimal
	Timestamp   time.Time
}

// SubmitMarketOrder places a spot market order. qty is always in base units.
func (c *Client) SubmitMarketOrder(ctx context.Context, symbol, side string, qty decimal.Decimal) (*OrderAck, error) {
	ctx, span := c.tracer.Start(ctx, "bybit.submit_market_order",
		trace.WithAttributes(
			attribute.String("symbol", symbol),
			attribute.String("side", side),
			attribute.String("quantity", qty.String()),
		),
	)
	defer span.End()

	if !c.HasCredentials() {
		return nil, apperror.New(apperror.CodeMissingCredentials,
			apperror.WithContext("bybit order placement"))
	}

	body := map[string]string{
		"category":  categorySpot,
		"symbol":    symbol,
		"side":      side,
		"orderType": "Market",
		"qty":       qty.String(),
		// Market orders default to quote units on spot; force base units so
		// both legs trade the same quantity.
		"marketUnit": "baseCoin",
	}

	var result createOrderResult
	if err := c.post(ctx, createOrderEndpoint, body, &result); err != nil {
		span.RecordError(err)
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, apperror.New(apperror.CodeOrderRejected,
				apperror.WithCause(apiErr),
				apperror.WithContext("bybit order "+symbol))
		}
		return nil, apperror.Wrap(err, apperror.CodeExchangeAPIError, "bybit order "+symbol)
	}

	// Creation only returns the ID; fills are confirmed via GetOrder.
	return &OrderAck{
		OrderID:   result.OrderID,
		Status:    "New",
		Timestamp: c.now(),
	}, nil
}

// GetOrder fetches the current state of an order.
func (c *Client) GetOrder(ctx context.Context, symbol, orderID string) (*OrderAck, error) {
	ctx, span := c.tracer.Start(ctx, "bybit.get_order",
		trace.WithAttributes(
			attribute.String("symbol", symbol),
			attribute.String("order_id", orderID),
		),
	)
	defer span.End()

	if !c.HasCredentials() {
		return nil, apperror.New(apperror.CodeMissingCredentials,
			apperror.WithContext("bybit order status"))
	}

	params := url.Values{}
	params.Set("category", categorySpot)
	params.Set("symbol", symbol)
	params.Set("orderId", orderID)

	var result orderListResult
	if err := c.get(ctx, orderStatusEndpoint, params, true, &result); err != nil {
		span.RecordError(err)
		return nil, apperror.Wrap(err, apperror.CodeExchangeAPIError, "bybit order status "+orderID)
	}

	if len(result.List) == 0 {
		return nil, apperror.New(apperror.CodeOrderNotFound,
			apperror.WithContext("bybit order "+orderID))
	}

	entry := result.List[0]
	created, _ := strconv.ParseInt(entry.CreatedTime, 10, 64)

	return &OrderAck{
		OrderID:     entry.OrderID,
		Status:      entry.OrderStatus,
		ExecutedQty: parseDecimal(entry.CumExecQty),
		AvgPrice:    parseDecimal(entry.AvgPrice),
		Timestamp:   time.UnixMilli(created),
	}, nil
}

// get executes a GET request, optionally signed, decoding the envelope.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, signed bool, result any) error {
	query := params.Encode()

	return c.do(ctx, func() (*httpclient.Response, error) {
		req := c.client.NewRequest().SetRawQuery(query)
		if signed {
			c.signHeaders(req, query)
		}
		var env envelope
		resp, err := req.SetResult(&env).Get(ctx, endpoint)
		if err != nil {
			return resp, err
		}
		return resp, decodeEnvelope(&env, result)
	})
}

// post executes a signed POST request with a JSON body, decoding the envelope.
func (c *Client) post(ctx context.Context, endpoint string, body map[string]string, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	return c.do(ctx, func() (*httpclient.Response, error) {
		req := c.client.NewRequest().
			SetHeader("Content-Type", "application/json").
			SetBody(payload)
		c.signHeaders(req, string(payload))

		var env envelope
		resp, err := req.SetResult(&env).Post(ctx, endpoint)
		if err != nil {
			return resp, err
		}
		return resp, decodeEnvelope(&env, result)
	})
}

// do runs one request through the rate limiter and circuit breaker.
func (c *Client) do(ctx context.Context, fn func() (*httpclient.Response, error)) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	_, err := c.breaker.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return apperror.New(apperror.CodeCircuitOpen,
				apperror.WithCause(err),
				apperror.WithContext("bybit"))
		}
		return err
	}
	return nil
}

// signHeaders sets the v5 auth headers. The signature covers
// timestamp + apiKey + recvWindow + payload, where payload is the encoded
// query string for GETs and the JSON body for POSTs.
func (c *Client) signHeaders(req httpclient.Request, payload string) {
	timestamp := strconv.FormatInt(c.now().UnixMilli(), 10)

	mac := hmac.New(sha256.New, []byte(c.config.APISecret))
	mac.Write([]byte(timestamp + c.config.APIKey + recvWindow + payload))

	req.SetHeader("X-BAPI-API-KEY", c.config.APIKey)
	req.SetHeader("X-BAPI-TIMESTAMP", timestamp)
	req.SetHeader("X-BAPI-RECV-WINDOW", recvWindow)
	req.SetHeader("X-BAPI-SIGN", hex.EncodeToString(mac.Sum(nil)))
}

// decodeEnvelope surfaces retCode errors and unmarshals the result payload.
func decodeEnvelope(env *envelope, result any) error {
	if env.RetCode != 0 {
		return &APIError{Code: env.RetCode, Message: env.RetMsg}
	}
	if result == nil || len(env.Result) == 0 {
		return nil
	}
	return json.Unmarshal(env.Result, result)
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
