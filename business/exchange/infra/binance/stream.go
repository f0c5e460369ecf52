package binance

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/crossarb/internal/apperror"
	"github.com/fd1az/crossarb/internal/logger"
	"github.com/fd1az/crossarb/internal/wsconn"
)

const (
	BaseWebSocketURL = "wss://stream.binance.com:9443"

	defaultStaleTimeout = 5 * time.Second
)

// StreamConfig holds configuration for the bookTicker stream.
type StreamConfig struct {
	WebSocketURL string
	Symbols      []string
	StaleTimeout time.Duration
}

// streamQuote is the latest mid price observed for one symbol.
type streamQuote struct {
	price decimal.Decimal
	ts    time.Time
}

// Stream maintains a combined bookTicker subscription and caches the latest
// mid price per symbol. Consumers fall back to REST when a quote goes stale.
type Stream struct {
	config StreamConfig
	logger logger.LoggerInterface
	tracer trace.Tracer

	connMu sync.Mutex
	conn   *wsconn.Client

	mu     sync.RWMutex
	latest map[string]streamQuote

	now func() time.Time
}

// NewStream creates a Stream for the given symbols.
func NewStream(cfg StreamConfig, log logger.LoggerInterface) *Stream {
	if cfg.WebSocketURL == "" {
		cfg.WebSocketURL = BaseWebSocketURL
	}
	if cfg.StaleTimeout == 0 {
		cfg.StaleTimeout = defaultStaleTimeout
	}

	return &Stream{
		config: cfg,
		logger: log,
		tracer: otel.Tracer(tracerName),
		latest: make(map[string]streamQuote),
		now:    time.Now,
	}
}

// Connect establishes the combined streams connection.
func (s *Stream) Connect(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "binance.stream.connect",
		trace.WithAttributes(attribute.StringSlice("symbols", s.config.Symbols)),
	)
	defer span.End()

	if len(s.config.Symbols) == 0 {
		return apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("no symbols configured for stream"))
	}

	wsCfg := wsconn.DefaultConfig(s.buildStreamURL(), "binance")

	conn, err := wsconn.New(wsCfg)
	if err != nil {
		return apperror.New(apperror.CodeWebSocketConnectionError,
			apperror.WithCause(err),
			apperror.WithContext("failed to create wsconn"))
	}

	conn.OnMessage(s.handleMessage)
	conn.OnStateChange(func(state wsconn.State, err error) {
		if err != nil {
			s.logger.Warn(context.Background(), "binance stream state change",
				"state", string(state), "error", err)
			return
		}
		s.logger.Debug(context.Background(), "binance stream state change", "state", string(state))
	})

	if err := conn.ConnectWithRetry(ctx); err != nil {
		return apperror.New(apperror.CodeExchangeConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to connect to Binance stream"))
	}

	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()

	s.logger.Info(ctx, "binance stream connected", "symbols", s.config.Symbols)

	return nil
}

// Close shuts down the stream connection.
func (s *Stream) Close() error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// IsConnected reports whether the stream is live.
func (s *Stream) IsConnected() bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return s.conn != nil && s.conn.IsConnected()
}

// LatestPrice returns the cached mid price for a symbol. ok is false when no
// quote arrived yet or the last one is older than the stale timeout.
func (s *Stream) LatestPrice(symbol string) (decimal.Decimal, bool) {
	s.mu.RLock()
	q, found := s.latest[symbol]
	s.mu.RUnlock()

	if !found {
		return decimal.Zero, false
	}
	if s.now().Sub(q.ts) > s.config.StaleTimeout {
		return decimal.Zero, false
	}
	return q.price, true
}

// buildStreamURL constructs the combined streams URL, which auto-subscribes.
func (s *Stream) buildStreamURL() string {
	streams := make([]string, 0, len(s.config.Symbols))
	for _, sym := range s.config.Symbols {
		streams = append(streams, strings.ToLower(sym)+"@bookTicker")
	}
	return s.config.WebSocketURL + "/stream?streams=" + strings.Join(streams, "/")
}

// handleMessage parses a combined stream frame and updates the quote cache.
func (s *Stream) handleMessage(ctx context.Context, msg []byte) {
	var frame combinedStreamMessage
	if err := json.Unmarshal(msg, &frame); err != nil {
		s.logger.Warn(ctx, "binance stream: bad frame", "error", err)
		return
	}

	if !strings.HasSuffix(frame.Stream, "@bookTicker") {
		return
	}

	var event BookTickerEvent
	if err := json.Unmarshal(frame.Data, &event); err != nil {
		s.logger.Warn(ctx, "binance stream: bad bookTicker event", "error", err)
		return
	}

	bid := parseDecimal(event.BidPrice)
	ask := parseDecimal(event.AskPrice)
	if !bid.IsPositive() || !ask.IsPositive() {
		return
	}

	mid := bid.Add(ask).Div(decimal.NewFromInt(2))

	s.mu.Lock()
	s.latest[event.Symbol] = streamQuote{price: mid, ts: s.now()}
	s.mu.Unlock()
}
