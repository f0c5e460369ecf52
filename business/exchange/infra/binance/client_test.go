package binance

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/crossarb/internal/apperror"
	"github.com/fd1az/crossarb/internal/logger"
)

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		BaseURL:   srv.URL,
		APIKey:    "test-key",
		APISecret: "test-secret",
		Timeout:   2 * time.Second,
	}, testLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestGetTickerPrice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != tickerEndpoint {
			t.Errorf("path = %s, want %s", r.URL.Path, tickerEndpoint)
		}
		if got := r.URL.Query().Get("symbol"); got != "ETHUSDC" {
			t.Errorf("symbol = %s, want ETHUSDC", got)
		}
		w.Write([]byte(`{"symbol":"ETHUSDC","price":"3010.55000000"}`))
	})

	price, err := client.GetTickerPrice(context.Background(), "ETHUSDC")
	if err != nil {
		t.Fatalf("GetTickerPrice: %v", err)
	}
	if !price.Equal(decimal.RequireFromString("3010.55")) {
		t.Errorf("price = %s, want 3010.55", price)
	}
}

func TestGetTickerPriceAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	})

	_, err := client.GetTickerPrice(context.Background(), "NOPE")
	if err == nil {
		t.Fatal("expected error for invalid symbol")
	}
	if !apperror.IsCode(err, apperror.CodePriceUnavailable) {
		t.Errorf("code = %s, want %s", apperror.GetCode(err), apperror.CodePriceUnavailable)
	}
}

func TestGetBalanceSignsRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-MBX-APIKEY"); got != "test-key" {
			t.Errorf("X-MBX-APIKEY = %q, want test-key", got)
		}
		q := r.URL.Query()
		if q.Get("signature") == "" {
			t.Error("missing signature param")
		}
		if q.Get("timestamp") == "" {
			t.Error("missing timestamp param")
		}
		w.Write([]byte(`{"balances":[
			{"asset":"USDC","free":"1523.75","locked":"0.00"},
			{"asset":"ETH","free":"0.50000000","locked":"0.00"}
		]}`))
	})

	free, err := client.GetBalance(context.Background(), "USDC")
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if !free.Equal(decimal.RequireFromString("1523.75")) {
		t.Errorf("free = %s, want 1523.75", free)
	}
}

func TestGetBalanceUnknownAssetIsZero(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"balances":[{"asset":"ETH","free":"1.0","locked":"0"}]}`))
	})

	free, err := client.GetBalance(context.Background(), "USDC")
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if !free.IsZero() {
		t.Errorf("free = %s, want 0", free)
	}
}

func TestGetBalanceWithoutCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server without credentials")
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL}, testLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.GetBalance(context.Background(), "USDC")
	if !apperror.IsCode(err, apperror.CodeMissingCredentials) {
		t.Errorf("code = %s, want %s", apperror.GetCode(err), apperror.CodeMissingCredentials)
	}
}

func TestGetSymbolFilters(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbols":[{
			"symbol":"ETHUSDC",
			"status":"TRADING",
			"filters":[
				{"filterType":"LOT_SIZE","minQty":"0.00010000","stepSize":"0.00010000"},
				{"filterType":"NOTIONAL","minNotional":"5.00000000"}
			]
		}]}`))
	})

	filters, err := client.GetSymbolFilters(context.Background(), "ETHUSDC")
	if err != nil {
		t.Fatalf("GetSymbolFilters: %v", err)
	}
	if !filters.MinQty.Equal(decimal.RequireFromString("0.0001")) {
		t.Errorf("MinQty = %s, want 0.0001", filters.MinQty)
	}
	if !filters.StepSize.Equal(decimal.RequireFromString("0.0001")) {
		t.Errorf("StepSize = %s, want 0.0001", filters.StepSize)
	}
	if !filters.MinNotional.Equal(decimal.RequireFromString("5")) {
		t.Errorf("MinNotional = %s, want 5", filters.MinNotional)
	}
}

func TestSubmitMarketOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		q := r.URL.Query()
		if q.Get("type") != "MARKET" {
			t.Errorf("type = %s, want MARKET", q.Get("type"))
		}
		if q.Get("side") != "BUY" {
			t.Errorf("side = %s, want BUY", q.Get("side"))
		}
		w.Write([]byte(`{
			"symbol":"ETHUSDC","orderId":4521,"transactTime":1718000000000,
			"status":"FILLED","side":"BUY",
			"origQty":"0.25","executedQty":"0.25","cummulativeQuoteQty":"752.50"
		}`))
	})

	ack, err := client.SubmitMarketOrder(context.Background(), "ETHUSDC", "BUY", decimal.RequireFromString("0.25"))
	if err != nil {
		t.Fatalf("SubmitMarketOrder: %v", err)
	}
	if ack.OrderID != "4521" {
		t.Errorf("OrderID = %s, want 4521", ack.OrderID)
	}
	if ack.Status != "FILLED" {
		t.Errorf("Status = %s, want FILLED", ack.Status)
	}
	// 752.50 / 0.25 = 3010
	if !ack.AvgPrice.Equal(decimal.RequireFromString("3010")) {
		t.Errorf("AvgPrice = %s, want 3010", ack.AvgPrice)
	}
}

func TestSubmitMarketOrderRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-2010,"msg":"Account has insufficient balance for requested action."}`))
	})

	_, err := client.SubmitMarketOrder(context.Background(), "ETHUSDC", "BUY", decimal.RequireFromString("100"))
	if !apperror.IsCode(err, apperror.CodeOrderRejected) {
		t.Errorf("code = %s, want %s", apperror.GetCode(err), apperror.CodeOrderRejected)
	}
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		venue string
		want  string
	}{
		{"NEW", "new"},
		{"PARTIALLY_FILLED", "partially_filled"},
		{"FILLED", "filled"},
		{"CANCELED", "canceled"},
		{"EXPIRED", "canceled"},
		{"REJECTED", "rejected"},
	}

	for _, tt := range tests {
		if got := string(mapStatus(tt.venue)); got != tt.want {
			t.Errorf("mapStatus(%s) = %s, want %s", tt.venue, got, tt.want)
		}
	}
}
