package broker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quorum-trading-bot/internal/types"
)

func TestPositionsParsesDataAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/positions") {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("user"); got != "0xabc" {
			t.Errorf("expected user=0xabc, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"title":"BTC will go down in the next 15 minutes","outcome":"Down","size":31.0},
			{"title":"ETH up or down","size":0.5}
		]`))
	}))
	defer srv.Close()

	b := New(Params{Mode: "DRY_RUN", DataAPIURL: srv.URL, Wallet: "0xabc"})

	positions, err := b.Positions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(positions))
	}
	if positions[0].Outcome != "Down" || positions[0].Size != 31.0 {
		t.Errorf("unexpected first position: %+v", positions[0])
	}
	// Missing fields decode to zero values; the guard skips them later.
	if positions[1].Outcome != "" {
		t.Errorf("expected empty outcome, got %q", positions[1].Outcome)
	}
}

func TestRecentCandlesFromPriceHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("market"); got != "btc-usd" {
			t.Errorf("expected market=btc-usd, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"history":[
			{"t":100,"p":0.48},{"t":160,"p":0.50},{"t":220,"p":0.53}
		]}`))
	}))
	defer srv.Close()

	b := New(Params{Mode: "DRY_RUN", ClobURL: srv.URL})

	candles, err := b.RecentCandles(context.Background(), "BTC", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("expected trailing 2 candles, got %d", len(candles))
	}
	if candles[1].Close != 0.53 {
		t.Errorf("expected latest close 0.53, got %f", candles[1].Close)
	}
}

func TestPlaceOrderDryRunSkipsNetwork(t *testing.T) {
	// No server wired at all; DRY_RUN must never reach the network.
	b := New(Params{Mode: "DRY_RUN", ClobURL: "http://127.0.0.1:0"})

	resp, err := b.PlaceOrder(context.Background(), types.OrderReq{
		Asset:     "BTC",
		Direction: types.DirectionUp,
		Stake:     5.0,
		Epoch:     12345,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != "SIMULATED" {
		t.Errorf("expected SIMULATED status, got %q", resp.Status)
	}
	if resp.OrderID == "" {
		t.Error("expected a fabricated order id")
	}
}

func TestPlaceOrderLiveRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "insufficient balance", http.StatusBadRequest)
	}))
	defer srv.Close()

	b := New(Params{Mode: "LIVE", ClobURL: srv.URL})

	_, err := b.PlaceOrder(context.Background(), types.OrderReq{
		Asset:     "BTC",
		Direction: types.DirectionDown,
		Stake:     5.0,
	})
	if err == nil {
		t.Fatal("expected rejection error")
	}
	if !strings.Contains(err.Error(), "status 400") {
		t.Errorf("unexpected error: %v", err)
	}
}
