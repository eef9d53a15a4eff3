package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"quorum-trading-bot/internal/logger"
	"quorum-trading-bot/internal/types"
)

type restBroker struct {
	params   Params
	http     *http.Client
	orderSeq atomic.Int64
}

// tokenSlugs maps asset symbols to the CLOB price-history market slugs.
var tokenSlugs = map[string]string{
	"BTC": "btc-usd",
	"ETH": "eth-usd",
	"SOL": "sol-usd",
	"XRP": "xrp-usd",
}

func (b *restBroker) LTP(ctx context.Context, asset string) (float64, error) {
	candles, err := b.RecentCandles(ctx, asset, 1)
	if err != nil {
		return 0, err
	}
	if len(candles) == 0 {
		return 0, fmt.Errorf("no price history for %s", asset)
	}
	return candles[len(candles)-1].Close, nil
}

// pricePoint is one sample of the CLOB prices-history response.
type pricePoint struct {
	T int64   `json:"t"`
	P float64 `json:"p"`
}

func (b *restBroker) RecentCandles(ctx context.Context, asset string, n int) ([]types.Candle, error) {
	slug, ok := tokenSlugs[strings.ToUpper(asset)]
	if !ok {
		slug = strings.ToLower(asset) + "-usd"
	}

	q := url.Values{}
	q.Set("market", slug)
	q.Set("interval", "1m")
	q.Set("fidelity", "1")
	endpoint := b.params.ClobURL + "/prices-history?" + q.Encode()

	var resp struct {
		History []pricePoint `json:"history"`
	}
	if err := b.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("prices-history %s: %w", asset, err)
	}

	points := resp.History
	if len(points) > n {
		points = points[len(points)-n:]
	}

	// The price feed is samples, not bars; each sample becomes a flat
	// candle. Agents only consume closes.
	candles := make([]types.Candle, len(points))
	for i, p := range points {
		candles[i] = types.Candle{Ts: p.T, Open: p.P, High: p.P, Low: p.P, Close: p.P}
	}
	return candles, nil
}

// positionRecord is the data-api positions response shape. Fields may
// be missing on malformed records; zero values flow through to the
// guard, which skips anything it cannot classify.
type positionRecord struct {
	Title   string  `json:"title"`
	Outcome string  `json:"outcome"`
	Size    float64 `json:"size"`
}

func (b *restBroker) Positions(ctx context.Context) ([]types.Position, error) {
	q := url.Values{}
	if b.params.Wallet != "" {
		q.Set("user", b.params.Wallet)
	}
	endpoint := b.params.DataAPIURL + "/positions?" + q.Encode()

	var records []positionRecord
	if err := b.getJSON(ctx, endpoint, &records); err != nil {
		return nil, fmt.Errorf("positions query: %w", err)
	}

	positions := make([]types.Position, len(records))
	for i, r := range records {
		positions[i] = types.Position{Title: r.Title, Outcome: r.Outcome, Size: r.Size}
	}
	return positions, nil
}

func (b *restBroker) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	if b.params.Mode == "DRY_RUN" {
		id := fmt.Sprintf("dry-%d-%d", req.Epoch, b.orderSeq.Add(1))
		logger.Info(ctx, "Simulated order (DRY_RUN)",
			"asset", req.Asset,
			"direction", req.Direction,
			"stake", req.Stake,
			"epoch", req.Epoch,
			"order_id", id,
		)
		return types.OrderResp{OrderID: id, Status: "SIMULATED"}, nil
	}

	body, err := json.Marshal(map[string]any{
		"asset":     req.Asset,
		"side":      string(req.Direction),
		"stake":     req.Stake,
		"epoch":     req.Epoch,
		"tag":       req.Tag,
		"orderType": "FOK",
	})
	if err != nil {
		return types.OrderResp{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.params.ClobURL+"/order", bytes.NewReader(body))
	if err != nil {
		return types.OrderResp{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if b.params.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+b.params.APIKey)
	}

	resp, err := b.http.Do(httpReq)
	if err != nil {
		return types.OrderResp{}, fmt.Errorf("order placement: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return types.OrderResp{}, fmt.Errorf("order rejected: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var orderResp types.OrderResp
	if err := json.NewDecoder(resp.Body).Decode(&orderResp); err != nil {
		return types.OrderResp{}, fmt.Errorf("order response decode: %w", err)
	}
	return orderResp, nil
}

func (b *restBroker) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := b.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d from %s", resp.StatusCode, endpoint)
	}

	logger.Debug(ctx, "Market data fetched", "endpoint", endpoint, "duration_ms", time.Since(start).Milliseconds())
	return json.NewDecoder(resp.Body).Decode(out)
}
