// Package broker is the prediction-market client: price history for
// the agents, open positions for the conflict guard, order placement
// for the engine. All endpoints are plain REST + JSON.
package broker

import (
	"net/http"
	"time"

	"quorum-trading-bot/internal/interfaces"
)

type Params struct {
	Mode       string // DRY_RUN or LIVE
	GammaURL   string
	DataAPIURL string
	ClobURL    string
	APIKey     string
	Wallet     string // proxy wallet address whose positions are queried
}

// New builds the REST broker. In DRY_RUN mode orders are simulated
// locally; market reads still go to the live endpoints.
func New(p Params) interfaces.Broker {
	if p.GammaURL == "" {
		p.GammaURL = "https://gamma-api.polymarket.com"
	}
	if p.DataAPIURL == "" {
		p.DataAPIURL = "https://data-api.polymarket.com"
	}
	if p.ClobURL == "" {
		p.ClobURL = "https://clob.polymarket.com"
	}
	return &restBroker{
		params: p,
		http:   &http.Client{Timeout: 15 * time.Second},
	}
}
