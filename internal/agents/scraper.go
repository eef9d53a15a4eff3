package agents

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// newsSource defines one crypto news site to scrape headlines from.
type newsSource struct {
	Name       string
	BaseURL    string
	SearchPath string // "{asset}" is replaced with the lowercased query term
	Selector   string // CSS selector for headline nodes
}

func defaultNewsSources() []newsSource {
	return []newsSource{
		{
			Name:       "CoinDesk",
			BaseURL:    "https://www.coindesk.com",
			SearchPath: "/search?s={asset}",
			Selector:   "a h2, a h3",
		},
		{
			Name:       "CoinTelegraph",
			BaseURL:    "https://cointelegraph.com",
			SearchPath: "/tags/{asset}",
			Selector:   "article a span",
		},
	}
}

// queryTerms maps asset symbols to the words news sites index them by.
var queryTerms = map[string]string{
	"BTC": "bitcoin",
	"ETH": "ethereum",
	"SOL": "solana",
	"XRP": "xrp",
}

// headlineScraper fetches recent headline texts for an asset.
type headlineScraper struct {
	sources      []newsSource
	timeout      time.Duration
	maxHeadlines int
}

func newHeadlineScraper(timeout time.Duration, maxHeadlines int) *headlineScraper {
	return &headlineScraper{
		sources:      defaultNewsSources(),
		timeout:      timeout,
		maxHeadlines: maxHeadlines,
	}
}

// Scrape visits each source and collects up to maxHeadlines headline
// strings. Per-source failures are tolerated; an error is returned only
// when every source failed.
func (s *headlineScraper) Scrape(ctx context.Context, asset string) ([]string, error) {
	term := queryTerm(asset)

	headlines := []string{}
	perSource := s.maxHeadlines / len(s.sources)
	if perSource < 1 {
		perSource = 1
	}

	var lastErr error
	failures := 0
	for _, source := range s.sources {
		got, err := s.scrapeSource(ctx, source, term, perSource)
		if err != nil {
			failures++
			lastErr = err
			continue
		}
		headlines = append(headlines, got...)
	}

	if failures == len(s.sources) {
		return nil, fmt.Errorf("all %d sources failed: %w", failures, lastErr)
	}
	return headlines, nil
}

func (s *headlineScraper) scrapeSource(ctx context.Context, source newsSource, term string, maxHeadlines int) ([]string, error) {
	headlines := []string{}

	c := colly.NewCollector(
		colly.AllowedDomains(getDomain(source.BaseURL)),
		colly.MaxDepth(1),
		colly.Async(false),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	})

	c.OnHTML(source.Selector, func(e *colly.HTMLElement) {
		if len(headlines) >= maxHeadlines {
			return
		}
		title := headlineText(e.DOM)
		if title == "" {
			return
		}
		headlines = append(headlines, title)
	})

	searchURL := source.BaseURL + strings.ReplaceAll(source.SearchPath, "{asset}", term)
	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", searchURL, err)
	}
	c.Wait()

	return headlines, nil
}

// headlineText extracts the trimmed text of a headline node, preferring
// the node's own text over link boilerplate in child elements.
func headlineText(sel *goquery.Selection) string {
	title := strings.TrimSpace(sel.Text())
	if len(title) < 12 {
		// too short to be a headline (nav items, "Read more" stubs)
		return ""
	}
	return title
}

func queryTerm(asset string) string {
	if t, ok := queryTerms[strings.ToUpper(asset)]; ok {
		return t
	}
	return strings.ToLower(asset)
}

func getDomain(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	return u.Host
}
