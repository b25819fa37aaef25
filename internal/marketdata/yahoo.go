package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"moonshot/internal/logger"
)

const (
	yahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart/%s?range=%s&interval=1d"
	yahooQuoteURL = "https://query1.finance.yahoo.com/v7/finance/quote?symbols=%s"

	// Yahoo rejects Go's default agent.
	yahooUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"
)

// YahooClient fetches equity history and quotes from the public Yahoo
// Finance endpoints.
type YahooClient struct {
	httpClient *http.Client
	logger     *logger.Logger
}

func NewYahooClient(log *logger.Logger) *YahooClient {
	return &YahooClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log,
	}
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			RegularMarketPrice float64 `json:"regularMarketPrice"`
			MarketCap          float64 `json:"marketCap"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

func (c *YahooClient) get(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", yahooUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yahoo returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parse yahoo response: %w", err)
	}
	return nil
}

// DailyHistory returns ~6 months of daily candles, oldest first. An empty
// slice means Yahoo has no data for the ticker.
func (c *YahooClient) DailyHistory(ctx context.Context, ticker string) ([]Candle, error) {
	rawURL := fmt.Sprintf(yahooChartURL, url.PathEscape(ticker), "6mo")

	var chart yahooChartResponse
	if err := c.get(ctx, rawURL, &chart); err != nil {
		return nil, err
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	res := chart.Chart.Result[0]
	quote := res.Indicators.Quote[0]

	candles := make([]Candle, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == 0 {
			continue // holidays come through as null bars
		}
		candles = append(candles, Candle{
			Time:   time.Unix(ts, 0),
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  quote.Close[i],
			Volume: at(quote.Volume, i),
		})
	}
	return candles, nil
}

// Quote returns the latest price and market cap for a ticker.
func (c *YahooClient) Quote(ctx context.Context, ticker string) (StockQuote, error) {
	rawURL := fmt.Sprintf(yahooQuoteURL, url.QueryEscape(ticker))

	var quote yahooQuoteResponse
	if err := c.get(ctx, rawURL, &quote); err != nil {
		return StockQuote{}, err
	}
	if len(quote.QuoteResponse.Result) == 0 {
		return StockQuote{}, fmt.Errorf("no quote for %s", ticker)
	}

	r := quote.QuoteResponse.Result[0]
	return StockQuote{Price: r.RegularMarketPrice, MarketCap: r.MarketCap}, nil
}

func at(s []float64, i int) float64 {
	if i < len(s) {
		return s[i]
	}
	return 0
}
