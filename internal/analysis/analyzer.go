// Package analysis computes the moonshot score: an RSI momentum band plus
// a capitalization/liquidity check plus an AI sentiment blend.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"

	"moonshot/internal/ai"
	"moonshot/internal/logger"
	"moonshot/internal/marketdata"
)

const (
	rsiPeriod = 14

	cryptoKlineLimit = 50

	minMoonshotCap = 300_000_000
	maxMoonshotCap = 20_000_000_000

	minCryptoDailyVolumeUSD = 5_000_000
)

// SentimentProvider is the AI vibe check; it must degrade to a neutral
// value rather than fail.
type SentimentProvider interface {
	Sentiment(ctx context.Context, ticker, assetType string) ai.Sentiment
}

// StockData feeds the equity side of the analyzer.
type StockData interface {
	DailyHistory(ctx context.Context, ticker string) ([]marketdata.Candle, error)
	Quote(ctx context.Context, ticker string) (marketdata.StockQuote, error)
}

// CryptoData feeds the token side.
type CryptoData interface {
	Klines(ctx context.Context, ticker string, limit int) ([]marketdata.Candle, error)
}

// Report is the scored analysis of one candidate.
type Report struct {
	Ticker      string  `json:"ticker"`
	Type        string  `json:"type"`
	Price       float64 `json:"price"`
	Technical   string  `json:"technical"`
	Fundamental string  `json:"fundamental"`
	Sentiment   string  `json:"sentiment"`
	Score       int     `json:"moonshot_score"`

	// Candles carries the history forward so the chart does not refetch.
	Candles []marketdata.Candle `json:"-"`
}

// Summary renders the report for the strategy prompt.
func (r *Report) Summary() string {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf("{\"ticker\": %q, \"moonshot_score\": %d}", r.Ticker, r.Score)
	}
	return string(data)
}

type Analyzer struct {
	stocks    StockData
	crypto    CryptoData
	sentiment SentimentProvider
	logger    *logger.Logger
}

func NewAnalyzer(stocks StockData, crypto CryptoData, sentiment SentimentProvider, log *logger.Logger) *Analyzer {
	return &Analyzer{stocks: stocks, crypto: crypto, sentiment: sentiment, logger: log}
}

// AnalyzeStock scores an equity candidate. A nil report with nil error
// means there was no data to analyze.
func (a *Analyzer) AnalyzeStock(ctx context.Context, ticker string) (*Report, error) {
	candles, err := a.stocks.DailyHistory(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		a.logger.Info("no price history", "ticker", ticker)
		return nil, nil
	}

	rsi, err := latestRSI(closes(candles), rsiPeriod)
	if err != nil {
		a.logger.Info("not enough history for RSI", "ticker", ticker, "bars", len(candles))
		return nil, nil
	}

	quote, err := a.stocks.Quote(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("quote %s: %w", ticker, err)
	}

	techPts, techNote := scoreStockRSI(rsi)
	capPts, capNote := scoreMarketCap(quote.MarketCap)
	sent := a.sentiment.Sentiment(ctx, ticker, "Stock")

	score := float64(techPts+capPts) + float64(sent.Score)*0.5

	return &Report{
		Ticker:      ticker,
		Type:        "Stock",
		Price:       candles[len(candles)-1].Close,
		Technical:   techNote,
		Fundamental: capNote,
		Sentiment:   fmt.Sprintf("%s (%d/100)", sent.Reason, sent.Score),
		Score:       int(score),
		Candles:     candles,
	}, nil
}

// AnalyzeCrypto scores a token candidate against its USDT pair.
func (a *Analyzer) AnalyzeCrypto(ctx context.Context, ticker string) (*Report, error) {
	candles, err := a.crypto.Klines(ctx, ticker, cryptoKlineLimit)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		a.logger.Info("no klines", "ticker", ticker)
		return nil, nil
	}

	rsi, err := latestRSI(closes(candles), rsiPeriod)
	if err != nil {
		a.logger.Info("not enough klines for RSI", "ticker", ticker, "bars", len(candles))
		return nil, nil
	}

	techPts, techNote := scoreCryptoRSI(rsi)
	liqPts, liqNote := scoreCryptoLiquidity(candles)
	sent := a.sentiment.Sentiment(ctx, ticker, "Crypto Token")

	// Crypto is more sentiment-driven than equities; cap below 100.
	score := float64(techPts+liqPts) + float64(sent.Score)*0.6
	finalScore := int(score)
	if finalScore > 99 {
		finalScore = 99
	}

	return &Report{
		Ticker:      ticker,
		Type:        "Crypto",
		Price:       candles[len(candles)-1].Close,
		Technical:   techNote,
		Fundamental: liqNote,
		Sentiment:   fmt.Sprintf("%s (%d/100)", sent.Reason, sent.Score),
		Score:       finalScore,
		Candles:     candles,
	}, nil
}

// scoreStockRSI rewards breakout momentum (50-70) or an oversold bounce
// setup (<35).
func scoreStockRSI(rsi float64) (int, string) {
	switch {
	case rsi > 50 && rsi < 70:
		return 30, fmt.Sprintf("Healthy Momentum (RSI: %.2f)", rsi)
	case rsi < 35:
		return 40, fmt.Sprintf("Oversold Bounce (RSI: %.2f)", rsi)
	default:
		return 0, fmt.Sprintf("Neutral/Overheated (RSI: %.2f)", rsi)
	}
}

func scoreCryptoRSI(rsi float64) (int, string) {
	switch {
	case rsi > 45 && rsi < 65:
		return 30, fmt.Sprintf("Strong Trend (RSI: %.2f)", rsi)
	case rsi <= 40:
		return 40, fmt.Sprintf("Buy Zone (RSI: %.2f)", rsi)
	default:
		return 0, fmt.Sprintf("Risky (RSI: %.2f)", rsi)
	}
}

func scoreMarketCap(marketCap float64) (int, string) {
	if marketCap > minMoonshotCap && marketCap < maxMoonshotCap {
		return 20, "Moonshot Cap Size"
	}
	return 0, "Cap Size Warning"
}

func scoreCryptoLiquidity(candles []marketdata.Candle) (int, string) {
	if len(candles) == 0 {
		return 0, "Low Liquidity Warning"
	}

	var total float64
	for _, c := range candles {
		total += c.Volume * c.Close
	}
	if total/float64(len(candles)) > minCryptoDailyVolumeUSD {
		return 20, "High Liquidity"
	}
	return 0, "Low Liquidity Warning"
}

func closes(candles []marketdata.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// latestRSI returns the most recent RSI value for the series.
func latestRSI(values []float64, period int) (float64, error) {
	if len(values) < period+1 {
		return 0, fmt.Errorf("not enough data points for RSI: need %d, got %d", period+1, len(values))
	}

	rsi := momentum.NewRsiWithPeriod[float64](period)
	out := helper.ChanToSlice(rsi.Compute(helper.SliceToChan(values)))
	if len(out) == 0 {
		return 0, fmt.Errorf("RSI produced no output for %d data points", len(values))
	}
	return out[len(out)-1], nil
}
