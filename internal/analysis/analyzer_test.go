package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moonshot/internal/ai"
	"moonshot/internal/logger"
	"moonshot/internal/marketdata"
)

type fakeStocks struct {
	candles []marketdata.Candle
	quote   marketdata.StockQuote
}

func (f *fakeStocks) DailyHistory(context.Context, string) ([]marketdata.Candle, error) {
	return f.candles, nil
}

func (f *fakeStocks) Quote(context.Context, string) (marketdata.StockQuote, error) {
	return f.quote, nil
}

type fakeCrypto struct {
	candles []marketdata.Candle
}

func (f *fakeCrypto) Klines(context.Context, string, int) ([]marketdata.Candle, error) {
	return f.candles, nil
}

type fakeSentiment struct {
	result ai.Sentiment
}

func (f *fakeSentiment) Sentiment(context.Context, string, string) ai.Sentiment {
	return f.result
}

// fallingCandles produces a strictly declining close series, which pushes
// RSI toward zero regardless of period warmup.
func fallingCandles(n int, start, step, volume float64) []marketdata.Candle {
	candles := make([]marketdata.Candle, n)
	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range candles {
		c := start - step*float64(i)
		candles[i] = marketdata.Candle{
			Time:   day.AddDate(0, 0, i),
			Open:   c + step,
			High:   c + step,
			Low:    c,
			Close:  c,
			Volume: volume,
		}
	}
	return candles
}

func TestScoreStockRSIBands(t *testing.T) {
	tests := []struct {
		rsi      float64
		points   int
		contains string
	}{
		{60, 30, "Healthy Momentum"},
		{50, 0, "Neutral/Overheated"},
		{70, 0, "Neutral/Overheated"},
		{30, 40, "Oversold Bounce"},
		{85, 0, "Neutral/Overheated"},
	}
	for _, tt := range tests {
		pts, note := scoreStockRSI(tt.rsi)
		assert.Equal(t, tt.points, pts, "rsi=%v", tt.rsi)
		assert.Contains(t, note, tt.contains, "rsi=%v", tt.rsi)
	}
}

func TestScoreCryptoRSIBands(t *testing.T) {
	tests := []struct {
		rsi      float64
		points   int
		contains string
	}{
		{55, 30, "Strong Trend"},
		{40, 40, "Buy Zone"},
		{44, 0, "Risky"}, // between the buy zone and the trend band
		{70, 0, "Risky"},
	}
	for _, tt := range tests {
		pts, note := scoreCryptoRSI(tt.rsi)
		assert.Equal(t, tt.points, pts, "rsi=%v", tt.rsi)
		assert.Contains(t, note, tt.contains, "rsi=%v", tt.rsi)
	}
}

func TestScoreMarketCap(t *testing.T) {
	pts, note := scoreMarketCap(1_000_000_000)
	assert.Equal(t, 20, pts)
	assert.Equal(t, "Moonshot Cap Size", note)

	for _, mcap := range []float64{0, 300_000_000, 50_000_000_000} {
		pts, note := scoreMarketCap(mcap)
		assert.Zero(t, pts, "cap=%v", mcap)
		assert.Equal(t, "Cap Size Warning", note)
	}
}

func TestScoreCryptoLiquidity(t *testing.T) {
	// 1M units/day at $10 = $10M notional.
	pts, note := scoreCryptoLiquidity(fallingCandles(50, 10, 0.01, 1_000_000))
	assert.Equal(t, 20, pts)
	assert.Equal(t, "High Liquidity", note)

	pts, note = scoreCryptoLiquidity(fallingCandles(50, 10, 0.01, 100))
	assert.Zero(t, pts)
	assert.Equal(t, "Low Liquidity Warning", note)
}

func TestLatestRSIExtremes(t *testing.T) {
	down := closes(fallingCandles(60, 100, 0.5, 0))
	rsi, err := latestRSI(down, rsiPeriod)
	require.NoError(t, err)
	assert.Less(t, rsi, 35.0)

	up := make([]float64, 60)
	for i := range up {
		up[i] = 10 + float64(i)
	}
	rsi, err = latestRSI(up, rsiPeriod)
	require.NoError(t, err)
	assert.Greater(t, rsi, 70.0)
}

func TestLatestRSINotEnoughData(t *testing.T) {
	_, err := latestRSI([]float64{1, 2, 3}, rsiPeriod)
	assert.Error(t, err)
}

func TestAnalyzeStockBlendsAllLayers(t *testing.T) {
	stocks := &fakeStocks{
		candles: fallingCandles(60, 100, 0.5, 0),
		quote:   marketdata.StockQuote{Price: 70, MarketCap: 1_000_000_000},
	}
	sentiment := &fakeSentiment{result: ai.Sentiment{Score: 80, Reason: "Trending on X"}}
	a := NewAnalyzer(stocks, nil, sentiment, logger.New("error"))

	report, err := a.AnalyzeStock(context.Background(), "RKLB")
	require.NoError(t, err)
	require.NotNil(t, report)

	// Oversold (40) + cap size (20) + sentiment 80*0.5 (40).
	assert.Equal(t, 100, report.Score)
	assert.Equal(t, "Stock", report.Type)
	assert.Contains(t, report.Technical, "Oversold Bounce")
	assert.Equal(t, "Moonshot Cap Size", report.Fundamental)
	assert.Contains(t, report.Sentiment, "Trending on X")
	assert.InDelta(t, stocks.candles[len(stocks.candles)-1].Close, report.Price, 1e-9)
	assert.NotEmpty(t, report.Candles)
}

func TestAnalyzeStockNoHistory(t *testing.T) {
	a := NewAnalyzer(&fakeStocks{}, nil, &fakeSentiment{}, logger.New("error"))

	report, err := a.AnalyzeStock(context.Background(), "GHOST")
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestAnalyzeCryptoCapsScore(t *testing.T) {
	crypto := &fakeCrypto{candles: fallingCandles(50, 10, 0.05, 1_000_000)}
	sentiment := &fakeSentiment{result: ai.Sentiment{Score: 100, Reason: "Euphoria"}}
	a := NewAnalyzer(nil, crypto, sentiment, logger.New("error"))

	report, err := a.AnalyzeCrypto(context.Background(), "FET")
	require.NoError(t, err)
	require.NotNil(t, report)

	// Buy zone (40) + liquidity (20) + sentiment 100*0.6 (60) = 120, capped.
	assert.Equal(t, 99, report.Score)
	assert.Equal(t, "Crypto", report.Type)
}

func TestAnalyzeCryptoNeutralSentiment(t *testing.T) {
	crypto := &fakeCrypto{candles: fallingCandles(50, 10, 0.05, 1_000_000)}
	sentiment := &fakeSentiment{result: ai.NeutralSentiment()}
	a := NewAnalyzer(nil, crypto, sentiment, logger.New("error"))

	report, err := a.AnalyzeCrypto(context.Background(), "FET")
	require.NoError(t, err)
	require.NotNil(t, report)

	// Buy zone (40) + liquidity (20) + sentiment 50*0.6 (30).
	assert.Equal(t, 90, report.Score)
	assert.Contains(t, report.Sentiment, "Neutral (AI Error)")
}
