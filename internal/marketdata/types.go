package marketdata

import "time"

// Candle is one daily OHLCV bar.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// StockQuote is the latest snapshot for an equity.
type StockQuote struct {
	Price     float64
	MarketCap float64
}
