package marketdata

import (
	"context"
	"strings"
)

// Pricer resolves a ledger ticker to a live price. Crypto positions are
// keyed as TICKER/USDT pairs, so a slash picks the exchange feed.
type Pricer struct {
	Stocks *YahooClient
	Crypto *BinanceClient
}

func NewPricer(stocks *YahooClient, crypto *BinanceClient) *Pricer {
	return &Pricer{Stocks: stocks, Crypto: crypto}
}

// IsCryptoTicker reports whether the ledger ticker names a crypto pair.
func IsCryptoTicker(ticker string) bool {
	return strings.Contains(ticker, "/")
}

func (p *Pricer) LatestPrice(ctx context.Context, ticker string) (float64, error) {
	if IsCryptoTicker(ticker) {
		return p.Crypto.LatestPrice(ctx, ticker)
	}

	quote, err := p.Stocks.Quote(ctx, ticker)
	if err != nil {
		return 0, err
	}
	return quote.Price, nil
}
