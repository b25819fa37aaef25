package marketdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"

	"moonshot/internal/logger"
)

// BinanceClient fetches crypto candles against USDT pairs. Public market
// data needs no API keys.
type BinanceClient struct {
	client *binance.Client
	logger *logger.Logger
}

func NewBinanceClient(log *logger.Logger) *BinanceClient {
	return &BinanceClient{
		client: binance.NewClient("", ""),
		logger: log,
	}
}

// BinanceSymbol maps a bare token ticker or a TICKER/USDT pair to the
// exchange symbol form, e.g. "fet" or "FET/USDT" -> "FETUSDT".
func BinanceSymbol(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if base, _, found := strings.Cut(t, "/"); found {
		t = base
	}
	return t + "USDT"
}

// Klines returns daily candles for the token, oldest first.
func (c *BinanceClient) Klines(ctx context.Context, ticker string, limit int) ([]Candle, error) {
	symbol := BinanceSymbol(ticker)

	klines, err := c.client.NewKlinesService().
		Symbol(symbol).
		Interval("1d").
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch klines for %s: %w", symbol, err)
	}

	candles := make([]Candle, 0, len(klines))
	for i, k := range klines {
		open, err := decimal.NewFromString(k.Open)
		if err != nil {
			return nil, fmt.Errorf("parse open price at index %d: %w", i, err)
		}
		high, err := decimal.NewFromString(k.High)
		if err != nil {
			return nil, fmt.Errorf("parse high price at index %d: %w", i, err)
		}
		low, err := decimal.NewFromString(k.Low)
		if err != nil {
			return nil, fmt.Errorf("parse low price at index %d: %w", i, err)
		}
		closePrice, err := decimal.NewFromString(k.Close)
		if err != nil {
			return nil, fmt.Errorf("parse close price at index %d: %w", i, err)
		}
		volume, err := decimal.NewFromString(k.Volume)
		if err != nil {
			return nil, fmt.Errorf("parse volume at index %d: %w", i, err)
		}

		candles = append(candles, Candle{
			Time:   time.UnixMilli(k.OpenTime),
			Open:   open.InexactFloat64(),
			High:   high.InexactFloat64(),
			Low:    low.InexactFloat64(),
			Close:  closePrice.InexactFloat64(),
			Volume: volume.InexactFloat64(),
		})
	}
	return candles, nil
}

// LatestPrice returns the last traded price for the token.
func (c *BinanceClient) LatestPrice(ctx context.Context, ticker string) (float64, error) {
	symbol := BinanceSymbol(ticker)

	prices, err := c.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch price for %s: %w", symbol, err)
	}
	if len(prices) == 0 {
		return 0, fmt.Errorf("no price for %s", symbol)
	}

	price, err := decimal.NewFromString(prices[0].Price)
	if err != nil {
		return 0, fmt.Errorf("parse price for %s: %w", symbol, err)
	}
	return price.InexactFloat64(), nil
}
