// Package charting renders the candlestick chart attached to each
// notification.
package charting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"moonshot/internal/logger"
	"moonshot/internal/marketdata"
)

type Generator struct {
	dir    string
	logger *logger.Logger
}

func NewGenerator(dir string, log *logger.Logger) (*Generator, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chart dir: %w", err)
	}
	return &Generator{dir: dir, logger: log}, nil
}

// Render writes a daily kline chart with MA(20)/MA(50) overlays and
// returns the file path. The caller removes the file after sending it.
func (g *Generator) Render(ticker string, candles []marketdata.Candle) (string, error) {
	if len(candles) == 0 {
		return "", fmt.Errorf("no candles for %s", ticker)
	}

	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: ticker, Subtitle: "Daily"}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeChalk,
			Width:  "1200px",
			Height: "600px",
		}),
	)

	dates := make([]string, len(candles))
	bars := make([]opts.KlineData, len(candles))
	for i, c := range candles {
		dates[i] = c.Time.Format("2006-01-02")
		bars[i] = opts.KlineData{Value: [4]float64{c.Open, c.Close, c.Low, c.High}}
	}
	kline.SetXAxis(dates).AddSeries("price", bars)

	for _, period := range []int{20, 50} {
		if ma := movingAverage(candles, period); ma != nil {
			line := charts.NewLine()
			line.SetXAxis(dates).AddSeries(fmt.Sprintf("MA%d", period), ma)
			kline.Overlap(line)
		}
	}

	path := filepath.Join(g.dir, chartFilename(ticker))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()

	if err := kline.Render(f); err != nil {
		return "", fmt.Errorf("render chart: %w", err)
	}

	g.logger.Debug("chart rendered", "ticker", ticker, "path", path)
	return path, nil
}

// Cleanup deletes a chart after it has been sent.
func (g *Generator) Cleanup(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		g.logger.Warn("could not delete chart", "path", path, "error", err)
	}
}

func chartFilename(ticker string) string {
	safe := strings.NewReplacer("/", "_", " ", "_").Replace(ticker)
	return safe + "_chart.html"
}

// movingAverage returns an SMA series aligned to the candle index, with
// leading warmup slots left empty. Nil when there is not enough data.
func movingAverage(candles []marketdata.Candle, period int) []opts.LineData {
	if len(candles) < period {
		return nil
	}

	values := make([]float64, len(candles))
	for i, c := range candles {
		values[i] = c.Close
	}

	sma := trend.NewSmaWithPeriod[float64](period)
	out := helper.ChanToSlice(sma.Compute(helper.SliceToChan(values)))

	line := make([]opts.LineData, len(candles))
	offset := len(candles) - len(out)
	for i := range line {
		if i < offset {
			line[i] = opts.LineData{}
			continue
		}
		line[i] = opts.LineData{Value: out[i-offset]}
	}
	return line
}
