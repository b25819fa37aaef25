// Package scheduler runs the periodic market scan: scout candidates,
// score them, ask for an allocation, book paper trades, notify, then
// re-check pending conditional orders against fresh prices.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"moonshot/internal/ai"
	"moonshot/internal/analysis"
	"moonshot/internal/charting"
	"moonshot/internal/config"
	"moonshot/internal/ledger"
	"moonshot/internal/logger"
	"moonshot/internal/marketdata"
	"moonshot/internal/telegram"
)

type Scheduler struct {
	ai       *ai.Client
	analyzer *analysis.Analyzer
	store    *ledger.Store
	charts   *charting.Generator
	notifier *telegram.Notifier
	pricer   *marketdata.Pricer
	cfg      *config.Config
	logger   *logger.Logger
}

func NewScheduler(
	aiClient *ai.Client,
	analyzer *analysis.Analyzer,
	store *ledger.Store,
	charts *charting.Generator,
	notifier *telegram.Notifier,
	pricer *marketdata.Pricer,
	cfg *config.Config,
	log *logger.Logger,
) *Scheduler {
	return &Scheduler{
		ai:       aiClient,
		analyzer: analyzer,
		store:    store,
		charts:   charts,
		notifier: notifier,
		pricer:   pricer,
		cfg:      cfg,
		logger:   log,
	}
}

// Run scans on the configured interval until the context is cancelled.
// The first scan fires immediately.
func (s *Scheduler) Run(ctx context.Context) {
	interval := s.cfg.ScanInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", "interval", interval.String())

	s.Scan(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.Scan(ctx)
		}
	}
}

// Scan runs one full cycle. Also triggered manually via /scan.
func (s *Scheduler) Scan(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in scan cycle", "panic", fmt.Sprint(r))
			s.notifier.NotifyError("scan panic", fmt.Errorf("%v", r))
		}
	}()

	s.logger.Info("starting market scan")

	candidates, _, err := s.ai.Scout(ctx)
	if err != nil {
		s.logger.Error("scout failed", "error", err)
		return
	}
	s.logger.Info("candidates scouted", "count", len(candidates))

	// Candidates are processed strictly one at a time: each analysis,
	// strategy decision and trade completes before the next begins.
	for _, c := range candidates {
		s.processCandidate(ctx, c)
	}

	s.evaluatePendingOrders(ctx)

	s.logger.Info("market scan complete")
}

func (s *Scheduler) processCandidate(ctx context.Context, c ai.Candidate) {
	assetType := c.Type
	if assetType == "" {
		assetType = "Stock"
	}
	isCrypto := strings.EqualFold(assetType, "Crypto")

	s.logger.Info("checking candidate", "ticker", c.Ticker, "type", assetType)

	var report *analysis.Report
	var err error
	if isCrypto {
		report, err = s.analyzer.AnalyzeCrypto(ctx, c.Ticker)
	} else {
		report, err = s.analyzer.AnalyzeStock(ctx, c.Ticker)
	}
	if err != nil {
		s.logger.Error("analysis failed", "ticker", c.Ticker, "error", err)
		return
	}
	if report == nil {
		return
	}

	s.logger.Info("candidate scored", "ticker", c.Ticker, "score", report.Score)
	if report.Score < s.cfg.Trading.MinScore {
		return
	}

	// Crypto positions are booked under their USDT pair so every later
	// price lookup knows which feed to use.
	ledgerTicker := c.Ticker
	if isCrypto {
		ledgerTicker = strings.ToUpper(c.Ticker) + "/USDT"
	}

	chartPath, err := s.charts.Render(ledgerTicker, report.Candles)
	if err != nil {
		s.logger.Error("chart render failed", "ticker", c.Ticker, "error", err)
		chartPath = ""
	}
	defer s.charts.Cleanup(chartPath)

	cash, err := s.store.Balance()
	if err != nil {
		s.logger.Error("read balance", "error", err)
		return
	}
	exposure, err := s.store.PositionExposure(ledgerTicker)
	if err != nil {
		s.logger.Error("read exposure", "ticker", ledgerTicker, "error", err)
		return
	}

	strategy, err := s.ai.Strategy(ctx, &ai.StrategyRequest{
		Ticker:    c.Ticker,
		Narrative: c.Narrative,
		Report:    report.Summary(),
		Cash:      cash,
		Exposure:  exposure,
	})
	if err != nil {
		s.logger.Error("strategy failed", "ticker", c.Ticker, "error", err)
		return
	}

	tradeLog := s.executeStrategy(ledgerTicker, report.Price, cash, strategy)

	caption := buildCaption(c, report, strategy, tradeLog)
	s.notifier.NotifyWithChart(caption, chartPath)
}

// executeStrategy books the paper trades a strategy asks for and returns
// the per-trade result lines for the notification.
func (s *Scheduler) executeStrategy(ticker string, price, cash float64, strategy *ai.Strategy) string {
	var log strings.Builder

	if strategy.SpotPct > 0 {
		spotAmt := cash * strategy.SpotPct / 100
		if spotAmt > s.cfg.Trading.MinTradeUSD {
			msg, err := s.store.ExecuteTrade(ticker, "BUY", price, spotAmt)
			if err != nil {
				msg = fmt.Sprintf("❌ BUY %s failed: %v", ticker, err)
				s.logger.Error("spot buy failed", "ticker", ticker, "error", err)
			}
			log.WriteString(msg + "\n")
		}
	}

	if strategy.LimitPct > 0 {
		limitAmt := cash * strategy.LimitPct / 100
		if limitAmt > s.cfg.Trading.MinTradeUSD {
			msg, err := s.store.LogPendingOrder(ticker, ledger.KindLimitBuy, strategy.LimitPrice, limitAmt)
			if err != nil {
				msg = fmt.Sprintf("❌ queue limit buy failed: %v", err)
				s.logger.Error("queue limit buy failed", "ticker", ticker, "error", err)
			}
			log.WriteString(msg + "\n")
		}
	}

	if _, err := s.store.LogPendingOrder(ticker, ledger.KindStopLoss, strategy.StopLoss, 0); err != nil {
		s.logger.Error("queue stop loss failed", "ticker", ticker, "error", err)
	}

	return log.String()
}

// evaluatePendingOrders re-checks every ticker with OPEN orders against a
// fresh price and reports any fills or stop triggers.
func (s *Scheduler) evaluatePendingOrders(ctx context.Context) {
	orders, err := s.store.OpenOrders()
	if err != nil {
		s.logger.Error("load open orders", "error", err)
		return
	}

	seen := make(map[string]bool, len(orders))
	for _, o := range orders {
		if seen[o.Ticker] {
			continue
		}
		seen[o.Ticker] = true

		price, err := s.pricer.LatestPrice(ctx, o.Ticker)
		if err != nil {
			s.logger.Warn("price check failed", "ticker", o.Ticker, "error", err)
			continue
		}

		msgs, err := s.store.CheckPendingOrders(o.Ticker, price)
		if err != nil {
			s.logger.Error("check pending orders", "ticker", o.Ticker, "error", err)
			continue
		}
		if len(msgs) > 0 {
			s.notifier.Notify(strings.Join(msgs, "\n"))
		}
	}
}

func buildCaption(c ai.Candidate, report *analysis.Report, strategy *ai.Strategy, tradeLog string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🚀 MOONSHOT FOUND: %s\n", c.Ticker))
	sb.WriteString(fmt.Sprintf("Score: %d/100\n", report.Score))
	sb.WriteString(fmt.Sprintf("🔥 Narrative: %s\n\n", c.Narrative))
	sb.WriteString("🧠 AI STRATEGY\n")
	sb.WriteString(fmt.Sprintf("Action: %s\n", strategy.Action))
	sb.WriteString(fmt.Sprintf("Reason: %s\n\n", strategy.Reason))
	sb.WriteString("📝 EXECUTED\n")
	sb.WriteString(tradeLog)
	sb.WriteString(fmt.Sprintf("\n🛑 Stop Loss: $%.2f", strategy.StopLoss))
	return sb.String()
}
