package web

import (
	"encoding/json"
	"net/http"

	"moonshot/internal/ledger"
)

type holdingView struct {
	Ticker   string  `json:"ticker"`
	Quantity float64 `json:"quantity"`
	AvgCost  float64 `json:"avg_cost"`
	Exposure float64 `json:"exposure"`
}

type portfolioView struct {
	Cash     float64       `json:"cash"`
	Holdings []holdingView `json:"holdings"`
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cash, err := s.store.Balance()
	if err != nil {
		s.logger.Error("read balance", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	holdings, err := s.store.Holdings()
	if err != nil {
		s.logger.Error("read holdings", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	view := portfolioView{Cash: cash, Holdings: make([]holdingView, 0, len(holdings))}
	for _, h := range holdings {
		view.Holdings = append(view.Holdings, holdingView{
			Ticker:   h.Ticker,
			Quantity: h.Quantity,
			AvgCost:  h.AvgCost,
			Exposure: h.Quantity * h.AvgCost,
		})
	}

	s.writeJSON(w, view)
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	orders, err := s.store.OpenOrders()
	if err != nil {
		s.logger.Error("read open orders", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []ledger.Order{}
	}

	s.writeJSON(w, orders)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}
