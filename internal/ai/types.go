package ai

// Candidate is one scouted idea: a ticker, its asset class and the
// narrative the model attached to it.
type Candidate struct {
	Ticker    string `json:"ticker"`
	Type      string `json:"type"` // "Stock" or "Crypto"
	Narrative string `json:"narrative"`
}

// Sentiment is the social "vibe check" for a ticker.
type Sentiment struct {
	Score  int    `json:"score"` // 0-100
	Reason string `json:"reason"`
}

// NeutralSentiment is returned whenever the sentiment call fails in any way.
func NeutralSentiment() Sentiment {
	return Sentiment{Score: 50, Reason: "Neutral (AI Error)"}
}

// Strategy is the allocation decision for one candidate.
type Strategy struct {
	Action     string  `json:"action"` // AGGRESSIVE or CONSERVATIVE
	SpotPct    float64 `json:"spot_pct"`
	LimitPct   float64 `json:"limit_pct"`
	LimitPrice float64 `json:"limit_price"`
	StopLoss   float64 `json:"stop_loss"`
	Reason     string  `json:"reason"`
}

// StrategyRequest carries the portfolio context handed to the model.
type StrategyRequest struct {
	Ticker    string
	Narrative string
	Report    string
	Cash      float64
	Exposure  float64
}
