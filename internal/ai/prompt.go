package ai

import (
	"fmt"
	"strings"
)

const scoutPrompt = `Act as an Aggressive Venture Capitalist hunting for 'Asymmetrical Upside' (10x-100x potential).

TASK 1: STOCKS
- Find 5 breaking narratives in disruptive tech (Bio-tech, Quantum, Space, Robotics, etc.).
- IDENTIFY: A "Pure-Play" stock for each.
- CONSTRAINT: IGNORE 'Magnificent 7' (No NVDA, TSLA, MSFT, AAPL, GOOG).
- TARGET: Look for Small-to-Mid Cap companies ($500M - $20B) that are leading a niche.

TASK 2: CRYPTO
- Find 5 breaking narratives for the NEXT cycle (e.g., AI Agents, RWA, DePIN, Sci-Fi).
- IDENTIFY: A "High-Beta" token for each.
- CONSTRAINT: IGNORE Top 10 coins (No BTC, ETH, SOL, XRP, ADA, DOGE).
- TARGET: Look for tokens outside the top 10 that define a new meta.

Format your final output exactly like this:

Analysis: [Short Summary]

` + "```json" + `
[
  {"ticker": "IONQ", "type": "Stock", "narrative": "Pure-play quantum hardware leader"},
  {"ticker": "FET", "type": "Crypto", "narrative": "Leading AI Agent alliance"}
]
` + "```"

func buildSentimentPrompt(ticker, assetType string) string {
	return fmt.Sprintf(`Act as a Social Sentiment Analyst.

Step 1: Consider real-time discussions about %s (%s) on X (Twitter) and Reddit.
Step 2: Analyze the "Vibe":
   - Are people HYPE/BULLISH? (High Score 80-100)
   - Are people ANGRY/BEARISH? (Low Score 0-20)
   - Is it dead silence? (Mid Score 40-60)

Step 3: Output a JSON block with a score (0-100) and a very short reason.

CRITICAL: Return ONLY valid JSON.

Example:
`+"```json"+`
{ "score": 85, "reason": "Trending on X with new partnership rumors" }
`+"```", ticker, assetType)
}

func buildStrategyPrompt(req *StrategyRequest) string {
	var sb strings.Builder

	sb.WriteString("Act as a Hedge Fund Portfolio Manager.\n\n")

	sb.WriteString("CONTEXT:\n")
	sb.WriteString(fmt.Sprintf("Ticker: %s\n", req.Ticker))
	sb.WriteString(fmt.Sprintf("Narrative: %q\n", req.Narrative))
	sb.WriteString(fmt.Sprintf("Analysis: %s\n\n", req.Report))

	sb.WriteString("PORTFOLIO:\n")
	sb.WriteString(fmt.Sprintf("Cash Available: $%.2f\n", req.Cash))
	sb.WriteString(fmt.Sprintf("Current Exposure to %s: $%.2f\n\n", req.Ticker, req.Exposure))

	sb.WriteString(`MISSION:
Decide allocation based on conviction.
1. If high score (>80) + Low Exposure -> Aggressive (5-8% of cash).
2. If mid score (60-80) -> Conservative (2-4% of cash).
3. Determine split: Spot Buy (Now) vs Limit Buy (Later).

OUTPUT JSON ONLY:
{
  "action": "AGGRESSIVE" or "CONSERVATIVE",
  "spot_pct": 5.0,
  "limit_pct": 3.0,
  "limit_price": 12.50,
  "stop_loss": 10.00,
  "reason": "Strong momentum, buying 5% spot and adding 3% on dip."
}`)

	return sb.String()
}
