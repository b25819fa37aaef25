package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBlockPrefersFence(t *testing.T) {
	text := "Analysis: quantum is hot [sic]\n\n```json\n[{\"ticker\": \"IONQ\"}]\n```\ntrailing notes"
	assert.Equal(t, `[{"ticker": "IONQ"}]`, ExtractBlock(text))
}

func TestExtractBlockBracketFallback(t *testing.T) {
	text := `Sure! Here are the picks: [{"ticker": "RKLB"}] hope that helps`
	assert.Equal(t, `[{"ticker": "RKLB"}]`, ExtractBlock(text))

	obj := `The verdict is {"score": 70, "reason": "ok"} overall`
	assert.Equal(t, `{"score": 70, "reason": "ok"}`, ExtractBlock(obj))
}

func TestExtractBlockNothing(t *testing.T) {
	assert.Empty(t, ExtractBlock("no structured data here at all"))
}

func TestParseCandidates(t *testing.T) {
	text := "Analysis: two themes stand out.\n\n```json\n" +
		`[
  {"ticker": "IONQ", "type": "Stock", "narrative": "Pure-play quantum hardware leader"},
  {"ticker": "FET", "type": "Crypto", "narrative": "Leading AI Agent alliance"}
]` + "\n```"

	candidates, err := ParseCandidates(text)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "IONQ", candidates[0].Ticker)
	assert.Equal(t, "Stock", candidates[0].Type)
	assert.Equal(t, "Crypto", candidates[1].Type)
}

func TestParseCandidatesSingleObject(t *testing.T) {
	candidates, err := ParseCandidates(`{"ticker": "RKLB", "type": "Stock", "narrative": "Launch cadence"}`)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "RKLB", candidates[0].Ticker)
}

func TestParseCandidatesRepairsSloppyJSON(t *testing.T) {
	// Trailing comma: invalid JSON that jsonrepair handles.
	text := "```json\n[{\"ticker\": \"FET\", \"type\": \"Crypto\", \"narrative\": \"AI agents\",}]\n```"

	candidates, err := ParseCandidates(text)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "FET", candidates[0].Ticker)
}

func TestParseCandidatesGarbageIsError(t *testing.T) {
	_, err := ParseCandidates("the model rambled and produced nothing structured")
	assert.Error(t, err)
}

func TestParseSentiment(t *testing.T) {
	s, ok := ParseSentiment("```json\n{ \"score\": 85, \"reason\": \"Trending on X\" }\n```")
	require.True(t, ok)
	assert.Equal(t, 85, s.Score)
	assert.Equal(t, "Trending on X", s.Reason)
}

func TestParseSentimentRejectsOutOfRange(t *testing.T) {
	_, ok := ParseSentiment(`{"score": 300, "reason": "nope"}`)
	assert.False(t, ok)

	_, ok = ParseSentiment("dead silence, no json")
	assert.False(t, ok)
}

func TestParseStrategy(t *testing.T) {
	text := "```json\n" + `{
  "action": "AGGRESSIVE",
  "spot_pct": 5.0,
  "limit_pct": 3.0,
  "limit_price": 12.50,
  "stop_loss": 10.00,
  "reason": "Strong momentum."
}` + "\n```"

	s, err := ParseStrategy(text)
	require.NoError(t, err)
	assert.Equal(t, "AGGRESSIVE", s.Action)
	assert.InDelta(t, 5.0, s.SpotPct, 1e-9)
	assert.InDelta(t, 12.5, s.LimitPrice, 1e-9)
	assert.InDelta(t, 10.0, s.StopLoss, 1e-9)
}

func TestParseStrategyMissingAction(t *testing.T) {
	_, err := ParseStrategy(`{"spot_pct": 5.0}`)
	assert.Error(t, err)
}
