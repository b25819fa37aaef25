package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

var fencedBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// ExtractBlock pulls the embedded structured block out of free-form model
// output. Fallback order: fenced code block, then the widest [...] match,
// then the widest {...} match. Returns "" when nothing looks like JSON.
func ExtractBlock(text string) string {
	text = strings.TrimSpace(text)

	if m := fencedBlockRegex.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}

	if start, end := strings.Index(text, "["), strings.LastIndex(text, "]"); start >= 0 && end > start {
		return text[start : end+1]
	}
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		return text[start : end+1]
	}

	return ""
}

// unmarshalLenient tries strict JSON first and falls back to a jsonrepair
// pass; models routinely emit trailing commas and single quotes.
func unmarshalLenient(raw string, v any) error {
	if err := json.Unmarshal([]byte(raw), v); err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(raw)
	if err != nil {
		return fmt.Errorf("repair JSON: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return fmt.Errorf("parse repaired JSON: %w", err)
	}
	return nil
}

// ParseCandidates extracts the scout candidate list. Model output is
// untrusted: any shape of failure yields an empty list and an error for the
// caller's log, never a panic.
func ParseCandidates(text string) ([]Candidate, error) {
	block := ExtractBlock(text)
	if block == "" {
		return nil, fmt.Errorf("no JSON block in scout response: %.200s", text)
	}

	var candidates []Candidate
	if err := unmarshalLenient(block, &candidates); err == nil {
		return candidates, nil
	}

	// Some runs wrap the list in a single object.
	var single Candidate
	if err := unmarshalLenient(block, &single); err != nil {
		return nil, fmt.Errorf("parse scout response: %w", err)
	}
	if single.Ticker == "" {
		return nil, fmt.Errorf("scout response object has no ticker")
	}
	return []Candidate{single}, nil
}

// ParseSentiment extracts a sentiment block; ok is false when the text has
// no usable score.
func ParseSentiment(text string) (Sentiment, bool) {
	block := ExtractBlock(text)
	if block == "" {
		return Sentiment{}, false
	}

	var s Sentiment
	if err := unmarshalLenient(block, &s); err != nil {
		return Sentiment{}, false
	}
	if s.Score < 0 || s.Score > 100 {
		return Sentiment{}, false
	}
	return s, true
}

// ParseStrategy extracts the allocation decision object.
func ParseStrategy(text string) (*Strategy, error) {
	block := ExtractBlock(text)
	if block == "" {
		return nil, fmt.Errorf("no JSON block in strategy response: %.200s", text)
	}

	var s Strategy
	if err := unmarshalLenient(block, &s); err != nil {
		return nil, fmt.Errorf("parse strategy response: %w", err)
	}
	if s.Action == "" {
		return nil, fmt.Errorf("strategy response has no action")
	}
	return &s, nil
}
