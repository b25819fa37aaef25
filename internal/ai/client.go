// Package ai holds the generative-model collaborators: the scout that
// proposes candidates, the sentiment check and the allocation strategist.
package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"moonshot/internal/config"
	"moonshot/internal/logger"
)

type Client struct {
	client *openai.Client
	model  string
	cfg    *config.Config
	logger *logger.Logger
}

// NewClient talks to Gemini through its OpenAI-compatible endpoint.
func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	ocfg := openai.DefaultConfig(cfg.Gemini.APIKey)
	ocfg.BaseURL = cfg.Gemini.BaseURL

	return &Client{
		client: openai.NewClientWithConfig(ocfg),
		model:  cfg.Gemini.Model,
		cfg:    cfg,
		logger: log,
	}
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.GeminiTimeout())
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("gemini API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("gemini returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Scout asks for speculative candidates. The raw response is returned for
// logging alongside the parsed list.
func (c *Client) Scout(ctx context.Context) ([]Candidate, string, error) {
	c.logger.Info("scouting for candidates", "model", c.model)

	raw, err := c.complete(ctx, scoutPrompt)
	if err != nil {
		return nil, "", err
	}
	c.logger.Debug("scout raw response", "content", raw)

	candidates, err := ParseCandidates(raw)
	if err != nil {
		// Unparseable scout output is an empty result, not a failure.
		c.logger.Warn("scout response not parseable", "error", err)
		return nil, raw, nil
	}
	return candidates, raw, nil
}

// Sentiment never fails: any transport or parse problem collapses to the
// neutral default so a flaky model cannot sink a whole scan cycle.
func (c *Client) Sentiment(ctx context.Context, ticker, assetType string) Sentiment {
	raw, err := c.complete(ctx, buildSentimentPrompt(ticker, assetType))
	if err != nil {
		c.logger.Warn("sentiment check failed", "ticker", ticker, "error", err)
		return NeutralSentiment()
	}

	s, ok := ParseSentiment(raw)
	if !ok {
		c.logger.Warn("sentiment response not parseable", "ticker", ticker)
		return NeutralSentiment()
	}
	return s
}

// Strategy returns the allocation decision, or an error when the candidate
// should be skipped.
func (c *Client) Strategy(ctx context.Context, req *StrategyRequest) (*Strategy, error) {
	c.logger.Info("requesting strategy", "ticker", req.Ticker, "cash", req.Cash, "exposure", req.Exposure)

	raw, err := c.complete(ctx, buildStrategyPrompt(req))
	if err != nil {
		return nil, err
	}
	c.logger.Debug("strategy raw response", "ticker", req.Ticker, "content", raw)

	return ParseStrategy(raw)
}
