// Package advisor turns a plain-text financial summary into written advice using a
// generative model. It sits outside the ledger: nothing here reads or changes state.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

var (
	ErrMissingAPIKey = errors.New("advisor API key not set")
	ErrEmptyResponse = errors.New("advisor returned no text")
)

// Advisor returns markdown advice for a financial summary.
type Advisor interface {
	Insights(ctx context.Context, summary string) (string, error)
}

// generator is the part of *genai.Models the advisor calls.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiAdvisor struct {
	models generator
	model  string
}

// NewGeminiAdvisor connects to the Gemini API. model defaults to DefaultModel.
func NewGeminiAdvisor(ctx context.Context, apiKey, model string) (*GeminiAdvisor, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGeminiAdvisor(client.Models, model), nil
}

func newGeminiAdvisor(g generator, model string) *GeminiAdvisor {
	if model == "" {
		model = DefaultModel
	}
	return &GeminiAdvisor{models: g, model: model}
}

func (a *GeminiAdvisor) Insights(ctx context.Context, summary string) (string, error) {
	resp, err := a.models.GenerateContent(ctx, a.model, genai.Text(Prompt(summary)), nil)
	if err != nil {
		return "", fmt.Errorf("generate insights with %s: %w", a.model, err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Prompt wraps the summary in the advisor instructions.
func Prompt(summary string) string {
	var b strings.Builder
	b.WriteString("You are a financial advisor for a small employee welfare society.\n")
	b.WriteString("Based on the following financial summary, provide 3-5 actionable insights or suggestions.\n")
	b.WriteString("Format the output as a Markdown list. Be encouraging and clear.\n\n")
	b.WriteString("Financial Summary:\n")
	b.WriteString(summary)
	return b.String()
}

// Unavailable is used when no API key is configured. Every call fails with
// ErrMissingAPIKey so callers can tell the user how to enable the feature.
type Unavailable struct{}

func (Unavailable) Insights(context.Context, string) (string, error) {
	return "", ErrMissingAPIKey
}
