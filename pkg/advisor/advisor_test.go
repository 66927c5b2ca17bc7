package advisor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	model  string
	prompt string
	reply  string
	err    error
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: genai.NewContentFromText(f.reply, genai.RoleModel)},
		},
	}, nil
}

func TestInsights(t *testing.T) {
	g := &fakeGenerator{reply: "  - Build a reserve fund\n- Chase pending loans  "}
	a := newGeminiAdvisor(g, "")

	out, err := a.Insights(context.Background(), "- Total Balance: $-1250.00\n")
	require.NoError(t, err)
	assert.Equal(t, "- Build a reserve fund\n- Chase pending loans", out)
	assert.Equal(t, DefaultModel, g.model)
	assert.Contains(t, g.prompt, "small employee welfare society")
	assert.Contains(t, g.prompt, "Financial Summary:\n- Total Balance: $-1250.00")
}

func TestInsights_Failures(t *testing.T) {
	_, err := newGeminiAdvisor(&fakeGenerator{err: errors.New("quota exceeded")}, "gemini-pro").
		Insights(context.Background(), "summary")
	require.ErrorContains(t, err, "generate insights with gemini-pro: quota exceeded")

	_, err = newGeminiAdvisor(&fakeGenerator{reply: "   "}, "").Insights(context.Background(), "summary")
	require.ErrorIs(t, err, ErrEmptyResponse)

	_, err = Unavailable{}.Insights(context.Background(), "summary")
	require.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestNewGeminiAdvisor_RequiresKey(t *testing.T) {
	_, err := NewGeminiAdvisor(context.Background(), " ", "")
	require.ErrorIs(t, err, ErrMissingAPIKey)
}
