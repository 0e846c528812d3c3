package assistant

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"google.golang.org/genai"

	"github.com/ZazenCloud/Habit-Tracker/internal/config"
)

// ErrMissingAPIKey is returned by NewGemini without an API key.
var ErrMissingAPIKey = errors.New("gemini API key is not configured")

// contentGenerator is the part of genai.Models used by Gemini.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

var _ Generator = (*Gemini)(nil)

// Gemini generates replies with the Gemini API.
type Gemini struct {
	models contentGenerator
	model  string
}

// NewGemini creates a Gemini generator from cfg.
func NewGemini(ctx context.Context, cfg config.Gemini) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Gemini{models: client.Models, model: cfg.Model}, nil
}

func (g *Gemini) Generate(ctx context.Context, system string, turns []Turn) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, contents(turns), generateConfig(system))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", errors.New("model returned an empty reply")
	}
	return text, nil
}

func (g *Gemini) Stream(ctx context.Context, system string, turns []Turn) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for resp, err := range g.models.GenerateContentStream(ctx, g.model, contents(turns), generateConfig(system)) {
			if err != nil {
				yield("", fmt.Errorf("failed to stream content: %w", err))
				return
			}
			if !yield(responseText(resp), nil) {
				return
			}
		}
	}
}

func generateConfig(system string) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
	}
}

func contents(turns []Turn) []*genai.Content {
	out := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		out = append(out, &genai.Content{
			Role:  string(t.Role),
			Parts: []*genai.Part{{Text: t.Content}},
		})
	}
	return out
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}
