// Package gemini implements the completion provider on Google's Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/okian/tutorbot/internal/adapters/completion"
	"github.com/okian/tutorbot/internal/domain/model"
	"github.com/okian/tutorbot/pkg/logger"
	"github.com/okian/tutorbot/pkg/metrics"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-1.5-flash"

// generator is the part of *genai.GenerativeModel the provider needs.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Provider generates replies with one model per session mode, each carrying
// the mode's system instruction.
type Provider struct {
	client  *genai.Client
	models  map[model.Mode]generator
	timeout time.Duration
	log     logger.Logger
}

var _ completion.Provider = (*Provider)(nil)

// New connects to Gemini with apiKey.
func New(ctx context.Context, apiKey string, opts ...Option) (*Provider, error) {
	o := options{model: DefaultModel, timeout: 30 * time.Second, log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	models := make(map[model.Mode]generator, len(model.Modes()))
	for _, mode := range model.Modes() {
		m := client.GenerativeModel(o.model)
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(completion.Instruction(mode))}}
		if o.temperature > 0 {
			m.SetTemperature(o.temperature)
		}
		models[mode] = m
	}

	return &Provider{client: client, models: models, timeout: o.timeout, log: o.log}, nil
}

// Generate implements completion.Provider.
func (p *Provider) Generate(ctx context.Context, prompt string, mode model.Mode) (string, error) {
	gen, ok := p.models[mode]
	if !ok {
		gen = p.models[model.ModeGeneral]
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := gen.GenerateContent(ctx, genai.Text(prompt))
	metrics.RecordCompletionLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordCompletionError()
		p.log.Error(ctx, "gemini request failed", logger.String("mode", string(mode)), logger.Error(err))
		return "", fmt.Errorf("%w: %w", completion.ErrGeneration, err)
	}

	text := extractText(resp)
	if text == "" {
		metrics.RecordCompletionError()
		return "", fmt.Errorf("%w: empty response", completion.ErrGeneration)
	}
	return text, nil
}

// Close releases the underlying client.
func (p *Provider) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		if sb.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(sb.String())
}
