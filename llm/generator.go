package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"summarizer-worker/internal/core/domain"
)

const summarizePromptTemplate = "Summarize the following text concisely, preserving the key points:\n\n%s"

// generator adapts one langchaingo model to the Generator port
type generator struct {
	modelID string
	model   llms.Model
}

func newGenerator(modelID string, model llms.Model) *generator {
	return &generator{modelID: modelID, model: model}
}

// ModelID returns the model identifier this generator is bound to
func (g *generator) ModelID() string {
	return g.modelID
}

// Generate produces a summary for text under the given parameters.
// Temperature and TopP are only forwarded when sampling is enabled;
// greedy decoding pins temperature to zero. NumBeams maps to the
// candidate count hint since chat backends expose no beam search.
func (g *generator) Generate(ctx context.Context, text string, params domain.GenerationParams) (string, error) {
	opts := []llms.CallOption{
		llms.WithMaxLength(params.MaxLength),
		llms.WithMinLength(params.MinLength),
	}
	if params.DoSample {
		opts = append(opts,
			llms.WithTemperature(params.Temperature),
			llms.WithTopP(params.TopP),
		)
	} else {
		opts = append(opts, llms.WithTemperature(0))
	}
	if params.NumBeams > 1 {
		opts = append(opts, llms.WithCandidateCount(params.NumBeams))
	}

	prompt := fmt.Sprintf(summarizePromptTemplate, text)
	output, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt, opts...)
	if err != nil {
		return "", fmt.Errorf("generation call failed for model %s: %w", g.modelID, err)
	}
	return strings.TrimSpace(output), nil
}
