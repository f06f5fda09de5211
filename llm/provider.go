// Package llm binds the generation port to langchaingo backends.
package llm

import (
	"fmt"
	"sync"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"summarizer-worker/config"
	"summarizer-worker/internal/core/domain"
	"summarizer-worker/internal/core/ports"
	apperrors "summarizer-worker/pkg/errors"
)

// Provider manages the configured model set. It hands out one cached
// generator per model identifier and tracks which one is active.
type Provider struct {
	mu         sync.RWMutex
	cfg        config.ModelConfig
	current    string
	generators map[string]ports.Generator
}

// NewProvider creates a provider over the configured model set. The
// configured default model becomes the active one; backends are
// connected lazily on first use.
func NewProvider(cfg config.ModelConfig) *Provider {
	return &Provider{
		cfg:        cfg,
		current:    cfg.DefaultModel,
		generators: make(map[string]ports.Generator),
	}
}

// Current returns the generator for the active model. It returns nil
// only when the active model cannot be constructed; callers resolving
// a request should prefer Generator with an explicit identifier.
func (p *Provider) Current() ports.Generator {
	p.mu.RLock()
	current := p.current
	p.mu.RUnlock()

	gen, err := p.Generator(current)
	if err != nil {
		return nil
	}
	return gen
}

// Select switches the active model. Identifiers outside the configured
// set are rejected before any backend is touched.
func (p *Provider) Select(modelID string) error {
	if !p.cfg.HasModel(modelID) {
		return apperrors.NewModelNotAvailableError(modelID, p.cfg.AvailableModels)
	}

	p.mu.Lock()
	p.current = modelID
	p.mu.Unlock()
	return nil
}

// Generator returns the generator for modelID, constructing and caching
// the backend on first use. An empty identifier resolves to the active
// model.
func (p *Provider) Generator(modelID string) (ports.Generator, error) {
	if modelID == "" {
		p.mu.RLock()
		modelID = p.current
		p.mu.RUnlock()
	}
	if !p.cfg.HasModel(modelID) {
		return nil, apperrors.NewModelNotAvailableError(modelID, p.cfg.AvailableModels)
	}

	p.mu.RLock()
	gen, ok := p.generators[modelID]
	p.mu.RUnlock()
	if ok {
		return gen, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen, ok := p.generators[modelID]; ok {
		return gen, nil
	}

	model, err := p.newBackend(modelID)
	if err != nil {
		return nil, err
	}
	gen = newGenerator(modelID, model)
	p.generators[modelID] = gen
	return gen, nil
}

// Models lists the configured models, marking the active one
func (p *Provider) Models() []domain.ModelInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()

	infos := make([]domain.ModelInfo, 0, len(p.cfg.AvailableModels))
	for _, id := range p.cfg.AvailableModels {
		infos = append(infos, domain.ModelInfo{
			ID:      id,
			Active:  id == p.current,
			Device:  p.cfg.Device,
			Backend: p.cfg.Provider,
		})
	}
	return infos
}

// newBackend constructs the langchaingo model for one identifier
func (p *Provider) newBackend(modelID string) (llms.Model, error) {
	switch p.cfg.Provider {
	case "ollama":
		opts := []ollama.Option{
			ollama.WithModel(modelID),
		}
		if p.cfg.OllamaServerURL != "" {
			opts = append(opts, ollama.WithServerURL(p.cfg.OllamaServerURL))
		}
		model, err := ollama.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to connect ollama backend: %w", err)
		}
		return model, nil
	case "openai":
		opts := []openai.Option{
			openai.WithModel(modelID),
		}
		if p.cfg.OpenAIBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(p.cfg.OpenAIBaseURL))
		}
		model, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to connect openai backend: %w", err)
		}
		return model, nil
	default:
		return nil, apperrors.NewConfigurationError(
			fmt.Sprintf("unsupported model provider: %s", p.cfg.Provider))
	}
}
