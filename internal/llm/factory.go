package llm

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"coverline/internal/config"
	"coverline/internal/port"
)

// ProviderFactory creates a BenefitExtractor from the LLM config.
type ProviderFactory func(cfg *config.LLMConfig) (port.BenefitExtractor, error)

// providers is populated explicitly via RegisterProvider at startup.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers an extractor provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewExtractor creates a BenefitExtractor using the registered factory for cfg.Provider.
func NewExtractor(cfg *config.LLMConfig) (port.BenefitExtractor, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown llm provider: %s (registered: %v)", cfg.Provider, registered())
	}
	return factory(cfg)
}

// NewExtractorChain builds the primary extractor and, when a fallback provider
// is configured, wraps both in a FallbackExtractor.
func NewExtractorChain(cfg *config.LLMConfig, logger *zap.Logger) (port.BenefitExtractor, error) {
	primary, err := NewExtractor(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.FallbackProvider == "" {
		return primary, nil
	}

	fallbackCfg := *cfg
	fallbackCfg.Provider = cfg.FallbackProvider
	fallbackCfg.APIKey = cfg.FallbackAPIKey
	fallbackCfg.DefaultModel = cfg.FallbackModel
	secondary, err := NewExtractor(&fallbackCfg)
	if err != nil {
		return nil, fmt.Errorf("fallback provider: %w", err)
	}

	return NewFallbackExtractor([]NamedExtractor{
		{Name: cfg.Provider, Extractor: primary},
		{Name: cfg.FallbackProvider, Extractor: secondary},
	}, logger), nil
}

func registered() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
