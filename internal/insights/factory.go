package insights

import (
	"fmt"

	"talentflow-core/internal/config"
	"talentflow-core/internal/insights/providers"
)

// Factory creates insight provider instances
type Factory struct {
	config *config.Config
}

// NewFactory creates a new insight factory instance
func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		config: cfg,
	}
}

// CreateProvider creates an insight provider based on the configuration
func (f *Factory) CreateProvider() (Provider, error) {
	switch f.config.Insights.Provider {
	case "claude":
		return providers.NewClaudeProvider(f.config), nil
	default:
		return nil, fmt.Errorf("unsupported insight provider: %s", f.config.Insights.Provider)
	}
}

// GetSupportedProviders returns a list of supported insight providers
func (f *Factory) GetSupportedProviders() []string {
	return []string{"claude"}
}
