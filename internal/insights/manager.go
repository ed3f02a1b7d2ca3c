// Package insights enriches computed match results with an optional
// LLM-generated narrative. The engine's scores never depend on this package;
// when the provider is disabled or unhealthy, matches are served without an
// insight.
package insights

import (
	"context"
	"fmt"
	"sync"

	"talentflow-core/internal/config"
	"talentflow-core/internal/logging"
	"talentflow-core/pkg/models"
)

// Manager manages insight providers and their lifecycle
type Manager struct {
	config   *config.Config
	factory  *Factory
	provider Provider
	logger   logging.Logger
	mu       sync.RWMutex
	healthy  bool
}

// NewManager creates a new insight manager instance
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		config:  cfg,
		factory: NewFactory(cfg),
		logger:  logging.GetGlobalLogger(),
	}
}

// Start initializes the insight manager and creates the provider
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.config.Insights.Enabled {
		m.logger.Info("insights disabled by configuration")
		m.healthy = false
		return nil
	}

	m.logger.Info("starting insight manager", map[string]interface{}{
		"provider": m.config.Insights.Provider,
	})

	provider, err := m.factory.CreateProvider()
	if err != nil {
		return fmt.Errorf("failed to create insight provider: %w", err)
	}
	m.provider = provider

	ctx, cancel := context.WithTimeout(context.Background(), m.config.Insights.Timeout)
	defer cancel()

	if err := m.provider.IsHealthy(ctx); err != nil {
		m.logger.Warn("insight provider health check failed, insights will be skipped", map[string]interface{}{
			"error": err.Error(),
		})
		m.healthy = false
		// Server still starts; matches are served without narratives.
	} else {
		m.healthy = true
		m.logger.Info("insight manager started", map[string]interface{}{
			"provider": m.provider.GetProviderName(),
		})
	}

	return nil
}

// Stop shuts down the insight manager
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.provider = nil
	m.healthy = false
	return nil
}

// Enrich fills in result.Insight when a healthy provider is available.
// Failures are logged and swallowed so that scoring output is never blocked
// on the narrative.
func (m *Manager) Enrich(ctx context.Context, candidate *models.CandidateProfile, job *models.JobPosting, result *models.MatchResult) {
	m.mu.RLock()
	provider := m.provider
	healthy := m.healthy
	m.mu.RUnlock()

	if provider == nil || !healthy {
		return
	}

	insightCtx, cancel := context.WithTimeout(ctx, m.config.Insights.Timeout)
	defer cancel()

	insight, err := provider.GenerateInsight(insightCtx, candidate, job, result)
	if err != nil {
		m.logger.Warn("insight generation failed", map[string]interface{}{
			"candidate_id": candidate.ID,
			"job_id":       job.ID,
			"error":        err.Error(),
		})
		return
	}
	result.Insight = insight
}

// IsHealthy checks if the insight manager and provider are healthy
func (m *Manager) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.healthy && m.provider != nil
}

// GetProviderName returns the name of the current insight provider
func (m *Manager) GetProviderName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.provider != nil {
		return m.provider.GetProviderName()
	}
	return "none"
}
