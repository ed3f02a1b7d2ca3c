package insights

import (
	"context"

	"talentflow-core/pkg/models"
)

// Provider defines the interface for insight providers
type Provider interface {
	// GenerateInsight produces a short narrative summary for a computed match
	GenerateInsight(ctx context.Context, candidate *models.CandidateProfile, job *models.JobPosting, result *models.MatchResult) (string, error)

	// IsHealthy checks if the insight provider is healthy and available
	IsHealthy(ctx context.Context) error

	// GetProviderName returns the name of the insight provider
	GetProviderName() string
}
