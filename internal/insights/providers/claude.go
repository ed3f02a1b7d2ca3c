package providers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"talentflow-core/internal/config"
	"talentflow-core/internal/logging"
	"talentflow-core/pkg/models"
	"talentflow-core/pkg/utils"
)

// ClaudeProvider implements the insight provider interface using Anthropic's Claude
type ClaudeProvider struct {
	client anthropic.Client
	config *config.Config
	logger logging.Logger
}

// NewClaudeProvider creates a new Claude provider instance
func NewClaudeProvider(cfg *config.Config) *ClaudeProvider {
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.Insights.APIKey),
	)

	return &ClaudeProvider{
		client: client,
		config: cfg,
		logger: logging.GetGlobalLogger(),
	}
}

// GenerateInsight asks Claude for a short recruiter-facing narrative about an
// already-computed match. The narrative is presentation only: scores, reasons
// and gaps in the result are computed deterministically upstream and are never
// altered here.
func (cp *ClaudeProvider) GenerateInsight(ctx context.Context, candidate *models.CandidateProfile, job *models.JobPosting, result *models.MatchResult) (string, error) {
	startTime := time.Now()

	cp.logger.Info("generating match insight", map[string]interface{}{
		"candidate_id": candidate.ID,
		"job_id":       job.ID,
		"provider":     "claude",
	})

	prompt := cp.buildInsightPrompt(candidate, job, result)

	response, err := cp.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(cp.config.Insights.Model),
		MaxTokens:   int64(cp.config.Insights.MaxTokens),
		Temperature: anthropic.Float(float64(cp.config.Insights.Temperature)),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		return "", utils.NewInsightError(fmt.Sprintf("failed to call Claude API: %v", err))
	}

	insight, err := cp.parseResponse(response)
	if err != nil {
		return "", utils.NewInsightError(err.Error())
	}

	cp.logger.Info("match insight generated", map[string]interface{}{
		"candidate_id":    candidate.ID,
		"job_id":          job.ID,
		"processing_time": time.Since(startTime).String(),
		"provider":        "claude",
	})

	return insight, nil
}

func (cp *ClaudeProvider) buildInsightPrompt(candidate *models.CandidateProfile, job *models.JobPosting, result *models.MatchResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Candidate %s applied for %q at %s.\n", candidate.ID, job.Title, job.Company)
	fmt.Fprintf(&sb, "Overall match score: %.1f/100.\n", result.OverallScore)

	dims := make([]string, 0, len(result.SubScores))
	for dim := range result.SubScores {
		dims = append(dims, dim)
	}
	sort.Strings(dims)
	for _, dim := range dims {
		fmt.Fprintf(&sb, "- %s: %.1f\n", dim, result.SubScores[dim])
	}

	if len(result.SkillGaps) > 0 {
		fmt.Fprintf(&sb, "Missing skills: %s.\n", strings.Join(result.SkillGaps, ", "))
	}
	if len(result.Reasons) > 0 {
		fmt.Fprintf(&sb, "Strengths: %s.\n", strings.Join(result.Reasons, "; "))
	}

	sb.WriteString(`
You are a recruiting assistant. Write a 2-3 sentence plain-text summary of this match for a hiring manager. Mention the strongest dimension and the most important gap, if any. Do not restate the raw numbers beyond the overall score, do not invent facts not present above, and return only the summary text with no preamble.`)

	return sb.String()
}

func (cp *ClaudeProvider) parseResponse(response *anthropic.Message) (string, error) {
	if len(response.Content) == 0 {
		return "", fmt.Errorf("empty response from Claude")
	}

	var responseText string
	for _, content := range response.Content {
		textContent := content.AsText()
		responseText = textContent.Text
		break
	}

	responseText = strings.TrimSpace(responseText)
	if responseText == "" {
		return "", fmt.Errorf("no text content in Claude response")
	}
	return responseText, nil
}

// IsHealthy checks if the Claude provider is configured and reachable
func (cp *ClaudeProvider) IsHealthy(ctx context.Context) error {
	if cp.config.Insights.APIKey == "" {
		return fmt.Errorf("claude API key not configured")
	}

	healthCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := cp.client.Messages.New(healthCtx, anthropic.MessageNewParams{
		Model:     anthropic.Model(cp.config.Insights.Model),
		MaxTokens: 10,
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: "ping"},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		return fmt.Errorf("claude health check failed: %w", err)
	}
	return nil
}

// GetProviderName returns the name of the provider
func (cp *ClaudeProvider) GetProviderName() string {
	return "claude"
}
