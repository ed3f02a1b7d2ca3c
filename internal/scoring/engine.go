// Package scoring computes match scores between candidate profiles and job
// postings. The engine is a pure function of its inputs: no I/O, no clock,
// identical inputs always produce identical results, which is what makes
// results safe to cache per (candidate, job, inputs hash).
package scoring

import (
	"fmt"
	"sort"
	"strings"

	"talentflow-core/internal/config"
	"talentflow-core/pkg/models"
)

// dimension is one weighted component of the composite score.
type dimension struct {
	name   string
	score  float64
	weight float64
	reason string
}

// Engine scores candidates against jobs using configured weights. Weights
// are validated at config load time to sum to 1.0.
type Engine struct {
	cfg *config.Config
}

// NewEngine creates a scoring engine.
func NewEngine(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Score computes the composite match between candidate and job. Dimensions
// the job leaves unspecified (no salary range, no experience requirement, no
// location, no culture tags) are excluded and the remaining weights are
// renormalized, so candidates are never penalized for employer
// under-specification.
func (e *Engine) Score(candidate models.CandidateProfile, job models.JobPosting) models.MatchResult {
	w := e.cfg.Scoring.Weights
	var dims []dimension

	skillScore, gaps, matched := e.scoreSkills(candidate, job)
	dims = append(dims, dimension{
		name:   models.DimensionSkills,
		score:  skillScore,
		weight: w.Skills,
		reason: skillsReason(matched, len(job.RequiredSkills)),
	})

	if job.MinYears != nil {
		expScore := e.scoreExperience(candidate.YearsOfExp, *job.MinYears)
		dims = append(dims, dimension{
			name:   models.DimensionExperience,
			score:  expScore,
			weight: w.Experience,
			reason: fmt.Sprintf("Meets experience bar: %d years against %d required", candidate.YearsOfExp, *job.MinYears),
		})
	}

	if job.Remote || job.Location != "" || job.Country != "" {
		locScore, locReason := e.scoreLocation(candidate, job)
		dims = append(dims, dimension{
			name:   models.DimensionLocation,
			score:  locScore,
			weight: w.Location,
			reason: locReason,
		})
	}

	if len(job.CultureTags) > 0 {
		cultureScore, shared := e.scoreCulture(candidate.CultureTags, job.CultureTags)
		dims = append(dims, dimension{
			name:   models.DimensionCulture,
			score:  cultureScore,
			weight: w.Culture,
			reason: fmt.Sprintf("Culture fit: %d of %d work-style tags shared", shared, len(job.CultureTags)),
		})
	}

	if job.Salary != nil && candidate.DesiredSalary != nil {
		salaryScore := e.scoreSalary(*candidate.DesiredSalary, *job.Salary)
		dims = append(dims, dimension{
			name:   models.DimensionSalary,
			score:  salaryScore,
			weight: w.Salary,
			reason: "Salary aligned: offered range covers expectations",
		})
	}

	result := models.MatchResult{
		CandidateID: candidate.ID,
		JobID:       job.ID,
		SubScores:   make(map[string]float64, len(dims)),
		SkillGaps:   gaps,
	}

	var weightSum, weighted float64
	for _, d := range dims {
		result.SubScores[d.name] = round1(d.score)
		weightSum += d.weight
		weighted += d.weight * d.score
	}
	if weightSum > 0 {
		result.OverallScore = round1(weighted / weightSum)
	}
	result.Reasons = e.buildReasons(dims)

	return result
}

// scoreSkills returns the proportion of required skills the candidate has,
// the sorted list of missing skills, and the matched count. Matching is
// case-insensitive. A job with no required skills is a full match.
func (e *Engine) scoreSkills(candidate models.CandidateProfile, job models.JobPosting) (score float64, gaps []string, matched int) {
	if len(job.RequiredSkills) == 0 {
		return 100, []string{}, 0
	}

	have := make(map[string]bool, len(candidate.Skills))
	for _, s := range candidate.Skills {
		have[normalize(s)] = true
	}

	gaps = []string{}
	for _, required := range job.RequiredSkills {
		if have[normalize(required)] {
			matched++
		} else {
			gaps = append(gaps, required)
		}
	}
	sort.Strings(gaps)

	return 100 * float64(matched) / float64(len(job.RequiredSkills)), gaps, matched
}

// scoreExperience gives full score at or above the required minimum and a
// linear falloff below it.
func (e *Engine) scoreExperience(candidateYears, requiredMin int) float64 {
	if requiredMin <= 0 || candidateYears >= requiredMin {
		return 100
	}
	if candidateYears <= 0 {
		return 0
	}
	return 100 * float64(candidateYears) / float64(requiredMin)
}

// scoreLocation gives full credit for remote jobs or an exact location
// match, configured partial credit for a shared country, and zero otherwise.
func (e *Engine) scoreLocation(candidate models.CandidateProfile, job models.JobPosting) (float64, string) {
	if job.Remote {
		return 100, "Location fits: fully remote role"
	}
	if normalize(candidate.Location) != "" && normalize(candidate.Location) == normalize(job.Location) {
		return 100, fmt.Sprintf("Location fits: both in %s", job.Location)
	}
	if normalize(candidate.Country) != "" && normalize(candidate.Country) == normalize(job.Country) {
		return e.cfg.Scoring.LocationPartialCredit, fmt.Sprintf("Location workable: same country (%s)", job.Country)
	}
	return 0, ""
}

// scoreCulture is the tag-overlap analogue of scoreSkills.
func (e *Engine) scoreCulture(candidateTags, jobTags []string) (score float64, shared int) {
	have := make(map[string]bool, len(candidateTags))
	for _, t := range candidateTags {
		have[normalize(t)] = true
	}
	for _, t := range jobTags {
		if have[normalize(t)] {
			shared++
		}
	}
	return 100 * float64(shared) / float64(len(jobTags)), shared
}

// scoreSalary gives full credit when the offered range covers or exceeds the
// desired range, partial credit scaled by the overlap relative to the desired
// range, and zero when the offer is entirely below expectations.
func (e *Engine) scoreSalary(desired, offered models.SalaryRange) float64 {
	if offered.Covers(desired) || offered.Min >= desired.Max {
		return 100
	}
	if offered.Max < desired.Min {
		return 0
	}

	overlap := float64(min(offered.Max, desired.Max) - max(offered.Min, desired.Min))
	width := float64(desired.Max - desired.Min)
	if width <= 0 {
		// Point expectation inside the offered range.
		return 100
	}
	if overlap < 0 {
		return 0
	}
	return 100 * overlap / width
}

// buildReasons renders the strongest dimensions (at or above the configured
// threshold) as human-readable justifications, best first. Ties keep the
// fixed dimension order so output stays deterministic.
func (e *Engine) buildReasons(dims []dimension) []string {
	strong := make([]dimension, 0, len(dims))
	for _, d := range dims {
		if d.score >= e.cfg.Scoring.ReasonThreshold && d.reason != "" {
			strong = append(strong, d)
		}
	}
	sort.SliceStable(strong, func(i, j int) bool {
		return strong[i].score > strong[j].score
	})

	maxReasons := e.cfg.Scoring.MaxReasons
	if maxReasons > 0 && len(strong) > maxReasons {
		strong = strong[:maxReasons]
	}

	reasons := make([]string, 0, len(strong))
	for _, d := range strong {
		reasons = append(reasons, d.reason)
	}
	return reasons
}

func skillsReason(matched, required int) string {
	if required == 0 {
		return "No specific skills required"
	}
	return fmt.Sprintf("Strong skills match: %d of %d required skills", matched, required)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
