package models

// Match dimensions. Sub-scores are keyed by these names in MatchResult and
// in the scoring weight configuration.
const (
	DimensionSkills     = "skills"
	DimensionExperience = "experience"
	DimensionLocation   = "location"
	DimensionCulture    = "culture"
	DimensionSalary     = "salary"
)

// MatchResult is the outcome of scoring a candidate against a job posting.
// It is derived data: recomputed on demand, cacheable, never authoritative.
type MatchResult struct {
	CandidateID  string             `json:"candidate_id"`
	JobID        string             `json:"job_id"`
	OverallScore float64            `json:"overall_score"`
	SubScores    map[string]float64 `json:"sub_scores"`
	Reasons      []string           `json:"reasons"`
	SkillGaps    []string           `json:"skill_gaps"`
	Insight      string             `json:"insight,omitempty"`
}
