package models

import "time"

// JobPosting represents the job side of a match computation. Only the fields
// the scoring engine reads are validated; the rest is carried through so
// listings can be annotated without a second lookup.
type JobPosting struct {
	ID             string       `json:"id" validate:"required"`
	Title          string       `json:"title"`
	Company        string       `json:"company"`
	Location       string       `json:"location"`
	Country        string       `json:"country"`
	Remote         bool         `json:"remote"`
	RequiredSkills []string     `json:"required_skills"`
	MinYears       *int         `json:"min_years,omitempty"`
	CultureTags    []string     `json:"culture_tags"`
	Salary         *SalaryRange `json:"salary,omitempty"`
	Description    string       `json:"description,omitempty"`
	PostedDate     time.Time    `json:"posted_date,omitempty"`
}

// SalaryRange represents an annual salary interval.
type SalaryRange struct {
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	Currency string `json:"currency"`
}

// Covers reports whether the range fully contains other.
func (s SalaryRange) Covers(other SalaryRange) bool {
	return s.Min <= other.Min && s.Max >= other.Max
}
