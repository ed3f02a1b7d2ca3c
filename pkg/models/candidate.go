package models

// CandidateProfile represents the candidate side of a match computation.
// The profile service supplies these records already hydrated; this service
// never fetches or validates them beyond the fields the engine reads.
type CandidateProfile struct {
	ID            string       `json:"id" validate:"required"`
	Skills        []string     `json:"skills"`
	YearsOfExp    int          `json:"years_of_experience"`
	Location      string       `json:"location"`
	Country       string       `json:"country"`
	CultureTags   []string     `json:"culture_tags"`
	DesiredSalary *SalaryRange `json:"desired_salary,omitempty"`
}
