package models

import "time"

// AsyncTaskResponse is returned when a request is accepted for background
// processing. The caller polls /api/v1/tasks/:id with the process ID.
type AsyncTaskResponse struct {
	ProcessID string    `json:"processId"`
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// BatchScoreTaskData is the result payload of a completed batch-score task.
// Results are ordered by overall score, best match first.
type BatchScoreTaskData struct {
	CandidateID string        `json:"candidate_id"`
	Results     []MatchResult `json:"results"`
	JobCount    int           `json:"job_count"`
	Failed      int           `json:"failed"`
}
