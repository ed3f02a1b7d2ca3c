package models

// TransitionRequest is the payload for moving an application to another stage.
type TransitionRequest struct {
	Stage   string `json:"stage" validate:"required"`
	Message string `json:"message,omitempty"`
	ActorID string `json:"actor_id" validate:"required"`
}

// RejectRequest carries the structured rejection payload. The fields are
// folded into the stage event message so the history stays a flat audit log.
type RejectRequest struct {
	Reason     string `json:"reason" validate:"required"`
	Feedback   string `json:"feedback,omitempty"`
	CanReapply bool   `json:"can_reapply"`
	ActorID    string `json:"actor_id" validate:"required"`
}

// AdvanceRequest moves an application to the next stage in rank order.
type AdvanceRequest struct {
	Message string `json:"message,omitempty"`
	ActorID string `json:"actor_id" validate:"required"`
}

// CreateApplicationRequest registers a new application at the PENDING stage.
type CreateApplicationRequest struct {
	JobID       string `json:"job_id" validate:"required"`
	CandidateID string `json:"candidate_id" validate:"required"`
}

// ScoreRequest is the payload for a single candidate/job match computation.
type ScoreRequest struct {
	Candidate CandidateProfile `json:"candidate" validate:"required"`
	Job       JobPosting       `json:"job" validate:"required"`
	// WithInsight asks for an LLM-generated narrative on top of the
	// deterministic result. Ignored when no insight provider is configured.
	WithInsight bool `json:"with_insight,omitempty"`
}

// BatchScoreRequest scores one candidate against many jobs asynchronously.
type BatchScoreRequest struct {
	Candidate CandidateProfile `json:"candidate" validate:"required"`
	Jobs      []JobPosting     `json:"jobs" validate:"required,min=1,dive"`
}
