package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Classification tags a successful transition by its direction.
type Classification string

const (
	ClassificationAdvance  Classification = "ADVANCE"
	ClassificationRegress  Classification = "REGRESS"
	ClassificationTerminal Classification = "TERMINAL"
)

// StageEvent is one append-only history entry. Events are created by the
// state machine on every successful transition and never mutated or removed.
type StageEvent struct {
	ID             uuid.UUID      `json:"id"`
	FromStage      StageID        `json:"from_stage"`
	ToStage        StageID        `json:"to_stage"`
	Message        string         `json:"message,omitempty"`
	ActorID        string         `json:"actor_id"`
	OccurredAt     time.Time      `json:"occurred_at"`
	Classification Classification `json:"classification"`
}

// Application is the pipeline's aggregate. CurrentStage always equals the
// ToStage of the last history entry, or PENDING while the history is empty.
type Application struct {
	ID           uuid.UUID    `json:"id"`
	JobID        string       `json:"job_id"`
	CandidateID  string       `json:"candidate_id"`
	CurrentStage StageID      `json:"current_stage"`
	History      []StageEvent `json:"history"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Closed reports whether the application has reached a terminal stage.
func (a *Application) Closed() bool {
	return IsTerminal(a.CurrentStage)
}

// RejectionDetails is the structured payload of a rejection. It is rendered
// into the stage event message so the history stays a flat audit log.
type RejectionDetails struct {
	Reason     string
	Feedback   string
	CanReapply bool
}

func (d RejectionDetails) String() string {
	msg := d.Reason
	if d.Feedback != "" {
		msg = fmt.Sprintf("%s | feedback: %s", msg, d.Feedback)
	}
	if d.CanReapply {
		msg += " | reapplication welcome"
	}
	return msg
}

// Event is the domain event handed to the notification dispatcher after a
// transition has been durably recorded.
type Event struct {
	ApplicationID  uuid.UUID      `json:"application_id"`
	JobID          string         `json:"job_id"`
	CandidateID    string         `json:"candidate_id"`
	Classification Classification `json:"classification"`
	FromStage      StageID        `json:"from_stage"`
	ToStage        StageID        `json:"to_stage"`
	Message        string         `json:"message,omitempty"`
	OccurredAt     time.Time      `json:"occurred_at"`
}
