// Package pipeline implements the application review lifecycle: the fixed
// stage catalog, the transition rules between stages, and the state machine
// that applies transitions and emits domain events.
//
// Stage graph:
//
//	PENDING ──► REVIEWED ──► SHORTLISTED ──► INTERVIEWED ──► ACCEPTED
//	    │           │             │               │
//	    └───────────┴─────────────┴───────────────┴──► REJECTED
//
// ACCEPTED and REJECTED are terminal. Backward moves along the main line are
// permitted; REJECTED is reachable from any non-terminal stage.
package pipeline

import (
	"fmt"
	"strings"
)

// StageID identifies a stage in the review lifecycle.
type StageID string

const (
	StagePending     StageID = "pending"
	StageReviewed    StageID = "reviewed"
	StageShortlisted StageID = "shortlisted"
	StageInterviewed StageID = "interviewed"
	StageAccepted    StageID = "accepted"
	StageRejected    StageID = "rejected"
)

// Stage describes one catalog entry. Ranks form a total order over the
// non-terminal main line; REJECTED sits outside it as a side branch, so its
// rank is only used for display ordering, never for advance/regress logic.
type Stage struct {
	ID          StageID `json:"id"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
	Rank        int     `json:"rank"`
	Terminal    bool    `json:"terminal"`
}

var catalog = []Stage{
	{ID: StagePending, Label: "Pending", Description: "Application submitted, awaiting first look", Rank: 1},
	{ID: StageReviewed, Label: "Reviewed", Description: "Application has been reviewed by the employer", Rank: 2},
	{ID: StageShortlisted, Label: "Shortlisted", Description: "Candidate selected for further consideration", Rank: 3},
	{ID: StageInterviewed, Label: "Interviewed", Description: "Candidate has completed interviews", Rank: 4},
	{ID: StageAccepted, Label: "Accepted", Description: "Offer extended and application closed", Rank: 5, Terminal: true},
	{ID: StageRejected, Label: "Rejected", Description: "Application closed without an offer", Rank: 6, Terminal: true},
}

var stagesByID = func() map[StageID]Stage {
	m := make(map[StageID]Stage, len(catalog))
	for _, s := range catalog {
		m[s.ID] = s
	}
	return m
}()

// Stages returns the full catalog in rank order, REJECTED last.
func Stages() []Stage {
	out := make([]Stage, len(catalog))
	copy(out, catalog)
	return out
}

// GetStage returns the catalog entry for id.
func GetStage(id StageID) (Stage, error) {
	s, ok := stagesByID[id]
	if !ok {
		return Stage{}, &TransitionError{Reason: ReasonUnknownStage, Message: fmt.Sprintf("unknown stage %q", id)}
	}
	return s, nil
}

// IsTerminal reports whether id is a terminal stage. Unknown stages are not
// terminal; callers are expected to have validated the id.
func IsTerminal(id StageID) bool {
	return stagesByID[id].Terminal
}

// RankOf returns the rank of id, or 0 for unknown stages.
func RankOf(id StageID) int {
	return stagesByID[id].Rank
}

// NextStage returns the stage with the next-higher rank on the main line,
// skipping REJECTED. Terminal stages have no successor.
func NextStage(id StageID) (StageID, bool) {
	current, ok := stagesByID[id]
	if !ok || current.Terminal {
		return "", false
	}
	for _, s := range catalog {
		if s.ID == StageRejected {
			continue
		}
		if s.Rank == current.Rank+1 {
			return s.ID, true
		}
	}
	return "", false
}

// ParseStageID converts a raw string to a StageID, returning ErrUnknownStage
// for values outside the catalog.
func ParseStageID(raw string) (StageID, error) {
	id := StageID(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := stagesByID[id]; !ok {
		return "", &TransitionError{Reason: ReasonUnknownStage, Message: fmt.Sprintf("unknown stage %q", raw)}
	}
	return id, nil
}
