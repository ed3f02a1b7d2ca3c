package pipeline

import "fmt"

// Validate decides whether an application at current may move to requested
// and classifies the transition. Every legality rule lives here; the state
// machine and the API layer never re-implement any of them.
//
// Rules, in order: the requested stage must exist; terminal applications
// accept nothing (the first transition into ACCEPTED or REJECTED closes the
// application permanently, so final decisions stay auditable); moving to the
// current stage is a no-op; REJECTED is legal from any non-terminal stage;
// ACCEPTED additionally requires the application to have reached at least
// SHORTLISTED rank; everything else is an advance or an explicitly permitted
// regress by rank comparison.
func Validate(current, requested StageID) (Classification, error) {
	target, err := GetStage(requested)
	if err != nil {
		return "", err
	}

	if IsTerminal(current) {
		return "", &TransitionError{
			Reason:  ReasonApplicationClosed,
			Message: "this application has already been closed",
		}
	}

	if requested == current {
		return "", &TransitionError{
			Reason:  ReasonNoOp,
			Message: fmt.Sprintf("application is already at stage %q", current),
		}
	}

	if requested == StageRejected {
		return ClassificationTerminal, nil
	}

	if requested == StageAccepted {
		if RankOf(current) < RankOf(StageShortlisted) {
			return "", &TransitionError{
				Reason:  ReasonSkippedRequiredStage,
				Message: "application cannot be accepted before it has been shortlisted",
			}
		}
		return ClassificationTerminal, nil
	}

	if target.Rank > RankOf(current) {
		return ClassificationAdvance, nil
	}
	return ClassificationRegress, nil
}
