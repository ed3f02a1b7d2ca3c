package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"talentflow-core/internal/logging"
)

// Store persists applications and their stage history. ApplyTransition must
// append the event and update the current stage atomically, guarded by an
// optimistic check on expectedUpdatedAt: when the row has moved on since the
// caller loaded it, the store returns ErrConflict and writes nothing.
type Store interface {
	Create(ctx context.Context, app Application) (*Application, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Application, error)
	ApplyTransition(ctx context.Context, id uuid.UUID, event StageEvent, newStage StageID, expectedUpdatedAt time.Time) (*Application, error)
}

// EventDispatcher receives domain events after a transition has been
// committed. Dispatch failures must not surface to the caller; delivery is
// at-least-once and owned by the notification layer.
type EventDispatcher interface {
	DispatchStageEvent(ctx context.Context, event Event)
}

// Service is the application state machine. All mutations go through
// MoveStage so the validator is the single source of legality.
type Service struct {
	store      Store
	dispatcher EventDispatcher
	logger     logging.Logger
}

// NewService creates a pipeline service. dispatcher may be nil when
// notifications are disabled.
func NewService(store Store, dispatcher EventDispatcher) *Service {
	return &Service{
		store:      store,
		dispatcher: dispatcher,
		logger:     logging.GetGlobalLogger(),
	}
}

// Create registers a new application at the PENDING stage.
func (s *Service) Create(ctx context.Context, jobID, candidateID string) (*Application, error) {
	app := Application{
		JobID:        jobID,
		CandidateID:  candidateID,
		CurrentStage: StagePending,
	}
	created, err := s.store.Create(ctx, app)
	if err != nil {
		return nil, err
	}
	s.logger.Info("application created", map[string]interface{}{
		"application_id": created.ID.String(),
		"job_id":         jobID,
		"candidate_id":   candidateID,
	})
	return created, nil
}

// Get loads an application with its full stage history.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Application, error) {
	return s.store.GetByID(ctx, id)
}

// MoveStage applies one validated transition. Validation is fully checked
// before any write, so denials never leave partial state behind. The domain
// event is emitted only after the store has committed; a concurrent mover
// loses the optimistic check inside ApplyTransition and gets ErrConflict.
func (s *Service) MoveStage(ctx context.Context, id uuid.UUID, requested StageID, message, actorID string) (*Application, error) {
	app, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	classification, err := Validate(app.CurrentStage, requested)
	if err != nil {
		return nil, err
	}

	event := StageEvent{
		ID:             uuid.New(),
		FromStage:      app.CurrentStage,
		ToStage:        requested,
		Message:        message,
		ActorID:        actorID,
		OccurredAt:     time.Now().UTC(),
		Classification: classification,
	}

	updated, err := s.store.ApplyTransition(ctx, id, event, requested, app.UpdatedAt)
	if err != nil {
		return nil, err
	}

	s.logger.Info("application stage changed", map[string]interface{}{
		"application_id": id.String(),
		"from_stage":     string(event.FromStage),
		"to_stage":       string(event.ToStage),
		"classification": string(classification),
		"actor_id":       actorID,
	})

	if s.dispatcher != nil {
		s.dispatcher.DispatchStageEvent(ctx, Event{
			ApplicationID:  updated.ID,
			JobID:          updated.JobID,
			CandidateID:    updated.CandidateID,
			Classification: classification,
			FromStage:      event.FromStage,
			ToStage:        event.ToStage,
			Message:        message,
			OccurredAt:     event.OccurredAt,
		})
	}

	return updated, nil
}

// Shortlist moves the application to SHORTLISTED.
func (s *Service) Shortlist(ctx context.Context, id uuid.UUID, message, actorID string) (*Application, error) {
	return s.MoveStage(ctx, id, StageShortlisted, message, actorID)
}

// Reject closes the application with a structured rejection payload.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, details RejectionDetails, actorID string) (*Application, error) {
	return s.MoveStage(ctx, id, StageRejected, details.String(), actorID)
}

// AdvanceToNext moves the application to the stage with the next-higher rank.
// Applications at INTERVIEWED advance into ACCEPTED through the same
// validation as any other terminal move.
func (s *Service) AdvanceToNext(ctx context.Context, id uuid.UUID, message, actorID string) (*Application, error) {
	app, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, ok := NextStage(app.CurrentStage)
	if !ok {
		if app.Closed() {
			return nil, &TransitionError{Reason: ReasonApplicationClosed, Message: "this application has already been closed"}
		}
		return nil, &TransitionError{Reason: ReasonNoOp, Message: "application has no further stage to advance to"}
	}
	return s.MoveStage(ctx, id, next, message, actorID)
}
