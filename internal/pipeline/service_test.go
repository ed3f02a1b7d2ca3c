package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store with the same optimistic-check semantics as
// the Postgres repository.
type fakeStore struct {
	mu   sync.Mutex
	apps map[uuid.UUID]*Application
}

func newFakeStore() *fakeStore {
	return &fakeStore{apps: make(map[uuid.UUID]*Application)}
}

func (s *fakeStore) Create(ctx context.Context, app Application) (*Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app.ID = uuid.New()
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now
	app.History = []StageEvent{}
	s.apps[app.ID] = &app

	out := app
	return &out, nil
}

func (s *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.apps[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *app
	out.History = append([]StageEvent{}, app.History...)
	return &out, nil
}

func (s *fakeStore) ApplyTransition(ctx context.Context, id uuid.UUID, event StageEvent, newStage StageID, expectedUpdatedAt time.Time) (*Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.apps[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !app.UpdatedAt.Equal(expectedUpdatedAt) {
		return nil, ErrConflict
	}

	app.CurrentStage = newStage
	app.History = append(app.History, event)
	app.UpdatedAt = time.Now().UTC().Add(time.Microsecond)

	out := *app
	out.History = append([]StageEvent{}, app.History...)
	return &out, nil
}


type recordingDispatcher struct {
	mu     sync.Mutex
	events []Event
}

func (d *recordingDispatcher) DispatchStageEvent(ctx context.Context, event Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
}

func (d *recordingDispatcher) all() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Event{}, d.events...)
}

func newTestService(t *testing.T) (*Service, *fakeStore, *recordingDispatcher) {
	t.Helper()
	store := newFakeStore()
	dispatcher := &recordingDispatcher{}
	return NewService(store, dispatcher), store, dispatcher
}

func TestServiceCreateStartsPending(t *testing.T) {
	svc, _, _ := newTestService(t)

	app, err := svc.Create(context.Background(), "job-1", "cand-1")
	require.NoError(t, err)
	assert.Equal(t, StagePending, app.CurrentStage)
	assert.Empty(t, app.History)
	assert.False(t, app.Closed())
}

func TestServiceMoveStageAppendsHistory(t *testing.T) {
	svc, _, dispatcher := newTestService(t)
	ctx := context.Background()

	app, err := svc.Create(ctx, "job-1", "cand-1")
	require.NoError(t, err)

	updated, err := svc.MoveStage(ctx, app.ID, StageReviewed, "looks promising", "recruiter-7")
	require.NoError(t, err)

	assert.Equal(t, StageReviewed, updated.CurrentStage)
	require.Len(t, updated.History, 1)
	entry := updated.History[0]
	assert.Equal(t, StagePending, entry.FromStage)
	assert.Equal(t, StageReviewed, entry.ToStage)
	assert.Equal(t, "looks promising", entry.Message)
	assert.Equal(t, "recruiter-7", entry.ActorID)
	assert.Equal(t, ClassificationAdvance, entry.Classification)

	events := dispatcher.all()
	require.Len(t, events, 1)
	assert.Equal(t, StageReviewed, events[0].ToStage)
	assert.Equal(t, "job-1", events[0].JobID)
}

func TestServiceDenialLeavesNoTrace(t *testing.T) {
	svc, _, dispatcher := newTestService(t)
	ctx := context.Background()

	app, err := svc.Create(ctx, "job-1", "cand-1")
	require.NoError(t, err)

	_, err = svc.MoveStage(ctx, app.ID, StageAccepted, "", "recruiter-7")
	te, ok := AsTransitionError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonSkippedRequiredStage, te.Reason)

	reloaded, err := svc.Get(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, StagePending, reloaded.CurrentStage)
	assert.Empty(t, reloaded.History)
	assert.Empty(t, dispatcher.all())
}

func TestServiceRejectFoldsDetailsIntoMessage(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	app, err := svc.Create(ctx, "job-1", "cand-1")
	require.NoError(t, err)

	details := RejectionDetails{Reason: "position filled", Feedback: "strong profile", CanReapply: true}
	updated, err := svc.Reject(ctx, app.ID, details, "recruiter-7")
	require.NoError(t, err)

	assert.Equal(t, StageRejected, updated.CurrentStage)
	assert.True(t, updated.Closed())
	require.Len(t, updated.History, 1)
	assert.Equal(t, "position filled | feedback: strong profile | reapplication welcome", updated.History[0].Message)
	assert.Equal(t, ClassificationTerminal, updated.History[0].Classification)
}

func TestServiceClosedApplicationStaysClosed(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	app, err := svc.Create(ctx, "job-1", "cand-1")
	require.NoError(t, err)

	_, err = svc.Reject(ctx, app.ID, RejectionDetails{Reason: "not a fit"}, "recruiter-7")
	require.NoError(t, err)

	_, err = svc.MoveStage(ctx, app.ID, StageReviewed, "", "recruiter-7")
	te, ok := AsTransitionError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonApplicationClosed, te.Reason)
}

func TestServiceAdvanceWalksMainLine(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	app, err := svc.Create(ctx, "job-1", "cand-1")
	require.NoError(t, err)

	want := []StageID{StageReviewed, StageShortlisted, StageInterviewed, StageAccepted}
	for _, expected := range want {
		app, err = svc.AdvanceToNext(ctx, app.ID, "", "recruiter-7")
		require.NoError(t, err)
		assert.Equal(t, expected, app.CurrentStage)
	}

	// Terminal now; advancing again is refused.
	_, err = svc.AdvanceToNext(ctx, app.ID, "", "recruiter-7")
	te, ok := AsTransitionError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonApplicationClosed, te.Reason)
}

func TestStoreStaleVersionConflicts(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	app, err := svc.Create(ctx, "job-1", "cand-1")
	require.NoError(t, err)
	stale := app.UpdatedAt

	// First mover wins and bumps the version.
	_, err = svc.MoveStage(ctx, app.ID, StageReviewed, "", "recruiter-7")
	require.NoError(t, err)

	// Second mover committed against the version it loaded before the first
	// move landed.
	event := StageEvent{ID: uuid.New(), FromStage: StagePending, ToStage: StageShortlisted, ActorID: "recruiter-8", OccurredAt: time.Now().UTC(), Classification: ClassificationAdvance}
	_, err = store.ApplyTransition(ctx, app.ID, event, StageShortlisted, stale)
	te, ok := AsTransitionError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonConflict, te.Reason)
	assert.True(t, te.Retryable)

	// The losing write left nothing behind.
	reloaded, err := svc.Get(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, StageReviewed, reloaded.CurrentStage)
	require.Len(t, reloaded.History, 1)
}

func TestServiceMoveUnknownApplication(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.MoveStage(context.Background(), uuid.New(), StageReviewed, "", "recruiter-7")
	te, ok := AsTransitionError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonNotFound, te.Reason)
}
