package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentflow-core/internal/background"
	"talentflow-core/internal/config"
	"talentflow-core/internal/logging"
	"talentflow-core/internal/pipeline"
)

func testNotification() StageNotification {
	return StageNotification{
		ApplicationID:  uuid.NewString(),
		JobID:          "job-1",
		CandidateID:    "cand-1",
		Classification: string(pipeline.ClassificationAdvance),
		ToStage:        string(pipeline.StageReviewed),
		OccurredAt:     time.Now().UTC(),
	}
}

func TestClientSendDeliversPayload(t *testing.T) {
	var received StageNotification
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{WebhookURL: server.URL, MaxRetries: 1}, logging.GetGlobalLogger())
	require.NoError(t, err)

	notification := testNotification()
	require.NoError(t, client.Send(context.Background(), notification))
	assert.Equal(t, notification.ApplicationID, received.ApplicationID)
	assert.Equal(t, "reviewed", received.ToStage)
}

func TestClientSendRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{WebhookURL: server.URL, MaxRetries: 3}, logging.GetGlobalLogger())
	require.NoError(t, err)

	require.NoError(t, client.Send(context.Background(), testNotification()))
	assert.Equal(t, int32(2), calls.Load())
}

func TestClientSendGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{WebhookURL: server.URL, MaxRetries: 2}, logging.GetGlobalLogger())
	require.NoError(t, err)

	err = client.Send(context.Background(), testNotification())
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestNewClientRequiresURL(t *testing.T) {
	_, err := NewClient(ClientConfig{}, logging.GetGlobalLogger())
	require.Error(t, err)
}

func TestDispatcherDeliversThroughTaskManager(t *testing.T) {
	var delivered atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		delivered.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := &config.Config{}
	cfg.BackgroundTasks.MaxConcurrentTasks = 1
	cfg.BackgroundTasks.QueueSize = 4
	cfg.BackgroundTasks.TaskTimeout = 5 * time.Second
	cfg.BackgroundTasks.CleanupInterval = time.Minute
	cfg.BackgroundTasks.MaxTaskAge = time.Hour

	tm := background.NewTaskManager(cfg)
	require.NoError(t, tm.Start(context.Background()))
	defer tm.Stop(context.Background())

	client, err := NewClient(ClientConfig{WebhookURL: server.URL, MaxRetries: 1}, logging.GetGlobalLogger())
	require.NoError(t, err)

	dispatcher := NewDispatcher(client, tm)
	dispatcher.DispatchStageEvent(context.Background(), pipeline.Event{
		ApplicationID:  uuid.New(),
		JobID:          "job-1",
		CandidateID:    "cand-1",
		Classification: pipeline.ClassificationAdvance,
		FromStage:      pipeline.StagePending,
		ToStage:        pipeline.StageReviewed,
		OccurredAt:     time.Now().UTC(),
	})

	deadline := time.Now().Add(3 * time.Second)
	for delivered.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, int32(1), delivered.Load())
}

func TestDispatcherWithoutClientDropsEvent(t *testing.T) {
	dispatcher := NewDispatcher(nil, nil)
	// Must not panic or touch the task manager.
	dispatcher.DispatchStageEvent(context.Background(), pipeline.Event{
		ApplicationID: uuid.New(),
		ToStage:       pipeline.StageReviewed,
	})
}
