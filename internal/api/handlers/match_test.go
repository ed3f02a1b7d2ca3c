package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentflow-core/internal/background"
	"talentflow-core/internal/config"
	"talentflow-core/internal/scoring"
	"talentflow-core/pkg/models"
)

func scoringConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Scoring.Weights.Skills = 0.35
	cfg.Scoring.Weights.Experience = 0.25
	cfg.Scoring.Weights.Location = 0.15
	cfg.Scoring.Weights.Culture = 0.10
	cfg.Scoring.Weights.Salary = 0.15
	cfg.Scoring.LocationPartialCredit = 50
	cfg.Scoring.ReasonThreshold = 80
	cfg.Scoring.MaxReasons = 3
	cfg.BackgroundTasks.MaxConcurrentTasks = 2
	cfg.BackgroundTasks.QueueSize = 10
	cfg.BackgroundTasks.TaskTimeout = 5 * time.Second
	cfg.BackgroundTasks.CleanupInterval = time.Minute
	cfg.BackgroundTasks.MaxTaskAge = time.Hour
	return cfg
}

func TestScoreHandler(t *testing.T) {
	engine := scoring.NewEngine(scoringConfig())
	handler := ScoreHandler(engine, nil, nil)

	body := `{
		"candidate": {"id":"cand-1","skills":["React","SQL"]},
		"job": {"id":"job-1","required_skills":["React","SQL","Go"]}
	}`
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/match/score", body, nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.ScoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.False(t, resp.Cached)
	require.NotNil(t, resp.Result)
	assert.Equal(t, 66.7, resp.Result.OverallScore)
	assert.Equal(t, []string{"Go"}, resp.Result.SkillGaps)
}

func TestScoreHandlerBadRequest(t *testing.T) {
	engine := scoring.NewEngine(scoringConfig())
	handler := ScoreHandler(engine, nil, nil)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/match/score", `{"candidate":`, nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatchScoreRoundTrip(t *testing.T) {
	cfg := scoringConfig()
	engine := scoring.NewEngine(cfg)

	tm := background.NewTaskManager(cfg)
	require.NoError(t, tm.Start(context.Background()))
	defer tm.Stop(context.Background())

	batch := BatchScoreHandler(engine, nil, tm)
	body := `{
		"candidate": {"id":"cand-1","skills":["Go","SQL"]},
		"jobs": [
			{"id":"job-a","required_skills":["Go","Rust"]},
			{"id":"job-b","required_skills":["Go","SQL"]}
		]
	}`
	rec := doJSON(t, batch, http.MethodPost, "/api/v1/match/batch", body, nil, nil)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var accepted models.AsyncTaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))
	require.NotEmpty(t, accepted.ProcessID)

	status := TaskStatusHandler(tm)
	deadline := time.Now().Add(3 * time.Second)
	var task background.TaskResult
	for {
		rec = doJSON(t, status, http.MethodGet, "/api/v1/tasks/"+accepted.ProcessID, "",
			[]string{"id"}, []string{accepted.ProcessID})
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
		if task.Status == background.TaskStatusSuccess || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.Equal(t, background.TaskStatusSuccess, task.Status)

	// Task data round-trips through JSON as a generic map.
	raw, err := json.Marshal(task.Data)
	require.NoError(t, err)
	var data models.BatchScoreTaskData
	require.NoError(t, json.Unmarshal(raw, &data))

	assert.Equal(t, "cand-1", data.CandidateID)
	assert.Equal(t, 2, data.JobCount)
	require.Len(t, data.Results, 2)
	// Best match first: job-b is a full skills match.
	assert.Equal(t, "job-b", data.Results[0].JobID)
	assert.Greater(t, data.Results[0].OverallScore, data.Results[1].OverallScore)
}

func TestBatchScoreValidation(t *testing.T) {
	cfg := scoringConfig()
	engine := scoring.NewEngine(cfg)
	tm := background.NewTaskManager(cfg)
	require.NoError(t, tm.Start(context.Background()))
	defer tm.Stop(context.Background())

	handler := BatchScoreHandler(engine, nil, tm)
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/match/batch",
		`{"candidate":{"id":"cand-1"},"jobs":[]}`, nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaskStatusHandlerUnknown(t *testing.T) {
	cfg := scoringConfig()
	tm := background.NewTaskManager(cfg)
	require.NoError(t, tm.Start(context.Background()))
	defer tm.Stop(context.Background())

	rec := doJSON(t, TaskStatusHandler(tm), http.MethodGet, "/api/v1/tasks/missing", "",
		[]string{"id"}, []string{"missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
