package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"talentflow-core/internal/background"
	"talentflow-core/internal/insights"
	"talentflow-core/internal/logging"
	"talentflow-core/internal/scoring"
	"talentflow-core/pkg/models"
	"talentflow-core/pkg/utils"
)

// ScoreHandler computes one candidate/job match. Results are cached in Redis
// keyed by the inputs hash; a cache hit skips the engine entirely.
func ScoreHandler(engine *scoring.Engine, cache *utils.RedisClient, insightManager *insights.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		startTime := time.Now()
		requestID := requestIDFrom(c)
		logger := logging.LogWithRequestID(requestID)

		var req models.ScoreRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, requestID, "invalid_request", "Invalid request format")
		}
		if err := validate.Struct(&req); err != nil {
			return badRequest(c, requestID, "validation_failed", err.Error())
		}

		ctx := c.Request().Context()
		hash := scoring.InputsHash(req.Candidate, req.Job)

		if cache != nil {
			if cached, ok := cache.GetMatchResult(ctx, req.Candidate.ID, req.Job.ID, hash); ok {
				logger.Info("match served from cache", map[string]interface{}{
					"candidate_id": req.Candidate.ID,
					"job_id":       req.Job.ID,
				})
				return c.JSON(http.StatusOK, models.ScoreResponse{
					Success:        true,
					Result:         cached,
					Cached:         true,
					ProcessingTime: time.Since(startTime),
					RequestID:      requestID,
				})
			}
		}

		result := engine.Score(req.Candidate, req.Job)

		if req.WithInsight && insightManager != nil {
			insightManager.Enrich(ctx, &req.Candidate, &req.Job, &result)
		}

		if cache != nil {
			cache.SetMatchResult(ctx, req.Candidate.ID, req.Job.ID, hash, &result)
		}

		logger.Info("match computed", map[string]interface{}{
			"candidate_id":  req.Candidate.ID,
			"job_id":        req.Job.ID,
			"overall_score": result.OverallScore,
		})

		return c.JSON(http.StatusOK, models.ScoreResponse{
			Success:        true,
			Result:         &result,
			Cached:         false,
			ProcessingTime: time.Since(startTime),
			RequestID:      requestID,
		})
	}
}

// BatchScoreHandler scores one candidate against many jobs in the background
// and returns a process ID for polling.
func BatchScoreHandler(engine *scoring.Engine, cache *utils.RedisClient, taskManager background.TaskManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := requestIDFrom(c)
		logger := logging.LogWithRequestID(requestID)

		var req models.BatchScoreRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, requestID, "invalid_request", "Invalid request format")
		}
		if err := validate.Struct(&req); err != nil {
			return badRequest(c, requestID, "validation_failed", err.Error())
		}

		processID := utils.GenerateProcessID()
		candidate := req.Candidate
		jobs := req.Jobs

		err := taskManager.Submit(c.Request().Context(), processID, background.TaskTypeBatchScore, func(taskCtx context.Context) (interface{}, error) {
			return runBatchScore(taskCtx, engine, cache, candidate, jobs), nil
		})
		if err != nil {
			logger.Error("failed to queue batch score", map[string]interface{}{
				"candidate_id": candidate.ID,
				"job_count":    len(jobs),
				"error":        err.Error(),
			})
			return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
				Error:     "queue_full",
				Message:   fmt.Sprintf("Failed to accept batch scoring request: %v", err),
				Retryable: true,
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		logger.Info("batch score accepted", map[string]interface{}{
			"process_id":   processID,
			"candidate_id": candidate.ID,
			"job_count":    len(jobs),
		})

		return c.JSON(http.StatusAccepted, models.AsyncTaskResponse{
			ProcessID: processID,
			Status:    string(background.TaskStatusAccepted),
			Message:   fmt.Sprintf("Scoring %d jobs in the background", len(jobs)),
			Timestamp: time.Now(),
		})
	}
}

// runBatchScore scores every job, best match first. Jobs the cache already
// knows are served from it; fresh results are written back.
func runBatchScore(ctx context.Context, engine *scoring.Engine, cache *utils.RedisClient, candidate models.CandidateProfile, jobs []models.JobPosting) models.BatchScoreTaskData {
	results := make([]models.MatchResult, 0, len(jobs))

	for _, job := range jobs {
		hash := scoring.InputsHash(candidate, job)
		if cache != nil {
			if cached, ok := cache.GetMatchResult(ctx, candidate.ID, job.ID, hash); ok {
				results = append(results, *cached)
				continue
			}
		}
		result := engine.Score(candidate, job)
		if cache != nil {
			cache.SetMatchResult(ctx, candidate.ID, job.ID, hash, &result)
		}
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].OverallScore > results[j].OverallScore
	})

	return models.BatchScoreTaskData{
		CandidateID: candidate.ID,
		Results:     results,
		JobCount:    len(jobs),
	}
}
