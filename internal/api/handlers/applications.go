package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"talentflow-core/internal/logging"
	"talentflow-core/internal/pipeline"
	"talentflow-core/pkg/models"
	"talentflow-core/pkg/utils"
)

var validate = validator.New()

// ApplicationLister lists applications for the employer dashboard, optionally
// filtered to a set of stages.
type ApplicationLister interface {
	ListByJob(ctx context.Context, jobID string, stages []pipeline.StageID) ([]pipeline.Application, error)
}

// CreateApplicationHandler registers a new application at the PENDING stage.
func CreateApplicationHandler(svc *pipeline.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := requestIDFrom(c)
		logger := logging.LogWithRequestID(requestID)

		var req models.CreateApplicationRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, requestID, "invalid_request", "Invalid request format")
		}
		if err := validate.Struct(&req); err != nil {
			return badRequest(c, requestID, "validation_failed", err.Error())
		}

		app, err := svc.Create(c.Request().Context(), req.JobID, req.CandidateID)
		if err != nil {
			logger.Error("failed to create application", map[string]interface{}{
				"job_id":       req.JobID,
				"candidate_id": req.CandidateID,
				"error":        err.Error(),
			})
			return transitionErrorResponse(c, requestID, err)
		}

		return c.JSON(http.StatusCreated, app)
	}
}

// GetApplicationHandler returns one application with its full stage history.
func GetApplicationHandler(svc *pipeline.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := requestIDFrom(c)

		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			return badRequest(c, requestID, "invalid_id", "Application ID must be a UUID")
		}

		app, err := svc.Get(c.Request().Context(), id)
		if err != nil {
			return transitionErrorResponse(c, requestID, err)
		}
		return c.JSON(http.StatusOK, app)
	}
}

// ListApplicationsHandler lists applications for a job, optionally filtered by
// stage: GET /api/v1/applications?job_id=...&stage=pending&stage=reviewed
func ListApplicationsHandler(lister ApplicationLister) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := requestIDFrom(c)

		jobID := c.QueryParam("job_id")
		if jobID == "" {
			return badRequest(c, requestID, "missing_job_id", "job_id query parameter is required")
		}

		var stages []pipeline.StageID
		for _, raw := range c.QueryParams()["stage"] {
			stage, err := pipeline.ParseStageID(raw)
			if err != nil {
				return transitionErrorResponse(c, requestID, err)
			}
			stages = append(stages, stage)
		}

		apps, err := lister.ListByJob(c.Request().Context(), jobID, stages)
		if err != nil {
			return transitionErrorResponse(c, requestID, err)
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"applications": apps,
			"count":        len(apps),
		})
	}
}

// TransitionHandler moves an application to an explicitly named stage.
func TransitionHandler(svc *pipeline.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := requestIDFrom(c)

		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			return badRequest(c, requestID, "invalid_id", "Application ID must be a UUID")
		}

		var req models.TransitionRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, requestID, "invalid_request", "Invalid request format")
		}
		if err := validate.Struct(&req); err != nil {
			return badRequest(c, requestID, "validation_failed", err.Error())
		}

		stage, err := pipeline.ParseStageID(req.Stage)
		if err != nil {
			return transitionErrorResponse(c, requestID, err)
		}

		app, err := svc.MoveStage(c.Request().Context(), id, stage, req.Message, req.ActorID)
		if err != nil {
			return transitionErrorResponse(c, requestID, err)
		}
		return c.JSON(http.StatusOK, app)
	}
}

// ShortlistHandler moves an application to SHORTLISTED.
func ShortlistHandler(svc *pipeline.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := requestIDFrom(c)

		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			return badRequest(c, requestID, "invalid_id", "Application ID must be a UUID")
		}

		var req models.AdvanceRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, requestID, "invalid_request", "Invalid request format")
		}
		if err := validate.Struct(&req); err != nil {
			return badRequest(c, requestID, "validation_failed", err.Error())
		}

		app, err := svc.Shortlist(c.Request().Context(), id, req.Message, req.ActorID)
		if err != nil {
			return transitionErrorResponse(c, requestID, err)
		}
		return c.JSON(http.StatusOK, app)
	}
}

// RejectHandler closes an application with a structured rejection payload.
func RejectHandler(svc *pipeline.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := requestIDFrom(c)

		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			return badRequest(c, requestID, "invalid_id", "Application ID must be a UUID")
		}

		var req models.RejectRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, requestID, "invalid_request", "Invalid request format")
		}
		if err := validate.Struct(&req); err != nil {
			return badRequest(c, requestID, "validation_failed", err.Error())
		}

		details := pipeline.RejectionDetails{
			Reason:     req.Reason,
			Feedback:   req.Feedback,
			CanReapply: req.CanReapply,
		}
		app, err := svc.Reject(c.Request().Context(), id, details, req.ActorID)
		if err != nil {
			return transitionErrorResponse(c, requestID, err)
		}
		return c.JSON(http.StatusOK, app)
	}
}

// AdvanceHandler moves an application to the next stage in rank order.
func AdvanceHandler(svc *pipeline.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := requestIDFrom(c)

		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			return badRequest(c, requestID, "invalid_id", "Application ID must be a UUID")
		}

		var req models.AdvanceRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, requestID, "invalid_request", "Invalid request format")
		}
		if err := validate.Struct(&req); err != nil {
			return badRequest(c, requestID, "validation_failed", err.Error())
		}

		app, err := svc.AdvanceToNext(c.Request().Context(), id, req.Message, req.ActorID)
		if err != nil {
			return transitionErrorResponse(c, requestID, err)
		}
		return c.JSON(http.StatusOK, app)
	}
}

// StagesHandler returns the stage catalog in rank order.
func StagesHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"stages": pipeline.Stages(),
		})
	}
}

// requestIDFrom reads the request ID set by the validation middleware,
// falling back to a fresh one for requests that bypassed it.
func requestIDFrom(c echo.Context) string {
	if id, ok := c.Get("request_id").(string); ok && id != "" {
		return id
	}
	return utils.GenerateRequestID()
}

func badRequest(c echo.Context, requestID, code, message string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:     code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now(),
	})
}

// transitionErrorResponse maps pipeline denials to HTTP statuses. Denials are
// normal protocol outcomes, not server faults, so only unexpected errors map
// to 500.
func transitionErrorResponse(c echo.Context, requestID string, err error) error {
	if te, ok := pipeline.AsTransitionError(err); ok {
		status := http.StatusBadRequest
		switch te.Reason {
		case pipeline.ReasonNotFound:
			status = http.StatusNotFound
		case pipeline.ReasonConflict, pipeline.ReasonApplicationClosed, pipeline.ReasonNoOp:
			status = http.StatusConflict
		case pipeline.ReasonSkippedRequiredStage:
			status = http.StatusUnprocessableEntity
		}
		return c.JSON(status, models.ErrorResponse{
			Error:     string(te.Reason),
			Message:   te.Message,
			Retryable: te.Retryable,
			RequestID: requestID,
			Timestamp: time.Now(),
		})
	}

	var ce *utils.CustomError
	if errors.As(err, &ce) {
		return c.JSON(ce.Code, models.ErrorResponse{
			Error:     "request_failed",
			Message:   ce.Error(),
			RequestID: requestID,
			Timestamp: time.Now(),
		})
	}

	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:     "internal_error",
		Message:   "An unexpected error occurred",
		RequestID: requestID,
		Timestamp: time.Now(),
	})
}
