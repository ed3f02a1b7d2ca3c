package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"talentflow-core/internal/background"
	"talentflow-core/pkg/models"
)

// TaskStatusHandler returns the status and, once complete, the result of a
// background task by process ID.
func TaskStatusHandler(taskManager background.TaskManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := requestIDFrom(c)
		processID := c.Param("id")

		result, err := taskManager.GetTaskResult(c.Request().Context(), processID)
		if err != nil {
			var taskErr *background.TaskError
			if errors.As(err, &taskErr) {
				return c.JSON(http.StatusNotFound, models.ErrorResponse{
					Error:     "task_not_found",
					Message:   "No task with that process ID",
					RequestID: requestID,
					Timestamp: time.Now(),
				})
			}
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "internal_error",
				Message:   "Failed to look up task",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		return c.JSON(http.StatusOK, result)
	}
}
