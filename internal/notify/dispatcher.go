package notify

import (
	"context"

	"talentflow-core/internal/background"
	"talentflow-core/internal/logging"
	"talentflow-core/internal/pipeline"
	"talentflow-core/pkg/utils"
)

// Dispatcher hands pipeline events to the webhook client through the
// background task manager. Dispatch never blocks the caller and never
// reports failure to it: by the time an event exists, the transition is
// already committed.
type Dispatcher struct {
	client      *Client
	taskManager background.TaskManager
	logger      logging.Logger
}

// NewDispatcher creates an event dispatcher. client may be nil when
// notifications are disabled; events are then logged and dropped.
func NewDispatcher(client *Client, taskManager background.TaskManager) *Dispatcher {
	return &Dispatcher{
		client:      client,
		taskManager: taskManager,
		logger:      logging.GetGlobalLogger(),
	}
}

// DispatchStageEvent implements pipeline.EventDispatcher.
func (d *Dispatcher) DispatchStageEvent(ctx context.Context, event pipeline.Event) {
	if d.client == nil {
		d.logger.Debug("notifications disabled, dropping stage event", map[string]interface{}{
			"application_id": event.ApplicationID.String(),
			"to_stage":       string(event.ToStage),
		})
		return
	}

	notification := NotificationFromEvent(event)
	processID := utils.GenerateProcessID()

	err := d.taskManager.Submit(ctx, processID, background.TaskTypeNotify, func(taskCtx context.Context) (interface{}, error) {
		if err := d.client.Send(taskCtx, notification); err != nil {
			return nil, err
		}
		return notification, nil
	})
	if err != nil {
		// The transition is already durable; a lost notification is a
		// delivery concern, not a state machine concern.
		d.logger.Error("failed to queue stage notification", map[string]interface{}{
			"application_id": event.ApplicationID.String(),
			"to_stage":       string(event.ToStage),
			"error":          err.Error(),
		})
	}
}
