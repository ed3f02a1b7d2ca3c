package background

import (
	"context"
	"fmt"
	"sync"
	"time"

	"talentflow-core/internal/config"
	"talentflow-core/internal/logging"
	"talentflow-core/internal/logging/types"
)

// Task manager configuration bounds
const (
	DefaultMaxWorkers   = 10
	DefaultMaxQueueSize = 100

	MinWorkers   = 1
	MinQueueSize = 1

	MaxWorkers   = 1000
	MaxQueueSize = 10000
)

// ExecuteFunc performs one background task and returns its result payload.
type ExecuteFunc func(ctx context.Context) (interface{}, error)

// TaskManager runs asynchronous work (batch scoring, notification delivery)
// on a bounded worker pool and keeps pollable task records.
type TaskManager interface {
	// Start starts the task manager
	Start(ctx context.Context) error

	// Stop stops the task manager gracefully
	Stop(ctx context.Context) error

	// Submit enqueues a task for background execution. The returned error is
	// ErrQueueFull when the queue has no room.
	Submit(ctx context.Context, processID string, taskType TaskType, execute ExecuteFunc) error

	// GetTaskResult retrieves the result of a task by process ID
	GetTaskResult(ctx context.Context, processID string) (*TaskResult, error)

	// GetTaskStatus retrieves the status of a task by process ID
	GetTaskStatus(ctx context.Context, processID string) (TaskStatus, error)

	// ListTasks lists all known tasks (for monitoring)
	ListTasks(ctx context.Context) ([]*TaskResult, error)

	// IsHealthy checks if the task manager is healthy
	IsHealthy() bool
}

// TaskManagerImpl implements the TaskManager interface
type TaskManagerImpl struct {
	config       *config.Config
	store        TaskStore
	logger       types.Logger
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	mu           sync.RWMutex
	running      bool
	taskChan     chan *taskExecution
	maxWorkers   int
	maxQueueSize int
}

type taskExecution struct {
	processID string
	taskType  TaskType
	execute   ExecuteFunc
}

func validateTaskManagerConfig(cfg *config.Config) (maxWorkers, maxQueueSize int, err error) {
	maxWorkers = cfg.BackgroundTasks.MaxConcurrentTasks
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	} else if maxWorkers < MinWorkers {
		return 0, 0, fmt.Errorf("worker count (%d) is below minimum (%d)", maxWorkers, MinWorkers)
	} else if maxWorkers > MaxWorkers {
		return 0, 0, fmt.Errorf("worker count (%d) exceeds maximum (%d)", maxWorkers, MaxWorkers)
	}

	maxQueueSize = cfg.BackgroundTasks.QueueSize
	if maxQueueSize <= 0 {
		maxQueueSize = DefaultMaxQueueSize
	} else if maxQueueSize < MinQueueSize {
		return 0, 0, fmt.Errorf("queue size (%d) is below minimum (%d)", maxQueueSize, MinQueueSize)
	} else if maxQueueSize > MaxQueueSize {
		return 0, 0, fmt.Errorf("queue size (%d) exceeds maximum (%d)", maxQueueSize, MaxQueueSize)
	}

	return maxWorkers, maxQueueSize, nil
}

// NewTaskManager creates a new task manager
func NewTaskManager(cfg *config.Config) *TaskManagerImpl {
	logger := logging.GetGlobalLogger()

	maxWorkers, maxQueueSize, err := validateTaskManagerConfig(cfg)
	if err != nil {
		logger.Warn("task manager configuration invalid, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		maxWorkers = DefaultMaxWorkers
		maxQueueSize = DefaultMaxQueueSize
	}

	return &TaskManagerImpl{
		config:       cfg,
		store:        NewInMemoryTaskStore(),
		logger:       logger,
		maxWorkers:   maxWorkers,
		maxQueueSize: maxQueueSize,
		taskChan:     make(chan *taskExecution, maxQueueSize),
	}
}

// Start starts the task manager
func (tm *TaskManagerImpl) Start(ctx context.Context) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.running {
		return fmt.Errorf("task manager already running")
	}

	tm.ctx, tm.cancel = context.WithCancel(ctx)
	tm.running = true

	for i := 0; i < tm.maxWorkers; i++ {
		tm.wg.Add(1)
		go tm.worker(i)
	}

	tm.wg.Add(1)
	go tm.cleanupRoutine()

	tm.logger.Info("task manager started", map[string]interface{}{
		"max_workers":    tm.maxWorkers,
		"max_queue_size": tm.maxQueueSize,
	})
	return nil
}

// Stop stops the task manager gracefully
func (tm *TaskManagerImpl) Stop(ctx context.Context) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if !tm.running {
		return nil
	}

	tm.logger.Info("stopping task manager")
	tm.cancel()
	close(tm.taskChan)

	done := make(chan struct{})
	go func() {
		tm.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		tm.logger.Warn("task manager shutdown timed out, abandoning workers")
	}

	tm.running = false
	return nil
}

// Submit enqueues a task and records it as ACCEPTED.
func (tm *TaskManagerImpl) Submit(ctx context.Context, processID string, taskType TaskType, execute ExecuteFunc) error {
	tm.mu.RLock()
	running := tm.running
	tm.mu.RUnlock()
	if !running {
		return fmt.Errorf("task manager is not running")
	}

	record := &TaskResult{
		ProcessID: processID,
		Type:      taskType,
		Status:    TaskStatusAccepted,
		CreatedAt: time.Now().UTC(),
	}
	if err := tm.store.Store(ctx, record); err != nil {
		return fmt.Errorf("failed to record task: %w", err)
	}

	select {
	case tm.taskChan <- &taskExecution{processID: processID, taskType: taskType, execute: execute}:
		tm.logger.Debug("task queued", map[string]interface{}{
			"process_id": processID,
			"type":       string(taskType),
		})
		return nil
	default:
		record.Status = TaskStatusFailure
		record.Error = ErrQueueFull.Error()
		_ = tm.store.Update(ctx, record)
		return ErrQueueFull
	}
}

// GetTaskResult retrieves the result of a task by process ID
func (tm *TaskManagerImpl) GetTaskResult(ctx context.Context, processID string) (*TaskResult, error) {
	return tm.store.Get(ctx, processID)
}

// GetTaskStatus retrieves the status of a task by process ID
func (tm *TaskManagerImpl) GetTaskStatus(ctx context.Context, processID string) (TaskStatus, error) {
	result, err := tm.store.Get(ctx, processID)
	if err != nil {
		return "", err
	}
	return result.Status, nil
}

// ListTasks lists all known tasks
func (tm *TaskManagerImpl) ListTasks(ctx context.Context) ([]*TaskResult, error) {
	return tm.store.List(ctx)
}

// IsHealthy checks if the task manager is healthy
func (tm *TaskManagerImpl) IsHealthy() bool {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.running
}

func (tm *TaskManagerImpl) worker(id int) {
	defer tm.wg.Done()

	for task := range tm.taskChan {
		tm.runTask(id, task)
	}
}

func (tm *TaskManagerImpl) runTask(workerID int, task *taskExecution) {
	record, err := tm.store.Get(tm.ctx, task.processID)
	if err != nil {
		tm.logger.Error("task record missing at execution time", map[string]interface{}{
			"process_id": task.processID,
			"worker_id":  workerID,
		})
		return
	}

	record.Status = TaskStatusProcessing
	_ = tm.store.Update(tm.ctx, record)

	taskCtx, cancel := context.WithTimeout(tm.ctx, tm.config.BackgroundTasks.TaskTimeout)
	defer cancel()

	started := time.Now()
	data, execErr := task.execute(taskCtx)
	completed := time.Now().UTC()

	record.CompletedAt = &completed
	record.ProcessingTime = time.Since(started)
	if execErr != nil {
		record.Status = TaskStatusFailure
		record.Error = execErr.Error()
		tm.logger.Error("background task failed", map[string]interface{}{
			"process_id":      task.processID,
			"type":            string(task.taskType),
			"worker_id":       workerID,
			"processing_time": record.ProcessingTime.String(),
			"error":           execErr.Error(),
		})
	} else {
		record.Status = TaskStatusSuccess
		record.Data = data
		tm.logger.Info("background task completed", map[string]interface{}{
			"process_id":      task.processID,
			"type":            string(task.taskType),
			"worker_id":       workerID,
			"processing_time": record.ProcessingTime.String(),
		})
	}
	_ = tm.store.Update(tm.ctx, record)
}

func (tm *TaskManagerImpl) cleanupRoutine() {
	defer tm.wg.Done()

	ticker := time.NewTicker(tm.config.BackgroundTasks.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := tm.store.Cleanup(tm.ctx, tm.config.BackgroundTasks.MaxTaskAge); err != nil {
				tm.logger.Warn("task cleanup failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		case <-tm.ctx.Done():
			return
		}
	}
}
