package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"talentflow-core/internal/pipeline"
	"talentflow-core/pkg/utils"
)

// ApplicationRepository implements pipeline.Store on postgres.
type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts a new application. The stage defaults to PENDING when the
// caller leaves it empty.
func (r *ApplicationRepository) Create(ctx context.Context, app pipeline.Application) (*pipeline.Application, error) {
	app.ID = uuid.New()
	if app.CurrentStage == "" {
		app.CurrentStage = pipeline.StagePending
	}
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `INSERT INTO applications (id, job_id, candidate_id, current_stage, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		app.ID, app.JobID, app.CandidateID, app.CurrentStage, app.CreatedAt, app.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, utils.NewConflictError("candidate has already applied to this job")
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	app.History = []pipeline.StageEvent{}
	return &app, nil
}

// GetByID loads an application together with its full stage history in
// chronological order.
func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*pipeline.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, job_id, candidate_id, current_stage, created_at, updated_at
		FROM applications WHERE id = $1`, id)

	var app pipeline.Application
	if err := row.Scan(&app.ID, &app.JobID, &app.CandidateID, &app.CurrentStage, &app.CreatedAt, &app.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pipeline.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load application: %w", err)
	}

	history, err := r.loadHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	app.History = history
	return &app, nil
}

// ListByJob returns applications for a job, optionally filtered to a set of
// stages (employer dashboards render one column per stage). History is not
// hydrated for listings.
func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID string, stages []pipeline.StageID) ([]pipeline.Application, error) {
	query := `SELECT id, job_id, candidate_id, current_stage, created_at, updated_at
		FROM applications WHERE job_id = $1`
	args := []interface{}{jobID}
	if len(stages) > 0 {
		stageNames := make([]string, len(stages))
		for i, s := range stages {
			stageNames[i] = string(s)
		}
		query += ` AND current_stage = ANY($2)`
		args = append(args, pq.Array(stageNames))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var items []pipeline.Application
	for rows.Next() {
		var app pipeline.Application
		if err := rows.Scan(&app.ID, &app.JobID, &app.CandidateID, &app.CurrentStage, &app.CreatedAt, &app.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		items = append(items, app)
	}
	return items, rows.Err()
}

// ApplyTransition appends the stage event and updates the current stage in
// one transaction. The UPDATE is guarded by the updated_at the caller loaded:
// zero rows affected means another caller moved the application first, and
// the loser gets pipeline.ErrConflict with nothing written.
func (r *ApplicationRepository) ApplyTransition(ctx context.Context, id uuid.UUID, event pipeline.StageEvent, newStage pipeline.StageID, expectedUpdatedAt time.Time) (*pipeline.Application, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	updatedAt := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `UPDATE applications SET current_stage = $1, updated_at = $2
		WHERE id = $3 AND updated_at = $4`,
		newStage, updatedAt, id, expectedUpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update application stage: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM applications WHERE id = $1)`, id).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to check application existence: %w", err)
		}
		if !exists {
			return nil, pipeline.ErrNotFound
		}
		return nil, pipeline.ErrConflict
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO application_events (id, application_id, from_stage, to_stage, message, actor_id, occurred_at, classification)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, id, event.FromStage, event.ToStage, event.Message, event.ActorID, event.OccurredAt, event.Classification)
	if err != nil {
		return nil, fmt.Errorf("failed to append stage event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transition: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *ApplicationRepository) loadHistory(ctx context.Context, id uuid.UUID) ([]pipeline.StageEvent, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, from_stage, to_stage, message, actor_id, occurred_at, classification
		FROM application_events WHERE application_id = $1 ORDER BY occurred_at ASC, id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load stage history: %w", err)
	}
	defer rows.Close()

	history := []pipeline.StageEvent{}
	for rows.Next() {
		var ev pipeline.StageEvent
		if err := rows.Scan(&ev.ID, &ev.FromStage, &ev.ToStage, &ev.Message, &ev.ActorID, &ev.OccurredAt, &ev.Classification); err != nil {
			return nil, fmt.Errorf("failed to scan stage event: %w", err)
		}
		history = append(history, ev)
	}
	return history, rows.Err()
}
