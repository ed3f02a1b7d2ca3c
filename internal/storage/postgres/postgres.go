// Package postgres persists applications and their stage history. The
// repository is the single mutation point behind the pipeline state machine:
// stage updates and history appends happen in one transaction guarded by an
// optimistic check on updated_at.
package postgres

import (
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"

	"talentflow-core/internal/config"
	"talentflow-core/pkg/utils"
)

// NewDB opens a postgres pool using the pgx stdlib driver.
func NewDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		return nil, utils.NewStorageError(err.Error())
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	return db, nil
}
