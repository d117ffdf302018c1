package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Crucible/internal/domain"
)

// Batch — запись о пакетном запуске.
type Batch struct {
	// ID — идентификатор пакета.
	ID uuid.UUID

	// Command — команда запуска (relax, combo, ...).
	Command string

	// Backend — система запуска заданий.
	Backend string

	// StartedAt — время начала пакета.
	StartedAt time.Time

	// FinishedAt — время завершения; nil для незавершённого пакета.
	FinishedAt *time.Time

	// Total, Succeeded, Failed — итоги; заполняются при завершении.
	Total     int
	Succeeded int
	Failed    int
}

// Repo — журнал пакетных запусков в PostgreSQL.
//
// Журнал опционален: при пустом CRUCIBLE_DB_URL CLI работает без него.
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepo создаёт Repo.
func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// CreateBatch регистрирует начало пакетного запуска.
func (r *Repo) CreateBatch(ctx context.Context, command, backend string) (uuid.UUID, error) {
	id := uuid.New()
	query := `
		INSERT INTO batches (id, command, backend, started_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.pool.Exec(ctx, query, id, command, backend, time.Now()); err != nil {
		return uuid.Nil, fmt.Errorf("insert batch: %w", err)
	}
	return id, nil
}

// RecordResult сохраняет результат одной единицы работы.
func (r *Repo) RecordResult(ctx context.Context, batchID uuid.UUID, result *domain.Result) error {
	query := `
		INSERT INTO unit_results (
			unit_id, batch_id, structure_name, pressure_gpa, work_dir,
			success, energy_ev, error, started_at, finished_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		result.UnitID,
		batchID,
		result.Name,
		result.Pressure,
		result.WorkDir,
		result.Success,
		result.Energy,
		nullString(result.Error),
		result.StartedAt,
		result.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert unit result: %w", err)
	}
	return nil
}

// FinishBatch фиксирует итоги пакета.
func (r *Repo) FinishBatch(ctx context.Context, batchID uuid.UUID, summary domain.Summary) error {
	query := `
		UPDATE batches
		SET finished_at = $2, total = $3, succeeded = $4, failed = $5
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		batchID, time.Now(), summary.Total, summary.Succeeded, summary.Failed)
	if err != nil {
		return fmt.Errorf("finish batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: batch %s", ErrNotFound, batchID)
	}
	return nil
}

// GetBatch возвращает запись пакета по идентификатору.
func (r *Repo) GetBatch(ctx context.Context, id uuid.UUID) (*Batch, error) {
	query := `
		SELECT id, command, backend, started_at, finished_at,
		       COALESCE(total, 0), COALESCE(succeeded, 0), COALESCE(failed, 0)
		FROM batches
		WHERE id = $1
	`
	var b Batch
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.Command, &b.Backend, &b.StartedAt, &b.FinishedAt,
		&b.Total, &b.Succeeded, &b.Failed,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: batch %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return &b, nil
}

// nullString возвращает nil для пустой строки (NULL в БД).
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
