package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
)

// InsertOptimizationRun 保存一次优化运行，方案以 JSONB 保存，分配明细同时写入 allocations 表
func (r *Repository) InsertOptimizationRun(run *domain.OptimizationRun) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	parameters, err := json.Marshal(run.Parameters)
	if err != nil {
		return err
	}
	constraints, err := json.Marshal(run.Constraints)
	if err != nil {
		return err
	}
	plan, err := json.Marshal(run.Plan)
	if err != nil {
		return err
	}

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO optimization_runs (project_id, parameters, constraints, plan, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`

	params := []any{run.ProjectID, string(parameters), string(constraints), string(plan), run.CreatedBy}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&run.ID, &run.CreatedAt, &run.Version); err != nil {
		return err
	}

	for _, a := range run.Plan.Allocations {
		query := `
			INSERT INTO allocations (
				id,
				optimization_run_id,
				resource_id,
				task_id,
				start_date,
				end_date,
				percentage,
				cost_rate,
				estimated_cost,
				status
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`

		params := []any{
			a.ID,
			run.ID,
			a.ResourceID,
			a.TaskID,
			a.StartDate,
			a.EndDate,
			a.Percentage,
			a.CostRate,
			a.EstimatedCost,
			a.Status,
		}
		if _, err := tx.ExecContext(ctx, query, params...); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetOptimizationRunByID(projectID, id int64) (*domain.OptimizationRun, error) {
	query := `
		SELECT id, project_id, parameters, constraints, plan, created_by, created_at, version
		FROM optimization_runs
		WHERE project_id = $1 AND id = $2
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return r.scanOptimizationRun(r.dbpool.QueryRowContext(ctx, query, projectID, id))
}

func (r *Repository) GetLatestOptimizationRun(projectID int64) (*domain.OptimizationRun, error) {
	query := `
		SELECT id, project_id, parameters, constraints, plan, created_by, created_at, version
		FROM optimization_runs
		WHERE project_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return r.scanOptimizationRun(r.dbpool.QueryRowContext(ctx, query, projectID))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanOptimizationRun(row rowScanner) (*domain.OptimizationRun, error) {
	run := &domain.OptimizationRun{}
	var parameters, constraints, plan []byte

	dst := []any{&run.ID, &run.ProjectID, &parameters, &constraints, &plan, &run.CreatedBy, &run.CreatedAt, &run.Version}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(parameters, &run.Parameters); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(constraints, &run.Constraints); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(plan, &run.Plan); err != nil {
		return nil, err
	}

	return run, nil
}
