package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
)

func (r *Repository) GetTasksByProjectID(projectID int64) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			t.id,
			t.name,
			t.start_date,
			t.end_date,
			t.estimated_cost,
			t.required_skills,
			t.created_at,
			t.version,
			td.depends_on_id
		FROM tasks t
		LEFT JOIN task_dependencies td ON t.id = td.task_id
		WHERE t.project_id = $1
		ORDER BY t.id, td.depends_on_id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// 保持按 ID 排序，任务在基因组中的顺序依赖于这个顺序
	tasks := make([]*domain.Task, 0)
	tasksMap := make(map[int64]*domain.Task)

	for rows.Next() {
		var row struct {
			ID            int64
			Name          string
			StartDate     time.Time
			EndDate       time.Time
			EstimatedCost float64
			Skills        []byte
			CreatedAt     time.Time
			Version       int32

			DependsOnID sql.NullInt64
		}

		dst := []any{
			&row.ID,
			&row.Name,
			&row.StartDate,
			&row.EndDate,
			&row.EstimatedCost,
			&row.Skills,
			&row.CreatedAt,
			&row.Version,
			&row.DependsOnID,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		task, exists := tasksMap[row.ID]
		if !exists {
			// 第一次查到这个任务
			task = &domain.Task{
				ID:            row.ID,
				ProjectID:     projectID,
				Name:          row.Name,
				StartDate:     row.StartDate,
				EndDate:       row.EndDate,
				EstimatedCost: row.EstimatedCost,
				Dependencies:  make([]int64, 0),
				CreatedAt:     row.CreatedAt,
				Version:       row.Version,
			}
			if err := json.Unmarshal(row.Skills, &task.RequiredSkills); err != nil {
				return nil, err
			}
			tasksMap[row.ID] = task
			tasks = append(tasks, task)
		}

		// 没有前置任务时 depends_on_id 为空
		if row.DependsOnID.Valid {
			task.Dependencies = append(task.Dependencies, row.DependsOnID.Int64)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *Repository) GetTaskByID(projectID, id int64) (*domain.Task, error) {
	tasks, err := r.GetTasksByProjectID(projectID)
	if err != nil {
		return nil, err
	}

	for _, task := range tasks {
		if task.ID == id {
			return task, nil
		}
	}

	return nil, sql.ErrNoRows
}

func (r *Repository) CreateTask(task *domain.Task) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if task.RequiredSkills == nil {
		task.RequiredSkills = make([]string, 0)
	}
	skills, err := json.Marshal(task.RequiredSkills)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tasks (project_id, name, start_date, end_date, estimated_cost, required_skills)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`

	params := []any{task.ProjectID, task.Name, task.StartDate, task.EndDate, task.EstimatedCost, string(skills)}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&task.ID, &task.CreatedAt, &task.Version); err != nil {
		return err
	}

	for _, dependsOnID := range task.Dependencies {
		// 外键保证前置任务存在，跨项目的依赖会在优化时被当作未知依赖拒绝
		query := `
			INSERT INTO task_dependencies (task_id, depends_on_id)
			VALUES ($1, $2)
		`

		if _, err := tx.ExecContext(ctx, query, task.ID, dependsOnID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteTask(id int64) error {
	query := `
		DELETE FROM tasks WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
