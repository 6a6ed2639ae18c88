package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
)

// GetRecentCostRecords 返回最近的 limit 条实际成本记录
func (r *Repository) GetRecentCostRecords(limit int) ([]domain.CostRecord, error) {
	query := `
		SELECT resource_type, duration_days, percentage, cost_rate, estimated_cost, actual_cost
		FROM cost_history
		ORDER BY recorded_at DESC
		LIMIT $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.CostRecord, 0)
	for rows.Next() {
		var record domain.CostRecord
		dst := []any{
			&record.ResourceType,
			&record.DurationDays,
			&record.Percentage,
			&record.CostRate,
			&record.EstimatedCost,
			&record.ActualCost,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *Repository) InsertCostRecords(records []domain.CostRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, record := range records {
		query := `
			INSERT INTO cost_history (resource_type, duration_days, percentage, cost_rate, estimated_cost, actual_cost)
			VALUES ($1, $2, $3, $4, $5, $6)
		`

		params := []any{
			record.ResourceType,
			record.DurationDays,
			record.Percentage,
			record.CostRate,
			record.EstimatedCost,
			record.ActualCost,
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
