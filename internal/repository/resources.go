package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
)

func (r *Repository) GetAllResources() ([]*domain.Resource, error) {
	query := `
		SELECT id, type, name, code, available_from, available_until, cost_rate, skills, created_at, version
		FROM resources
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resources := make([]*domain.Resource, 0)
	for rows.Next() {
		resource := &domain.Resource{}
		var skills []byte

		dst := []any{
			&resource.ID,
			&resource.Type,
			&resource.Name,
			&resource.Code,
			&resource.AvailableFrom,
			&resource.AvailableUntil,
			&resource.CostRate,
			&skills,
			&resource.CreatedAt,
			&resource.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(skills, &resource.Skills); err != nil {
			return nil, err
		}

		resources = append(resources, resource)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return resources, nil
}

func (r *Repository) GetResourceByID(id int64) (*domain.Resource, error) {
	query := `
		SELECT type, name, code, available_from, available_until, cost_rate, skills, created_at, version
		FROM resources WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	resource := &domain.Resource{
		ID: id,
	}
	var skills []byte

	dst := []any{
		&resource.Type,
		&resource.Name,
		&resource.Code,
		&resource.AvailableFrom,
		&resource.AvailableUntil,
		&resource.CostRate,
		&skills,
		&resource.CreatedAt,
		&resource.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(skills, &resource.Skills); err != nil {
		return nil, err
	}

	return resource, nil
}

func (r *Repository) CreateResource(resource *domain.Resource) error {
	query := `
		INSERT INTO resources (type, name, code, available_from, available_until, cost_rate, skills)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if resource.Skills == nil {
		resource.Skills = make([]string, 0)
	}
	skills, err := json.Marshal(resource.Skills)
	if err != nil {
		return err
	}

	params := []any{
		resource.Type,
		resource.Name,
		resource.Code,
		resource.AvailableFrom,
		resource.AvailableUntil,
		resource.CostRate,
		string(skills),
	}
	dst := []any{&resource.ID, &resource.CreatedAt, &resource.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteResource(id int64) error {
	query := `
		DELETE FROM resources WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
