package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studytrack-backend/internal/models"
)

type ResourceRepo struct {
	pool *pgxpool.Pool
}

func NewResourceRepo(pool *pgxpool.Pool) *ResourceRepo {
	return &ResourceRepo{pool: pool}
}

func (r *ResourceRepo) Create(ctx context.Context, res *models.Resource) error {
	query := `INSERT INTO resources (name, type) VALUES ($1, $2) RETURNING id`
	return r.pool.QueryRow(ctx, query, res.Name, res.Type).Scan(&res.ID)
}

func (r *ResourceRepo) GetByID(ctx context.Context, id int64) (*models.Resource, error) {
	res := &models.Resource{}
	err := r.pool.QueryRow(ctx,
		"SELECT id, name, type FROM resources WHERE id = $1", id,
	).Scan(&res.ID, &res.Name, &res.Type)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *ResourceRepo) List(ctx context.Context) ([]*models.Resource, error) {
	rows, err := r.pool.Query(ctx, "SELECT id, name, type FROM resources ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resources := []*models.Resource{}
	for rows.Next() {
		res := &models.Resource{}
		if err := rows.Scan(&res.ID, &res.Name, &res.Type); err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	return resources, rows.Err()
}

func (r *ResourceRepo) Update(ctx context.Context, res *models.Resource) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE resources SET name = $1, type = $2 WHERE id = $3",
		res.Name, res.Type, res.ID,
	)
	return err
}

func (r *ResourceRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM resources WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
