package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studytrack-backend/internal/models"
)

type SelectionRepo struct {
	pool *pgxpool.Pool
}

func NewSelectionRepo(pool *pgxpool.Pool) *SelectionRepo {
	return &SelectionRepo{pool: pool}
}

func (r *SelectionRepo) Create(ctx context.Context, s *models.Selection) error {
	query := `INSERT INTO selections (name, resource_id, reference)
		VALUES ($1, $2, $3) RETURNING id`
	return r.pool.QueryRow(ctx, query, s.Name, s.ResourceID, s.Reference).Scan(&s.ID)
}

func (r *SelectionRepo) GetByID(ctx context.Context, id int64) (*models.Selection, error) {
	s := &models.Selection{}
	err := r.pool.QueryRow(ctx,
		"SELECT id, name, resource_id, reference FROM selections WHERE id = $1", id,
	).Scan(&s.ID, &s.Name, &s.ResourceID, &s.Reference)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SelectionRepo) List(ctx context.Context) ([]*models.Selection, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT id, name, resource_id, reference FROM selections ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	selections := []*models.Selection{}
	for rows.Next() {
		s := &models.Selection{}
		if err := rows.Scan(&s.ID, &s.Name, &s.ResourceID, &s.Reference); err != nil {
			return nil, err
		}
		selections = append(selections, s)
	}
	return selections, rows.Err()
}

func (r *SelectionRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM selections WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
