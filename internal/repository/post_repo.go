package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studytrack-backend/internal/models"
)

type PostRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

func (r *PostRepo) Create(ctx context.Context, p *models.Post) error {
	query := `INSERT INTO posts (title, content, published)
		VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query, p.Title, p.Content, p.Published).Scan(
		&p.ID, &p.CreatedAt, &p.UpdatedAt,
	)
}

func (r *PostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	p := &models.Post{}
	query := `SELECT id, title, content, published, created_at, updated_at
		FROM posts WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Title, &p.Content, &p.Published, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostRepo) List(ctx context.Context) ([]*models.Post, error) {
	query := `SELECT id, title, content, published, created_at, updated_at
		FROM posts ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		p := &models.Post{}
		err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Published, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *PostRepo) Update(ctx context.Context, p *models.Post) error {
	query := `UPDATE posts SET title = $1, content = $2, published = $3, updated_at = NOW()
		WHERE id = $4 RETURNING updated_at`

	return r.pool.QueryRow(ctx, query, p.Title, p.Content, p.Published, p.ID).Scan(&p.UpdatedAt)
}

func (r *PostRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
