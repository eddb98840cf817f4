package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studytrack-backend/internal/models"
)

type GuideRepo struct {
	pool *pgxpool.Pool
}

func NewGuideRepo(pool *pgxpool.Pool) *GuideRepo {
	return &GuideRepo{pool: pool}
}

// Create inserts a guide together with its steps in one transaction so a
// guide is never visible half-built.
func (r *GuideRepo) Create(ctx context.Context, g *models.Guide) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx,
		"INSERT INTO guides (name) VALUES ($1) RETURNING id", g.Name,
	).Scan(&g.ID); err != nil {
		return err
	}

	for _, step := range g.GuideSteps {
		step.GuideID = g.ID
		err := tx.QueryRow(ctx,
			`INSERT INTO guide_steps (guide_id, name, instructions, example, index)
				VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			step.GuideID, step.Name, step.Instructions, step.Example, step.Index,
		).Scan(&step.ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *GuideRepo) GetWithSteps(ctx context.Context, id int64) (*models.Guide, error) {
	g := &models.Guide{}
	err := r.pool.QueryRow(ctx,
		"SELECT id, name FROM guides WHERE id = $1", id,
	).Scan(&g.ID, &g.Name)
	if err != nil {
		return nil, err
	}

	g.GuideSteps, err = r.stepsForGuides(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *GuideRepo) GetStep(ctx context.Context, id int64) (*models.GuideStep, error) {
	gs := &models.GuideStep{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, guide_id, name, instructions, example, index
			FROM guide_steps WHERE id = $1`, id,
	).Scan(&gs.ID, &gs.GuideID, &gs.Name, &gs.Instructions, &gs.Example, &gs.Index)
	if err != nil {
		return nil, err
	}
	return gs, nil
}

func (r *GuideRepo) List(ctx context.Context) ([]*models.Guide, error) {
	rows, err := r.pool.Query(ctx, "SELECT id, name FROM guides ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	guides := []*models.Guide{}
	byID := map[int64]*models.Guide{}
	ids := []int64{}
	for rows.Next() {
		g := &models.Guide{GuideSteps: []*models.GuideStep{}}
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		guides = append(guides, g)
		byID[g.ID] = g
		ids = append(ids, g.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		steps, err := r.stepsForGuides(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, step := range steps {
			g := byID[step.GuideID]
			g.GuideSteps = append(g.GuideSteps, step)
		}
	}
	return guides, nil
}

func (r *GuideRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM guides WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// stepsForGuides returns steps for the given guides ordered by index, the
// authoritative sort key for every step listing.
func (r *GuideRepo) stepsForGuides(ctx context.Context, guideIDs []int64) ([]*models.GuideStep, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, guide_id, name, instructions, example, index
			FROM guide_steps WHERE guide_id = ANY($1)
			ORDER BY index ASC`, guideIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	steps := []*models.GuideStep{}
	for rows.Next() {
		gs := &models.GuideStep{}
		if err := rows.Scan(&gs.ID, &gs.GuideID, &gs.Name, &gs.Instructions, &gs.Example, &gs.Index); err != nil {
			return nil, err
		}
		steps = append(steps, gs)
	}
	return steps, rows.Err()
}
