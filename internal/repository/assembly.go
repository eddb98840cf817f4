package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"studytrack-backend/internal/models"
)

// Shared read-assembly helpers. The study and session repos return the same
// nested shapes, so the child-row loading lives here.

// loadGuidesWithSteps fetches guides by id, each with its steps ordered by
// index.
func loadGuidesWithSteps(ctx context.Context, pool *pgxpool.Pool, guideIDs []int64) (map[int64]*models.Guide, error) {
	guides := map[int64]*models.Guide{}
	if len(guideIDs) == 0 {
		return guides, nil
	}

	rows, err := pool.Query(ctx, "SELECT id, name FROM guides WHERE id = ANY($1)", guideIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		g := &models.Guide{GuideSteps: []*models.GuideStep{}}
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		guides[g.ID] = g
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stepRows, err := pool.Query(ctx,
		`SELECT id, guide_id, name, instructions, example, index
			FROM guide_steps WHERE guide_id = ANY($1)
			ORDER BY index ASC`, guideIDs,
	)
	if err != nil {
		return nil, err
	}
	defer stepRows.Close()

	for stepRows.Next() {
		gs := &models.GuideStep{}
		if err := stepRows.Scan(&gs.ID, &gs.GuideID, &gs.Name, &gs.Instructions, &gs.Example, &gs.Index); err != nil {
			return nil, err
		}
		if g, ok := guides[gs.GuideID]; ok {
			g.GuideSteps = append(g.GuideSteps, gs)
		}
	}
	return guides, stepRows.Err()
}

// attachSessionChildren populates SessionSteps (with their guide step,
// ordered by guide-step index), the direct GuideStep, and the Selection for
// every session in the slice.
func attachSessionChildren(ctx context.Context, pool *pgxpool.Pool, sessions []*models.Session) error {
	if len(sessions) == 0 {
		return nil
	}

	byID := map[int64]*models.Session{}
	sessionIDs := make([]int64, 0, len(sessions))
	stepIDs := []int64{}
	selectionIDs := []int64{}
	for _, s := range sessions {
		s.SessionSteps = []*models.SessionStep{}
		byID[s.ID] = s
		sessionIDs = append(sessionIDs, s.ID)
		if s.StepID != nil {
			stepIDs = append(stepIDs, *s.StepID)
		}
		if s.SelectionID != nil {
			selectionIDs = append(selectionIDs, *s.SelectionID)
		}
	}

	rows, err := pool.Query(ctx,
		`SELECT ss.id, ss.session_id, ss.guide_step_id, ss.insights,
				gs.id, gs.guide_id, gs.name, gs.instructions, gs.example, gs.index
			FROM session_steps ss
			JOIN guide_steps gs ON gs.id = ss.guide_step_id
			WHERE ss.session_id = ANY($1)
			ORDER BY gs.index ASC`, sessionIDs,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		ss := &models.SessionStep{GuideStep: &models.GuideStep{}}
		err := rows.Scan(
			&ss.ID, &ss.SessionID, &ss.GuideStepID, &ss.Insights,
			&ss.GuideStep.ID, &ss.GuideStep.GuideID, &ss.GuideStep.Name,
			&ss.GuideStep.Instructions, &ss.GuideStep.Example, &ss.GuideStep.Index,
		)
		if err != nil {
			return err
		}
		if s, ok := byID[ss.SessionID]; ok {
			s.SessionSteps = append(s.SessionSteps, ss)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if len(stepIDs) > 0 {
		stepRows, err := pool.Query(ctx,
			`SELECT id, guide_id, name, instructions, example, index
				FROM guide_steps WHERE id = ANY($1)`, stepIDs,
		)
		if err != nil {
			return err
		}
		defer stepRows.Close()

		steps := map[int64]*models.GuideStep{}
		for stepRows.Next() {
			gs := &models.GuideStep{}
			if err := stepRows.Scan(&gs.ID, &gs.GuideID, &gs.Name, &gs.Instructions, &gs.Example, &gs.Index); err != nil {
				return err
			}
			steps[gs.ID] = gs
		}
		if err := stepRows.Err(); err != nil {
			return err
		}
		for _, s := range sessions {
			if s.StepID != nil {
				s.GuideStep = steps[*s.StepID]
			}
		}
	}

	if len(selectionIDs) > 0 {
		selRows, err := pool.Query(ctx,
			"SELECT id, name, resource_id, reference FROM selections WHERE id = ANY($1)", selectionIDs,
		)
		if err != nil {
			return err
		}
		defer selRows.Close()

		selections := map[int64]*models.Selection{}
		for selRows.Next() {
			sel := &models.Selection{}
			if err := selRows.Scan(&sel.ID, &sel.Name, &sel.ResourceID, &sel.Reference); err != nil {
				return err
			}
			selections[sel.ID] = sel
		}
		if err := selRows.Err(); err != nil {
			return err
		}
		for _, s := range sessions {
			if s.SelectionID != nil {
				s.Selection = selections[*s.SelectionID]
			}
		}
	}

	return nil
}
