package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studytrack-backend/internal/models"
)

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) Create(ctx context.Context, s *models.Session) error {
	query := `INSERT INTO sessions (study_id, date, time, insights, reference, step_id, selection_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	return r.pool.QueryRow(ctx, query,
		s.StudyID, s.Date, s.Time, s.Insights, s.Reference, s.StepID, s.SelectionID,
	).Scan(&s.ID)
}

// EnsureSteps creates one session step per step of the given guide, with no
// insights. The insert is a single statement guarded by the
// (session_id, guide_step_id) uniqueness constraint, so concurrent callers
// cannot duplicate rows and repeating the call is a no-op.
func (r *SessionRepo) EnsureSteps(ctx context.Context, sessionID, guideID int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO session_steps (session_id, guide_step_id)
		SELECT $1, gs.id
		FROM guide_steps gs
		WHERE gs.guide_id = $2
		ON CONFLICT (session_id, guide_step_id) DO NOTHING
	`, sessionID, guideID)
	return err
}

// GetWithRelations loads one session with its study (including the study's
// guide and ordered steps), direct guide step, selection, and session steps
// ordered by guide-step index.
func (r *SessionRepo) GetWithRelations(ctx context.Context, id int64) (*models.Session, error) {
	s := &models.Session{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, study_id, date, time, insights, reference, step_id, selection_id
			FROM sessions WHERE id = $1`, id,
	).Scan(&s.ID, &s.StudyID, &s.Date, &s.Time, &s.Insights, &s.Reference, &s.StepID, &s.SelectionID)
	if err != nil {
		return nil, err
	}

	sessions := []*models.Session{s}
	if err := r.attachStudies(ctx, sessions); err != nil {
		return nil, err
	}
	if err := attachSessionChildren(ctx, r.pool, sessions); err != nil {
		return nil, err
	}
	return s, nil
}

// sessionListQuery returns the session select, optionally filtered to one
// study. Undated sessions sort after dated ones, newest first.
func sessionListQuery(filtered bool) string {
	query := `SELECT id, study_id, date, time, insights, reference, step_id, selection_id
		FROM sessions`
	if filtered {
		query += " WHERE study_id = $1"
	}
	return query + " ORDER BY date DESC NULLS LAST"
}

// List loads sessions ordered by date descending, optionally filtered to one
// study, in the same nested shape as GetWithRelations.
func (r *SessionRepo) List(ctx context.Context, studyID *int64) ([]*models.Session, error) {
	args := []interface{}{}
	if studyID != nil {
		args = append(args, *studyID)
	}

	rows, err := r.pool.Query(ctx, sessionListQuery(studyID != nil), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []*models.Session{}
	for rows.Next() {
		s := &models.Session{}
		err := rows.Scan(&s.ID, &s.StudyID, &s.Date, &s.Time, &s.Insights, &s.Reference, &s.StepID, &s.SelectionID)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachStudies(ctx, sessions); err != nil {
		return nil, err
	}
	if err := attachSessionChildren(ctx, r.pool, sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *SessionRepo) Update(ctx context.Context, s *models.Session) error {
	query := `UPDATE sessions SET date = $1, time = $2, insights = $3, reference = $4
		WHERE id = $5 RETURNING id`

	var id int64
	return r.pool.QueryRow(ctx, query, s.Date, s.Time, s.Insights, s.Reference, s.ID).Scan(&id)
}

func (r *SessionRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM sessions WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *SessionRepo) GetStep(ctx context.Context, id int64) (*models.SessionStep, error) {
	ss := &models.SessionStep{}
	err := r.pool.QueryRow(ctx,
		"SELECT id, session_id, guide_step_id, insights FROM session_steps WHERE id = $1", id,
	).Scan(&ss.ID, &ss.SessionID, &ss.GuideStepID, &ss.Insights)
	if err != nil {
		return nil, err
	}
	return ss, nil
}

func (r *SessionRepo) UpdateStepInsights(ctx context.Context, id int64, insights *string) (*models.SessionStep, error) {
	ss := &models.SessionStep{}
	err := r.pool.QueryRow(ctx,
		`UPDATE session_steps SET insights = $1 WHERE id = $2
			RETURNING id, session_id, guide_step_id, insights`, insights, id,
	).Scan(&ss.ID, &ss.SessionID, &ss.GuideStepID, &ss.Insights)
	if err != nil {
		return nil, err
	}
	return ss, nil
}

// attachStudies populates each session's study, including the study's guide
// with ordered steps.
func (r *SessionRepo) attachStudies(ctx context.Context, sessions []*models.Session) error {
	if len(sessions) == 0 {
		return nil
	}

	studyIDs := []int64{}
	seen := map[int64]bool{}
	for _, s := range sessions {
		if !seen[s.StudyID] {
			seen[s.StudyID] = true
			studyIDs = append(studyIDs, s.StudyID)
		}
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, name, schedule_id, resource_id, guide_id
			FROM studies WHERE id = ANY($1)`, studyIDs,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	studies := map[int64]*models.Study{}
	guideIDs := []int64{}
	for rows.Next() {
		st := &models.Study{}
		if err := rows.Scan(&st.ID, &st.Name, &st.ScheduleID, &st.ResourceID, &st.GuideID); err != nil {
			return err
		}
		studies[st.ID] = st
		if st.GuideID != nil {
			guideIDs = append(guideIDs, *st.GuideID)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	guides, err := loadGuidesWithSteps(ctx, r.pool, guideIDs)
	if err != nil {
		return err
	}
	for _, st := range studies {
		if st.GuideID != nil {
			st.Guide = guides[*st.GuideID]
		}
	}
	for _, s := range sessions {
		s.Study = studies[s.StudyID]
	}
	return nil
}
