package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studytrack-backend/internal/models"
)

type StudyRepo struct {
	pool *pgxpool.Pool
}

func NewStudyRepo(pool *pgxpool.Pool) *StudyRepo {
	return &StudyRepo{pool: pool}
}

func (r *StudyRepo) Create(ctx context.Context, s *models.Study) error {
	query := `INSERT INTO studies (name, schedule_id, resource_id, guide_id)
		VALUES ($1, $2, $3, $4) RETURNING id`
	return r.pool.QueryRow(ctx, query, s.Name, s.ScheduleID, s.ResourceID, s.GuideID).Scan(&s.ID)
}

// GetWithGuide loads a study plus its guide and ordered guide steps. This is
// the lookup used on the session-create path where only the guide matters.
func (r *StudyRepo) GetWithGuide(ctx context.Context, id int64) (*models.Study, error) {
	s := &models.Study{}
	err := r.pool.QueryRow(ctx,
		"SELECT id, name, schedule_id, resource_id, guide_id FROM studies WHERE id = $1", id,
	).Scan(&s.ID, &s.Name, &s.ScheduleID, &s.ResourceID, &s.GuideID)
	if err != nil {
		return nil, err
	}

	if s.GuideID != nil {
		guides, err := loadGuidesWithSteps(ctx, r.pool, []int64{*s.GuideID})
		if err != nil {
			return nil, err
		}
		s.Guide = guides[*s.GuideID]
	}
	return s, nil
}

// GetWithRelations assembles the full study read shape: schedule, resource,
// guide with ordered steps, and sessions by date descending, each with its
// session steps (ordered by guide-step index), direct guide step, and
// selection.
func (r *StudyRepo) GetWithRelations(ctx context.Context, id int64) (*models.Study, error) {
	s := &models.Study{Resource: &models.Resource{}}
	var schedule models.Schedule
	var scheduleID *int64

	query := `SELECT st.id, st.name, st.schedule_id, st.resource_id, st.guide_id,
			re.id, re.name, re.type,
			sc.id, sc.day, sc.time_start, sc.repeats, sc.starts, sc.ends,
			sc.exclude_day_of_week, sc.exclude_date
		FROM studies st
		JOIN resources re ON re.id = st.resource_id
		LEFT JOIN schedules sc ON sc.id = st.schedule_id
		WHERE st.id = $1`

	var scID *int64
	var scDay, scTimeStart, scRepeats *string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &scheduleID, &s.ResourceID, &s.GuideID,
		&s.Resource.ID, &s.Resource.Name, &s.Resource.Type,
		&scID, &scDay, &scTimeStart, &scRepeats, &schedule.Starts, &schedule.Ends,
		&schedule.ExcludeDayOfWeek, &schedule.ExcludeDate,
	)
	if err != nil {
		return nil, err
	}
	s.ScheduleID = scheduleID
	if scID != nil {
		schedule.ID = *scID
		schedule.Day = *scDay
		schedule.TimeStart = *scTimeStart
		schedule.Repeats = *scRepeats
		s.Schedule = &schedule
	}

	if s.GuideID != nil {
		guides, err := loadGuidesWithSteps(ctx, r.pool, []int64{*s.GuideID})
		if err != nil {
			return nil, err
		}
		s.Guide = guides[*s.GuideID]
	}

	rows, err := r.pool.Query(ctx, sessionListQuery(true), id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	s.Sessions = []*models.Session{}
	for rows.Next() {
		sess := &models.Session{}
		err := rows.Scan(&sess.ID, &sess.StudyID, &sess.Date, &sess.Time,
			&sess.Insights, &sess.Reference, &sess.StepID, &sess.SelectionID)
		if err != nil {
			return nil, err
		}
		s.Sessions = append(s.Sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := attachSessionChildren(ctx, r.pool, s.Sessions); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *StudyRepo) List(ctx context.Context) ([]*models.Study, error) {
	query := `SELECT st.id, st.name, st.schedule_id, st.resource_id, st.guide_id,
			re.id, re.name, re.type
		FROM studies st
		JOIN resources re ON re.id = st.resource_id
		ORDER BY st.name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	studies := []*models.Study{}
	for rows.Next() {
		s := &models.Study{Resource: &models.Resource{}}
		err := rows.Scan(
			&s.ID, &s.Name, &s.ScheduleID, &s.ResourceID, &s.GuideID,
			&s.Resource.ID, &s.Resource.Name, &s.Resource.Type,
		)
		if err != nil {
			return nil, err
		}
		studies = append(studies, s)
	}
	return studies, rows.Err()
}

func (r *StudyRepo) Update(ctx context.Context, s *models.Study) error {
	query := `UPDATE studies SET name = $1, schedule_id = $2, resource_id = $3, guide_id = $4
		WHERE id = $5 RETURNING id`

	var id int64
	return r.pool.QueryRow(ctx, query, s.Name, s.ScheduleID, s.ResourceID, s.GuideID, s.ID).Scan(&id)
}

func (r *StudyRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM studies WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
