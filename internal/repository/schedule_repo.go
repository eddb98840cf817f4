package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studytrack-backend/internal/models"
)

type ScheduleRepo struct {
	pool *pgxpool.Pool
}

func NewScheduleRepo(pool *pgxpool.Pool) *ScheduleRepo {
	return &ScheduleRepo{pool: pool}
}

func (r *ScheduleRepo) Create(ctx context.Context, s *models.Schedule) error {
	query := `INSERT INTO schedules (day, time_start, repeats, starts, ends, exclude_day_of_week, exclude_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	return r.pool.QueryRow(ctx, query,
		s.Day, s.TimeStart, s.Repeats, s.Starts, s.Ends, s.ExcludeDayOfWeek, s.ExcludeDate,
	).Scan(&s.ID)
}

func (r *ScheduleRepo) GetByID(ctx context.Context, id int64) (*models.Schedule, error) {
	s := &models.Schedule{}
	query := `SELECT id, day, time_start, repeats, starts, ends, exclude_day_of_week, exclude_date
		FROM schedules WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Day, &s.TimeStart, &s.Repeats, &s.Starts, &s.Ends, &s.ExcludeDayOfWeek, &s.ExcludeDate,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetWithStudies loads a schedule plus the studies attached to it, each with
// its resource.
func (r *ScheduleRepo) GetWithStudies(ctx context.Context, id int64) (*models.Schedule, error) {
	s, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	query := `SELECT st.id, st.name, st.schedule_id, st.resource_id, st.guide_id,
			re.id, re.name, re.type
		FROM studies st
		JOIN resources re ON re.id = st.resource_id
		WHERE st.schedule_id = $1
		ORDER BY st.name ASC`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	s.Studies = []*models.Study{}
	for rows.Next() {
		st := &models.Study{Resource: &models.Resource{}}
		err := rows.Scan(
			&st.ID, &st.Name, &st.ScheduleID, &st.ResourceID, &st.GuideID,
			&st.Resource.ID, &st.Resource.Name, &st.Resource.Type,
		)
		if err != nil {
			return nil, err
		}
		s.Studies = append(s.Studies, st)
	}
	return s, rows.Err()
}

func (r *ScheduleRepo) List(ctx context.Context) ([]*models.Schedule, error) {
	query := `SELECT id, day, time_start, repeats, starts, ends, exclude_day_of_week, exclude_date
		FROM schedules ORDER BY id ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := []*models.Schedule{}
	for rows.Next() {
		s := &models.Schedule{}
		err := rows.Scan(&s.ID, &s.Day, &s.TimeStart, &s.Repeats, &s.Starts, &s.Ends, &s.ExcludeDayOfWeek, &s.ExcludeDate)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

func (r *ScheduleRepo) Update(ctx context.Context, s *models.Schedule) error {
	query := `UPDATE schedules
		SET day = $1, time_start = $2, repeats = $3, starts = $4, ends = $5,
			exclude_day_of_week = $6, exclude_date = $7
		WHERE id = $8 RETURNING id`

	var id int64
	return r.pool.QueryRow(ctx, query,
		s.Day, s.TimeStart, s.Repeats, s.Starts, s.Ends, s.ExcludeDayOfWeek, s.ExcludeDate, s.ID,
	).Scan(&id)
}

func (r *ScheduleRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM schedules WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
