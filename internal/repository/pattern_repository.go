package repository

import (
	"context"
	"fmt"

	"github.com/avoronova/salon_bot/internal/model"
	"github.com/avoronova/salon_bot/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PatternRepository struct {
	*base.Repository
}

func NewPatternRepository(pool *pgxpool.Pool) *PatternRepository {
	return &PatternRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт шаблон регулярного окна
func (r *PatternRepository) Create(ctx context.Context, p *model.SchedulePattern) error {
	query := `
		INSERT INTO schedule_patterns (group_id, weekday, start_hour, start_minute, duration_minutes, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.DB(ctx).QueryRow(
		ctx, query,
		p.GroupID,
		p.Weekday,
		p.StartHour,
		p.StartMinute,
		p.DurationMinutes,
		p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create schedule pattern: %w", err)
	}

	return nil
}

// GetAllActive получает все активные шаблоны
func (r *PatternRepository) GetAllActive(ctx context.Context) ([]*model.SchedulePattern, error) {
	query := `
		SELECT id, group_id, weekday, start_hour, start_minute, duration_minutes, is_active, created_at, updated_at
		FROM schedule_patterns
		WHERE is_active = true
		ORDER BY weekday, start_hour, start_minute
	`

	rows, err := r.DB(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get active schedule patterns: %w", err)
	}
	defer rows.Close()

	var patterns []*model.SchedulePattern
	for rows.Next() {
		var p model.SchedulePattern
		err := rows.Scan(
			&p.ID,
			&p.GroupID,
			&p.Weekday,
			&p.StartHour,
			&p.StartMinute,
			&p.DurationMinutes,
			&p.IsActive,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan schedule pattern: %w", err)
		}
		patterns = append(patterns, &p)
	}

	return patterns, nil
}

// GetByID получает шаблон по ID
func (r *PatternRepository) GetByID(ctx context.Context, id int64) (*model.SchedulePattern, error) {
	query := `
		SELECT id, group_id, weekday, start_hour, start_minute, duration_minutes, is_active, created_at, updated_at
		FROM schedule_patterns
		WHERE id = $1
	`

	var p model.SchedulePattern
	err := r.DB(ctx).QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.GroupID,
		&p.Weekday,
		&p.StartHour,
		&p.StartMinute,
		&p.DurationMinutes,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get schedule pattern by id: %w", err)
	}

	return &p, nil
}

// Deactivate выключает шаблон
func (r *PatternRepository) Deactivate(ctx context.Context, id int64) error {
	query := `
		UPDATE schedule_patterns
		SET is_active = false, updated_at = now()
		WHERE id = $1
	`

	result, err := r.DB(ctx).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate schedule pattern: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("schedule pattern not found")
	}

	return nil
}
