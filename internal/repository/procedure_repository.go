package repository

import (
	"context"
	"fmt"

	"github.com/avoronova/salon_bot/internal/model"
	"github.com/avoronova/salon_bot/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProcedureRepository struct {
	*base.Repository
}

func NewProcedureRepository(pool *pgxpool.Pool) *ProcedureRepository {
	return &ProcedureRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт новую услугу
func (r *ProcedureRepository) Create(ctx context.Context, p *model.Procedure) error {
	query := `
		INSERT INTO procedures (key, name, is_active)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.DB(ctx).QueryRow(ctx, query, p.Key, p.Name, p.IsActive).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create procedure: %w", err)
	}

	return nil
}

// GetByID получает услугу по ID
func (r *ProcedureRepository) GetByID(ctx context.Context, id int64) (*model.Procedure, error) {
	query := `
		SELECT id, key, name, is_active, created_at
		FROM procedures
		WHERE id = $1
	`

	var p model.Procedure
	err := r.DB(ctx).QueryRow(ctx, query, id).Scan(&p.ID, &p.Key, &p.Name, &p.IsActive, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get procedure by id: %w", err)
	}

	return &p, nil
}

// GetByKey получает услугу по машинному ключу
func (r *ProcedureRepository) GetByKey(ctx context.Context, key string) (*model.Procedure, error) {
	query := `
		SELECT id, key, name, is_active, created_at
		FROM procedures
		WHERE key = $1
	`

	var p model.Procedure
	err := r.DB(ctx).QueryRow(ctx, query, key).Scan(&p.ID, &p.Key, &p.Name, &p.IsActive, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get procedure by key: %w", err)
	}

	return &p, nil
}

// GetActive получает все активные услуги
func (r *ProcedureRepository) GetActive(ctx context.Context) ([]*model.Procedure, error) {
	query := `
		SELECT id, key, name, is_active, created_at
		FROM procedures
		WHERE is_active = true
		ORDER BY name
	`

	rows, err := r.DB(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get active procedures: %w", err)
	}
	defer rows.Close()

	var procedures []*model.Procedure
	for rows.Next() {
		var p model.Procedure
		if err := rows.Scan(&p.ID, &p.Key, &p.Name, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan procedure: %w", err)
		}
		procedures = append(procedures, &p)
	}

	return procedures, nil
}

// KeyExists проверяет занятость машинного ключа
func (r *ProcedureRepository) KeyExists(ctx context.Context, key string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM procedures
			WHERE key = $1
		)
	`

	var exists bool
	err := r.DB(ctx).QueryRow(ctx, query, key).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check procedure key: %w", err)
	}

	return exists, nil
}
