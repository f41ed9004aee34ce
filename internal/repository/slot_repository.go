package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/avoronova/salon_bot/internal/model"
	"github.com/avoronova/salon_bot/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SlotRepository struct {
	*base.Repository
}

func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт новое окно. Пересечение интервалов ловит exclusion
// constraint в БД, поэтому два одновременных создания не могут закоммитить
// пересекающиеся окна.
func (r *SlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	query := `
		INSERT INTO slots (label, start_time, end_time)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.DB(ctx).QueryRow(
		ctx, query,
		slot.Label,
		slot.StartTime,
		slot.EndTime,
	).Scan(&slot.ID, &slot.CreatedAt)

	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

// CreateIfAbsent восстанавливает окно с исходным id. Повторный вызов - no-op.
// Занятость интервала проверяется до вставки: ловить нарушение exclusion
// constraint здесь нельзя - внутри объемлющей транзакции ошибка 23P01
// переводит её в aborted, и весь переход откатывается.
func (r *SlotRepository) CreateIfAbsent(ctx context.Context, slot *model.Slot) error {
	overlap, err := r.HasOverlap(ctx, slot.StartTime, slot.EndTime)
	if err != nil {
		return fmt.Errorf("restore slot: %w", err)
	}
	if overlap {
		// Интервал уже покрыт живым окном (тем же самым или созданным
		// позже) - восстанавливать нечего
		return nil
	}

	query := `
		INSERT INTO slots (id, label, start_time, end_time)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`

	if _, err := r.DB(ctx).Exec(ctx, query, slot.ID, slot.Label, slot.StartTime, slot.EndTime); err != nil {
		return fmt.Errorf("restore slot: %w", err)
	}

	return nil
}

// GetByID получает окно по ID
func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*model.Slot, error) {
	query := `
		SELECT id, label, start_time, end_time, created_at
		FROM slots
		WHERE id = $1
	`

	var slot model.Slot
	err := r.DB(ctx).QueryRow(ctx, query, id).Scan(
		&slot.ID,
		&slot.Label,
		&slot.StartTime,
		&slot.EndTime,
		&slot.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return &slot, nil
}

// List получает все открытые окна по возрастанию времени начала
func (r *SlotRepository) List(ctx context.Context) ([]*model.Slot, error) {
	query := `
		SELECT id, label, start_time, end_time, created_at
		FROM slots
		ORDER BY start_time
	`

	rows, err := r.DB(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.Slot
	for rows.Next() {
		var slot model.Slot
		err := rows.Scan(
			&slot.ID,
			&slot.Label,
			&slot.StartTime,
			&slot.EndTime,
			&slot.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, &slot)
	}

	return slots, nil
}

// Earliest получает ближайшее по времени окно
func (r *SlotRepository) Earliest(ctx context.Context) (*model.Slot, error) {
	query := `
		SELECT id, label, start_time, end_time, created_at
		FROM slots
		ORDER BY start_time
		LIMIT 1
	`

	var slot model.Slot
	err := r.DB(ctx).QueryRow(ctx, query).Scan(
		&slot.ID,
		&slot.Label,
		&slot.StartTime,
		&slot.EndTime,
		&slot.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get earliest slot: %w", err)
	}

	return &slot, nil
}

// Delete удаляет окно. Отсутствующий id - не ошибка: занятие окна штатно
// гонится с его удалением.
func (r *SlotRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM slots WHERE id = $1`

	_, err := r.DB(ctx).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}

	return nil
}

// HasOverlap проверяет пересечение интервала с существующими окнами
func (r *SlotRepository) HasOverlap(ctx context.Context, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM slots
			WHERE start_time < $2 AND end_time > $1
		)
	`

	var exists bool
	err := r.DB(ctx).QueryRow(ctx, query, start, end).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slot overlap: %w", err)
	}

	return exists, nil
}

// SlotExists проверяет существование окна с данным временем начала
func (r *SlotRepository) SlotExists(ctx context.Context, startTime time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM slots
			WHERE start_time = $1
		)
	`

	var exists bool
	err := r.DB(ctx).QueryRow(ctx, query, startTime).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slot exists: %w", err)
	}

	return exists, nil
}
