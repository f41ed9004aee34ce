package repository

import (
	"context"
	"fmt"

	"github.com/avoronova/salon_bot/internal/model"
	"github.com/avoronova/salon_bot/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HistoryRepository журнал итогов визитов, только добавление и чтение
type HistoryRepository struct {
	*base.Repository
}

func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{Repository: base.NewRepository(pool)}
}

// Append добавляет запись в журнал
func (r *HistoryRepository) Append(ctx context.Context, entry *model.HistoryEntry) error {
	query := `
		INSERT INTO history (client_id, client_name, date_label, procedure_label, outcome)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.DB(ctx).QueryRow(
		ctx, query,
		entry.ClientID,
		entry.ClientName,
		entry.DateLabel,
		entry.ProcedureLabel,
		entry.Outcome,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("append history entry: %w", err)
	}

	return nil
}

// List получает последние записи журнала
func (r *HistoryRepository) List(ctx context.Context, limit int) ([]*model.HistoryEntry, error) {
	query := `
		SELECT id, client_id, client_name, date_label, procedure_label, outcome, created_at
		FROM history
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.DB(ctx).Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []*model.HistoryEntry
	for rows.Next() {
		var entry model.HistoryEntry
		err := rows.Scan(
			&entry.ID,
			&entry.ClientID,
			&entry.ClientName,
			&entry.DateLabel,
			&entry.ProcedureLabel,
			&entry.Outcome,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}
