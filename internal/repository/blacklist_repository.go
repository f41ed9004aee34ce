package repository

import (
	"context"
	"fmt"

	"github.com/avoronova/salon_bot/internal/model"
	"github.com/avoronova/salon_bot/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BlacklistRepository struct {
	*base.Repository
}

func NewBlacklistRepository(pool *pgxpool.Pool) *BlacklistRepository {
	return &BlacklistRepository{Repository: base.NewRepository(pool)}
}

// IsBlacklisted проверяет членство ника в чёрном списке
func (r *BlacklistRepository) IsBlacklisted(ctx context.Context, username string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM blacklist
			WHERE username = $1
		)
	`

	var exists bool
	err := r.DB(ctx).QueryRow(ctx, query, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}

	return exists, nil
}

// Add добавляет ник в чёрный список, повтор - no-op
func (r *BlacklistRepository) Add(ctx context.Context, username string) error {
	query := `
		INSERT INTO blacklist (username)
		VALUES ($1)
		ON CONFLICT (username) DO NOTHING
	`

	if _, err := r.DB(ctx).Exec(ctx, query, username); err != nil {
		return fmt.Errorf("add to blacklist: %w", err)
	}
	return nil
}

// Remove убирает ник из чёрного списка
func (r *BlacklistRepository) Remove(ctx context.Context, username string) error {
	query := `DELETE FROM blacklist WHERE username = $1`

	if _, err := r.DB(ctx).Exec(ctx, query, username); err != nil {
		return fmt.Errorf("remove from blacklist: %w", err)
	}
	return nil
}

// List получает весь чёрный список
func (r *BlacklistRepository) List(ctx context.Context) ([]*model.BlacklistEntry, error) {
	query := `
		SELECT id, username, created_at
		FROM blacklist
		ORDER BY username
	`

	rows, err := r.DB(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list blacklist: %w", err)
	}
	defer rows.Close()

	var entries []*model.BlacklistEntry
	for rows.Next() {
		var entry model.BlacklistEntry
		if err := rows.Scan(&entry.ID, &entry.Username, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan blacklist entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}
