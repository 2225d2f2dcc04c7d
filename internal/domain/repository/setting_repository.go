package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type SettingRepository interface {
	All(ctx context.Context) (map[string]string, error)
	Get(ctx context.Context, key string) (string, bool, error)
	Upsert(ctx context.Context, key, value string) error
}

type pgSettingRepository struct {
	db *sql.DB
}

func NewPgSettingRepository(db *sql.DB) SettingRepository {
	return &pgSettingRepository{db: db}
}

func (r *pgSettingRepository) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("pgSettingRepository.All query: %w", err)
	}
	defer rows.Close()

	settings := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("pgSettingRepository.All scan: %w", err)
		}
		settings[key] = value
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSettingRepository.All rows.Err: %w", err)
	}
	return settings, nil
}

func (r *pgSettingRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("pgSettingRepository.Get: %w", err)
	}
	return value, true, nil
}

func (r *pgSettingRepository) Upsert(ctx context.Context, key, value string) error {
	query := `INSERT INTO settings (key, value) VALUES ($1, $2)
	          ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("pgSettingRepository.Upsert: %w", err)
	}
	return nil
}
