package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"focustimer/internal/model"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context, userID string) (*model.Settings, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT user_id, work_source_ref, break_source_ref,
		        work_duration_minutes, break_duration_minutes,
		        work_progress_seconds, break_progress_seconds, updated_at
		 FROM settings WHERE user_id = ?`,
		userID,
	)
	return scanSettings(row)
}

func (r *SettingsRepository) Save(ctx context.Context, settings *model.Settings) error {
	return upsertSettings(ctx, r.db, settings)
}

func upsertSettings(ctx context.Context, db execer, settings *model.Settings) error {
	if settings.UpdatedAt.IsZero() {
		settings.UpdatedAt = time.Now().UTC()
	}
	_, err := db.ExecContext(
		ctx,
		`INSERT INTO settings (
			user_id, work_source_ref, break_source_ref,
			work_duration_minutes, break_duration_minutes,
			work_progress_seconds, break_progress_seconds, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			work_source_ref = excluded.work_source_ref,
			break_source_ref = excluded.break_source_ref,
			work_duration_minutes = excluded.work_duration_minutes,
			break_duration_minutes = excluded.break_duration_minutes,
			work_progress_seconds = excluded.work_progress_seconds,
			break_progress_seconds = excluded.break_progress_seconds,
			updated_at = excluded.updated_at`,
		settings.UserID,
		settings.WorkSourceRef,
		settings.BreakSourceRef,
		settings.WorkDurationMinutes,
		settings.BreakDurationMinutes,
		settings.WorkProgressSeconds,
		settings.BreakProgressSeconds,
		settings.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func scanSettings(s scanner) (*model.Settings, error) {
	settings := model.Settings{}
	var updatedAt string
	err := s.Scan(
		&settings.UserID,
		&settings.WorkSourceRef,
		&settings.BreakSourceRef,
		&settings.WorkDurationMinutes,
		&settings.BreakDurationMinutes,
		&settings.WorkProgressSeconds,
		&settings.BreakProgressSeconds,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan settings: %w", err)
	}

	parsedUpdatedAt, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse settings updated_at: %w", err)
	}
	settings.UpdatedAt = parsedUpdatedAt
	return &settings, nil
}
