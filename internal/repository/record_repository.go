package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"focustimer/internal/model"
)

// RecordRepository stores committed sessions in insertion order.
type RecordRepository struct {
	db *sql.DB
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) Insert(ctx context.Context, record *model.Record) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO records (
			id, user_id, start_at, end_at, total_work, total_break, note, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.UserID,
		record.StartAt.UTC().Format(time.RFC3339Nano),
		record.EndAt.UTC().Format(time.RFC3339Nano),
		record.TotalWork,
		record.TotalBreak,
		record.Note,
		record.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (r *RecordRepository) Get(ctx context.Context, userID, id string) (*model.Record, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT id, user_id, start_at, end_at, total_work, total_break, note, created_at
		 FROM records
		 WHERE user_id = ? AND id = ?`,
		userID,
		id,
	)
	return scanRecord(row)
}

func (r *RecordRepository) List(ctx context.Context, userID string) ([]model.Record, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, user_id, start_at, end_at, total_work, total_break, note, created_at
		 FROM records
		 WHERE user_id = ?
		 ORDER BY seq ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	records := make([]model.Record, 0)
	for rows.Next() {
		record, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func (r *RecordRepository) UpdateNote(ctx context.Context, userID, id, note string) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE records SET note = ? WHERE user_id = ? AND id = ?`,
		note,
		userID,
		id,
	)
	if err != nil {
		return fmt.Errorf("update record note: %w", err)
	}
	return requireAffected(result)
}

func (r *RecordRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM records WHERE user_id = ? AND id = ?`,
		userID,
		id,
	)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return requireAffected(result)
}

// Clear removes every record of the user and reports how many were removed.
func (r *RecordRepository) Clear(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("clear records: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear records affected: %w", err)
	}
	return affected, nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRecord(s scanner) (*model.Record, error) {
	record := model.Record{}
	var startAt string
	var endAt string
	var createdAt string
	err := s.Scan(
		&record.ID,
		&record.UserID,
		&startAt,
		&endAt,
		&record.TotalWork,
		&record.TotalBreak,
		&record.Note,
		&createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan record: %w", err)
	}

	parsedStartAt, err := parseTime(startAt)
	if err != nil {
		return nil, fmt.Errorf("parse record start_at: %w", err)
	}
	record.StartAt = parsedStartAt

	parsedEndAt, err := parseTime(endAt)
	if err != nil {
		return nil, fmt.Errorf("parse record end_at: %w", err)
	}
	record.EndAt = parsedEndAt

	parsedCreatedAt, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse record created_at: %w", err)
	}
	record.CreatedAt = parsedCreatedAt

	return &record, nil
}
