package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	apperrors "focustimer/internal/errors"
	"focustimer/internal/export"
	"focustimer/internal/model"
	"focustimer/internal/repository"
	"focustimer/internal/session"
)

type RecordService struct {
	repo     *repository.RecordRepository
	location *time.Location
}

func NewRecordService(repo *repository.RecordRepository, location *time.Location) *RecordService {
	if location == nil {
		location = time.Local
	}
	return &RecordService{repo: repo, location: location}
}

// Commit appends a closed session to the user's log.
func (s *RecordService) Commit(ctx context.Context, userID string, totals session.Totals) (*model.Record, *apperrors.APIError) {
	record := model.Record{
		ID:         uuid.NewString(),
		UserID:     userID,
		StartAt:    totals.StartedAt.UTC(),
		EndAt:      totals.EndedAt.UTC(),
		TotalWork:  totals.TotalWorkSeconds,
		TotalBreak: totals.TotalBreakSeconds,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, &record); err != nil {
		return nil, apperrors.Internal("failed to save record")
	}
	return &record, nil
}

func (s *RecordService) List(ctx context.Context, userID string) ([]model.Record, *apperrors.APIError) {
	records, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to list records")
	}
	return records, nil
}

func (s *RecordService) UpdateNote(ctx context.Context, userID, id, note string) (*model.Record, *apperrors.APIError) {
	err := s.repo.UpdateNote(ctx, userID, id, note)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound(apperrors.CodeRecordNotFound, "record not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to update record")
	}

	record, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, apperrors.Internal("failed to load record")
	}
	return record, nil
}

func (s *RecordService) Delete(ctx context.Context, userID, id string) *apperrors.APIError {
	err := s.repo.Delete(ctx, userID, id)
	if err == repository.ErrNotFound {
		return apperrors.NotFound(apperrors.CodeRecordNotFound, "record not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete record")
	}
	return nil
}

func (s *RecordService) Clear(ctx context.Context, userID string) (int64, *apperrors.APIError) {
	removed, err := s.repo.Clear(ctx, userID)
	if err != nil {
		return 0, apperrors.Internal("failed to clear records")
	}
	return removed, nil
}

// Export writes the user's log as CSV and returns the download file name.
func (s *RecordService) Export(ctx context.Context, userID string, w io.Writer, now time.Time) (string, *apperrors.APIError) {
	records, apiErr := s.List(ctx, userID)
	if apiErr != nil {
		return "", apiErr
	}
	if err := export.WriteRecords(w, records, s.location); err != nil {
		return "", apperrors.Internal("failed to export records")
	}
	return export.Filename(now.In(s.location)), nil
}
