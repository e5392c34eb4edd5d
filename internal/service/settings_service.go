package service

import (
	"context"
	"strings"
	"time"

	apperrors "focustimer/internal/errors"
	"focustimer/internal/model"
	"focustimer/internal/repository"
	"focustimer/internal/timer"
)

type SettingsService struct {
	repo *repository.SettingsRepository
}

// UpdateSettingsInput is a partial patch; nil fields are left unchanged.
type UpdateSettingsInput struct {
	WorkSourceRef        *string
	BreakSourceRef       *string
	WorkDurationMinutes  *float64
	BreakDurationMinutes *float64
}

func NewSettingsService(repo *repository.SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

// Get loads the user's settings, creating the defaults on first access.
func (s *SettingsService) Get(ctx context.Context, userID string) (*model.Settings, *apperrors.APIError) {
	settings, err := s.repo.Get(ctx, userID)
	if err == repository.ErrNotFound {
		defaults := model.DefaultSettings(userID)
		if apiErr := s.Save(ctx, &defaults); apiErr != nil {
			return nil, apiErr
		}
		return &defaults, nil
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load settings")
	}
	return settings, nil
}

func (s *SettingsService) Save(ctx context.Context, settings *model.Settings) *apperrors.APIError {
	settings.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, settings); err != nil {
		return apperrors.Internal("failed to save settings")
	}
	return nil
}

// ApplySettings returns current patched with input. Durations are clamped to
// their allowed ranges and the playback progress of a phase is reset when its
// source reference changes.
func ApplySettings(current model.Settings, input UpdateSettingsInput) model.Settings {
	next := current
	if input.WorkSourceRef != nil {
		ref := strings.TrimSpace(*input.WorkSourceRef)
		if ref != current.WorkSourceRef {
			next.WorkSourceRef = ref
			next.SetProgress(timer.PhaseWork, 0)
		}
	}
	if input.BreakSourceRef != nil {
		ref := strings.TrimSpace(*input.BreakSourceRef)
		if ref != current.BreakSourceRef {
			next.BreakSourceRef = ref
			next.SetProgress(timer.PhaseBreak, 0)
		}
	}
	if input.WorkDurationMinutes != nil {
		next.WorkDurationMinutes = model.ClampWorkMinutes(*input.WorkDurationMinutes)
	}
	if input.BreakDurationMinutes != nil {
		next.BreakDurationMinutes = model.ClampBreakMinutes(*input.BreakDurationMinutes)
	}
	return next
}
