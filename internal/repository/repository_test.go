package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focustimer/internal/model"
	"focustimer/internal/repository"
	"focustimer/internal/testutil"
)

func createUser(t *testing.T, users *repository.UserRepository, email string) string {
	t.Helper()
	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	settings := model.DefaultSettings(user.ID)
	require.NoError(t, users.CreateWithSettings(context.Background(), &user, &settings))
	return user.ID
}

func TestUserAndDefaultSettings(t *testing.T) {
	database := testutil.OpenDB(t)
	users := repository.NewUserRepository(database)
	settingsRepo := repository.NewSettingsRepository(database)
	ctx := context.Background()

	userID := createUser(t, users, "a@example.com")

	got, err := users.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, userID, got.ID)

	_, err = users.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	settings, err := settingsRepo.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultWorkDurationMinutes, settings.WorkDurationMinutes)
	assert.Equal(t, model.DefaultBreakDurationMinutes, settings.BreakDurationMinutes)
	assert.Empty(t, settings.WorkSourceRef)
}

func TestSettingsSaveOverwrites(t *testing.T) {
	database := testutil.OpenDB(t)
	users := repository.NewUserRepository(database)
	settingsRepo := repository.NewSettingsRepository(database)
	ctx := context.Background()
	userID := createUser(t, users, "b@example.com")

	settings, err := settingsRepo.Get(ctx, userID)
	require.NoError(t, err)
	settings.WorkSourceRef = "https://youtu.be/dQw4w9WgXcQ"
	settings.WorkProgressSeconds = 12.5
	settings.UpdatedAt = time.Now().UTC()
	require.NoError(t, settingsRepo.Save(ctx, settings))

	reloaded, err := settingsRepo.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", reloaded.WorkSourceRef)
	assert.InDelta(t, 12.5, reloaded.WorkProgressSeconds, 0.0001)
}

func TestRecordLifecycle(t *testing.T) {
	database := testutil.OpenDB(t)
	users := repository.NewUserRepository(database)
	records := repository.NewRecordRepository(database)
	ctx := context.Background()
	userID := createUser(t, users, "c@example.com")
	otherID := createUser(t, users, "d@example.com")

	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	ids := []string{"z-first", "a-second", "m-third"}
	for i, id := range ids {
		require.NoError(t, records.Insert(ctx, &model.Record{
			ID:         id,
			UserID:     userID,
			StartAt:    start.Add(time.Duration(i) * time.Hour),
			EndAt:      start.Add(time.Duration(i)*time.Hour + 30*time.Minute),
			TotalWork:  1500,
			TotalBreak: 300,
		}))
	}
	require.NoError(t, records.Insert(ctx, &model.Record{ID: "other", UserID: otherID, StartAt: start, EndAt: start}))

	listed, err := records.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	for i, id := range ids {
		assert.Equal(t, id, listed[i].ID)
	}
	assert.Equal(t, start, listed[0].StartAt)

	require.NoError(t, records.UpdateNote(ctx, userID, "a-second", "deep work"))
	got, err := records.Get(ctx, userID, "a-second")
	require.NoError(t, err)
	assert.Equal(t, "deep work", got.Note)

	assert.ErrorIs(t, records.UpdateNote(ctx, otherID, "a-second", "nope"), repository.ErrNotFound)

	require.NoError(t, records.Delete(ctx, userID, "z-first"))
	assert.ErrorIs(t, records.Delete(ctx, userID, "z-first"), repository.ErrNotFound)

	removed, err := records.Clear(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	remaining, err := records.List(ctx, otherID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}
