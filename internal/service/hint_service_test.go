package service

import (
	"context"
	"julekalender_backend/internal/model"
	"julekalender_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestHintUnlock_ProgressesUntilNoHintsLeft(t *testing.T) {
	f := newFixture(t, 10)
	task := f.task(t, testDate, "reindeer", "")
	f.hints(t, task, 2)
	require.NoError(t, f.tasks.CreateMedia(&model.TaskMedia{
		TaskID: task.ID, Date: task.Date, HintNumber: 1, FileName: "one.png", MediaType: model.MediaPNG, URL: "/uploads/one.png",
	}))
	u := f.user(t, "elf")
	ctx := context.Background()

	view, err := f.hintSvc.Visible(u.ID, task)
	require.NoError(t, err)
	assert.Equal(t, 0, view.HintsUsed)
	assert.Equal(t, 2, view.TotalHints)
	assert.Empty(t, view.Hints)

	r, err := f.hintSvc.Unlock(ctx, u.ID, task)
	require.NoError(t, err)
	assert.Equal(t, 1, r.HintsUsed)
	require.NotNil(t, r.Hint)
	assert.Equal(t, 1, r.Hint.HintNumber)
	require.Len(t, r.Hint.Media, 1)
	assert.Equal(t, "one.png", r.Hint.Media[0].FileName)

	view, err = f.hintSvc.Visible(u.ID, task)
	require.NoError(t, err)
	require.Len(t, view.Hints, 1)
	assert.Equal(t, 1, view.Hints[0].HintNumber)

	r, err = f.hintSvc.Unlock(ctx, u.ID, task)
	require.NoError(t, err)
	assert.Equal(t, 2, r.HintsUsed)

	_, err = f.hintSvc.Unlock(ctx, u.ID, task)
	assert.ErrorIs(t, err, util.ErrNoHintsLeft)

	stored, err := f.results.Find(u.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.HintsUsed)
	assert.Equal(t, 10, stored.AttemptsLeft)
}

func TestHintUnlock_RefusedOnceSolved(t *testing.T) {
	f := newFixture(t, 10)
	task := f.task(t, testDate, "reindeer", "")
	f.hints(t, task, 3)
	u := f.user(t, "elf")

	f.submit(t, u.ID, task, "reindeer")

	_, err := f.hintSvc.Unlock(context.Background(), u.ID, task)
	assert.ErrorIs(t, err, util.ErrAlreadySolved)

	// solving reveals every hint
	view, err := f.hintSvc.Visible(u.ID, task)
	require.NoError(t, err)
	assert.Len(t, view.Hints, 3)
	assert.Equal(t, 0, view.HintsUsed)
}

func TestHintUnlock_OnlyWhileOpen(t *testing.T) {
	f := newFixture(t, 10)
	task := f.task(t, testDate, "reindeer", "")
	f.hints(t, task, 3)
	u := f.user(t, "elf")

	f.clock.Set(time.Date(2025, 12, 1, 23, 30, 0, 0, time.UTC))
	_, err := f.hintSvc.Unlock(context.Background(), u.ID, task)
	assert.ErrorIs(t, err, util.ErrTaskNotOpen)

	// expired tasks show all hints without creating progress
	view, err := f.hintSvc.Visible(u.ID, task)
	require.NoError(t, err)
	assert.Len(t, view.Hints, 3)
	_, err = f.results.Find(u.ID, task.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	f.clock.Set(time.Date(2025, 12, 1, 8, 0, 0, 0, time.UTC))
	_, err = f.hintSvc.Visible(u.ID, task)
	assert.ErrorIs(t, err, util.ErrTaskNotOpen)
}

func TestHintUnlock_RejectedUnlockCreatesNothing(t *testing.T) {
	f := newFixture(t, 10)
	task := f.task(t, testDate, "reindeer", "")
	u := f.user(t, "elf")

	_, err := f.hintSvc.Unlock(context.Background(), u.ID, task)
	assert.ErrorIs(t, err, util.ErrNoHintsLeft)

	_, err = f.results.Find(u.ID, task.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestHintUnlock_LowersScore(t *testing.T) {
	f := newFixture(t, 10)
	task := f.task(t, testDate, "reindeer", "")
	f.hints(t, task, 5)
	u := f.user(t, "elf")

	for i := 0; i < 5; i++ {
		_, err := f.hintSvc.Unlock(context.Background(), u.ID, task)
		require.NoError(t, err)
	}
	r := f.submit(t, u.ID, task, "reindeer")
	assert.Equal(t, model.OutcomeCorrect, r.Outcome)
	assert.Equal(t, 1, r.Score)
	assert.Equal(t, 5, r.HintsUsed)
}
