package service

import (
	"bytes"
	"context"
	"julekalender_backend/internal/model"
	"julekalender_backend/internal/util"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestCreateTask_SealsAnswers(t *testing.T) {
	f := newFixture(t, 10)

	task, err := f.taskSvc.CreateTask(1, "2025-12-24", CreateTaskRequest{
		Info:        "What pulls the sleigh?",
		Answer:      "  Reindeer ",
		AnswerRegex: `^reindeers?$`,
	})
	require.NoError(t, err)
	assert.Equal(t, 9, task.OpenAt)
	assert.Equal(t, 23, task.CloseAt)
	assert.NotContains(t, task.AnswerPlaintext, "eindeer")

	plain, err := f.vault.Decrypt(task.AnswerPlaintext)
	require.NoError(t, err)
	assert.Equal(t, "Reindeer", plain)
	pattern, err := f.vault.Decrypt(task.AnswerRegex)
	require.NoError(t, err)
	assert.Equal(t, `^reindeers?$`, pattern)

	_, err = f.taskSvc.CreateTask(1, "2025-12-24", CreateTaskRequest{Info: "again", Answer: "x"})
	assert.ErrorIs(t, err, util.ErrTaskExists)
}

func TestCreateTask_Validation(t *testing.T) {
	f := newFixture(t, 10)

	_, err := f.taskSvc.CreateTask(1, "2025-12-02", CreateTaskRequest{Info: "i", Answer: "a", OpenAt: intPtr(12), CloseAt: intPtr(12)})
	assert.ErrorIs(t, err, util.ErrInvalidWindow)

	_, err = f.taskSvc.CreateTask(1, "2025-12-02", CreateTaskRequest{Info: "i", Answer: "a", CloseAt: intPtr(24)})
	assert.ErrorIs(t, err, util.ErrInvalidWindow)

	_, err = f.taskSvc.CreateTask(1, "2025-12-02", CreateTaskRequest{Info: "i", Answer: "a", AnswerRegex: `\d+`})
	assert.ErrorIs(t, err, ErrInvalidPattern)

	_, err = f.taskSvc.CreateTask(1, "2025-12-02", CreateTaskRequest{Info: "i", Answer: "a", AnswerRegex: `^(\d+$`})
	assert.ErrorIs(t, err, ErrInvalidPattern)

	_, err = f.taskSvc.CreateTask(1, "2025-12-02", CreateTaskRequest{Info: "i", Answer: "   "})
	assert.Error(t, err)

	_, err = f.taskSvc.CreateTask(1, "02.12.2025", CreateTaskRequest{Info: "i", Answer: "a"})
	assert.Error(t, err)
}

func TestUpdateAndDeleteOnlyWhileClosed(t *testing.T) {
	f := newFixture(t, 10)
	_, err := f.taskSvc.CreateTask(1, testDate, CreateTaskRequest{Info: "i", Answer: "a"})
	require.NoError(t, err)

	// 10:00 on the task date is inside the window
	_, err = f.taskSvc.UpdateTask(testDate, UpdateTaskRequest{Info: strPtr("new")})
	assert.ErrorIs(t, err, util.ErrTaskLocked)
	assert.ErrorIs(t, f.taskSvc.DeleteTask(context.Background(), testDate), util.ErrTaskLocked)

	f.clock.Set(time.Date(2025, 12, 1, 7, 0, 0, 0, time.UTC))
	updated, err := f.taskSvc.UpdateTask(testDate, UpdateTaskRequest{
		Info:    strPtr("new"),
		OpenAt:  intPtr(8),
		CloseAt: intPtr(20),
		Answer:  strPtr("b"),
	})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Info)
	assert.Equal(t, 8, updated.OpenAt)
	plain, err := f.vault.Decrypt(updated.AnswerPlaintext)
	require.NoError(t, err)
	assert.Equal(t, "b", plain)

	_, err = f.taskSvc.UpdateTask(testDate, UpdateTaskRequest{OpenAt: intPtr(21)})
	assert.ErrorIs(t, err, util.ErrInvalidWindow)

	require.NoError(t, f.taskSvc.DeleteTask(context.Background(), testDate))
	_, err = f.taskSvc.AdminView(testDate)
	assert.ErrorIs(t, err, util.ErrTaskNotFound)
}

func TestGetOpenTaskForToday(t *testing.T) {
	f := newFixture(t, 10)

	_, err := f.taskSvc.GetOpenTaskForToday()
	assert.ErrorIs(t, err, util.ErrTaskNotFound)

	f.task(t, testDate, "reindeer", "")
	task, err := f.taskSvc.GetOpenTaskForToday()
	require.NoError(t, err)
	assert.Equal(t, testDate, task.Date)

	f.clock.Set(time.Date(2025, 12, 1, 8, 59, 0, 0, time.UTC))
	_, err = f.taskSvc.GetOpenTaskForToday()
	assert.ErrorIs(t, err, util.ErrTaskNotOpen)
	_, err = f.taskSvc.GetVisibleTaskForToday()
	assert.ErrorIs(t, err, util.ErrTaskNotOpen)

	f.clock.Set(time.Date(2025, 12, 1, 23, 0, 0, 0, time.UTC))
	_, err = f.taskSvc.GetOpenTaskForToday()
	assert.ErrorIs(t, err, util.ErrTaskNotOpen)
	task, err = f.taskSvc.GetVisibleTaskForToday()
	require.NoError(t, err)
	assert.Equal(t, model.TaskExpired, f.taskSvc.View(task).Status)
}

func TestTaskView_RevealsExplanationAfterExpiry(t *testing.T) {
	f := newFixture(t, 10)
	task, err := f.taskSvc.CreateTask(1, testDate, CreateTaskRequest{
		Info:       "riddle",
		Answer:     "reindeer",
		AnswerInfo: "Rudolph and friends",
		VideoURL:   "https://example.com/v",
	})
	require.NoError(t, err)

	view := f.taskSvc.View(task)
	assert.Equal(t, model.TaskOpen, view.Status)
	assert.Empty(t, view.AnswerInfo)
	assert.Empty(t, view.VideoURL)

	f.clock.Set(time.Date(2025, 12, 2, 0, 0, 0, 0, time.UTC))
	view = f.taskSvc.View(task)
	assert.Equal(t, model.TaskExpired, view.Status)
	assert.Equal(t, "Rudolph and friends", view.AnswerInfo)
	assert.Equal(t, "https://example.com/v", view.VideoURL)
}

func TestAddHint_NumbersSequentiallyUpToFive(t *testing.T) {
	f := newFixture(t, 10)
	f.task(t, testDate, "reindeer", "")

	for i := 1; i <= model.MaxHints; i++ {
		hint, err := f.taskSvc.AddHint(testDate, "hint")
		require.NoError(t, err)
		assert.Equal(t, i, hint.HintNumber)
	}
	_, err := f.taskSvc.AddHint(testDate, "one too many")
	assert.ErrorIs(t, err, util.ErrTooManyHints)

	hints, err := f.taskSvc.ListHints(testDate)
	require.NoError(t, err)
	assert.Len(t, hints, model.MaxHints)

	_, err = f.taskSvc.AddHint("2025-12-31", "no task")
	assert.ErrorIs(t, err, util.ErrTaskNotFound)
}

func TestAddMedia_StoresLocally(t *testing.T) {
	f := newFixture(t, 10)
	f.task(t, testDate, "reindeer", "")
	_, err := f.taskSvc.AddHint(testDate, "look at the picture")
	require.NoError(t, err)
	ctx := context.Background()

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	media, err := f.taskSvc.AddMedia(ctx, testDate, 1, "a star", "star.png", bytes.NewReader(png), int64(len(png)))
	require.NoError(t, err)
	assert.Equal(t, model.MediaPNG, media.MediaType)
	assert.Equal(t, 1, media.HintNumber)
	assert.Contains(t, media.URL, "/uploads/tasks/"+testDate+"/")

	stored, err := os.ReadFile(filepath.Join(f.cfg.Storage.LocalPath, filepath.FromSlash(media.ObjectKey)))
	require.NoError(t, err)
	assert.Equal(t, png, stored)

	_, err = f.taskSvc.AddMedia(ctx, testDate, 2, "", "star.png", bytes.NewReader(png), int64(len(png)))
	assert.ErrorIs(t, err, util.ErrHintNotFound)

	_, err = f.taskSvc.AddMedia(ctx, testDate, 0, "", "notes.txt", bytes.NewReader([]byte("plain")), 5)
	assert.ErrorIs(t, err, util.ErrInvalidMediaType)

	view, err := f.taskSvc.AdminView(testDate)
	require.NoError(t, err)
	assert.Len(t, view.Media, 1)
	assert.Len(t, view.Hints, 1)
	assert.False(t, view.HasRegex)
}
