package service

import (
	"julekalender_backend/internal/model"
	"julekalender_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHintVisible(t *testing.T) {
	tests := []struct {
		name   string
		k      int
		status model.TaskStatus
		res    *model.TaskResult
		want   bool
	}{
		{"open not unlocked", 2, model.TaskOpen, &model.TaskResult{HintsUsed: 1}, false},
		{"open unlocked", 2, model.TaskOpen, &model.TaskResult{HintsUsed: 2}, true},
		{"open no progress", 1, model.TaskOpen, nil, false},
		{"open solved", 5, model.TaskOpen, &model.TaskResult{Solved: true}, true},
		{"expired", 5, model.TaskExpired, nil, true},
		{"closed", 1, model.TaskClosed, &model.TaskResult{HintsUsed: 5}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HintVisible(tc.k, tc.status, tc.res))
		})
	}
}

func TestMediaVisible(t *testing.T) {
	general := &model.TaskMedia{HintNumber: 0}
	second := &model.TaskMedia{HintNumber: 2}

	assert.True(t, MediaVisible(general, model.TaskOpen, nil))
	assert.False(t, MediaVisible(general, model.TaskClosed, nil))
	assert.False(t, MediaVisible(second, model.TaskOpen, &model.TaskResult{HintsUsed: 1}))
	assert.True(t, MediaVisible(second, model.TaskOpen, &model.TaskResult{HintsUsed: 2}))
	assert.True(t, MediaVisible(second, model.TaskExpired, nil))
}

func TestCanUnlock(t *testing.T) {
	assert.NoError(t, CanUnlock(model.TaskOpen, &model.TaskResult{HintsUsed: 1}, 2))
	assert.ErrorIs(t, CanUnlock(model.TaskOpen, &model.TaskResult{HintsUsed: 2}, 2), util.ErrNoHintsLeft)
	assert.ErrorIs(t, CanUnlock(model.TaskOpen, &model.TaskResult{}, 0), util.ErrNoHintsLeft)
	assert.ErrorIs(t, CanUnlock(model.TaskOpen, &model.TaskResult{Solved: true}, 5), util.ErrAlreadySolved)
	assert.ErrorIs(t, CanUnlock(model.TaskExpired, &model.TaskResult{}, 5), util.ErrTaskNotOpen)
	assert.ErrorIs(t, CanUnlock(model.TaskClosed, &model.TaskResult{}, 5), util.ErrTaskNotOpen)
}

func TestFilterHints(t *testing.T) {
	hints := []model.TaskHint{{HintNumber: 1, Info: "one"}, {HintNumber: 2, Info: "two"}}
	media := []model.TaskMedia{
		{HintNumber: 0, FileName: "intro.png"},
		{HintNumber: 1, FileName: "one.mp3"},
		{HintNumber: 2, FileName: "two.mp4"},
	}

	visible, general := FilterHints(hints, media, model.TaskOpen, &model.TaskResult{HintsUsed: 1})
	require.Len(t, visible, 1)
	assert.Equal(t, "one", visible[0].Info)
	require.Len(t, visible[0].Media, 1)
	assert.Equal(t, "one.mp3", visible[0].Media[0].FileName)
	require.Len(t, general, 1)
	assert.Equal(t, "intro.png", general[0].FileName)

	visible, _ = FilterHints(hints, media, model.TaskExpired, nil)
	assert.Len(t, visible, 2)

	visible, general = FilterHints(hints, media, model.TaskOpen, nil)
	assert.Empty(t, visible)
	assert.Len(t, general, 1)
}
