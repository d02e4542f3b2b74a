package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskStatusAt(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Oslo")
	if err != nil {
		t.Skip("tz database unavailable")
	}
	task := &Task{Date: "2025-12-01", OpenAt: 9, CloseAt: 23}

	tests := []struct {
		name string
		now  time.Time
		want TaskStatus
	}{
		{"day before", time.Date(2025, 11, 30, 12, 0, 0, 0, loc), TaskClosed},
		{"just before open", time.Date(2025, 12, 1, 8, 59, 59, 0, loc), TaskClosed},
		{"at open", time.Date(2025, 12, 1, 9, 0, 0, 0, loc), TaskOpen},
		{"midday", time.Date(2025, 12, 1, 15, 0, 0, 0, loc), TaskOpen},
		{"at close", time.Date(2025, 12, 1, 23, 0, 0, 0, loc), TaskExpired},
		{"next day", time.Date(2025, 12, 2, 10, 0, 0, 0, loc), TaskExpired},
		{"utc instant inside window", time.Date(2025, 12, 1, 8, 30, 0, 0, time.UTC), TaskOpen},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, task.StatusAt(tc.now, loc))
		})
	}
}

func TestTaskStatusAt_BadDateIsClosed(t *testing.T) {
	task := &Task{Date: "not a date", OpenAt: 0, CloseAt: 23}
	assert.Equal(t, TaskClosed, task.StatusAt(time.Now(), time.UTC))
}

func TestValidHours(t *testing.T) {
	assert.True(t, ValidHours(9, 23))
	assert.True(t, ValidHours(0, 1))
	assert.False(t, ValidHours(10, 10))
	assert.False(t, ValidHours(12, 9))
	assert.False(t, ValidHours(-1, 5))
	assert.False(t, ValidHours(9, 24))
}

func TestTaskResultLocked(t *testing.T) {
	now := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	later := now.Add(30 * time.Second)
	earlier := now.Add(-time.Second)

	assert.False(t, (&TaskResult{AttemptsLeft: 1}).Locked(now))
	assert.True(t, (&TaskResult{AttemptsLeft: 0}).Locked(now))
	assert.True(t, (&TaskResult{AttemptsLeft: 0, AttemptsReset: &later}).Locked(now))
	assert.False(t, (&TaskResult{AttemptsLeft: 0, AttemptsReset: &earlier}).Locked(now))
}
