package service

import (
	"julekalender_backend/internal/model"
	"time"
)

// Calendar pins the time zone task windows are expressed in and the clock
// every service reads.
type Calendar struct {
	Location *time.Location
	Now      func() time.Time
}

func NewCalendar(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{Location: loc, Now: time.Now}
}

// Today is the current date in the calendar zone.
func (c *Calendar) Today() string {
	return c.Now().In(c.Location).Format(model.DateLayout)
}

func (c *Calendar) Status(task *model.Task) model.TaskStatus {
	return task.StatusAt(c.Now(), c.Location)
}
