package model

import (
	"time"
)

// DateLayout is the key format of Task.Date.
const DateLayout = "2006-01-02"

// MaxHints bounds hint numbers per task.
const MaxHints = 5

type TaskStatus string

const (
	TaskClosed  TaskStatus = "closed"
	TaskOpen    TaskStatus = "open"
	TaskExpired TaskStatus = "expired"
)

// Task is the puzzle for one calendar date. OpenAt and CloseAt are hours in
// the calendar time zone. Answer fields hold vault ciphertext.
type Task struct {
	Record
	Public
	Date            string      `gorm:"size:10;uniqueIndex;not null" json:"date"`
	Info            string      `gorm:"type:text" json:"info"`
	Author          string      `gorm:"size:100" json:"author"`
	CreatedByUserID uint        `gorm:"index" json:"created_by_user_id"`
	OpenAt          int         `gorm:"not null" json:"open_at"`
	CloseAt         int         `gorm:"not null" json:"close_at"`
	AnswerPlaintext string      `gorm:"type:text;not null" json:"-"`
	AnswerRegex     string      `gorm:"type:text" json:"-"`
	AnswerInfo      string      `gorm:"type:text" json:"-"`
	VideoURL        string      `gorm:"size:255" json:"-"`
	Hints           []TaskHint  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Media           []TaskMedia `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Task) TableName() string {
	return "tasks"
}

// Window returns the open and close instants of the task in loc. ok is
// false when Date does not parse.
func (t *Task) Window(loc *time.Location) (open, close time.Time, ok bool) {
	day, err := time.ParseInLocation(DateLayout, t.Date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	y, m, d := day.Date()
	open = time.Date(y, m, d, t.OpenAt, 0, 0, 0, loc)
	close = time.Date(y, m, d, t.CloseAt, 0, 0, 0, loc)
	return open, close, true
}

// StatusAt is closed before the open hour, open in [open, close) and
// expired from the close hour on.
func (t *Task) StatusAt(now time.Time, loc *time.Location) TaskStatus {
	open, close, ok := t.Window(loc)
	if !ok || now.Before(open) {
		return TaskClosed
	}
	if now.Before(close) {
		return TaskOpen
	}
	return TaskExpired
}

// ValidHours reports whether the window is well formed.
func ValidHours(openAt, closeAt int) bool {
	return openAt >= 0 && openAt <= 23 && closeAt >= 0 && closeAt <= 23 && closeAt > openAt
}

type TaskHint struct {
	Record
	Public
	TaskID     uint        `gorm:"not null;index" json:"-"`
	Date       string      `gorm:"size:10;not null;uniqueIndex:idx_task_hint_date_number" json:"date"`
	HintNumber int         `gorm:"not null;uniqueIndex:idx_task_hint_date_number" json:"hint_number"`
	Info       string      `gorm:"type:text" json:"info"`
	Media      []TaskMedia `gorm:"-" json:"media"`
}

func (TaskHint) TableName() string {
	return "task_hints"
}

const (
	MediaPNG      = "png"
	MediaJPEG     = "jpeg"
	MediaMP3      = "mp3"
	MediaMP4      = "mp4"
	MediaMarkdown = "markdown"
)

// TaskMedia is an attachment. HintNumber 0 is shown with the task itself;
// any other value follows that hint's visibility.
type TaskMedia struct {
	Record
	Public
	TaskID     uint   `gorm:"not null;index" json:"-"`
	Date       string `gorm:"size:10;not null;index" json:"date"`
	HintNumber int    `gorm:"not null;default:0" json:"hint_number"`
	FileName   string `gorm:"size:255;not null" json:"file_name"`
	MediaType  string `gorm:"size:20;not null" json:"media_type"`
	Info       string `gorm:"type:text" json:"info"`
	URL        string `gorm:"size:500;not null" json:"url"`
	ObjectKey  string `gorm:"size:255" json:"-"`
}

func (TaskMedia) TableName() string {
	return "task_media"
}
