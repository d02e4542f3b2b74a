package model

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrLedgerImmutable = errors.New("task attempts cannot be changed once written")

// TaskAttempt is one judged submission. Entries are append-only.
type TaskAttempt struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID       uint      `gorm:"not null;index:idx_task_attempt_user_task" json:"-"`
	TaskID       uint      `gorm:"not null;index:idx_task_attempt_user_task" json:"-"`
	TaskResultID uint      `gorm:"not null;index" json:"-"`
	Date         string    `gorm:"size:10;not null" json:"date"`
	Answer       string    `gorm:"size:500;not null" json:"answer"`
	Outcome      Outcome   `gorm:"type:varchar(20);not null" json:"outcome"`
	CreatedAt    time.Time `json:"created_at"`
}

func (TaskAttempt) TableName() string {
	return "task_attempts"
}

func (*TaskAttempt) BeforeUpdate(tx *gorm.DB) error {
	return ErrLedgerImmutable
}

func (*TaskAttempt) BeforeDelete(tx *gorm.DB) error {
	return ErrLedgerImmutable
}
