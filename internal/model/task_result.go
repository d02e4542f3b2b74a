package model

import (
	"time"
)

// TaskResult is the progress of one user on one task. Rows are created on
// first touch and mutated only under the per-(user, task) lock; Version
// guards every write.
type TaskResult struct {
	BaseModel
	Public
	UserID        uint       `gorm:"not null;uniqueIndex:idx_task_result_user_task" json:"user_id"`
	TaskID        uint       `gorm:"not null;uniqueIndex:idx_task_result_user_task;index" json:"task_id"`
	Date          string     `gorm:"size:10;not null;index" json:"date"`
	Solved        bool       `gorm:"not null;default:false" json:"solved"`
	TimeSolved    *time.Time `json:"time_solved,omitempty"`
	Score         int        `gorm:"not null;default:0" json:"score"`
	HintsUsed     int        `gorm:"not null;default:0" json:"hints_used"`
	AttemptsLeft  int        `gorm:"not null" json:"attempts_left"`
	AttemptsReset *time.Time `json:"attempts_reset,omitempty"`
	Version       int        `gorm:"not null;default:0" json:"-"`
}

func (TaskResult) TableName() string {
	return "task_results"
}

// Locked reports whether the budget is spent and the cooldown is still
// running at now.
func (r *TaskResult) Locked(now time.Time) bool {
	return r.AttemptsLeft <= 0 && (r.AttemptsReset == nil || now.Before(*r.AttemptsReset))
}
