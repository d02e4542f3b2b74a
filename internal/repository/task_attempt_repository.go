package repository

import (
	"julekalender_backend/internal/model"

	"gorm.io/gorm"
)

// TaskAttemptRepository is the append-only ledger of judged submissions.
type TaskAttemptRepository struct {
	DB *gorm.DB
}

func NewTaskAttemptRepository(db *gorm.DB) *TaskAttemptRepository {
	return &TaskAttemptRepository{DB: db}
}

func (r *TaskAttemptRepository) WithTx(tx *gorm.DB) *TaskAttemptRepository {
	return &TaskAttemptRepository{DB: tx}
}

func (r *TaskAttemptRepository) Append(attempt *model.TaskAttempt) error {
	return r.DB.Create(attempt).Error
}

// Contains reports whether the user already submitted answer for the task.
// answer must be normalized.
func (r *TaskAttemptRepository) Contains(userID, taskID uint, answer string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.TaskAttempt{}).
		Where("user_id = ? AND task_id = ? AND answer = ?", userID, taskID, answer).
		Count(&count).Error
	return count > 0, err
}

// List returns the user's entries for the task, oldest first.
func (r *TaskAttemptRepository) List(userID, taskID uint) ([]model.TaskAttempt, error) {
	var attempts []model.TaskAttempt
	err := r.DB.Where("user_id = ? AND task_id = ?", userID, taskID).Order("id ASC").Find(&attempts).Error
	return attempts, err
}
