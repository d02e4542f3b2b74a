package repository

import (
	"errors"
	"julekalender_backend/internal/model"
	"julekalender_backend/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskResultRepository struct {
	DB *gorm.DB
}

func NewTaskResultRepository(db *gorm.DB) *TaskResultRepository {
	return &TaskResultRepository{DB: db}
}

func (r *TaskResultRepository) WithTx(tx *gorm.DB) *TaskResultRepository {
	return &TaskResultRepository{DB: tx}
}

func (r *TaskResultRepository) find(userID, taskID uint, lock bool) (*model.TaskResult, error) {
	q := r.DB
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var res model.TaskResult
	err := q.Where("user_id = ? AND task_id = ?", userID, taskID).First(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *TaskResultRepository) Find(userID, taskID uint) (*model.TaskResult, error) {
	return r.find(userID, taskID, false)
}

// GetOrCreate loads the row for (user, task) with a row lock, inserting a
// fresh one with the given budget first if none exists. A concurrent insert
// of the same pair is absorbed by the unique index and the row is re-read.
func (r *TaskResultRepository) GetOrCreate(userID uint, task *model.Task, budget int) (*model.TaskResult, error) {
	res, err := r.find(userID, task.ID, true)
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := &model.TaskResult{
		UserID:       userID,
		TaskID:       task.ID,
		Date:         task.Date,
		AttemptsLeft: budget,
	}
	if err := r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(fresh).Error; err != nil {
		return nil, err
	}
	return r.find(userID, task.ID, true)
}

// Save writes the mutable progress fields if nobody else wrote the row since
// it was read, and bumps Version. A stale Version yields
// util.ErrConcurrentUpdate.
func (r *TaskResultRepository) Save(res *model.TaskResult) error {
	result := r.DB.Model(&model.TaskResult{}).
		Where("id = ? AND version = ?", res.ID, res.Version).
		Updates(map[string]interface{}{
			"solved":         res.Solved,
			"time_solved":    res.TimeSolved,
			"score":          res.Score,
			"hints_used":     res.HintsUsed,
			"attempts_left":  res.AttemptsLeft,
			"attempts_reset": res.AttemptsReset,
			"version":        res.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return util.ErrConcurrentUpdate
	}
	res.Version++
	return nil
}

func (r *TaskResultRepository) FindByUser(userID uint, limit int) ([]model.TaskResult, error) {
	var results []model.TaskResult
	err := r.DB.Where("user_id = ?", userID).Order("date DESC").Limit(limit).Find(&results).Error
	return results, err
}

func (r *TaskResultRepository) FindByTask(taskID uint) ([]model.TaskResult, error) {
	var results []model.TaskResult
	err := r.DB.Where("task_id = ?", taskID).Order("solved DESC, score DESC, time_solved ASC").Find(&results).Error
	return results, err
}

// SoftDeleteByUser hides every result of the user together with the account.
func (r *TaskResultRepository) SoftDeleteByUser(userID uint) error {
	return r.DB.Where("user_id = ?", userID).Delete(&model.TaskResult{}).Error
}

type LeaderboardRow struct {
	UserID      uint   `json:"-"`
	Name        string `json:"name,omitempty"`
	Username    string `json:"username"`
	ShowName    bool   `json:"-"`
	TotalScore  int    `json:"total_score"`
	SolvedCount int    `json:"solved_count"`
}

// Leaderboard ranks users by summed score. Ties go to whoever finished their
// latest solve first.
func (r *TaskResultRepository) Leaderboard(limit int) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	err := r.DB.Table("task_results").
		Select("users.id AS user_id, users.name, users.username, users.show_name, " +
			"SUM(task_results.score) AS total_score, COUNT(task_results.id) AS solved_count").
		Joins("JOIN users ON users.id = task_results.user_id AND users.deleted_at IS NULL").
		Where("task_results.deleted_at IS NULL AND task_results.solved = ?", true).
		Group("users.id, users.name, users.username, users.show_name").
		Order("total_score DESC, MAX(task_results.time_solved) ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
