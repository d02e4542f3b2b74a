package repository

import (
	"julekalender_backend/internal/model"

	"gorm.io/gorm"
)

type TaskRepository struct {
	DB *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{DB: db}
}

func (r *TaskRepository) WithTx(tx *gorm.DB) *TaskRepository {
	return &TaskRepository{DB: tx}
}

func (r *TaskRepository) Create(task *model.Task) error {
	return r.DB.Omit("Hints", "Media").Create(task).Error
}

func (r *TaskRepository) FindByDate(date string) (*model.Task, error) {
	var task model.Task
	err := r.DB.Where("date = ?", date).First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) List(limit int) ([]model.Task, error) {
	var tasks []model.Task
	err := r.DB.Order("date DESC").Limit(limit).Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) Update(task *model.Task) error {
	return r.DB.Omit("Hints", "Media").Save(task).Error
}

// Delete removes the task with its hints and media.
func (r *TaskRepository) Delete(task *model.Task) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&model.TaskMedia{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&model.TaskHint{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Task{}, task.ID).Error
	})
}

func (r *TaskRepository) FindHints(taskID uint) ([]model.TaskHint, error) {
	var hints []model.TaskHint
	err := r.DB.Where("task_id = ?", taskID).Order("hint_number ASC").Find(&hints).Error
	return hints, err
}

func (r *TaskRepository) CountHints(taskID uint) (int, error) {
	var count int64
	err := r.DB.Model(&model.TaskHint{}).Where("task_id = ?", taskID).Count(&count).Error
	return int(count), err
}

func (r *TaskRepository) CreateHint(hint *model.TaskHint) error {
	return r.DB.Create(hint).Error
}

func (r *TaskRepository) FindMedia(taskID uint) ([]model.TaskMedia, error) {
	var media []model.TaskMedia
	err := r.DB.Where("task_id = ?", taskID).Order("hint_number ASC, id ASC").Find(&media).Error
	return media, err
}

func (r *TaskRepository) CreateMedia(media *model.TaskMedia) error {
	return r.DB.Create(media).Error
}
