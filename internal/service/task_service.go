package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"julekalender_backend/internal/model"
	"julekalender_backend/internal/repository"
	"julekalender_backend/internal/util"
	"julekalender_backend/pkg/logger"
	"julekalender_backend/pkg/vault"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultOpenAt  = 9
	defaultCloseAt = 23
)

var (
	ErrInvalidPattern = errors.New("answer_regex must be a valid pattern written as ^...$")
	ErrBlankAnswer    = errors.New("answer must not be blank")
)

type TaskService struct {
	DB         *gorm.DB
	TaskRepo   *repository.TaskRepository
	ResultRepo *repository.TaskResultRepository
	Vault      *vault.Vault
	Storage    *StorageService
	Calendar   *Calendar
}

func NewTaskService(
	db *gorm.DB,
	taskRepo *repository.TaskRepository,
	resultRepo *repository.TaskResultRepository,
	v *vault.Vault,
	storage *StorageService,
	calendar *Calendar,
) *TaskService {
	return &TaskService{
		DB:         db,
		TaskRepo:   taskRepo,
		ResultRepo: resultRepo,
		Vault:      v,
		Storage:    storage,
		Calendar:   calendar,
	}
}

func (s *TaskService) findByDate(date string) (*model.Task, error) {
	task, err := s.TaskRepo.FindByDate(date)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrTaskNotFound
	}
	return task, err
}

// GetOpenTaskForToday resolves the task answers and hint unlocks apply to.
func (s *TaskService) GetOpenTaskForToday() (*model.Task, error) {
	task, err := s.findByDate(s.Calendar.Today())
	if err != nil {
		return nil, err
	}
	if s.Calendar.Status(task) != model.TaskOpen {
		return nil, util.ErrTaskNotOpen
	}
	return task, nil
}

// GetVisibleTaskForToday is today's task once it has opened, including after
// it expired.
func (s *TaskService) GetVisibleTaskForToday() (*model.Task, error) {
	task, err := s.findByDate(s.Calendar.Today())
	if err != nil {
		return nil, err
	}
	if s.Calendar.Status(task) == model.TaskClosed {
		return nil, util.ErrTaskNotOpen
	}
	return task, nil
}

// TaskView is what players see. The explanation and video appear once the
// task expired.
type TaskView struct {
	UUID       string           `json:"uuid"`
	Date       string           `json:"date"`
	Info       string           `json:"info"`
	Author     string           `json:"author"`
	OpenAt     int              `json:"open_at"`
	CloseAt    int              `json:"close_at"`
	Status     model.TaskStatus `json:"status"`
	AnswerInfo string           `json:"answer_info,omitempty"`
	VideoURL   string           `json:"video_url,omitempty"`
}

func (s *TaskService) View(task *model.Task) *TaskView {
	status := s.Calendar.Status(task)
	view := &TaskView{
		UUID:    task.UUID,
		Date:    task.Date,
		Info:    task.Info,
		Author:  task.Author,
		OpenAt:  task.OpenAt,
		CloseAt: task.CloseAt,
		Status:  status,
	}
	if status == model.TaskExpired {
		view.AnswerInfo = task.AnswerInfo
		view.VideoURL = task.VideoURL
	}
	return view
}

// AdminTaskView never carries answer plaintext.
type AdminTaskView struct {
	model.Task
	Status     model.TaskStatus  `json:"status"`
	AnswerInfo string            `json:"answer_info"`
	VideoURL   string            `json:"video_url"`
	HasRegex   bool              `json:"has_regex"`
	Hints      []model.TaskHint  `json:"hints"`
	Media      []model.TaskMedia `json:"media"`
}

type CreateTaskRequest struct {
	Info        string `json:"info" binding:"required"`
	Author      string `json:"author" binding:"max=100"`
	OpenAt      *int   `json:"open_at"`
	CloseAt     *int   `json:"close_at"`
	Answer      string `json:"answer" binding:"required"`
	AnswerRegex string `json:"answer_regex"`
	AnswerInfo  string `json:"answer_info"`
	VideoURL    string `json:"video_url" binding:"omitempty,url"`
}

type UpdateTaskRequest struct {
	Info        *string `json:"info"`
	Author      *string `json:"author"`
	OpenAt      *int    `json:"open_at"`
	CloseAt     *int    `json:"close_at"`
	Answer      *string `json:"answer"`
	AnswerRegex *string `json:"answer_regex"`
	AnswerInfo  *string `json:"answer_info"`
	VideoURL    *string `json:"video_url"`
}

func (s *TaskService) sealAnswer(answer string) (string, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", ErrBlankAnswer
	}
	return s.Vault.Encrypt(answer)
}

func (s *TaskService) sealPattern(pattern string) (string, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return "", nil
	}
	if !vault.IsPattern(pattern) {
		return "", ErrInvalidPattern
	}
	if _, err := regexp.Compile(pattern); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return s.Vault.Encrypt(pattern)
}

func (s *TaskService) CreateTask(adminID uint, date string, req CreateTaskRequest) (*model.Task, error) {
	if _, ok := util.ParseDate(date); !ok {
		return nil, fmt.Errorf("invalid date %q", date)
	}

	task := &model.Task{
		Date:            date,
		Info:            req.Info,
		Author:          req.Author,
		CreatedByUserID: adminID,
		OpenAt:          defaultOpenAt,
		CloseAt:         defaultCloseAt,
		AnswerInfo:      req.AnswerInfo,
		VideoURL:        req.VideoURL,
	}
	if req.OpenAt != nil {
		task.OpenAt = *req.OpenAt
	}
	if req.CloseAt != nil {
		task.CloseAt = *req.CloseAt
	}
	if !model.ValidHours(task.OpenAt, task.CloseAt) {
		return nil, util.ErrInvalidWindow
	}

	var err error
	if task.AnswerPlaintext, err = s.sealAnswer(req.Answer); err != nil {
		return nil, err
	}
	if task.AnswerRegex, err = s.sealPattern(req.AnswerRegex); err != nil {
		return nil, err
	}

	if err := s.TaskRepo.Create(task); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrTaskExists
		}
		return nil, err
	}

	logger.Log.Info("Task created", zap.String("date", date), zap.Uint("admin_id", adminID))
	return task, nil
}

// editable loads the task for date and refuses once it has opened.
func (s *TaskService) editable(date string) (*model.Task, error) {
	task, err := s.findByDate(date)
	if err != nil {
		return nil, err
	}
	if s.Calendar.Status(task) != model.TaskClosed {
		return nil, util.ErrTaskLocked
	}
	return task, nil
}

func (s *TaskService) UpdateTask(date string, req UpdateTaskRequest) (*model.Task, error) {
	task, err := s.editable(date)
	if err != nil {
		return nil, err
	}

	if req.Info != nil {
		task.Info = *req.Info
	}
	if req.Author != nil {
		task.Author = *req.Author
	}
	if req.OpenAt != nil {
		task.OpenAt = *req.OpenAt
	}
	if req.CloseAt != nil {
		task.CloseAt = *req.CloseAt
	}
	if req.AnswerInfo != nil {
		task.AnswerInfo = *req.AnswerInfo
	}
	if req.VideoURL != nil {
		task.VideoURL = *req.VideoURL
	}
	if !model.ValidHours(task.OpenAt, task.CloseAt) {
		return nil, util.ErrInvalidWindow
	}
	if req.Answer != nil {
		if task.AnswerPlaintext, err = s.sealAnswer(*req.Answer); err != nil {
			return nil, err
		}
	}
	if req.AnswerRegex != nil {
		if task.AnswerRegex, err = s.sealPattern(*req.AnswerRegex); err != nil {
			return nil, err
		}
	}

	if err := s.TaskRepo.Update(task); err != nil {
		return nil, err
	}
	logger.Log.Info("Task updated", zap.String("date", date))
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, date string) error {
	task, err := s.editable(date)
	if err != nil {
		return err
	}
	media, err := s.TaskRepo.FindMedia(task.ID)
	if err != nil {
		return err
	}
	if err := s.TaskRepo.Delete(task); err != nil {
		return err
	}

	for _, m := range media {
		if m.ObjectKey == "" {
			continue
		}
		if err := s.Storage.Delete(ctx, m.ObjectKey); err != nil {
			logger.Log.Warn("Failed to delete task media object", zap.String("key", m.ObjectKey), zap.Error(err))
		}
	}
	logger.Log.Info("Task deleted", zap.String("date", date))
	return nil
}

func (s *TaskService) AdminView(date string) (*AdminTaskView, error) {
	task, err := s.findByDate(date)
	if err != nil {
		return nil, err
	}
	hints, err := s.TaskRepo.FindHints(task.ID)
	if err != nil {
		return nil, err
	}
	media, err := s.TaskRepo.FindMedia(task.ID)
	if err != nil {
		return nil, err
	}
	return &AdminTaskView{
		Task:       *task,
		Status:     s.Calendar.Status(task),
		AnswerInfo: task.AnswerInfo,
		VideoURL:   task.VideoURL,
		HasRegex:   task.AnswerRegex != "",
		Hints:      hints,
		Media:      media,
	}, nil
}

func (s *TaskService) ListTasks(limit int) ([]model.Task, error) {
	return s.TaskRepo.List(limit)
}

// AddHint appends the next hint to the task for date.
func (s *TaskService) AddHint(date, info string) (*model.TaskHint, error) {
	task, err := s.findByDate(date)
	if err != nil {
		return nil, err
	}

	var hint *model.TaskHint
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		tasks := s.TaskRepo.WithTx(tx)
		count, err := tasks.CountHints(task.ID)
		if err != nil {
			return err
		}
		if count >= model.MaxHints {
			return util.ErrTooManyHints
		}
		hint = &model.TaskHint{
			TaskID:     task.ID,
			Date:       task.Date,
			HintNumber: count + 1,
			Info:       info,
		}
		return tasks.CreateHint(hint)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, util.ErrTransientFailure
	}
	if err != nil {
		return nil, err
	}
	return hint, nil
}

func (s *TaskService) ListHints(date string) ([]model.TaskHint, error) {
	task, err := s.findByDate(date)
	if err != nil {
		return nil, err
	}
	return s.TaskRepo.FindHints(task.ID)
}

// AddMedia stores an upload and attaches it to hint hintNumber, or to the
// task itself for 0.
func (s *TaskService) AddMedia(ctx context.Context, date string, hintNumber int, info, fileName string, reader io.Reader, size int64) (*model.TaskMedia, error) {
	if hintNumber < 0 || hintNumber > model.MaxHints {
		return nil, fmt.Errorf("hint_number must be within 0-%d", model.MaxHints)
	}
	task, err := s.findByDate(date)
	if err != nil {
		return nil, err
	}
	if hintNumber > 0 {
		count, err := s.TaskRepo.CountHints(task.ID)
		if err != nil {
			return nil, err
		}
		if hintNumber > count {
			return nil, util.ErrHintNotFound
		}
	}

	stored, err := s.Storage.SaveTaskMedia(ctx, task.Date, fileName, reader, size)
	if err != nil {
		return nil, err
	}

	media := &model.TaskMedia{
		TaskID:     task.ID,
		Date:       task.Date,
		HintNumber: hintNumber,
		FileName:   fileName,
		MediaType:  stored.MediaType,
		Info:       info,
		URL:        stored.URL,
		ObjectKey:  stored.Key,
	}
	if err := s.TaskRepo.CreateMedia(media); err != nil {
		if delErr := s.Storage.Delete(ctx, stored.Key); delErr != nil {
			logger.Log.Warn("Failed to clean up media object", zap.String("key", stored.Key), zap.Error(delErr))
		}
		return nil, err
	}
	return media, nil
}

func (s *TaskService) TaskResults(date string) ([]model.TaskResult, error) {
	task, err := s.findByDate(date)
	if err != nil {
		return nil, err
	}
	return s.ResultRepo.FindByTask(task.ID)
}
