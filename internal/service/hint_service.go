package service

import (
	"context"
	"errors"
	"julekalender_backend/internal/model"
	"julekalender_backend/internal/repository"
	"julekalender_backend/internal/util"
	"julekalender_backend/pkg/lock"
	"julekalender_backend/pkg/logger"
	"julekalender_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type HintService struct {
	DB         *gorm.DB
	TaskRepo   *repository.TaskRepository
	ResultRepo *repository.TaskResultRepository
	Locker     lock.Locker
	Policy     ProgressPolicy
	Calendar   *Calendar
}

func NewHintService(
	db *gorm.DB,
	taskRepo *repository.TaskRepository,
	resultRepo *repository.TaskResultRepository,
	locker lock.Locker,
	policy ProgressPolicy,
	calendar *Calendar,
) *HintService {
	return &HintService{
		DB:         db,
		TaskRepo:   taskRepo,
		ResultRepo: resultRepo,
		Locker:     locker,
		Policy:     policy,
		Calendar:   calendar,
	}
}

type HintView struct {
	HintsUsed  int               `json:"hints_used"`
	TotalHints int               `json:"total_hints"`
	Hints      []model.TaskHint  `json:"hints"`
	Media      []model.TaskMedia `json:"media"`
}

// Visible lists what userID may see of task's hints and media. Reading does
// not create progress.
func (s *HintService) Visible(userID uint, task *model.Task) (*HintView, error) {
	status := s.Calendar.Status(task)
	if status == model.TaskClosed {
		return nil, util.ErrTaskNotOpen
	}

	hints, err := s.TaskRepo.FindHints(task.ID)
	if err != nil {
		return nil, err
	}
	media, err := s.TaskRepo.FindMedia(task.ID)
	if err != nil {
		return nil, err
	}

	res, err := s.ResultRepo.Find(userID, task.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	visibleHints, general := FilterHints(hints, media, status, res)
	view := &HintView{
		TotalHints: len(hints),
		Hints:      visibleHints,
		Media:      general,
	}
	if res != nil {
		view.HintsUsed = res.HintsUsed
	}
	return view, nil
}

type UnlockResult struct {
	HintsUsed int             `json:"hints_used"`
	Hint      *model.TaskHint `json:"hint"`
}

// Unlock raises hints_used by one and returns the newly visible hint.
func (s *HintService) Unlock(ctx context.Context, userID uint, task *model.Task) (*UnlockResult, error) {
	if s.Calendar.Status(task) != model.TaskOpen {
		monitoring.HintUnlockCounter.WithLabelValues("task_not_open").Inc()
		return nil, util.ErrTaskNotOpen
	}

	unlock, err := lockProgress(ctx, s.Locker, userID, task.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var result *UnlockResult
	err = runProgressTx(ctx, s.DB, "unlock hint", func(tx *gorm.DB) error {
		tasks := s.TaskRepo.WithTx(tx)
		results := s.ResultRepo.WithTx(tx)

		hints, err := tasks.FindHints(task.ID)
		if err != nil {
			return err
		}
		res, err := results.GetOrCreate(userID, task, s.Policy.Budget)
		if err != nil {
			return err
		}
		if err := CanUnlock(s.Calendar.Status(task), res, len(hints)); err != nil {
			return err
		}

		res.HintsUsed++
		if err := results.Save(res); err != nil {
			return err
		}

		media, err := tasks.FindMedia(task.ID)
		if err != nil {
			return err
		}
		visible, _ := FilterHints(hints, media, model.TaskOpen, res)

		result = &UnlockResult{HintsUsed: res.HintsUsed}
		for i := range visible {
			if visible[i].HintNumber == res.HintsUsed {
				result.Hint = &visible[i]
				break
			}
		}
		return nil
	})
	if err != nil {
		monitoring.HintUnlockCounter.WithLabelValues(unlockLabel(err)).Inc()
		return nil, err
	}

	monitoring.HintUnlockCounter.WithLabelValues("unlocked").Inc()
	logger.Log.Info("Hint unlocked",
		zap.Uint("user_id", userID),
		zap.Uint("task_id", task.ID),
		zap.Int("hints_used", result.HintsUsed),
	)
	return result, nil
}

func unlockLabel(err error) string {
	switch {
	case errors.Is(err, util.ErrNoHintsLeft):
		return "no_hints_left"
	case errors.Is(err, util.ErrAlreadySolved):
		return "already_solved"
	case errors.Is(err, util.ErrTaskNotOpen):
		return "task_not_open"
	default:
		return "error"
	}
}
