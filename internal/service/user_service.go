package service

import (
	"errors"
	"julekalender_backend/internal/config"
	"julekalender_backend/internal/model"
	"julekalender_backend/internal/repository"
	"julekalender_backend/internal/util"
	"julekalender_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserService struct {
	DB         *gorm.DB
	UserRepo   *repository.UserRepository
	ResultRepo *repository.TaskResultRepository
	Cfg        *config.Config
}

func NewUserService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	resultRepo *repository.TaskResultRepository,
	cfg *config.Config,
) *UserService {
	return &UserService{
		DB:         db,
		UserRepo:   userRepo,
		ResultRepo: resultRepo,
		Cfg:        cfg,
	}
}

func (s *UserService) GetUser(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	return user, err
}

// DeleteAccount soft deletes the user and their progress together.
func (s *UserService) DeleteAccount(userID uint) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.UserRepo.WithTx(tx).FindByID(userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrUserNotFound
			}
			return err
		}
		if err := s.ResultRepo.WithTx(tx).SoftDeleteByUser(userID); err != nil {
			return err
		}
		return s.UserRepo.WithTx(tx).Delete(userID)
	})
	if err != nil {
		return err
	}
	logger.Log.Info("User deleted", zap.Uint("user_id", userID))
	return nil
}

const recentResultsLimit = 30

func (s *UserService) Results(userID uint) ([]model.TaskResult, error) {
	return s.ResultRepo.FindByUser(userID, recentResultsLimit)
}

// TodayResult returns the caller's progress on today's task, creating it on
// first access.
func (s *UserService) TodayResult(userID uint, task *model.Task) (*model.TaskResult, error) {
	return s.ResultRepo.GetOrCreate(userID, task, s.Cfg.Quiz.AttemptBudget)
}

type LeaderboardEntry struct {
	Rank int `json:"rank"`
	repository.LeaderboardRow
}

// Leaderboard hides the real name of users who did not opt in.
func (s *UserService) Leaderboard(limit int) ([]LeaderboardEntry, error) {
	rows, err := s.ResultRepo.Leaderboard(limit)
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		if !row.ShowName {
			row.Name = ""
		}
		entries = append(entries, LeaderboardEntry{Rank: i + 1, LeaderboardRow: row})
	}
	return entries, nil
}
