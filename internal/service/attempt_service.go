package service

import (
	"context"
	"julekalender_backend/internal/model"
	"julekalender_backend/internal/repository"
	"julekalender_backend/internal/util"
	"julekalender_backend/pkg/lock"
	"julekalender_backend/pkg/logger"
	"julekalender_backend/pkg/monitoring"
	"julekalender_backend/pkg/tracing"
	"julekalender_backend/pkg/vault"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AttemptService judges answer submissions.
type AttemptService struct {
	DB          *gorm.DB
	ResultRepo  *repository.TaskResultRepository
	AttemptRepo *repository.TaskAttemptRepository
	Vault       *vault.Vault
	Locker      lock.Locker
	Policy      ProgressPolicy
	Calendar    *Calendar
}

func NewAttemptService(
	db *gorm.DB,
	resultRepo *repository.TaskResultRepository,
	attemptRepo *repository.TaskAttemptRepository,
	v *vault.Vault,
	locker lock.Locker,
	policy ProgressPolicy,
	calendar *Calendar,
) *AttemptService {
	return &AttemptService{
		DB:          db,
		ResultRepo:  resultRepo,
		AttemptRepo: attemptRepo,
		Vault:       v,
		Locker:      locker,
		Policy:      policy,
		Calendar:    calendar,
	}
}

// AnswerResult is the verdict plus the progress snapshot after it.
type AnswerResult struct {
	Outcome       model.Outcome       `json:"outcome"`
	State         ProgressState       `json:"state"`
	Solved        bool                `json:"solved"`
	Score         int                 `json:"score"`
	HintsUsed     int                 `json:"hints_used"`
	AttemptsLeft  int                 `json:"attempts_left"`
	AttemptsReset *time.Time          `json:"attempts_reset,omitempty"`
	Attempts      []model.TaskAttempt `json:"attempts"`
}

func newAnswerResult(outcome model.Outcome, res *model.TaskResult, attempts []model.TaskAttempt, now time.Time) *AnswerResult {
	if attempts == nil {
		attempts = []model.TaskAttempt{}
	}
	return &AnswerResult{
		Outcome:       outcome,
		State:         StateOf(res, now),
		Solved:        res.Solved,
		Score:         res.Score,
		HintsUsed:     res.HintsUsed,
		AttemptsLeft:  res.AttemptsLeft,
		AttemptsReset: res.AttemptsReset,
		Attempts:      attempts,
	}
}

// Err names why the answer was turned away without being judged, or nil.
func (r *AnswerResult) Err() error {
	switch r.Outcome {
	case model.OutcomeDuplicate:
		return util.ErrDuplicateAnswer
	case model.OutcomeNoAttemptsLeft:
		return util.ErrNoAttemptsLeft
	case model.OutcomeAlreadySolved:
		return util.ErrAlreadySolved
	}
	return nil
}

// Evaluate judges raw as userID's answer to task, which must be open.
// Duplicate, NoAttemptsLeft and AlreadySolved are outcomes, not errors, and
// leave neither progress nor ledger changed.
func (s *AttemptService) Evaluate(ctx context.Context, userID uint, task *model.Task, raw string) (*AnswerResult, error) {
	ctx, span := tracing.Start(ctx, "attempt.evaluate",
		attribute.Int64("user_id", int64(userID)),
		attribute.String("task_date", task.Date),
	)
	defer span.End()

	if s.Calendar.Status(task) != model.TaskOpen {
		return nil, util.ErrTaskNotOpen
	}

	answer := vault.Normalize(raw)

	unlock, err := lockProgress(ctx, s.Locker, userID, task.ID)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	defer unlock()

	var result *AnswerResult
	err = runProgressTx(ctx, s.DB, "evaluate answer", func(tx *gorm.DB) error {
		r, err := s.evaluate(tx, userID, task, answer)
		result = r
		return err
	})
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("outcome", result.Outcome.String()))
	monitoring.SubmissionCounter.WithLabelValues(result.Outcome.String()).Inc()
	logger.Log.Info("Answer evaluated",
		zap.Uint("user_id", userID),
		zap.Uint("task_id", task.ID),
		zap.String("outcome", result.Outcome.String()),
		zap.Int("attempts_left", result.AttemptsLeft),
		zap.NamedError("rejected", result.Err()),
	)
	return result, nil
}

func (s *AttemptService) evaluate(tx *gorm.DB, userID uint, task *model.Task, answer string) (*AnswerResult, error) {
	results := s.ResultRepo.WithTx(tx)
	attempts := s.AttemptRepo.WithTx(tx)
	now := s.Calendar.Now()

	res, err := results.GetOrCreate(userID, task, s.Policy.Budget)
	if err != nil {
		return nil, err
	}

	outcome := model.OutcomePending
	if res.Solved {
		outcome = model.OutcomeAlreadySolved
	} else {
		seen, err := attempts.Contains(userID, task.ID, answer)
		if err != nil {
			return nil, err
		}
		switch {
		case seen:
			outcome = model.OutcomeDuplicate
		case !s.Policy.Admit(res, now):
			outcome = model.OutcomeNoAttemptsLeft
		}
	}

	var entry *model.TaskAttempt
	if outcome == model.OutcomePending {
		entry = &model.TaskAttempt{
			UserID:       userID,
			TaskID:       task.ID,
			TaskResultID: res.ID,
			Date:         task.Date,
			Answer:       answer,
			Outcome:      model.OutcomePending,
		}
		outcome = s.Policy.Apply(res, s.matches(task, answer), now)
		entry.Outcome = outcome

		if err := results.Save(res); err != nil {
			return nil, err
		}
	}
	if outcome.Recorded() {
		if err := attempts.Append(entry); err != nil {
			return nil, err
		}
	}

	list, err := attempts.List(userID, task.ID)
	if err != nil {
		return nil, err
	}
	return newAnswerResult(outcome, res, list, now), nil
}

// matches checks answer against the regex secret when the task has one,
// else against the plain secret.
func (s *AttemptService) matches(task *model.Task, answer string) bool {
	secret := task.AnswerRegex
	if secret == "" {
		secret = task.AnswerPlaintext
	}
	return s.Vault.Compare(answer, secret)
}

// Attempts lists userID's ledger for task without creating progress.
func (s *AttemptService) Attempts(userID uint, task *model.Task) ([]model.TaskAttempt, error) {
	list, err := s.AttemptRepo.List(userID, task.ID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.TaskAttempt{}
	}
	return list, nil
}
