package service

import (
	"context"
	"errors"
	"fmt"
	"julekalender_backend/internal/model"
	"julekalender_backend/internal/repository"
	"julekalender_backend/internal/util"
	"julekalender_backend/pkg/lock"
	"julekalender_backend/pkg/logger"
	"julekalender_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProgressState is the lifecycle position of a TaskResult.
type ProgressState string

const (
	StateFresh  ProgressState = "fresh"
	StateActive ProgressState = "active"
	StateLocked ProgressState = "locked"
	StateSolved ProgressState = "solved"
)

// StateOf derives the state of res at now. A nil res is Fresh. A spent
// budget whose cooldown has passed reads as Active since the next
// submission replenishes it.
func StateOf(res *model.TaskResult, now time.Time) ProgressState {
	switch {
	case res == nil:
		return StateFresh
	case res.Solved:
		return StateSolved
	case res.Locked(now):
		return StateLocked
	default:
		return StateActive
	}
}

// ProgressPolicy is the attempt budget and the lockout that follows when it
// runs out.
type ProgressPolicy struct {
	Budget   int
	Cooldown time.Duration
}

// Admit reports whether res may spend an attempt at now. An exhausted
// budget whose cooldown has elapsed is refilled once, here, and admitted.
func (p ProgressPolicy) Admit(res *model.TaskResult, now time.Time) bool {
	if res.AttemptsLeft > 0 {
		return true
	}
	if res.AttemptsReset != nil && !now.Before(*res.AttemptsReset) {
		res.AttemptsLeft = p.Budget
		res.AttemptsReset = nil
		return true
	}
	return false
}

// Apply spends one attempt on res and records the verdict. A correct answer
// solves the task and fixes the score; an incorrect one that empties the
// budget arms the cooldown.
func (p ProgressPolicy) Apply(res *model.TaskResult, correct bool, now time.Time) model.Outcome {
	if res.AttemptsLeft > 0 {
		res.AttemptsLeft--
	}

	if correct {
		solvedAt := now
		res.Solved = true
		res.TimeSolved = &solvedAt
		res.Score = ScoreFor(res.HintsUsed)
		return model.OutcomeCorrect
	}

	if res.AttemptsLeft == 0 {
		reset := now.Add(p.Cooldown)
		res.AttemptsReset = &reset
	}
	return model.OutcomeIncorrect
}

func progressLockKey(userID, taskID uint) string {
	return fmt.Sprintf("progress:%d:%d", userID, taskID)
}

// lockProgress takes the per-(user, task) lock that answer submission and
// hint unlocking share.
func lockProgress(ctx context.Context, locker lock.Locker, userID, taskID uint) (func(), error) {
	unlock, err := locker.Lock(ctx, progressLockKey(userID, taskID))
	if err != nil {
		if errors.Is(err, lock.ErrLockTimeout) {
			return nil, fmt.Errorf("%w: %v", util.ErrTransientFailure, err)
		}
		return nil, err
	}
	return unlock, nil
}

const progressTxTries = 2

// runProgressTx runs fn in a transaction, once more if the first run lost a
// version check or was picked as a deadlock victim.
func runProgressTx(ctx context.Context, db *gorm.DB, op string, fn func(tx *gorm.DB) error) error {
	var err error
	for try := 1; try <= progressTxTries; try++ {
		err = db.WithContext(ctx).Transaction(fn)
		if err == nil || !repository.IsRetryable(err) {
			return err
		}
		if try < progressTxTries {
			monitoring.TxRetryCounter.Inc()
			logger.Log.Warn("Retrying progress transaction", zap.String("op", op), zap.Error(err))
		}
	}
	return fmt.Errorf("%s: %w: %v", op, util.ErrTransientFailure, err)
}
