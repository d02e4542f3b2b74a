package service

import (
	"bytes"
	"julekalender_backend/internal/config"
	"julekalender_backend/internal/model"
	"julekalender_backend/internal/repository"
	"julekalender_backend/pkg/database"
	"julekalender_backend/pkg/lock"
	"julekalender_backend/pkg/vault"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// fixture wires every service over one in-memory database. The clock starts
// at 2025-12-01 10:00 UTC, inside the default 9-23 window.
type fixture struct {
	db       *gorm.DB
	clock    *fakeClock
	vault    *vault.Vault
	calendar *Calendar
	cfg      *config.Config

	tasks    *repository.TaskRepository
	results  *repository.TaskResultRepository
	attempts *repository.TaskAttemptRepository
	users    *repository.UserRepository

	attemptSvc *AttemptService
	hintSvc    *HintService
	taskSvc    *TaskService
	userSvc    *UserService
	authSvc    *AuthService
}

const testDate = "2025-12-01"

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func newFixture(t *testing.T, budget int) *fixture {
	t.Helper()
	db := setupDB(t)

	v, err := vault.New(bytes.Repeat([]byte{9}, 32))
	require.NoError(t, err)

	clock := &fakeClock{now: time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)}
	calendar := &Calendar{Location: time.UTC, Now: clock.Now}

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-test-secret-test-secret"
	cfg.JWT.ExpireTime = time.Hour
	cfg.Quiz.AttemptBudget = budget
	cfg.Quiz.CooldownSeconds = 30
	cfg.Storage.Type = "local"
	cfg.Storage.LocalPath = t.TempDir()

	storage, err := NewStorageService(cfg)
	require.NoError(t, err)

	f := &fixture{
		db:       db,
		clock:    clock,
		vault:    v,
		calendar: calendar,
		cfg:      cfg,
		tasks:    repository.NewTaskRepository(db),
		results:  repository.NewTaskResultRepository(db),
		attempts: repository.NewTaskAttemptRepository(db),
		users:    repository.NewUserRepository(db),
	}
	policy := ProgressPolicy{Budget: budget, Cooldown: cfg.Quiz.Cooldown()}
	locker := lock.NewKeyedMutex(0)

	f.attemptSvc = NewAttemptService(db, f.results, f.attempts, v, locker, policy, calendar)
	f.hintSvc = NewHintService(db, f.tasks, f.results, locker, policy, calendar)
	f.taskSvc = NewTaskService(db, f.tasks, f.results, v, storage, calendar)
	f.userSvc = NewUserService(db, f.users, f.results, cfg)
	f.authSvc = NewAuthService(f.users, cfg, calendar)
	return f
}

// task stores a task for date with the given plain and regex secrets.
func (f *fixture) task(t *testing.T, date, plain, pattern string) *model.Task {
	t.Helper()
	sealed, err := f.vault.Encrypt(plain)
	require.NoError(t, err)
	task := &model.Task{Date: date, Info: "riddle", OpenAt: 9, CloseAt: 23, AnswerPlaintext: sealed}
	if pattern != "" {
		task.AnswerRegex, err = f.vault.Encrypt(pattern)
		require.NoError(t, err)
	}
	require.NoError(t, f.tasks.Create(task))
	return task
}

func (f *fixture) hints(t *testing.T, task *model.Task, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		require.NoError(t, f.tasks.CreateHint(&model.TaskHint{
			TaskID:     task.ID,
			Date:       task.Date,
			HintNumber: i,
			Info:       "hint",
		}))
	}
}

func (f *fixture) user(t *testing.T, name string) *model.User {
	t.Helper()
	u := &model.User{Name: name, Username: name, Email: name + "@example.com", Password: "x"}
	require.NoError(t, f.users.Create(u))
	return u
}
