package database

import (
	"fmt"
	"julekalender_backend/internal/config"
	"julekalender_backend/internal/model"
	"julekalender_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InitDB opens the configured database. Migration is a separate step, see
// Migrate.
func InitDB(cfg *config.DatabaseConfig, mode string) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if mode == "debug" {
		logLevel = gormlogger.Info
	}
	gormCfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.Path+"?_busy_timeout=5000&_foreign_keys=on"), gormCfg)
	default:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=UTC",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		db, err = gorm.Open(mysql.Open(dsn), gormCfg)
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" {
		// sqlite serializes writers anyway; one connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	logger.Log.Info("Database connection established", zap.String("driver", cfg.Driver))
	return db, nil
}

// Migrate creates or updates every table the calendar needs.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Task{},
		&model.TaskHint{},
		&model.TaskMedia{},
		&model.TaskResult{},
		&model.TaskAttempt{},
	)
	if err != nil {
		return err
	}
	logger.Log.Info("Database migration completed")
	return nil
}
