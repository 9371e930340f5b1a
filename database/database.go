package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"parkdesk/config"
	"parkdesk/models"
)

// Dialector picks the gorm driver for cfg.DBDriver.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	dsn := cfg.DSN()
	switch cfg.DBDriver {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

// Open connects with retries, configures the pool and verifies the connection.
func Open(cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	// Less SQL noise in production.
	logLevel := logger.Info
	if cfg.GinMode == "release" {
		logLevel = logger.Warn
	}

	var db *gorm.DB
	for i := 0; i < cfg.DBMaxRetries; i++ {
		db, err = gorm.Open(dialector, &gorm.Config{
			Logger:         logger.Default.LogMode(logLevel),
			TranslateError: true,
		})
		if err == nil {
			break
		}
		log.WithFields(logrus.Fields{
			"attempt": i + 1,
			"max":     cfg.DBMaxRetries,
			"driver":  cfg.DBDriver,
		}).WithError(err).Warn("failed to connect to database")
		if i < cfg.DBMaxRetries-1 {
			time.Sleep(cfg.DBRetryInterval)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database after %d attempts: %w", cfg.DBMaxRetries, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.DBDriver == "sqlite" {
		// One writer; an in-memory database also lives only as long as its connection.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.DBDriver == "mysql" {
		name, err := CurrentDatabase(db)
		if err != nil {
			return nil, err
		}
		log.WithField("database", name).Info("connected to database")
	} else {
		log.WithField("driver", cfg.DBDriver).Info("connected to database")
	}
	return db, nil
}

// CurrentDatabase returns the schema a MySQL connection is bound to.
func CurrentDatabase(db *gorm.DB) (string, error) {
	var name string
	if err := db.Raw("SELECT DATABASE()").Scan(&name).Error; err != nil {
		return "", fmt.Errorf("failed to get current database: %w", err)
	}
	if name == "" {
		return "", fmt.Errorf("connection is not bound to a database")
	}
	return name, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
