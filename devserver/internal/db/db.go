package db

import (
	"fmt"
	"time"

	"github.com/landingsite-ai/aifeatures-go/devserver/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the database named by driver ("sqlite" or "postgres") and
// migrates the schema.
func Open(driver, dsn string, log logrus.FieldLogger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("db: unknown driver %q", driver)
	}

	gormLog := logger.New(log, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
	conn, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("db: open %s: %w", driver, err)
	}
	if driver == "sqlite" || driver == "" {
		// a shared in-memory database lives as long as one connection does
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, fmt.Errorf("db: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := conn.AutoMigrate(&models.Site{}, &models.Form{}, &models.Submission{}); err != nil {
		return nil, fmt.Errorf("db: migrate: %w", err)
	}
	return conn, nil
}
