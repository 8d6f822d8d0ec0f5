// Package sqlite implements the persistence interfaces on SQLite via gorm.
// Structured fields (action lists, configs, metadata) are stored as
// JSON-serialized columns.
package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/credentis/credentis/pkg/persistence"
)

type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

var _ persistence.Persistence = (*Store)(nil)

// NewStore opens (or creates) the database and migrates the schema. The DSN
// is a file path or ":memory:"; WAL and a busy timeout are applied so
// concurrent logical runs do not trip over SQLite's writer lock.
func NewStore(dsn string, log *slog.Logger) (*Store, error) {
	if !strings.Contains(dsn, "?") && !strings.HasPrefix(dsn, "file:") {
		dsn = fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", dsn)
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.AutoMigrate(
		&workflowRow{},
		&workflowRunRow{},
		&workflowRunStepRow{},
		&triggerRow{},
		&trustEventRow{},
		&trustScoreRow{},
		&consentRow{},
		&providerRow{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{
		db:     db,
		logger: log.With("module", "sqlite_store"),
	}, nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

func (s *Store) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
