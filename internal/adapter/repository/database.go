package repository

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"rentalhub/internal/domain/entity"
)

// OpenDatabase connects to the configured SQL backend and migrates the chat
// schema. SQLite is limited to one open connection, which serialises writers
// the same way the database file would.
func OpenDatabase(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entity.ChatRoom{},
		&entity.ChatParticipant{},
		&entity.Message{},
		&entity.Notification{},
		&entity.Interaction{},
	); err != nil {
		return fmt.Errorf("migrate chat schema: %w", err)
	}
	return nil
}

// newID returns a time-ordered UUID so that id order matches insertion order.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
