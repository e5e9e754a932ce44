package database

import (
	"context"
	"fmt"
	"time"

	"column-tracker/internal/config"
	"column-tracker/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const (
	maxAttempts  = 10
	retryBackoff = 2 * time.Second
)

type Client struct {
	DB *gorm.DB
}

func dialector(driver, dsn string) gorm.Dialector {
	if driver == "sqlite" {
		return sqlite.Open(dsn)
	}
	return postgres.Open(dsn)
}

// Open подключается к БД (с повторами, postgres в docker поднимается не сразу)
// и прогоняет миграции.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Client, error) {
	var (
		db  *gorm.DB
		err error
	)

	for i := 1; i <= maxAttempts; i++ {
		log.Info("connecting to DB", zap.String("driver", cfg.DBDriver), zap.Int("attempt", i))

		db, err = gorm.Open(dialector(cfg.DBDriver, cfg.DBDSN), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Warn),
			TranslateError: true,
		})
		if err == nil {
			break
		}

		log.Warn("failed to connect to DB", zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryBackoff):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect to db after %d attempts: %w", maxAttempts, err)
	}

	c, err := New(db)
	if err != nil {
		return nil, err
	}
	log.Info("connected to DB")

	if err := c.Migrate(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// New оборачивает уже открытое соединение (в тестах — sqlite in-memory).
func New(db *gorm.DB) (*Client, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	if db.Dialector.Name() == "sqlite" {
		// один коннект: sqlite всё равно сериализует запись, а PRAGMA действует на соединение
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	} else {
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return &Client{DB: db}, nil
}

// Migrate создаёт таблицы, если их нет, и инициализирует счётчик номеров колонок.
func (c *Client) Migrate(ctx context.Context) error {
	db := c.DB.WithContext(ctx)

	err := db.AutoMigrate(
		&models.User{},
		&models.Column{},
		&models.UsageEntry{},
		&models.SequenceCounter{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// для уже существующей базы счётчик стартует с текущего максимума
	var maxNumber int64
	if err := db.Unscoped().Model(&models.Column{}).
		Select("COALESCE(MAX(column_number), 0)").
		Scan(&maxNumber).Error; err != nil {
		return fmt.Errorf("read max column number: %w", err)
	}

	seq := models.SequenceCounter{Name: models.ColumnNumberSequence, LastValue: maxNumber}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
		return fmt.Errorf("init column number sequence: %w", err)
	}
	return nil
}

// ResetColumns безусловно удаляет все колонки (и, каскадом, их историю)
// и сбрасывает счётчик номеров. Только для разработки.
func (c *Client) ResetColumns(ctx context.Context) (int64, error) {
	var deleted int64
	err := c.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// sqlite каскад выполнит сам, но явное удаление работает и без PRAGMA
		if err := tx.Where("1 = 1").Delete(&models.UsageEntry{}).Error; err != nil {
			return err
		}
		res := tx.Unscoped().Where("1 = 1").Delete(&models.Column{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected

		return tx.Model(&models.SequenceCounter{}).
			Where("name = ?", models.ColumnNumberSequence).
			Update("last_value", 0).Error
	})
	if err != nil {
		return 0, fmt.Errorf("reset columns: %w", err)
	}
	return deleted, nil
}

func (c *Client) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
