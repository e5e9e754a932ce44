// Package dbtest поднимает чистую sqlite-базу в памяти для тестов.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"column-tracker/internal/database"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func New(t testing.TB) *database.Client {
	t.Helper()

	// у каждого теста своя именованная in-memory база
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	c, err := database.New(db)
	if err != nil {
		t.Fatalf("wrap db: %v", err)
	}
	if err := c.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	return c
}
