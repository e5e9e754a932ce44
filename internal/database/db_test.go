package database_test

import (
	"context"
	"testing"
	"time"

	"column-tracker/internal/database/dbtest"
	"column-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestMigrate_SeedsCounterFromExistingColumns(t *testing.T) {
	ctx := context.Background()
	c := dbtest.New(t)

	require.NoError(t, c.DB.Create(&models.Column{
		SerialNumber: "S1", Reference: "R", Supplier: "Acme", Dimension: "4.6x150mm",
		Chemistry: "C18", ColumnNumber: 7,
	}).Error)

	// повторная миграция не трогает уже существующий счётчик
	require.NoError(t, c.Migrate(ctx))

	var seq models.SequenceCounter
	require.NoError(t, c.DB.First(&seq, "name = ?", models.ColumnNumberSequence).Error)
	assert.Equal(t, int64(0), seq.LastValue)

	require.NoError(t, c.DB.Delete(&seq).Error)
	require.NoError(t, c.Migrate(ctx))
	require.NoError(t, c.DB.First(&seq, "name = ?", models.ColumnNumberSequence).Error)
	assert.Equal(t, int64(7), seq.LastValue)
}

func TestResetColumns(t *testing.T) {
	ctx := context.Background()
	c := dbtest.New(t)

	user := models.User{Name: "Ann", EmployeeID: "E1"}
	require.NoError(t, c.DB.Create(&user).Error)
	col := models.Column{
		SerialNumber: "S100", Reference: "REF-1", Supplier: "Acme", Dimension: "4.6x150mm",
		Chemistry: "C18", ColumnNumber: 1,
	}
	require.NoError(t, c.DB.Create(&col).Error)
	require.NoError(t, c.DB.Create(&models.UsageEntry{
		UserID: user.ID, ColumnID: col.ID, Project: "P1", Technique: "HPLC",
		Date: datatypes.Date(time.Now()),
	}).Error)
	require.NoError(t, c.DB.Model(&models.SequenceCounter{}).
		Where("name = ?", models.ColumnNumberSequence).Update("last_value", 1).Error)

	deleted, err := c.ResetColumns(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var columns, entries, users int64
	c.DB.Unscoped().Model(&models.Column{}).Count(&columns)
	c.DB.Model(&models.UsageEntry{}).Count(&entries)
	c.DB.Model(&models.User{}).Count(&users)
	assert.Zero(t, columns)
	assert.Zero(t, entries)
	assert.Equal(t, int64(1), users)

	var seq models.SequenceCounter
	require.NoError(t, c.DB.First(&seq, "name = ?", models.ColumnNumberSequence).Error)
	assert.Zero(t, seq.LastValue)
}
