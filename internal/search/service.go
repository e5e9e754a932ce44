// Package search: поиск по инвентарю, счётчики использования и история.
package search

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"column-tracker/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ColumnNumberText: номер колонки как текст, для поиска подстрокой.
const ColumnNumberText = "CAST(column_number AS TEXT)"

// Contains возвращает условие "expr содержит ?" с учётом регистра.
// LIKE в sqlite регистронезависим, поэтому используются strpos/instr.
func Contains(db *gorm.DB, expr string) string {
	if db.Dialector.Name() == "postgres" {
		return "strpos(" + expr + ", ?) > 0"
	}
	return "instr(" + expr + ", ?) > 0"
}

// ColumnFilter: пустые поля не ограничивают выборку.
type ColumnFilter struct {
	ColumnNumber string
	Chemistry    string
	Reference    string
	Supplier     string
	EmployeeID   string
}

type InventoryRow struct {
	Column    models.Column
	TimesUsed int64
}

type HistoryRow struct {
	ColumnNumber int
	EmployeeID   string
	Project      string
	MobilePhaseA string
	MobilePhaseB string
	Technique    string
	Date         time.Time
}

type ColumnUsage struct {
	ColumnNumber int
	Count        int64
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

func (s *Service) SearchColumns(ctx context.Context, f ColumnFilter) ([]models.Column, error) {
	db := s.db.WithContext(ctx)
	q := db.Model(&models.Column{})

	for _, c := range []struct{ expr, val string }{
		{ColumnNumberText, f.ColumnNumber},
		{"chemistry", f.Chemistry},
		{"reference", f.Reference},
		{"supplier", f.Supplier},
	} {
		if v := strings.TrimSpace(c.val); v != "" {
			q = q.Where(Contains(db, c.expr), v)
		}
	}

	if emp := strings.TrimSpace(f.EmployeeID); emp != "" {
		ids, err := s.SearchByEmployee(ctx, emp)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []models.Column{}, nil
		}
		q = q.Where("id IN ?", ids)
	}

	cols := []models.Column{}
	if err := q.Order("column_number asc").Find(&cols).Error; err != nil {
		return nil, fmt.Errorf("search columns: %w", err)
	}
	s.log.Debug("column search",
		zap.Any("filter", f),
		zap.Int("found", len(cols)),
	)
	return cols, nil
}

// SearchByEmployee: id колонок, которые использовал сотрудник.
// Сравнение точное; неизвестный сотрудник даёт пустой список.
func (s *Service) SearchByEmployee(ctx context.Context, employeeID string) ([]uint, error) {
	ids := []uint{}
	err := s.db.WithContext(ctx).
		Model(&models.UsageEntry{}).
		Joins("JOIN users ON users.id = usage_entries.user_id").
		Where("users.employee_id = ?", employeeID).
		Distinct().
		Order("usage_entries.column_id").
		Pluck("usage_entries.column_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("columns used by %q: %w", employeeID, err)
	}
	return ids, nil
}

// UsageCountByColumn: число записей на каждую колонку одним GROUP BY.
// Колонок без записей в карте нет.
func (s *Service) UsageCountByColumn(ctx context.Context) (map[uint]int64, error) {
	var rows []struct {
		ColumnID uint
		Count    int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.UsageEntry{}).
		Select("column_id, COUNT(*) AS count").
		Group("column_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count usage: %w", err)
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.ColumnID] = r.Count
	}
	return counts, nil
}

func (s *Service) Inventory(ctx context.Context, f ColumnFilter) ([]InventoryRow, error) {
	cols, err := s.SearchColumns(ctx, f)
	if err != nil {
		return nil, err
	}
	counts, err := s.UsageCountByColumn(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]InventoryRow, 0, len(cols))
	for _, c := range cols {
		rows = append(rows, InventoryRow{Column: c, TimesUsed: counts[c.ID]})
	}
	return rows, nil
}

// UsageHistory: записи по заданным колонкам, по номеру колонки,
// внутри колонки от новых к старым.
func (s *Service) UsageHistory(ctx context.Context, columnIDs []uint) ([]HistoryRow, error) {
	if len(columnIDs) == 0 {
		return []HistoryRow{}, nil
	}

	var entries []models.UsageEntry
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Column").
		Where("column_id IN ?", columnIDs).
		Order("date desc, id desc").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("usage history: %w", err)
	}

	rows := make([]HistoryRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, HistoryRow{
			ColumnNumber: e.Column.ColumnNumber,
			EmployeeID:   e.User.EmployeeID,
			Project:      e.Project,
			MobilePhaseA: e.MobilePhaseA,
			MobilePhaseB: e.MobilePhaseB,
			Technique:    e.Technique,
			Date:         e.UsedOn(),
		})
	}
	slices.SortStableFunc(rows, func(a, b HistoryRow) int {
		return a.ColumnNumber - b.ColumnNumber
	})
	return rows, nil
}

// UsageByColumnNumber: данные для графика на дашборде.
func (s *Service) UsageByColumnNumber(ctx context.Context) ([]ColumnUsage, error) {
	out := []ColumnUsage{}
	err := s.db.WithContext(ctx).
		Model(&models.UsageEntry{}).
		Select("columns.column_number AS column_number, COUNT(*) AS count").
		Joins("JOIN columns ON columns.id = usage_entries.column_id").
		Group("columns.column_number").
		Order("columns.column_number").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("usage by column number: %w", err)
	}
	return out, nil
}
