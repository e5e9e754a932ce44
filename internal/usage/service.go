// Package usage записывает использование колонок и запускает формирование отчёта.
package usage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"column-tracker/internal/common"
	"column-tracker/internal/metrics"
	"column-tracker/internal/models"
	"column-tracker/internal/report"
	"column-tracker/internal/search"
	"column-tracker/internal/session"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReportGenerator: то, что нужно от report.Generator.
type ReportGenerator interface {
	Generate(ctx context.Context, entry models.UsageEntry) (report.Report, error)
	Open(ctx context.Context, entry models.UsageEntry) (io.ReadCloser, error)
}

type UsageInput struct {
	// номер колонки или фрагмент номера/референса
	ColumnQuery  string
	Project      string
	Technique    string
	MobilePhaseA string
	MobilePhaseB string
	Date         time.Time
}

type LogResult struct {
	Entry  models.UsageEntry
	Column models.Column
	Report *report.Report
	// запись сохранена, но отчёт не сформирован (оборачивает common.ErrRenderFailure)
	ReportErr error
}

type Service struct {
	db      *gorm.DB
	reports ReportGenerator
	log     *zap.Logger
	now     func() time.Time
}

func NewService(db *gorm.DB, reports ReportGenerator, log *zap.Logger) *Service {
	return &Service{db: db, reports: reports, log: log, now: time.Now}
}

// SelectableColumns: активные колонки, опционально суженные поиском
// по номеру или референсу (подстрока, с учётом регистра).
func (s *Service) SelectableColumns(ctx context.Context, query string) ([]models.Column, error) {
	db := s.db.WithContext(ctx)
	q := db.Where("is_obsolete = ?", false)

	if query = strings.TrimSpace(query); query != "" {
		q = q.Where(
			db.Where(search.Contains(db, search.ColumnNumberText), query).
				Or(search.Contains(db, "reference"), query),
		)
	}

	var cols []models.Column
	if err := q.Order("column_number asc").Find(&cols).Error; err != nil {
		return nil, fmt.Errorf("select columns: %w", err)
	}
	return cols, nil
}

// ResolveColumn: точное совпадение номера выигрывает, иначе берётся первая
// подходящая колонка.
func (s *Service) ResolveColumn(ctx context.Context, query string) (models.Column, error) {
	cols, err := s.SelectableColumns(ctx, query)
	if err != nil {
		return models.Column{}, err
	}
	if len(cols) == 0 {
		return models.Column{}, fmt.Errorf("no active column matches %q: %w", query, common.ErrNotFound)
	}

	if n, err := strconv.Atoi(strings.TrimSpace(query)); err == nil {
		for _, c := range cols {
			if c.ColumnNumber == n {
				return c, nil
			}
		}
	}
	return cols[0], nil
}

// LogUsage сохраняет запись и синхронно формирует отчёт.
// Ошибка отчёта не откатывает запись: она возвращается в LogResult.ReportErr.
func (s *Service) LogUsage(ctx context.Context, in UsageInput) (LogResult, error) {
	actor, err := session.RequireUser(ctx)
	if err != nil {
		return LogResult{}, err
	}

	in.Project = strings.TrimSpace(in.Project)
	in.Technique = strings.TrimSpace(in.Technique)
	in.MobilePhaseA = strings.TrimSpace(in.MobilePhaseA)
	in.MobilePhaseB = strings.TrimSpace(in.MobilePhaseB)
	if in.Project == "" || in.Technique == "" {
		return LogResult{}, common.ErrValidationEmpty
	}
	if in.Date.IsZero() {
		in.Date = s.now()
	}

	col, err := s.ResolveColumn(ctx, in.ColumnQuery)
	if err != nil {
		return LogResult{}, err
	}

	entry := models.UsageEntry{
		UserID:       actor.UserID,
		ColumnID:     col.ID,
		Project:      in.Project,
		Technique:    in.Technique,
		MobilePhaseA: in.MobilePhaseA,
		MobilePhaseB: in.MobilePhaseB,
		Date:         datatypes.Date(in.Date),
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return LogResult{}, fmt.Errorf("create usage entry: %w", err)
	}

	metrics.UsageLogged.Inc()
	s.log.Info("usage logged",
		zap.Uint("entry_id", entry.ID),
		zap.Int("column_number", col.ColumnNumber),
		zap.String("employee_id", actor.EmployeeID),
	)

	entry, err = s.History(ctx, entry.ID)
	if err != nil {
		return LogResult{}, err
	}

	res := LogResult{Entry: entry, Column: entry.Column}
	rep, err := s.reports.Generate(ctx, entry)
	if err != nil {
		res.ReportErr = err
		return res, nil
	}
	res.Report = &rep
	return res, nil
}

// History: запись с подгруженными пользователем и колонкой.
func (s *Service) History(ctx context.Context, id uint) (models.UsageEntry, error) {
	var entry models.UsageEntry
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Column").
		First(&entry, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.UsageEntry{}, fmt.Errorf("usage entry %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return models.UsageEntry{}, fmt.Errorf("find usage entry %d: %w", id, err)
	}
	return entry, nil
}

// OpenReport: PDF для скачивания по id записи.
func (s *Service) OpenReport(ctx context.Context, id uint) (io.ReadCloser, string, error) {
	entry, err := s.History(ctx, id)
	if err != nil {
		return nil, "", err
	}
	rc, err := s.reports.Open(ctx, entry)
	if err != nil {
		return nil, "", err
	}
	return rc, entry.ReportName(), nil
}
