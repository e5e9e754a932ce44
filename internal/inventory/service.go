// Package inventory регистрирует колонки и редактирует их метаданные.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"column-tracker/internal/common"
	"column-tracker/internal/metrics"
	"column-tracker/internal/models"
	"column-tracker/internal/session"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ColumnInput struct {
	SerialNumber string
	Reference    string
	Supplier     string
	Dimension    string
	Chemistry    string
}

func (in *ColumnInput) normalize() error {
	in.SerialNumber = strings.TrimSpace(in.SerialNumber)
	in.Reference = strings.TrimSpace(in.Reference)
	in.Supplier = strings.TrimSpace(in.Supplier)
	in.Dimension = strings.TrimSpace(in.Dimension)
	in.Chemistry = strings.TrimSpace(in.Chemistry)

	if in.SerialNumber == "" || in.Reference == "" || in.Supplier == "" ||
		in.Dimension == "" || in.Chemistry == "" {
		return common.ErrValidationEmpty
	}
	return nil
}

// ColumnPatch: nil означает "не менять".
type ColumnPatch struct {
	Reference  *string
	Supplier   *string
	Dimension  *string
	Chemistry  *string
	IsObsolete *bool
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// RegisterColumn выдаёт следующий номер и сохраняет колонку в одной транзакции:
// инкремент счётчика блокирует его строку, так что параллельные регистрации
// не получат одинаковый номер, а откат вставки откатывает и счётчик.
func (s *Service) RegisterColumn(ctx context.Context, in ColumnInput) (models.Column, error) {
	if _, err := session.RequireUser(ctx); err != nil {
		return models.Column{}, err
	}
	if err := in.normalize(); err != nil {
		return models.Column{}, err
	}

	var col models.Column
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Unscoped().Model(&models.Column{}).
			Where("serial_number = ?", in.SerialNumber).
			Count(&count).Error; err != nil {
			return fmt.Errorf("check serial number: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("serial number %q: %w", in.SerialNumber, common.ErrConflict)
		}

		number, err := nextValue(tx, models.ColumnNumberSequence)
		if err != nil {
			return err
		}

		col = models.Column{
			SerialNumber: in.SerialNumber,
			Reference:    in.Reference,
			Supplier:     in.Supplier,
			Dimension:    in.Dimension,
			Chemistry:    in.Chemistry,
			ColumnNumber: int(number),
		}
		return insertColumn(tx, &col)
	})
	if err != nil {
		return models.Column{}, err
	}

	metrics.ColumnsRegistered.Inc()
	s.log.Info("column registered",
		zap.Int("column_number", col.ColumnNumber),
		zap.String("serial_number", col.SerialNumber),
	)
	return col, nil
}

// insertColumn: проверка серийника выше не видит параллельную незакоммиченную
// вставку, поэтому дубль ловится ещё и по уникальному индексу.
func insertColumn(tx *gorm.DB, col *models.Column) error {
	err := tx.Create(col).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("serial number %q: %w", col.SerialNumber, common.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create column: %w", err)
	}
	return nil
}

func nextValue(tx *gorm.DB, name string) (int64, error) {
	res := tx.Model(&models.SequenceCounter{}).
		Where("name = ?", name).
		Update("last_value", gorm.Expr("last_value + 1"))
	if res.Error != nil {
		return 0, fmt.Errorf("increment %s: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		// счётчик создаётся миграцией; сюда попадаем только на неинициализированной базе
		seq := models.SequenceCounter{Name: name, LastValue: 1}
		if err := tx.Create(&seq).Error; err != nil {
			return 0, fmt.Errorf("init %s: %w", name, err)
		}
		return 1, nil
	}

	var seq models.SequenceCounter
	if err := tx.First(&seq, "name = ?", name).Error; err != nil {
		return 0, fmt.Errorf("read %s: %w", name, err)
	}
	return seq.LastValue, nil
}

// NextColumnNumber: номер, который получит следующая колонка (для формы).
func (s *Service) NextColumnNumber(ctx context.Context) (int, error) {
	var seq models.SequenceCounter
	err := s.db.WithContext(ctx).First(&seq, "name = ?", models.ColumnNumberSequence).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read column number sequence: %w", err)
	}
	return int(seq.LastValue) + 1, nil
}

func (s *Service) GetColumn(ctx context.Context, number int) (models.Column, error) {
	var col models.Column
	err := s.db.WithContext(ctx).Where("column_number = ?", number).First(&col).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Column{}, fmt.Errorf("column %d: %w", number, common.ErrNotFound)
	}
	if err != nil {
		return models.Column{}, fmt.Errorf("find column %d: %w", number, err)
	}
	return col, nil
}

// ListColumns: весь инвентарь, включая списанные колонки.
func (s *Service) ListColumns(ctx context.Context) ([]models.Column, error) {
	var cols []models.Column
	if err := s.db.WithContext(ctx).Order("column_number asc").Find(&cols).Error; err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	return cols, nil
}

// ModifyColumn ищет колонку по номеру (не по серийнику) и перезаписывает
// только заданные в patch поля.
func (s *Service) ModifyColumn(ctx context.Context, number int, patch ColumnPatch) (models.Column, error) {
	actor, err := session.RequireUser(ctx)
	if err != nil {
		return models.Column{}, err
	}

	updates := map[string]any{}
	for field, val := range map[string]*string{
		"reference": patch.Reference,
		"supplier":  patch.Supplier,
		"dimension": patch.Dimension,
		"chemistry": patch.Chemistry,
	} {
		if val == nil {
			continue
		}
		v := strings.TrimSpace(*val)
		if v == "" {
			return models.Column{}, fmt.Errorf("%s: %w", field, common.ErrValidationEmpty)
		}
		updates[field] = v
	}
	if patch.IsObsolete != nil {
		updates["is_obsolete"] = *patch.IsObsolete
	}

	col, err := s.GetColumn(ctx, number)
	if err != nil {
		return models.Column{}, err
	}
	if len(updates) == 0 {
		return col, nil
	}

	if err := s.db.WithContext(ctx).Model(&col).Updates(updates).Error; err != nil {
		return models.Column{}, fmt.Errorf("update column %d: %w", number, err)
	}

	s.log.Info("column modified",
		zap.Int("column_number", number),
		zap.Any("fields", updates),
		zap.String("by", actor.EmployeeID),
	)
	return s.GetColumn(ctx, number)
}
