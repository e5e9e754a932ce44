package models

import "fmt"

const ColumnNumberSequence = "column_number"

// SequenceCounter хранит последнее выданное значение именованного счётчика.
type SequenceCounter struct {
	Name      string `gorm:"primaryKey;size:64"`
	LastValue int64  `gorm:"not null;default:0"`
}

func (SequenceCounter) TableName() string { return "sequence_counters" }

// ReportName: имя PDF отчёта для записи об использовании.
func ReportName(entryID uint) string {
	return fmt.Sprintf("usage_report_%d.pdf", entryID)
}
