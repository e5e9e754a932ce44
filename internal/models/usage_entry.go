package models

import (
	"time"

	"gorm.io/datatypes"
)

// UsageEntry не редактируется и не удаляется через UI.
type UsageEntry struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	UserID uint `gorm:"not null;index"`
	User   User `gorm:"constraint:OnDelete:RESTRICT"`

	ColumnID uint   `gorm:"not null;index"`
	Column   Column `gorm:"constraint:OnDelete:CASCADE"`

	Project      string         `gorm:"size:255;not null"`
	Technique    string         `gorm:"size:255;not null"`
	MobilePhaseA string         `gorm:"size:255;not null"`
	MobilePhaseB string         `gorm:"size:255;not null"`
	Date         datatypes.Date `gorm:"not null"`
}

func (e UsageEntry) UsedOn() time.Time {
	return time.Time(e.Date)
}

func (e UsageEntry) ReportName() string {
	return ReportName(e.ID)
}
