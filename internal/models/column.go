package models

import "gorm.io/gorm"

// Column: физическая хроматографическая колонка.
// SerialNumber и ColumnNumber после создания не меняются.
type Column struct {
	gorm.Model
	SerialNumber string `gorm:"uniqueIndex;size:100;not null"`
	Reference    string `gorm:"size:255;not null"`
	Supplier     string `gorm:"size:255;not null"`
	Dimension    string `gorm:"size:100;not null"`
	Chemistry    string `gorm:"size:100;not null"`
	ColumnNumber int    `gorm:"uniqueIndex;not null"`
	IsObsolete   bool   `gorm:"not null;default:false"`
}

func (c Column) Status() string {
	if c.IsObsolete {
		return "Obsolete"
	}
	return "Active"
}
