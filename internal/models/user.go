package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Name       string `gorm:"size:255;not null"`
	EmployeeID string `gorm:"uniqueIndex;size:50;not null"` // единственный "пароль"
	IsAdmin    bool   `gorm:"not null;default:false"`
}
