package models

import "gorm.io/gorm"

type BusinessGrantOpportunity struct {
	gorm.Model
	City        string  `json:"city" gorm:"not null;index"`
	Amount      float64 `json:"amount" gorm:"not null"`
	Description string  `json:"description"`
	CreatedByID uint    `json:"createdByID" gorm:"not null"`
	CreatedBy   *User   `json:"createdBy,omitempty"`
	IsActive    bool    `json:"isActive" gorm:"default:true;index"`
}
