package models

import "gorm.io/gorm"

// ScholarshipOpportunity is an admin-curated catalog entry users can browse
// and apply against. Inactive entries stay out of user-facing search but
// remain visible to admins.
type ScholarshipOpportunity struct {
	gorm.Model
	DegreeLevel       string `json:"degreeLevel" gorm:"type:varchar(30);not null;index:idx_sch_opp_level_course"`
	Course            string `json:"course" gorm:"not null;index:idx_sch_opp_level_course"`
	Country           string `json:"country" gorm:"not null;index"`
	QualificationType string `json:"qualificationType"`
	Description       string `json:"description"`
	CreatedByID       uint   `json:"createdByID" gorm:"not null"`
	CreatedBy         *User  `json:"createdBy,omitempty"`
	IsActive          bool   `json:"isActive" gorm:"default:true;index"`
}
