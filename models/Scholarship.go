package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusApproved = "approved"
	ApplicationStatusRejected = "rejected"
)

// DegreeLevels is the fixed dropdown of degree levels for scholarship
// applications and opportunities.
var DegreeLevels = []string{
	"Matric",
	"Intermediate",
	"Bachelor (BS)",
	"Master (MS)",
	"MPhil",
	"PhD",
}

type Scholarship struct {
	gorm.Model
	UserID        uint           `json:"userID" gorm:"index;not null"`
	User          *User          `json:"user,omitempty"`
	DegreeLevel   string         `json:"degreeLevel" gorm:"type:varchar(30);not null"`
	Course        string         `json:"course" gorm:"not null"`
	OpportunityID *uint          `json:"opportunityID"`
	Documents     datatypes.JSON `json:"documents"`
	Status        string         `json:"status" gorm:"type:varchar(20);default:pending;index"` // pending, approved, rejected
}

// DocumentList decodes the uploaded documents column.
func (s *Scholarship) DocumentList() []Document {
	docs := []Document{}
	if s.Documents != nil {
		json.Unmarshal(s.Documents, &docs)
	}
	return docs
}

func (s *Scholarship) MarshalJSON() ([]byte, error) {
	type Alias Scholarship
	return json.Marshal(&struct {
		Documents []Document `json:"documents"`
		*Alias
	}{
		Documents: s.DocumentList(),
		Alias:     (*Alias)(s),
	})
}
