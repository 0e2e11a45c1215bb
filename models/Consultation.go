package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ConsultationCategories is the fixed category enum for consultation requests.
var ConsultationCategories = []string{"studies", "business", "other"}

type Consultation struct {
	gorm.Model
	UserID      uint           `json:"userID" gorm:"index;not null"`
	User        *User          `json:"user,omitempty"`
	Category    string         `json:"category" gorm:"type:varchar(20);not null"` // studies, business, other
	Description string         `json:"description" gorm:"not null"`
	Documents   datatypes.JSON `json:"documents"`
	Status      string         `json:"status" gorm:"type:varchar(20);default:pending;index"` // pending, approved, rejected
}

func (c *Consultation) DocumentList() []Document {
	docs := []Document{}
	if c.Documents != nil {
		json.Unmarshal(c.Documents, &docs)
	}
	return docs
}

func (c *Consultation) MarshalJSON() ([]byte, error) {
	type Alias Consultation
	return json.Marshal(&struct {
		Documents []Document `json:"documents"`
		*Alias
	}{
		Documents: c.DocumentList(),
		Alias:     (*Alias)(c),
	})
}
