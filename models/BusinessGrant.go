package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

type BusinessGrant struct {
	gorm.Model
	UserID        uint     `json:"userID" gorm:"index;not null"`
	User          *User    `json:"user,omitempty"`
	Title         string   `json:"title" gorm:"type:varchar(100);not null"`
	Description   string   `json:"description" gorm:"type:varchar(1000);not null"`
	Proposal      Document `json:"proposal" gorm:"embedded;embeddedPrefix:proposal_"`
	ProposalText  string   `json:"proposalText"`
	OpportunityID *uint    `json:"opportunityID"`
	AdminNotes    string   `json:"adminNotes"`
	Status        string   `json:"status" gorm:"type:varchar(20);default:pending;index"` // pending, approved, rejected
}

// MarshalJSON emits proposal as null when no file was uploaded.
func (g *BusinessGrant) MarshalJSON() ([]byte, error) {
	type Alias BusinessGrant
	aux := &struct {
		Proposal *Document `json:"proposal"`
		*Alias
	}{
		Alias: (*Alias)(g),
	}
	if g.Proposal.FilePath != "" {
		aux.Proposal = &g.Proposal
	}
	return json.Marshal(aux)
}
