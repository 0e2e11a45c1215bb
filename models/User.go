package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type EducationEntry struct {
	Institute string `json:"institute"`
	Degree    string `json:"degree"`
	CGPA      string `json:"cgpa"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type ExperienceEntry struct {
	Institute string `json:"institute"`
	Role      string `json:"role"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type User struct {
	gorm.Model
	Name             string         `json:"name"`
	Email            string         `json:"email" gorm:"uniqueIndex"`
	Phone            string         `json:"phone"`
	CNIC             string         `json:"cnic" gorm:"column:cnic;uniqueIndex"`
	Address          string         `json:"address" gorm:"type:varchar(500)"`
	Password         string         `json:"-"`
	Role             string         `json:"role" gorm:"type:varchar(20);default:user;index"` // user, admin
	CnicFront        string         `json:"cnicFront"`
	CnicBack         string         `json:"cnicBack"`
	Education        datatypes.JSON `json:"education"`
	Experience       datatypes.JSON `json:"experience"`
	ProfileCompleted bool           `json:"profileCompleted"`
	PaymentVerified  bool           `json:"paymentVerified"`
	CreditHours      int            `json:"creditHours"`
}

// Custom JSON marshaling so the JSON columns come out as arrays, never as
// raw byte blobs or null
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	aux := &struct {
		Education  []EducationEntry  `json:"education"`
		Experience []ExperienceEntry `json:"experience"`
		*Alias
	}{
		Education:  []EducationEntry{},
		Experience: []ExperienceEntry{},
		Alias:      (*Alias)(u),
	}

	if u.Education != nil {
		var education []EducationEntry
		if err := json.Unmarshal(u.Education, &education); err == nil {
			aux.Education = education
		}
	}

	if u.Experience != nil {
		var experience []ExperienceEntry
		if err := json.Unmarshal(u.Experience, &experience); err == nil {
			aux.Experience = experience
		}
	}

	return json.Marshal(aux)
}
