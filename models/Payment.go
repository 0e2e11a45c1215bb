package models

import "gorm.io/gorm"

const (
	PaymentStatusPending  = "pending"
	PaymentStatusVerified = "verified"
	PaymentStatusRejected = "rejected"
)

// AllowedPaymentAmounts are the only accepted proof-of-transfer amounts (PKR).
var AllowedPaymentAmounts = []int{2500, 5000}

// Payment is the manual proof-of-transfer record. One per user, enforced by
// the unique index on UserID.
type Payment struct {
	gorm.Model
	UserID uint  `json:"userID" gorm:"uniqueIndex;not null"`
	User   *User `json:"user,omitempty"`

	// Destination account details shown to the user on the payment page
	AccountName   string `json:"accountName" gorm:"default:'SALEEMAH KHANUM WELFARE FOUNDATION (SKWF)'"`
	AccountNumber string `json:"accountNumber" gorm:"default:'PK48ABPA0010027253970016'"`
	BankName      string `json:"bankName" gorm:"default:'Allied Bank'"`
	Branch        string `json:"branch" gorm:"default:'ABL-FAISAL TOWN 11-B, FAISAL TOWN, LAHORE'"`

	Amount     int      `json:"amount" gorm:"not null"`
	Screenshot Document `json:"screenshot" gorm:"embedded;embeddedPrefix:screenshot_"`

	Status       string `json:"status" gorm:"type:varchar(20);default:pending;index"` // pending, verified, rejected
	AdminNotes   string `json:"adminNotes"`
	VerifiedByID *uint  `json:"verifiedByID"`
	VerifiedBy   *User  `json:"verifiedBy,omitempty"`
}
