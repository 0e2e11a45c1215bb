package services

import (
	"errors"
	"tadbeer-server/models"
	"tadbeer-server/storage"

	"gorm.io/gorm"
)

// CreditGrantPerPayment is added to a user's balance when their payment is
// verified.
const CreditGrantPerPayment = 3

var (
	ErrNoCreditHours   = errors.New("no credit hours remaining")
	ErrPaymentReviewed = errors.New("payment has already been reviewed")
)

// ConsumeCredit spends one credit hour for an application submission. The
// decrement is a single conditional UPDATE guarded by credit_hours > 0, so two
// concurrent submissions can never both spend the last credit. Callers run it
// inside the same transaction as the application insert so a failed insert
// rolls the decrement back. Admins bypass the budget entirely.
func ConsumeCredit(db *gorm.DB, user *models.User) error {
	if user.Role == models.RoleAdmin {
		return nil
	}

	res := db.Model(&models.User{}).
		Where("id = ? AND credit_hours > 0", user.ID).
		UpdateColumn("credit_hours", gorm.Expr("credit_hours - 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoCreditHours
	}

	user.CreditHours--
	return nil
}

// ReviewPayment applies an admin decision to a payment. Only the
// pending->verified and pending->rejected transitions are allowed; reviewing
// an already-reviewed payment returns ErrPaymentReviewed and never grants
// credits twice. On verified the owning user gets paymentVerified=true and
// +CreditGrantPerPayment credit hours in the same transaction.
func ReviewPayment(paymentID, adminID uint, status, notes string) (*models.Payment, error) {
	var payment models.Payment

	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, paymentID).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{"status": status}
		if notes != "" {
			updates["admin_notes"] = notes
		}
		if status == models.PaymentStatusVerified {
			updates["verified_by_id"] = adminID
		}

		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", paymentID, models.PaymentStatusPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPaymentReviewed
		}

		if status == models.PaymentStatusVerified {
			return tx.Model(&models.User{}).
				Where("id = ?", payment.UserID).
				Updates(map[string]interface{}{
					"payment_verified": true,
					"credit_hours":     gorm.Expr("credit_hours + ?", CreditGrantPerPayment),
				}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	storage.DB.Preload("User").Preload("VerifiedBy").First(&payment, paymentID)
	return &payment, nil
}
