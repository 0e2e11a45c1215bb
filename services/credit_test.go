package services

import (
	"errors"
	"testing"

	"tadbeer-server/models"
	"tadbeer-server/storage"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupCreditDB gives each test its own in-memory database. The pool is
// pinned to one connection so every query sees the same :memory: instance.
func setupCreditDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Payment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	storage.DB = db
	return db
}

func creditTestUser(t *testing.T, db *gorm.DB, email, role string, credits int) models.User {
	t.Helper()
	user := models.User{
		Name:        "Test User",
		Email:       email,
		CNIC:        email, // unique filler, format irrelevant here
		Role:        role,
		CreditHours: credits,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func reloadCredits(t *testing.T, db *gorm.DB, id uint) models.User {
	t.Helper()
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return user
}

func TestConsumeCreditNeverGoesNegative(t *testing.T) {
	db := setupCreditDB(t)
	user := creditTestUser(t, db, "one@example.com", models.RoleUser, 1)

	if err := ConsumeCredit(db, &user); err != nil {
		t.Fatalf("first consume failed: %v", err)
	}
	if user.CreditHours != 0 {
		t.Errorf("expected local balance 0, got %d", user.CreditHours)
	}
	if got := reloadCredits(t, db, user.ID).CreditHours; got != 0 {
		t.Errorf("expected stored balance 0, got %d", got)
	}

	if err := ConsumeCredit(db, &user); !errors.Is(err, ErrNoCreditHours) {
		t.Fatalf("expected ErrNoCreditHours at zero, got %v", err)
	}
	if got := reloadCredits(t, db, user.ID).CreditHours; got != 0 {
		t.Errorf("balance went negative: %d", got)
	}
}

func TestConsumeCreditAdminBypass(t *testing.T) {
	db := setupCreditDB(t)
	admin := creditTestUser(t, db, "admin@example.com", models.RoleAdmin, 0)

	if err := ConsumeCredit(db, &admin); err != nil {
		t.Fatalf("admin should bypass the budget, got %v", err)
	}
	if got := reloadCredits(t, db, admin.ID).CreditHours; got != 0 {
		t.Errorf("admin balance should stay untouched, got %d", got)
	}
}

func TestReviewPaymentGrantsExactlyOnce(t *testing.T) {
	db := setupCreditDB(t)
	user := creditTestUser(t, db, "payer@example.com", models.RoleUser, 0)
	admin := creditTestUser(t, db, "reviewer@example.com", models.RoleAdmin, 0)

	payment := models.Payment{UserID: user.ID, Amount: 2500, Status: models.PaymentStatusPending}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("create payment: %v", err)
	}

	reviewed, err := ReviewPayment(payment.ID, admin.ID, models.PaymentStatusVerified, "")
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if reviewed.Status != models.PaymentStatusVerified {
		t.Errorf("expected verified status, got %q", reviewed.Status)
	}
	if reviewed.VerifiedByID == nil || *reviewed.VerifiedByID != admin.ID {
		t.Errorf("expected verifiedByID %d, got %v", admin.ID, reviewed.VerifiedByID)
	}

	after := reloadCredits(t, db, user.ID)
	if after.CreditHours != CreditGrantPerPayment {
		t.Errorf("expected %d credit hours after verify, got %d", CreditGrantPerPayment, after.CreditHours)
	}
	if !after.PaymentVerified {
		t.Error("expected paymentVerified=true after verify")
	}

	// Second review of the same payment must conflict and never re-grant
	if _, err := ReviewPayment(payment.ID, admin.ID, models.PaymentStatusVerified, ""); !errors.Is(err, ErrPaymentReviewed) {
		t.Fatalf("expected ErrPaymentReviewed on re-review, got %v", err)
	}
	if got := reloadCredits(t, db, user.ID).CreditHours; got != CreditGrantPerPayment {
		t.Errorf("re-review changed the balance: %d", got)
	}
}

func TestReviewPaymentRejectedGrantsNothing(t *testing.T) {
	db := setupCreditDB(t)
	user := creditTestUser(t, db, "rejected@example.com", models.RoleUser, 0)
	admin := creditTestUser(t, db, "reviewer2@example.com", models.RoleAdmin, 0)

	payment := models.Payment{UserID: user.ID, Amount: 5000, Status: models.PaymentStatusPending}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatal(err)
	}

	reviewed, err := ReviewPayment(payment.ID, admin.ID, models.PaymentStatusRejected, "screenshot unreadable")
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if reviewed.Status != models.PaymentStatusRejected {
		t.Errorf("expected rejected status, got %q", reviewed.Status)
	}
	if reviewed.AdminNotes != "screenshot unreadable" {
		t.Errorf("expected admin notes kept, got %q", reviewed.AdminNotes)
	}

	after := reloadCredits(t, db, user.ID)
	if after.CreditHours != 0 || after.PaymentVerified {
		t.Errorf("rejection must not grant: credits=%d verified=%v", after.CreditHours, after.PaymentVerified)
	}

	// The decision is final either way
	if _, err := ReviewPayment(payment.ID, admin.ID, models.PaymentStatusVerified, ""); !errors.Is(err, ErrPaymentReviewed) {
		t.Fatalf("expected ErrPaymentReviewed after rejection, got %v", err)
	}
}

func TestReviewPaymentNotFound(t *testing.T) {
	setupCreditDB(t)

	if _, err := ReviewPayment(9999, 1, models.PaymentStatusVerified, ""); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}
