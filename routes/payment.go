package routes

import (
	"errors"
	"strconv"
	"tadbeer-server/models"
	"tadbeer-server/services"
	"tadbeer-server/storage"
	"tadbeer-server/utils"

	"github.com/kataras/iris/v12"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// CreatePayment submits a proof-of-transfer. Multipart form: amount plus the
// screenshot image. One payment per user, whatever its status.
func CreatePayment(ctx iris.Context) {
	user := utils.CurrentUser(ctx)

	amount, err := strconv.Atoi(ctx.FormValue("amount"))
	if err != nil || !slices.Contains(models.AllowedPaymentAmounts, amount) {
		utils.CreateError(iris.StatusBadRequest, "validation_error", "Amount must be either 2500 or 5000", ctx)
		return
	}

	var existing models.Payment
	if err := storage.DB.Where("user_id = ?", user.ID).First(&existing).Error; err == nil {
		utils.CreateError(iris.StatusConflict, "conflict", "Payment already submitted. Please wait for admin verification.", ctx)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.CreateInternalServerError(ctx)
		return
	}

	if _, _, err := ctx.FormFile("screenshot"); err != nil {
		utils.CreateError(iris.StatusBadRequest, "validation_error", "Payment screenshot is required", ctx)
		return
	}

	screenshot, err := saveFormFile(ctx, storage.CategoryPayments, "screenshot")
	if err != nil {
		handleUploadError(err, ctx)
		return
	}

	payment := models.Payment{
		UserID:     user.ID,
		Amount:     amount,
		Screenshot: *screenshot,
		Status:     models.PaymentStatusPending,
	}
	if err := storage.DB.Create(&payment).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "server_error", err.Error(), ctx)
		return
	}

	services.Mail.QueuePaymentSubmitted(*user, payment)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{
		"success": true,
		"message": "Payment submitted successfully. Please wait for admin verification.",
		"payment": &payment,
	})
}

// GetMyPayment returns the caller's payment, or null if none was submitted.
func GetMyPayment(ctx iris.Context) {
	user := utils.CurrentUser(ctx)

	var payment models.Payment
	err := storage.DB.Preload("VerifiedBy").Where("user_id = ?", user.ID).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(iris.Map{"success": true, "payment": nil, "message": "No payment submitted yet"})
		return
	}
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "payment": &payment})
}

// GetAllPayments lists payments for admins, optionally filtered by status.
func GetAllPayments(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	limit := ctx.URLParamIntDefault("limit", 10)
	status := ctx.URLParamDefault("status", "")

	query := storage.DB.Model(&models.Payment{}).
		Preload("User").Preload("VerifiedBy").
		Order("created_at DESC")
	if slices.Contains([]string{models.PaymentStatusPending, models.PaymentStatusVerified, models.PaymentStatusRejected}, status) {
		query = query.Where("status = ?", status)
	}

	var payments []models.Payment
	result, err := utils.Paginate(query, page, limit, &payments)
	if err != nil {
		utils.CreateError(iris.StatusInternalServerError, "server_error", err.Error(), ctx)
		return
	}

	utils.JSONPaginated(ctx, payments, result)
}

// GetPaymentByID returns one payment with its owning user for admin review.
func GetPaymentByID(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var payment models.Payment
	if err := storage.DB.Preload("User").Preload("VerifiedBy").First(&payment, id).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Payment not found")
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": &payment})
}

type VerifyPaymentInput struct {
	Status     string `json:"status" validate:"required"`
	AdminNotes string `json:"adminNotes"`
}

// VerifyPayment applies the admin decision. Only pending payments can be
// reviewed; a verified payment grants the user +3 credit hours exactly once.
func VerifyPayment(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var input VerifyPaymentInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if input.Status != models.PaymentStatusVerified && input.Status != models.PaymentStatusRejected {
		utils.CreateError(iris.StatusBadRequest, "validation_error", "Invalid status. Use 'verified' or 'rejected'", ctx)
		return
	}

	admin := utils.CurrentUser(ctx)

	payment, reviewErr := services.ReviewPayment(id, admin.ID, input.Status, input.AdminNotes)
	if errors.Is(reviewErr, gorm.ErrRecordNotFound) {
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Payment not found")
		return
	}
	if errors.Is(reviewErr, services.ErrPaymentReviewed) {
		utils.CreateError(iris.StatusConflict, "conflict", "Payment has already been reviewed", ctx)
		return
	}
	if reviewErr != nil {
		utils.CreateError(iris.StatusInternalServerError, "server_error", reviewErr.Error(), ctx)
		return
	}

	if payment.User != nil {
		if input.Status == models.PaymentStatusVerified {
			services.Mail.QueuePaymentAccepted(*payment.User, *payment)
		} else {
			services.Mail.QueuePaymentRejected(*payment.User, *payment)
		}
	}

	utils.Audit(ctx, "payment."+input.Status, "payment", payment.ID, nil, payment)

	ctx.JSON(iris.Map{
		"success": true,
		"message": "Payment " + input.Status + " successfully",
		"payment": payment,
	})
}
