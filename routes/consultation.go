package routes

import (
	"encoding/json"
	"errors"
	"strings"
	"tadbeer-server/models"
	"tadbeer-server/services"
	"tadbeer-server/storage"
	"tadbeer-server/utils"

	"github.com/kataras/iris/v12"
	"golang.org/x/exp/slices"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CreateConsultation submits a consultation request. Multipart form:
// category, description plus files under "documents". Costs one credit hour
// for role=user.
func CreateConsultation(ctx iris.Context) {
	user := utils.CurrentUser(ctx)

	category := strings.TrimSpace(ctx.FormValue("category"))
	description := strings.TrimSpace(ctx.FormValue("description"))

	if !slices.Contains(models.ConsultationCategories, category) || description == "" {
		utils.CreateError(iris.StatusBadRequest, "validation_error", "Category and description are required", ctx)
		return
	}

	// Pre-check before any documents hit the disk; the conditional decrement
	// below stays the authoritative guard.
	if user.Role != models.RoleAdmin && user.CreditHours <= 0 {
		utils.CreateError(iris.StatusBadRequest, "no_credit_hours", "No credit hours remaining. Please make a payment to get 3 credit hours for applications.", ctx)
		return
	}

	documents, err := saveFormFiles(ctx, storage.CategoryConsultations, "documents", 10)
	if err != nil {
		handleUploadError(err, ctx)
		return
	}

	docsJSON, _ := json.Marshal(documents)
	consultation := models.Consultation{
		UserID:      user.ID,
		Category:    category,
		Description: description,
		Documents:   datatypes.JSON(docsJSON),
	}
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := services.ConsumeCredit(tx, user); err != nil {
			return err
		}
		return tx.Create(&consultation).Error
	})
	if errors.Is(txErr, services.ErrNoCreditHours) {
		utils.CreateError(iris.StatusBadRequest, "no_credit_hours", "No credit hours remaining. Please make a payment to get 3 credit hours for applications.", ctx)
		return
	}
	if txErr != nil {
		utils.CreateError(iris.StatusInternalServerError, "server_error", txErr.Error(), ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{
		"success":      true,
		"message":      "Consultation request submitted successfully",
		"consultation": &consultation,
		"creditHours":  user.CreditHours,
	})
}

// GetMyConsultations lists the caller's consultation requests, newest first.
func GetMyConsultations(ctx iris.Context) {
	user := utils.CurrentUser(ctx)

	var consultations []models.Consultation
	if err := storage.DB.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&consultations).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "server_error", err.Error(), ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "consultations": consultations})
}

// GetAllConsultations lists every consultation for admins, paginated.
func GetAllConsultations(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	limit := ctx.URLParamIntDefault("limit", 10)

	query := storage.DB.Model(&models.Consultation{}).Preload("User").Order("created_at DESC")

	var consultations []models.Consultation
	result, err := utils.Paginate(query, page, limit, &consultations)
	if err != nil {
		utils.CreateError(iris.StatusInternalServerError, "server_error", err.Error(), ctx)
		return
	}

	utils.JSONPaginated(ctx, consultations, result)
}

// UpdateConsultationStatus approves or rejects a request (admin).
func UpdateConsultationStatus(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := ctx.ReadJSON(&input); err != nil ||
		(input.Status != models.ApplicationStatusApproved && input.Status != models.ApplicationStatusRejected) {
		utils.CreateError(iris.StatusBadRequest, "validation_error", "Invalid status value", ctx)
		return
	}

	var consultation models.Consultation
	if err := storage.DB.First(&consultation, id).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Consultation not found")
		return
	}

	before := consultation
	consultation.Status = input.Status
	if err := storage.DB.Save(&consultation).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "server_error", err.Error(), ctx)
		return
	}

	utils.Audit(ctx, "consultation.status_update", "consultation", consultation.ID, before, consultation)

	ctx.JSON(iris.Map{
		"success":      true,
		"message":      "Consultation " + input.Status + " successfully",
		"consultation": &consultation,
	})
}

// GetConsultationByID returns one request with its applicant for admins.
func GetConsultationByID(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var consultation models.Consultation
	if err := storage.DB.Preload("User").First(&consultation, id).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Consultation not found")
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": &consultation})
}
