package routes

import (
	"encoding/json"
	"errors"
	"strconv"
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

// CreateScholarship submits a scholarship application. Multipart form:
// degreeLevel, course, optional opportunityId plus up to 10 files under the
// "documents" field. Costs one credit hour for role=user.
func CreateScholarship(ctx iris.Context) {
	user := utils.CurrentUser(ctx)

	degreeLevel := strings.TrimSpace(ctx.FormValue("degreeLevel"))
	course := strings.TrimSpace(ctx.FormValue("course"))
	if !slices.Contains(models.DegreeLevels, degreeLevel) {
		utils.CreateError(iris.StatusBadRequest, "validation_error", "Degree level is required", ctx)
		return
	}
	if course == "" {
		utils.CreateError(iris.StatusBadRequest, "validation_error", "Course is required", ctx)
		return
	}

	var opportunityID *uint
	if raw := ctx.FormValue("opportunityId"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.CreateError(iris.StatusBadRequest, "validation_error", "Invalid opportunityId", ctx)
			return
		}
		id := uint(parsed)
		opportunityID = &id
	}

	// Cheap pre-check so a zero-credit attempt never writes files to disk;
	// the conditional decrement below stays the authoritative guard.
	if user.Role != models.RoleAdmin && user.CreditHours <= 0 {
		utils.CreateError(iris.StatusBadRequest, "no_credit_hours", "No credit hours remaining. Please make a payment to get 3 credit hours for applications.", ctx)
		return
	}

	documents, err := saveFormFiles(ctx, storage.CategoryScholarships, "documents", 10)
	if err != nil {
		handleUploadError(err, ctx)
		return
	}

	docsJSON, _ := json.Marshal(documents)
	application := models.Scholarship{
		UserID:        user.ID,
		DegreeLevel:   degreeLevel,
		Course:        course,
		OpportunityID: opportunityID,
		Documents:     datatypes.JSON(docsJSON),
	}
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := services.ConsumeCredit(tx, user); err != nil {
			return err
		}
		return tx.Create(&application).Error
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
		"success":     true,
		"message":     "Scholarship application submitted successfully",
		"application": &application,
		"creditHours": user.CreditHours,
	})
}

// GetMyScholarships lists the caller's own applications, newest first.
func GetMyScholarships(ctx iris.Context) {
	user := utils.CurrentUser(ctx)

	var applications []models.Scholarship
	if err := storage.DB.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&applications).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "server_error", err.Error(), ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "applications": applications})
}

// GetAllScholarships lists every application for admins, paginated.
func GetAllScholarships(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	limit := ctx.URLParamIntDefault("limit", 10)

	query := storage.DB.Model(&models.Scholarship{}).Preload("User").Order("created_at DESC")

	var applications []models.Scholarship
	result, err := utils.Paginate(query, page, limit, &applications)
	if err != nil {
		utils.CreateError(iris.StatusInternalServerError, "server_error", err.Error(), ctx)
		return
	}

	utils.JSONPaginated(ctx, applications, result)
}

// UpdateScholarshipStatus approves or rejects an application.
func UpdateScholarshipStatus(ctx iris.Context) {
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

	var application models.Scholarship
	if err := storage.DB.First(&application, id).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Scholarship not found")
		return
	}

	before := application
	application.Status = input.Status
	if err := storage.DB.Save(&application).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "server_error", err.Error(), ctx)
		return
	}

	utils.Audit(ctx, "scholarship.status_update", "scholarship", application.ID, before, application)

	ctx.JSON(iris.Map{
		"success":     true,
		"message":     "Scholarship " + input.Status + " successfully",
		"application": &application,
	})
}

// GetScholarshipByID returns one application with its applicant for admins.
func GetScholarshipByID(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var application models.Scholarship
	if err := storage.DB.Preload("User").First(&application, id).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Scholarship not found")
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": &application})
}

// GetDegreeLevels returns the fixed degree-level dropdown values.
func GetDegreeLevels(ctx iris.Context) {
	ctx.JSON(iris.Map{"success": true, "levels": models.DegreeLevels})
}
