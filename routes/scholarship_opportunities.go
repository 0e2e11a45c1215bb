package routes

import (
	"strings"
	"tadbeer-server/models"
	"tadbeer-server/storage"
	"tadbeer-server/utils"

	"github.com/kataras/iris/v12"
	"golang.org/x/exp/slices"
)

type ScholarshipOpportunityInput struct {
	DegreeLevel       string `json:"degreeLevel" validate:"required"`
	Course            string `json:"course" validate:"required"`
	Country           string `json:"country" validate:"required"`
	QualificationType string `json:"qualificationType"`
	Description       string `json:"description"`
}

// CreateScholarshipOpportunity adds a catalog entry (admin).
func CreateScholarshipOpportunity(ctx iris.Context) {
	admin := utils.CurrentUser(ctx)

	var input ScholarshipOpportunityInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if !slices.Contains(models.DegreeLevels, input.DegreeLevel) {
		utils.CreateError(iris.StatusBadRequest, "validation_error", "Invalid degree level", ctx)
		return
	}

	opportunity := models.ScholarshipOpportunity{
		DegreeLevel:       input.DegreeLevel,
		Course:            strings.TrimSpace(input.Course),
		Country:           strings.TrimSpace(input.Country),
		QualificationType: strings.TrimSpace(input.QualificationType),
		Description:       strings.TrimSpace(input.Description),
		CreatedByID:       admin.ID,
		IsActive:          true,
	}
	if err := storage.DB.Create(&opportunity).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "server_error", err.Error(), ctx)
		return
	}

	utils.Audit(ctx, "scholarship_opportunity.create", "scholarship_opportunity", opportunity.ID, nil, opportunity)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{
		"success":     true,
		"message":     "Scholarship opportunity created successfully",
		"opportunity": opportunity,
	})
}

// GetAllScholarshipOpportunities is the admin listing; inactive entries are
// included here, unlike the user-facing search.
func GetAllScholarshipOpportunities(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	limit := ctx.URLParamIntDefault("limit", 10)
	search := strings.TrimSpace(ctx.URLParamDefault("search", ""))

	query := storage.DB.Model(&models.ScholarshipOpportunity{}).Preload("CreatedBy").Order("created_at DESC")
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("lower(course) LIKE ? OR lower(country) LIKE ? OR lower(description) LIKE ?", like, like, like)
	}

	var opportunities []models.ScholarshipOpportunity
	result, err := utils.Paginate(query, page, limit, &opportunities)
	if err != nil {
		utils.CreateError(iris.StatusInternalServerError, "server_error", err.Error(), ctx)
		return
	}

	utils.JSONPaginated(ctx, opportunities, result)
}

// SearchScholarshipOpportunities is the user-facing search over active
// entries: exact degreeLevel, case-insensitive substring course/country.
func SearchScholarshipOpportunities(ctx iris.Context) {
	degreeLevel := strings.TrimSpace(ctx.URLParamDefault("degreeLevel", ""))
	course := strings.TrimSpace(ctx.URLParamDefault("course", ""))
	country := strings.TrimSpace(ctx.URLParamDefault("country", ""))

	query := storage.DB.Where("is_active = ?", true).Order("created_at DESC")
	if degreeLevel != "" {
		query = query.Where("degree_level = ?", degreeLevel)
	}
	if course != "" {
		query = query.Where("lower(course) LIKE ?", "%"+strings.ToLower(course)+"%")
	}
	if country != "" {
		query = query.Where("lower(country) LIKE ?", "%"+strings.ToLower(country)+"%")
	}

	var opportunities []models.ScholarshipOpportunity
	if err := query.Find(&opportunities).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "server_error", err.Error(), ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "opportunities": opportunities, "count": len(opportunities)})
}

// UpdateScholarshipOpportunity edits fields and the active flag (admin).
func UpdateScholarshipOpportunity(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var input struct {
		DegreeLevel       *string `json:"degreeLevel"`
		Course            *string `json:"course"`
		Country           *string `json:"country"`
		QualificationType *string `json:"qualificationType"`
		Description       *string `json:"description"`
		IsActive          *bool   `json:"isActive"`
	}
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var opportunity models.ScholarshipOpportunity
	if err := storage.DB.First(&opportunity, id).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Scholarship opportunity not found")
		return
	}

	before := opportunity
	if input.DegreeLevel != nil {
		if !slices.Contains(models.DegreeLevels, *input.DegreeLevel) {
			utils.CreateError(iris.StatusBadRequest, "validation_error", "Invalid degree level", ctx)
			return
		}
		opportunity.DegreeLevel = *input.DegreeLevel
	}
	if input.Course != nil {
		opportunity.Course = strings.TrimSpace(*input.Course)
	}
	if input.Country != nil {
		opportunity.Country = strings.TrimSpace(*input.Country)
	}
	if input.QualificationType != nil {
		opportunity.QualificationType = strings.TrimSpace(*input.QualificationType)
	}
	if input.Description != nil {
		opportunity.Description = strings.TrimSpace(*input.Description)
	}
	if input.IsActive != nil {
		opportunity.IsActive = *input.IsActive
	}

	if err := storage.DB.Save(&opportunity).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "server_error", err.Error(), ctx)
		return
	}

	utils.Audit(ctx, "scholarship_opportunity.update", "scholarship_opportunity", opportunity.ID, before, opportunity)

	ctx.JSON(iris.Map{
		"success":     true,
		"message":     "Scholarship opportunity updated successfully",
		"opportunity": opportunity,
	})
}

// DeleteScholarshipOpportunity removes a catalog entry; applications that
// referenced it keep their snapshot fields but lose the link.
func DeleteScholarshipOpportunity(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var opportunity models.ScholarshipOpportunity
	if err := storage.DB.First(&opportunity, id).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Scholarship opportunity not found")
		return
	}

	if err := storage.DB.Delete(&opportunity).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "server_error", err.Error(), ctx)
		return
	}
	// Unlink applications that pointed at the deleted entry
	storage.DB.Model(&models.Scholarship{}).Where("opportunity_id = ?", id).Update("opportunity_id", nil)

	utils.Audit(ctx, "scholarship_opportunity.delete", "scholarship_opportunity", id, opportunity, nil)

	ctx.JSON(iris.Map{"success": true, "message": "Scholarship opportunity deleted successfully"})
}
