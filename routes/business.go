package routes

import (
	"errors"
	"strconv"
	"strings"
	"tadbeer-server/models"
	"tadbeer-server/services"
	"tadbeer-server/storage"
	"tadbeer-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

// CreateBusinessGrant submits an entrepreneur incubation application.
// Multipart form: title, description, optional proposal text and
// opportunityId plus an optional single "proposal" file. Costs one credit
// hour for role=user.
func CreateBusinessGrant(ctx iris.Context) {
	user := utils.CurrentUser(ctx)

	title := strings.TrimSpace(ctx.FormValue("title"))
	description := strings.TrimSpace(ctx.FormValue("description"))
	proposalText := strings.TrimSpace(ctx.FormValue("proposal"))

	if title == "" || description == "" {
		utils.CreateError(iris.StatusBadRequest, "validation_error", "Title and description are required.", ctx)
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

	// Pre-check before the proposal file hits the disk; the conditional
	// decrement below stays the authoritative guard.
	if user.Role != models.RoleAdmin && user.CreditHours <= 0 {
		utils.CreateError(iris.StatusBadRequest, "no_credit_hours", "No credit hours remaining. Please make a payment to get 3 credit hours for applications.", ctx)
		return
	}

	var proposal models.Document
	if _, _, err := ctx.FormFile("proposal"); err == nil {
		doc, saveErr := saveFormFile(ctx, storage.CategoryBusinessGrants, "proposal")
		if saveErr != nil {
			handleUploadError(saveErr, ctx)
			return
		}
		proposal = *doc
	}

	grant := models.BusinessGrant{
		UserID:        user.ID,
		Title:         title,
		Description:   description,
		Proposal:      proposal,
		ProposalText:  proposalText,
		OpportunityID: opportunityID,
	}
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := services.ConsumeCredit(tx, user); err != nil {
			return err
		}
		return tx.Create(&grant).Error
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
		"message":     "Entrepreneur incubation application submitted successfully.",
		"creditHours": user.CreditHours,
		"data":        &grant,
	})
}

// GetMyBusinessGrants lists the caller's grant applications, newest first.
func GetMyBusinessGrants(ctx iris.Context) {
	user := utils.CurrentUser(ctx)

	var grants []models.BusinessGrant
	if err := storage.DB.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&grants).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "server_error", err.Error(), ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "grants": grants})
}

// GetAllBusinessGrants lists every grant application for admins, paginated.
func GetAllBusinessGrants(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	limit := ctx.URLParamIntDefault("limit", 10)

	query := storage.DB.Model(&models.BusinessGrant{}).Preload("User").Order("created_at DESC")

	var grants []models.BusinessGrant
	result, err := utils.Paginate(query, page, limit, &grants)
	if err != nil {
		utils.CreateError(iris.StatusInternalServerError, "server_error", err.Error(), ctx)
		return
	}

	utils.JSONPaginated(ctx, grants, result)
}

// GetBusinessGrantByID returns one grant with its applicant for admins.
func GetBusinessGrantByID(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var grant models.BusinessGrant
	if err := storage.DB.Preload("User").First(&grant, id).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Business grant not found.")
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": &grant})
}

// UpdateBusinessGrantStatus approves or rejects an application (admin).
func UpdateBusinessGrantStatus(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var input struct {
		Status     string `json:"status"`
		AdminNotes string `json:"adminNotes"`
	}
	if err := ctx.ReadJSON(&input); err != nil ||
		(input.Status != models.ApplicationStatusApproved && input.Status != models.ApplicationStatusRejected) {
		utils.CreateError(iris.StatusBadRequest, "validation_error", "Invalid status value", ctx)
		return
	}

	var grant models.BusinessGrant
	if err := storage.DB.First(&grant, id).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Business grant not found")
		return
	}

	before := grant
	grant.Status = input.Status
	if input.AdminNotes != "" {
		grant.AdminNotes = input.AdminNotes
	}
	if err := storage.DB.Save(&grant).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "server_error", err.Error(), ctx)
		return
	}

	utils.Audit(ctx, "business_grant.status_update", "business_grant", grant.ID, before, grant)

	ctx.JSON(iris.Map{
		"success": true,
		"message": "Business grant " + input.Status + " successfully.",
		"data":    &grant,
	})
}

// CreateGrantOpportunity adds a business grant catalog entry (admin).
func CreateGrantOpportunity(ctx iris.Context) {
	admin := utils.CurrentUser(ctx)

	var input struct {
		City        string  `json:"city" validate:"required"`
		Amount      float64 `json:"amount" validate:"required,gt=0"`
		Description string  `json:"description"`
	}
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	opportunity := models.BusinessGrantOpportunity{
		City:        strings.TrimSpace(input.City),
		Amount:      input.Amount,
		Description: strings.TrimSpace(input.Description),
		CreatedByID: admin.ID,
		IsActive:    true,
	}
	if err := storage.DB.Create(&opportunity).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "server_error", err.Error(), ctx)
		return
	}

	utils.Audit(ctx, "grant_opportunity.create", "grant_opportunity", opportunity.ID, nil, opportunity)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{
		"success":     true,
		"message":     "Business grant opportunity created successfully",
		"opportunity": opportunity,
	})
}

// GetAllGrantOpportunities is the admin listing with optional substring
// search over city/description.
func GetAllGrantOpportunities(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	limit := ctx.URLParamIntDefault("limit", 10)
	search := strings.TrimSpace(ctx.URLParamDefault("search", ""))

	query := storage.DB.Model(&models.BusinessGrantOpportunity{}).Preload("CreatedBy").Order("created_at DESC")
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("lower(city) LIKE ? OR lower(description) LIKE ?", like, like)
	}

	var opportunities []models.BusinessGrantOpportunity
	result, err := utils.Paginate(query, page, limit, &opportunities)
	if err != nil {
		utils.CreateError(iris.StatusInternalServerError, "server_error", err.Error(), ctx)
		return
	}

	utils.JSONPaginated(ctx, opportunities, result)
}

// GetActiveGrantOpportunities is the user-facing list of active entries.
func GetActiveGrantOpportunities(ctx iris.Context) {
	var opportunities []models.BusinessGrantOpportunity
	if err := storage.DB.Where("is_active = ?", true).Order("created_at DESC").Preload("CreatedBy").Find(&opportunities).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "server_error", err.Error(), ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "opportunities": opportunities, "count": len(opportunities)})
}

// UpdateGrantOpportunity edits fields and the active flag (admin).
func UpdateGrantOpportunity(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var input struct {
		City        *string  `json:"city"`
		Amount      *float64 `json:"amount"`
		Description *string  `json:"description"`
		IsActive    *bool    `json:"isActive"`
	}
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var opportunity models.BusinessGrantOpportunity
	if err := storage.DB.First(&opportunity, id).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Grant opportunity not found")
		return
	}

	before := opportunity
	if input.City != nil {
		opportunity.City = strings.TrimSpace(*input.City)
	}
	if input.Amount != nil {
		opportunity.Amount = *input.Amount
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

	utils.Audit(ctx, "grant_opportunity.update", "grant_opportunity", opportunity.ID, before, opportunity)

	ctx.JSON(iris.Map{
		"success":     true,
		"message":     "Grant opportunity updated successfully",
		"opportunity": opportunity,
	})
}

// DeleteGrantOpportunity removes a catalog entry (admin).
func DeleteGrantOpportunity(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var opportunity models.BusinessGrantOpportunity
	if err := storage.DB.First(&opportunity, id).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Grant opportunity not found")
		return
	}

	if err := storage.DB.Delete(&opportunity).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "server_error", err.Error(), ctx)
		return
	}
	storage.DB.Model(&models.BusinessGrant{}).Where("opportunity_id = ?", id).Update("opportunity_id", nil)

	utils.Audit(ctx, "grant_opportunity.delete", "grant_opportunity", id, opportunity, nil)

	ctx.JSON(iris.Map{"success": true, "message": "Grant opportunity deleted successfully"})
}
