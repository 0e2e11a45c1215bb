package routes

import (
	"strings"
	"tadbeer-server/models"
	"tadbeer-server/storage"
	"tadbeer-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

// AdminListUsers - GET /api/admin/users?role=&q=&page=&limit=
func AdminListUsers(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	limit := ctx.URLParamIntDefault("limit", 25)
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	q := strings.TrimSpace(ctx.URLParamDefault("q", ""))
	role := strings.TrimSpace(ctx.URLParamDefault("role", ""))

	query := storage.DB.Model(&models.User{}).Order("created_at DESC")
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("lower(name) LIKE ? OR lower(email) LIKE ? OR cnic LIKE ?", like, like, like)
	}

	var users []models.User
	result, err := utils.Paginate(query, page, limit, &users)
	if err != nil {
		utils.JSONError(ctx, iris.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPaginated(ctx, users, result)
}

// AdminGetUser - GET /api/admin/users/:id — full profile + payment + recent
// admin activity against this user
func AdminGetUser(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", "user not found")
		return
	}

	var payment *models.Payment
	var p models.Payment
	if err := storage.DB.Where("user_id = ?", id).First(&p).Error; err == nil {
		payment = &p
	}

	var actions []models.AuditLog
	storage.DB.Where("resource_type = ? AND resource_id = ?", "user", id).Order("created_at DESC").Limit(50).Find(&actions)

	ctx.JSON(iris.Map{
		"success": true,
		"data": iris.Map{
			"user":               &user,
			"payment":            payment,
			"recentAdminActions": actions,
		},
	})
}

// AdminChangeUserRole - PATCH /api/admin/users/:id/role. Role grants are an
// out-of-band operation performed by an existing admin; there is no
// self-service elevation path.
func AdminChangeUserRole(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var body struct {
		Role string `json:"role"`
	}
	if err := ctx.ReadJSON(&body); err != nil || (body.Role != models.RoleUser && body.Role != models.RoleAdmin) {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_role", "role must be user or admin")
		return
	}

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", "user not found")
		return
	}

	before := user
	user.Role = body.Role
	if err := storage.DB.Save(&user).Error; err != nil {
		utils.JSONError(ctx, iris.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.Audit(ctx, "user.role_update", "user", user.ID, before, user)

	ctx.JSON(iris.Map{"success": true, "data": &user})
}

// AdminDeleteUser - DELETE /api/admin/users/:id. Deletes the account and
// cascades to its payment and applications so no orphan rows remain.
func AdminDeleteUser(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", "user not found")
		return
	}

	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Scholarship{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.BusinessGrant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Consultation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if txErr != nil {
		utils.JSONError(ctx, iris.StatusInternalServerError, "server_error", txErr.Error())
		return
	}

	utils.Audit(ctx, "user.delete", "user", id, user, nil)

	ctx.JSON(iris.Map{"success": true, "message": "User and linked applications deleted"})
}
