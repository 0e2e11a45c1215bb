package utils

import (
	"tadbeer-server/models"
	"tadbeer-server/storage"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

const currentUserKey = "currentUser"

// RequireAccount resolves the token claims to a live user row and stores it
// in the request context. A token whose account was deleted is rejected.
func RequireAccount(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)

	var user models.User
	if err := storage.DB.First(&user, claims.ID).Error; err != nil {
		JSONError(ctx, iris.StatusUnauthorized, "unauthorized", "User not found or account has been deleted. Please login again.")
		return
	}

	ctx.Values().Set(currentUserKey, &user)
	ctx.Next()
}

// CurrentUser returns the user loaded by RequireAccount.
func CurrentUser(ctx iris.Context) *models.User {
	user, _ := ctx.Values().Get(currentUserKey).(*models.User)
	return user
}

// AdminOnlyMiddleware ensures the requester has the admin role.
func AdminOnlyMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)
	if claims.Role != models.RoleAdmin {
		ctx.StatusCode(iris.StatusForbidden)
		ctx.JSON(iris.Map{"error": "forbidden", "message": "admin access required"})
		return
	}
	ctx.Next()
}
