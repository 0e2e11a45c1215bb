package routes

import (
	"tadbeer-server/models"
	"tadbeer-server/storage"

	"github.com/kataras/iris/v12"
)

// GetGlobalImpact returns the public landing-page counters. Failures fall
// back to zeroes rather than erroring; this endpoint only feeds display
// copy.
func GetGlobalImpact(ctx iris.Context) {
	var totalUsers, scholarshipsAwarded, activeVolunteers int64

	storage.DB.Model(&models.User{}).Where("role = ?", models.RoleUser).Count(&totalUsers)
	storage.DB.Model(&models.Scholarship{}).Where("status = ?", models.ApplicationStatusApproved).Count(&scholarshipsAwarded)
	storage.DB.Model(&models.User{}).Where("role = ? AND profile_completed = ?", models.RoleUser, true).Count(&activeVolunteers)

	var addresses []string
	storage.DB.Model(&models.User{}).Distinct("address").Pluck("address", &addresses)

	ctx.JSON(iris.Map{
		"success": true,
		"data": iris.Map{
			"livesImpacted":       totalUsers + scholarshipsAwarded,
			"scholarshipsAwarded": scholarshipsAwarded,
			"communitiesServed":   len(addresses),
			"activeVolunteers":    activeVolunteers,
		},
	})
}
