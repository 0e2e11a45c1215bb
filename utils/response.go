package utils

import (
	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

// JSONError writes the standard {"error","message"} envelope.
func JSONError(ctx iris.Context, status int, code, message string) {
	ctx.StatusCode(status)
	ctx.JSON(iris.Map{"error": code, "message": message})
}

// JSONPaginated writes the paginated list envelope used by every admin
// listing endpoint.
func JSONPaginated(ctx iris.Context, data interface{}, result PageResult) {
	ctx.JSON(iris.Map{
		"success":      true,
		"data":         data,
		"page":         result.Page,
		"totalPages":   result.TotalPages,
		"totalRecords": result.Total,
	})
}

func CreateError(status int, code, message string, ctx iris.Context) {
	JSONError(ctx, status, code, message)
}

func CreateInternalServerError(ctx iris.Context) {
	CreateError(iris.StatusInternalServerError, "server_error", "Internal Server Error", ctx)
}

func CreateNotFound(ctx iris.Context) {
	CreateError(iris.StatusNotFound, "not_found", "Not Found", ctx)
}

// HandleValidationErrors maps ReadJSON/validator failures onto 400 with the
// offending fields listed.
func HandleValidationErrors(err error, ctx iris.Context) {
	if errs, ok := err.(validator.ValidationErrors); ok {
		fields := make([]iris.Map, 0, len(errs))
		for _, fieldErr := range errs {
			fields = append(fields, iris.Map{
				"field": fieldErr.Field(),
				"tag":   fieldErr.Tag(),
			})
		}
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"error": "validation_error", "message": "Validation failed", "fields": fields})
		return
	}
	CreateError(iris.StatusBadRequest, "invalid_payload", err.Error(), ctx)
}
