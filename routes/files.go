package routes

import (
	"errors"
	"mime/multipart"
	"tadbeer-server/models"
	"tadbeer-server/storage"
	"tadbeer-server/utils"

	"github.com/kataras/iris/v12"
)

// GetFile streams an uploaded file back to an authenticated caller.
// URL format: /files/signup/cnicFront-xxxx.jpg
func GetFile(ctx iris.Context) {
	folder := ctx.Params().Get("folder")
	filename := ctx.Params().Get("filename")

	path, err := storage.ResolveFile(folder, filename)
	if err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", "File not found")
		return
	}

	ctx.ContentType(storage.FileContentType(path))
	ctx.ServeFile(path)
}

// saveFormFile persists a single multipart field through the storage adapter.
func saveFormFile(ctx iris.Context, category, field string) (*models.Document, error) {
	_, header, err := ctx.FormFile(field)
	if err != nil {
		return nil, err
	}
	return storage.SaveUpload(category, field, header)
}

// formFileHeaders returns every file uploaded under one multipart field.
func formFileHeaders(ctx iris.Context, field string) []*multipart.FileHeader {
	ctx.Request().ParseMultipartForm(32 << 20)
	if ctx.Request().MultipartForm == nil {
		return nil
	}
	return ctx.Request().MultipartForm.File[field]
}

// saveFormFiles persists up to maxFiles uploads from one field.
func saveFormFiles(ctx iris.Context, category, field string, maxFiles int) ([]models.Document, error) {
	headers := formFileHeaders(ctx, field)
	if len(headers) > maxFiles {
		headers = headers[:maxFiles]
	}

	documents := []models.Document{}
	for _, header := range headers {
		doc, err := storage.SaveUpload(category, field, header)
		if err != nil {
			return nil, err
		}
		documents = append(documents, *doc)
	}
	return documents, nil
}

func handleUploadError(err error, ctx iris.Context) {
	if errors.Is(err, storage.ErrUnsupportedFileType) || errors.Is(err, storage.ErrFileTooLarge) {
		utils.CreateError(iris.StatusBadRequest, "upload_rejected", err.Error(), ctx)
		return
	}
	utils.CreateError(iris.StatusInternalServerError, "server_error", err.Error(), ctx)
}
