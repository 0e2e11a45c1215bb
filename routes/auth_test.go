package routes

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"tadbeer-server/models"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

func buildAuthTestApp() *iris.Application {
	app := iris.New()
	app.Post("/api/auth/signup", Signup)
	return app
}

func signupForm(t *testing.T, email, cnic string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	writer.WriteField("name", "New User")
	writer.WriteField("email", email)
	writer.WriteField("phone", "03001234567")
	writer.WriteField("cnic", cnic)
	writer.WriteField("address", "Lahore")
	writer.WriteField("password", "secret1")
	writer.WriteField("confirmPassword", "secret1")
	for _, field := range []string{"cnicFront", "cnicBack"} {
		part, err := writer.CreateFormFile(field, field+".png")
		if err != nil {
			t.Fatal(err)
		}
		part.Write([]byte("img"))
	}
	writer.Close()
	return &buf, writer.FormDataContentType()
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	db := setupRoutesDB(t, &models.User{})
	setupTestUploads(t)
	app := buildAuthTestApp()

	existing := models.User{Name: "First", Email: "taken@example.com", CNIC: "33333-3333333-3", Role: models.RoleUser}
	if err := db.Create(&existing).Error; err != nil {
		t.Fatal(err)
	}

	body, contentType := signupForm(t, "taken@example.com", "44444-4444444-4")
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d: %s", resp.Code, resp.Body.String())
	}

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Errorf("duplicate signup created a row: %d users", count)
	}
}

func TestSignupDuplicateCNICConflicts(t *testing.T) {
	db := setupRoutesDB(t, &models.User{})
	setupTestUploads(t)
	app := buildAuthTestApp()

	existing := models.User{Name: "First", Email: "first@example.com", CNIC: "55555-5555555-5", Role: models.RoleUser}
	if err := db.Create(&existing).Error; err != nil {
		t.Fatal(err)
	}

	body, contentType := signupForm(t, "second@example.com", "55555-5555555-5")
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate cnic, got %d: %s", resp.Code, resp.Body.String())
	}
}

// A concurrent signup can pass the pre-insert lookup and land on the unique
// index instead; TranslateError must surface that as gorm.ErrDuplicatedKey so
// the handler can map it to the same 409.
func TestDuplicateUserInsertTranslatesToDuplicatedKey(t *testing.T) {
	db := setupRoutesDB(t, &models.User{})

	first := models.User{Name: "A", Email: "race@example.com", CNIC: "66666-6666666-6", Role: models.RoleUser}
	if err := db.Create(&first).Error; err != nil {
		t.Fatal(err)
	}

	second := models.User{Name: "B", Email: "race@example.com", CNIC: "77777-7777777-7", Role: models.RoleUser}
	if err := db.Create(&second).Error; !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected gorm.ErrDuplicatedKey, got %v", err)
	}
}
