package routes

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"tadbeer-server/models"
	"tadbeer-server/storage"
	"tadbeer-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupRoutesDB wires the global DB to a fresh in-memory database, pinned to
// one connection so every query sees the same :memory: instance.
func setupRoutesDB(t *testing.T, entities ...interface{}) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(entities...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	storage.DB = db
	return db
}

func setupTestUploads(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	os.Setenv("UPLOAD_DIR", dir)
	storage.InitializeUploads()
	return dir
}

// signAccountToken signs the real claims type so utils.RequireAccount can
// resolve the account row.
func signAccountToken(id uint, role string) string {
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 0)
	token, _ := signer.Sign(utils.AccessToken{ID: id, Role: role})
	return string(token)
}

func buildScholarshipTestApp() *iris.Application {
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	app := iris.New()

	verifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	verifierMiddleware := verifier.Verify(func() interface{} { return new(utils.AccessToken) })

	scholarship := app.Party("/api/scholarship", verifierMiddleware, utils.RequireAccount)
	{
		scholarship.Post("/createScholarship", CreateScholarship)
	}
	return app
}

func scholarshipForm(t *testing.T, withDocument bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	writer.WriteField("degreeLevel", "PhD")
	writer.WriteField("course", "Computer Science")
	if withDocument {
		part, err := writer.CreateFormFile("documents", "transcript.pdf")
		if err != nil {
			t.Fatal(err)
		}
		part.Write([]byte("pdf bytes"))
	}
	writer.Close()
	return &buf, writer.FormDataContentType()
}

func TestCreateScholarshipSpendsExactlyOneCredit(t *testing.T) {
	db := setupRoutesDB(t, &models.User{}, &models.Scholarship{})
	setupTestUploads(t)
	app := buildScholarshipTestApp()

	user := models.User{Name: "Applicant", Email: "applicant@example.com", CNIC: "11111-1111111-1", Role: models.RoleUser, CreditHours: 1}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}

	body, contentType := scholarshipForm(t, false)
	req := httptest.NewRequest(http.MethodPost, "/api/scholarship/createScholarship", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+signAccountToken(user.ID, user.Role))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var after models.User
	if err := db.First(&after, user.ID).Error; err != nil {
		t.Fatal(err)
	}
	if after.CreditHours != 0 {
		t.Errorf("expected 0 credit hours after submit, got %d", after.CreditHours)
	}
	var count int64
	db.Model(&models.Scholarship{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 application, got %d", count)
	}

	// Balance is spent; a second submission must fail without a new row
	body2, contentType2 := scholarshipForm(t, false)
	req2 := httptest.NewRequest(http.MethodPost, "/api/scholarship/createScholarship", body2)
	req2.Header.Set("Content-Type", contentType2)
	req2.Header.Set("Authorization", "Bearer "+signAccountToken(user.ID, user.Role))
	resp2 := httptest.NewRecorder()
	app.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 with no credits, got %d", resp2.Code)
	}

	db.Model(&models.Scholarship{}).Count(&count)
	if count != 1 {
		t.Errorf("zero-credit submission created a row: %d", count)
	}
	db.First(&after, user.ID)
	if after.CreditHours != 0 {
		t.Errorf("balance went negative: %d", after.CreditHours)
	}
}

func TestCreateScholarshipZeroCreditsWritesNoFiles(t *testing.T) {
	db := setupRoutesDB(t, &models.User{}, &models.Scholarship{})
	uploadDir := setupTestUploads(t)
	app := buildScholarshipTestApp()

	user := models.User{Name: "Broke", Email: "broke@example.com", CNIC: "22222-2222222-2", Role: models.RoleUser, CreditHours: 0}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}

	body, contentType := scholarshipForm(t, true)
	req := httptest.NewRequest(http.MethodPost, "/api/scholarship/createScholarship", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+signAccountToken(user.ID, user.Role))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 with no credits, got %d", resp.Code)
	}

	stored, err := filepath.Glob(filepath.Join(uploadDir, storage.CategoryScholarships, "*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 0 {
		t.Errorf("rejected submission left %d file(s) on disk", len(stored))
	}
}
