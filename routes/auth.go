package routes

import (
	"encoding/json"
	"errors"
	"strings"
	"tadbeer-server/models"
	"tadbeer-server/storage"
	"tadbeer-server/utils"

	"github.com/kataras/iris/v12"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Signup registers a new applicant. Multipart form: name, email, phone, cnic,
// address, password, confirmPassword plus the cnicFront/cnicBack images.
// Accounts always start as role=user; admin roles are granted later by an
// existing admin (see AdminChangeUserRole).
func Signup(ctx iris.Context) {
	name := strings.TrimSpace(ctx.FormValue("name"))
	email := strings.ToLower(strings.TrimSpace(ctx.FormValue("email")))
	phone := strings.TrimSpace(ctx.FormValue("phone"))
	cnic := strings.TrimSpace(ctx.FormValue("cnic"))
	address := strings.TrimSpace(ctx.FormValue("address"))
	password := ctx.FormValue("password")
	confirmPassword := ctx.FormValue("confirmPassword")

	if name == "" || email == "" || phone == "" || cnic == "" || address == "" || password == "" {
		utils.CreateError(iris.StatusBadRequest, "validation_error", "name, email, phone, cnic, address and password are required", ctx)
		return
	}
	if !utils.ValidateCNIC(cnic) {
		utils.CreateError(iris.StatusBadRequest, "validation_error", "Invalid CNIC format. Use XXXXX-XXXXXXX-X", ctx)
		return
	}
	if !utils.ValidatePhoneNumber(phone) {
		utils.CreateError(iris.StatusBadRequest, "validation_error", "Invalid phone number", ctx)
		return
	}
	if len(password) < 6 {
		utils.CreateError(iris.StatusBadRequest, "validation_error", "Password must be at least 6 characters", ctx)
		return
	}
	if password != confirmPassword {
		utils.CreateError(iris.StatusBadRequest, "validation_error", "Passwords do not match.", ctx)
		return
	}

	if _, _, err := ctx.FormFile("cnicFront"); err != nil {
		utils.CreateError(iris.StatusBadRequest, "validation_error", "CNIC front and back images are required.", ctx)
		return
	}
	if _, _, err := ctx.FormFile("cnicBack"); err != nil {
		utils.CreateError(iris.StatusBadRequest, "validation_error", "CNIC front and back images are required.", ctx)
		return
	}

	var existing models.User
	err := storage.DB.Where("email = ? OR cnic = ?", email, cnic).First(&existing).Error
	if err == nil {
		if existing.Email == email {
			utils.CreateError(iris.StatusConflict, "conflict", "Email already exists.", ctx)
		} else {
			utils.CreateError(iris.StatusConflict, "conflict", "CNIC already registered.", ctx)
		}
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.CreateInternalServerError(ctx)
		return
	}

	frontDoc, err := saveFormFile(ctx, storage.CategorySignup, "cnicFront")
	if err != nil {
		handleUploadError(err, ctx)
		return
	}
	backDoc, err := saveFormFile(ctx, storage.CategorySignup, "cnicBack")
	if err != nil {
		handleUploadError(err, ctx)
		return
	}

	hashedPassword, hashErr := hashAndSaltPassword(password)
	if hashErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	newUser := models.User{
		Name:      name,
		Email:     email,
		Phone:     phone,
		CNIC:      cnic,
		Address:   address,
		Password:  hashedPassword,
		Role:      models.RoleUser,
		CnicFront: frontDoc.FilePath,
		CnicBack:  backDoc.FilePath,
	}
	if err := storage.DB.Create(&newUser).Error; err != nil {
		// A concurrent signup can slip past the lookup above and land on the
		// unique index instead
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.CreateError(iris.StatusConflict, "conflict", "Email or CNIC already registered.", ctx)
			return
		}
		utils.CreateError(iris.StatusInternalServerError, "server_error", err.Error(), ctx)
		return
	}

	returnUser(newUser, iris.StatusCreated, ctx)
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates by email/password. Users whose payment has not been
// verified yet get 403 payment_pending so the frontend can route them to the
// payment page (their signup token remains usable for submitting it).
func Login(ctx iris.Context) {
	var userInput LoginInput
	if err := ctx.ReadJSON(&userInput); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	errorMsg := "Invalid email or password."
	var existingUser models.User
	err := storage.DB.Where("email = ?", strings.ToLower(userInput.Email)).First(&existingUser).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.CreateError(iris.StatusUnauthorized, "credentials_error", errorMsg, ctx)
		return
	}
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	passwordErr := bcrypt.CompareHashAndPassword([]byte(existingUser.Password), []byte(userInput.Password))
	if passwordErr != nil {
		utils.CreateError(iris.StatusUnauthorized, "credentials_error", errorMsg, ctx)
		return
	}

	if existingUser.Role == models.RoleUser && !existingUser.PaymentVerified {
		utils.CreateError(iris.StatusForbidden, "payment_pending", "Your payment has not been verified yet. Please submit a payment and wait for admin approval.", ctx)
		return
	}

	returnUser(existingUser, iris.StatusOK, ctx)
}

type CompleteProfileInput struct {
	Education  []models.EducationEntry  `json:"education" validate:"required,min=1,dive"`
	Experience []models.ExperienceEntry `json:"experience"`
}

// CompleteProfile stores the education and experience history.
func CompleteProfile(ctx iris.Context) {
	user := utils.CurrentUser(ctx)

	var input CompleteProfileInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	education, _ := json.Marshal(input.Education)
	experience, _ := json.Marshal(input.Experience)

	user.Education = datatypes.JSON(education)
	user.Experience = datatypes.JSON(experience)
	user.ProfileCompleted = true

	if err := storage.DB.Save(user).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "server_error", err.Error(), ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "message": "Profile completed successfully", "user": user})
}

func hashAndSaltPassword(password string) (hashedPassword string, err error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func returnUser(user models.User, status int, ctx iris.Context) {
	tokenPair, tokenErr := utils.CreateTokenPair(user.ID, user.Role)
	if tokenErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(status)
	ctx.JSON(iris.Map{
		"success":      true,
		"token":        string(tokenPair.AccessToken),
		"refreshToken": string(tokenPair.RefreshToken),
		"user":         &user,
	})
}
