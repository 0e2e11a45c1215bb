package main

import (
	"fmt"
	"log"
	"os"
	"tadbeer-server/routes"
	"tadbeer-server/services"
	"tadbeer-server/storage"
	"tadbeer-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	// Initialize services
	storage.InitializeDB()
	storage.InitializeRedis()
	storage.InitializeUploads()
	services.InitializeMailer()

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	// JWT verifiers
	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	auth := app.Party("/api/auth")
	{
		auth.Post("/signup", routes.Signup)
		auth.Post("/login", routes.Login)
		auth.Post("/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)
		auth.Put("/complete-profile", accessTokenVerifierMiddleware, utils.RequireAccount, routes.CompleteProfile)
		auth.Post("/complete-profile", accessTokenVerifierMiddleware, utils.RequireAccount, routes.CompleteProfile)
	}

	payment := app.Party("/api/payment", accessTokenVerifierMiddleware, utils.RequireAccount)
	{
		payment.Post("/create", routes.CreatePayment)
		payment.Get("/my-payment", routes.GetMyPayment)
		payment.Get("/all", utils.AdminOnlyMiddleware, routes.GetAllPayments)
		payment.Get("/{id:uint}", utils.AdminOnlyMiddleware, routes.GetPaymentByID)
		payment.Patch("/verify/{id:uint}", utils.AdminOnlyMiddleware, routes.VerifyPayment)
	}

	scholarship := app.Party("/api/scholarship", accessTokenVerifierMiddleware, utils.RequireAccount)
	{
		scholarship.Get("/degree-levels", routes.GetDegreeLevels)
		scholarship.Post("/createScholarship", routes.CreateScholarship)
		scholarship.Get("/getMyScholarships", routes.GetMyScholarships)
		scholarship.Get("/opportunities/search", routes.SearchScholarshipOpportunities)

		scholarship.Get("/getAllScholarships", utils.AdminOnlyMiddleware, routes.GetAllScholarships)
		scholarship.Patch("/updateScholarshipStatus/{id:uint}", utils.AdminOnlyMiddleware, routes.UpdateScholarshipStatus)
		scholarship.Get("/get/{id:uint}", utils.AdminOnlyMiddleware, routes.GetScholarshipByID)

		scholarship.Post("/opportunities", utils.AdminOnlyMiddleware, routes.CreateScholarshipOpportunity)
		scholarship.Get("/opportunities", utils.AdminOnlyMiddleware, routes.GetAllScholarshipOpportunities)
		scholarship.Patch("/opportunities/{id:uint}", utils.AdminOnlyMiddleware, routes.UpdateScholarshipOpportunity)
		scholarship.Delete("/opportunities/{id:uint}", utils.AdminOnlyMiddleware, routes.DeleteScholarshipOpportunity)
	}

	business := app.Party("/api/business", accessTokenVerifierMiddleware, utils.RequireAccount)
	{
		business.Post("/createGrant", routes.CreateBusinessGrant)
		business.Get("/my", routes.GetMyBusinessGrants)
		business.Get("/opportunities/active", routes.GetActiveGrantOpportunities)

		business.Get("/all", utils.AdminOnlyMiddleware, routes.GetAllBusinessGrants)
		business.Patch("/updateStatus/{id:uint}", utils.AdminOnlyMiddleware, routes.UpdateBusinessGrantStatus)
		business.Get("/get/{id:uint}", utils.AdminOnlyMiddleware, routes.GetBusinessGrantByID)

		business.Post("/opportunities", utils.AdminOnlyMiddleware, routes.CreateGrantOpportunity)
		business.Get("/opportunities", utils.AdminOnlyMiddleware, routes.GetAllGrantOpportunities)
		business.Patch("/opportunities/{id:uint}", utils.AdminOnlyMiddleware, routes.UpdateGrantOpportunity)
		business.Delete("/opportunities/{id:uint}", utils.AdminOnlyMiddleware, routes.DeleteGrantOpportunity)
	}

	consultation := app.Party("/api/consultation", accessTokenVerifierMiddleware, utils.RequireAccount)
	{
		consultation.Post("/createConsultation", routes.CreateConsultation)
		consultation.Get("/my", routes.GetMyConsultations)

		consultation.Get("/all", utils.AdminOnlyMiddleware, routes.GetAllConsultations)
		consultation.Patch("/updateStatus/{id:uint}", utils.AdminOnlyMiddleware, routes.UpdateConsultationStatus)
		consultation.Get("/get/{id:uint}", utils.AdminOnlyMiddleware, routes.GetConsultationByID)
	}

	// Uploaded documents are only served to authenticated accounts
	files := app.Party("/files", accessTokenVerifierMiddleware, utils.RequireAccount)
	{
		files.Get("/{folder}/{filename}", routes.GetFile)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.RequireAccount, utils.AdminOnlyMiddleware)
	{
		admin.Get("/users", routes.AdminListUsers)
		admin.Get("/users/{id:uint}", routes.AdminGetUser)
		admin.Patch("/users/{id:uint}/role", routes.AdminChangeUserRole)
		admin.Delete("/users/{id:uint}", routes.AdminDeleteUser)
	}

	stats := app.Party("/api/stats")
	{
		stats.Get("/global-impact", routes.GetGlobalImpact)
	}

	safepay := app.Party("/api/safepay")
	{
		safepay.Post("/create-checkout", accessTokenVerifierMiddleware, utils.RequireAccount, routes.CreateSafepayOrder)
		safepay.Get("/verify", accessTokenVerifierMiddleware, utils.RequireAccount, routes.VerifySafepayPayment)
		safepay.Post("/webhook", routes.SafepayWebhook)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := "0.0.0.0:" + port

	fmt.Printf("Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
