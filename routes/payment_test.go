package routes

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// buildPaymentTestApp wires the verify route with the JWT verifier and a role
// check that reads the token directly, so the RBAC and validation paths can
// be exercised without a database.
func buildPaymentTestApp() *iris.Application {
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	app := iris.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} { return new(mockAccessToken) })

	payment := app.Party("/api/payment", accessTokenVerifierMiddleware, mockAdminOnlyMiddleware)
	{
		payment.Patch("/verify/{id:uint}", VerifyPayment)
	}
	return app
}

type mockAccessToken struct {
	ID   uint
	Role string
}

func mockAdminOnlyMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*mockAccessToken)
	if claims.Role != "admin" {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}
	ctx.Next()
}

func signTestToken(role string) string {
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 0)
	token, _ := signer.Sign(mockAccessToken{ID: 1, Role: role})
	return string(token)
}

func TestVerifyPaymentRBAC(t *testing.T) {
	app := buildPaymentTestApp()

	// No token
	req := httptest.NewRequest(http.MethodPatch, "/api/payment/verify/1", strings.NewReader(`{"status":"verified"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code == http.StatusOK {
		t.Fatalf("expected non-200 without token, got %d", resp.Code)
	}

	// User role
	req2 := httptest.NewRequest(http.MethodPatch, "/api/payment/verify/1", strings.NewReader(`{"status":"verified"}`))
	req2.Header.Set("Content-Type", "application/json")
	req2.Header.Set("Authorization", "Bearer "+signTestToken("user"))
	resp2 := httptest.NewRecorder()
	app.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for user role, got %d", resp2.Code)
	}
}

func TestVerifyPaymentRejectsBadStatus(t *testing.T) {
	app := buildPaymentTestApp()

	// Status outside verified/rejected fails before any lookup happens
	req := httptest.NewRequest(http.MethodPatch, "/api/payment/verify/1", strings.NewReader(`{"status":"maybe"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signTestToken("admin"))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid status, got %d", resp.Code)
	}
}
