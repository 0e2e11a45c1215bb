package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"tadbeer-server/utils"
	"time"

	"github.com/kataras/iris/v12"
)

var safepayClient = &http.Client{Timeout: 15 * time.Second}

func safepayBaseURL() string {
	if os.Getenv("SAFE_PAY_ENV") == "production" {
		return "https://api.getsafepay.com"
	}
	return "https://sandbox.api.getsafepay.com"
}

type SafepayOrderInput struct {
	Amount   int    `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency"`
}

// CreateSafepayOrder initializes a hosted checkout session with Safepay and
// returns the tracker plus checkout URL. The server keeps no order state;
// payment records stay on the manual bank-transfer path.
func CreateSafepayOrder(ctx iris.Context) {
	var input SafepayOrderInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if input.Currency == "" {
		input.Currency = "PKR"
	}

	payload, _ := json.Marshal(iris.Map{
		"amount":      input.Amount,
		"currency":    input.Currency,
		"environment": os.Getenv("SAFE_PAY_ENV"),
	})

	req, err := http.NewRequest("POST", safepayBaseURL()+"/order/v1/init", bytes.NewReader(payload))
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+os.Getenv("SAFE_PAY_API_KEY"))

	res, err := safepayClient.Do(req)
	if err != nil {
		utils.CreateError(iris.StatusBadGateway, "gateway_error", "Payment gateway is unreachable", ctx)
		return
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil || res.StatusCode >= 400 {
		utils.CreateError(iris.StatusBadGateway, "gateway_error", "Payment gateway rejected the order", ctx)
		return
	}

	var parsed struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Data.Token == "" {
		utils.CreateError(iris.StatusBadGateway, "gateway_error", "Unexpected gateway response", ctx)
		return
	}

	checkoutURL := safepayBaseURL() + "/checkout/pay?beacon=" + parsed.Data.Token

	ctx.JSON(iris.Map{
		"success":     true,
		"tracker":     parsed.Data.Token,
		"checkoutUrl": checkoutURL,
	})
}

// VerifySafepayPayment looks up an order by tracker. Passthrough of the
// gateway's state; verification of the local payment record is a separate
// admin action.
func VerifySafepayPayment(ctx iris.Context) {
	tracker := ctx.URLParamDefault("tracker", "")
	if tracker == "" {
		utils.CreateError(iris.StatusBadRequest, "validation_error", "tracker is required", ctx)
		return
	}

	req, err := http.NewRequest("GET", safepayBaseURL()+"/order/v1/track/"+tracker, nil)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	req.Header.Set("Authorization", "Bearer "+os.Getenv("SAFE_PAY_API_KEY"))

	res, err := safepayClient.Do(req)
	if err != nil {
		utils.CreateError(iris.StatusBadGateway, "gateway_error", "Payment gateway is unreachable", ctx)
		return
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		utils.CreateError(iris.StatusBadGateway, "gateway_error", "Unexpected gateway response", ctx)
		return
	}

	var state iris.Map
	if err := json.Unmarshal(body, &state); err != nil {
		utils.CreateError(iris.StatusBadGateway, "gateway_error", "Unexpected gateway response", ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": state})
}

// SafepayWebhook receives gateway event notifications. Events are logged
// only; crediting stays behind the manual admin review.
func SafepayWebhook(ctx iris.Context) {
	var event struct {
		Type string `json:"type"`
		Data struct {
			Tracker string `json:"tracker"`
			State   string `json:"state"`
		} `json:"data"`
	}
	if err := ctx.ReadJSON(&event); err != nil {
		utils.CreateError(iris.StatusBadRequest, "validation_error", "Invalid webhook payload", ctx)
		return
	}

	switch event.Data.State {
	case "PAID", "CANCELLED":
		log.Printf("safepay webhook: tracker=%s state=%s", event.Data.Tracker, event.Data.State)
	default:
		log.Printf("safepay webhook: tracker=%s unhandled state=%s", event.Data.Tracker, event.Data.State)
	}

	ctx.JSON(iris.Map{"success": true})
}
