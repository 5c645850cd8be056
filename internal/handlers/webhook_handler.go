package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/onerilhan/thankatech-ledger/internal/interfaces"
	"github.com/onerilhan/thankatech-ledger/internal/middleware"
	"github.com/onerilhan/thankatech-ledger/internal/middleware/errors"
)

const (
	maxWebhookBytes = 64 << 10

	eventCheckoutCompleted = "checkout.session.completed"
)

// WebhookHandler ödeme sağlayıcısından gelen onayları token yüklemeye çevirir
type WebhookHandler struct {
	purchases interfaces.PurchaseServiceInterface
	secret    string
}

// NewWebhookHandler yeni handler oluşturur
func NewWebhookHandler(purchases interfaces.PurchaseServiceInterface, secret string) *WebhookHandler {
	return &WebhookHandler{purchases: purchases, secret: secret}
}

// Stripe imzalı checkout olaylarını işler (public, imza ile korunur).
// session.id idempotency anahtarıdır; aynı olay tekrar gelirse bakiye değişmez.
func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		middleware.WriteError(w, r, errors.NewValidationError("body", "Webhook gövdesi okunamadı", nil))
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), h.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		log.Warn().Err(err).Str("client_ip", r.RemoteAddr).Msg("⚠️ Webhook imzası doğrulanamadı")
		middleware.WriteError(w, r, errors.NewValidationError("Stripe-Signature", "Geçersiz imza", nil))
		return
	}

	if string(event.Type) != eventCheckoutCompleted {
		log.Debug().Str("event_id", event.ID).Str("type", string(event.Type)).Msg("Webhook olayı yok sayıldı")
		writeSuccess(w, http.StatusOK, map[string]interface{}{"ignored": true}, "Olay işlenmedi")
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		middleware.WriteError(w, r, errors.NewValidationError("data", "Checkout session çözülemedi", nil))
		return
	}

	userID := session.Metadata["user_id"]
	tokens, err := strconv.ParseInt(session.Metadata["tokens"], 10, 64)
	if err != nil {
		middleware.WriteError(w, r, errors.NewValidationError("metadata.tokens", "tokens metadata geçersiz", session.Metadata["tokens"]))
		return
	}

	amount := ""
	if session.AmountTotal > 0 {
		amount = decimal.New(session.AmountTotal, -2).String()
	}

	result, err := h.purchases.AddTokensToBalance(r.Context(), userID, tokens, amount, session.ID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, result, "Ödeme işlendi")

	log.Info().
		Str("event_id", event.ID).
		Str("session_id", session.ID).
		Str("user_id", userID).
		Int64("tokens", tokens).
		Bool("duplicate", result.Duplicate).
		Msg("💳 Stripe ödemesi işlendi")
}
