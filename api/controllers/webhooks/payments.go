package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/velora-market/velora-backend/api/responses"
	paymentwebhook "github.com/velora-market/velora-backend/internal/webhooks/payments"
	"github.com/velora-market/velora-backend/pkg/config"
	pkgerrors "github.com/velora-market/velora-backend/pkg/errors"
	"github.com/velora-market/velora-backend/pkg/logger"
)

const paymentSignatureHeader = "Velora-Payment-Signature"

type PaymentWebhookService interface {
	HandleEvent(ctx context.Context, event *paymentwebhook.PaymentEvent) error
}

type paymentWebhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

// PaymentWebhook receives payment processor callbacks and records
// confirmed payments against bookings.
func PaymentWebhook(svc PaymentWebhookService, cfg config.PaymentIntakeConfig, guard paymentWebhookGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		sigHeader := r.Header.Get(paymentSignatureHeader)
		if sigHeader == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "payment signature missing"))
			return
		}

		if !validatePaymentSignature(payload, cfg.SigningSecret, sigHeader) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "invalid payment signature"))
			return
		}

		var event paymentwebhook.PaymentEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode event"))
			return
		}

		eventID := strings.TrimSpace(event.EventID)
		if eventID == "" {
			eventID = event.Data.PaymentID
		}

		alreadyProcessed, err := guard.CheckAndMark(ctx, eventID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
			return
		}
		if alreadyProcessed {
			responses.WriteSuccess(w, nil)
			return
		}

		if err := svc.HandleEvent(ctx, &event); err != nil {
			_ = guard.Delete(ctx, eventID)
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(ctx, fmt.Sprintf("payment event %s processed", eventID))
		}
		responses.WriteSuccess(w, nil)
	}
}

func validatePaymentSignature(payload []byte, secret, header string) bool {
	if header == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(header))
}
