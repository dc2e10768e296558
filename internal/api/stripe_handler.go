package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"

	apperr "hapipet/internal/errors"
)

const maxWebhookBodyBytes = int64(65536)

type StripeWebhookHandler struct {
	secret string
	events PaymentEvents
	log    *zap.Logger
}

func NewStripeWebhookHandler(secret string, events PaymentEvents, log *zap.Logger) *StripeWebhookHandler {
	return &StripeWebhookHandler{secret: secret, events: events, log: log}
}

func (h *StripeWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.log.Warn("Error reading webhook body", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), h.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		h.log.Warn("Webhook signature verification failed", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil || pi.ID == "" {
			h.log.Warn("Error parsing payment_intent", zap.Error(err))
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if err := h.events.PaymentSucceeded(r.Context(), pi.ID, pi.Metadata["booking_id"]); unknownBooking(err) {
			h.log.Warn("Payment for unknown booking", zap.String("payment_intent", pi.ID), zap.Error(err))
		} else if err != nil {
			h.log.Error("Payment confirmation failed", zap.String("payment_intent", pi.ID), zap.Error(err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

	case "charge.refunded":
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			h.log.Warn("Error parsing charge", zap.Error(err))
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if charge.PaymentIntent == nil || charge.PaymentIntent.ID == "" {
			break
		}
		if err := h.events.PaymentRefunded(r.Context(), charge.PaymentIntent.ID); unknownBooking(err) {
			h.log.Warn("Refund for unknown booking", zap.String("payment_intent", charge.PaymentIntent.ID), zap.Error(err))
		} else if err != nil {
			h.log.Error("Refund update failed", zap.String("payment_intent", charge.PaymentIntent.ID), zap.Error(err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

	default:
		h.log.Debug("Unhandled event type", zap.String("type", string(event.Type)))
	}

	w.WriteHeader(http.StatusOK)
}

// unknownBooking errors are acknowledged so Stripe stops retrying them.
func unknownBooking(err error) bool {
	return err != nil && apperr.StatusOf(err) == http.StatusNotFound
}
