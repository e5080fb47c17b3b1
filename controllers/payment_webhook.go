package controllers

import (
	"errors"
	"net/http"

	"github.com/EnegixGlobal/Tiara-Server/gateway"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Webhook is the asynchronous confirmation channel. The raw body is consumed
// by the gateway's signature check before any JSON handling, so this route
// must stay clear of body-parsing middleware. Redeliveries and events that
// lose the race against verify-payment are absorbed as successes.
func (pc *PaymentController) Webhook(c *gin.Context) {
	event, err := pc.Gateway.ParseWebhook(c.Request)
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidSignature) {
			pc.Logger.Warn("webhook signature verification failed", zap.String("ip", c.ClientIP()))
			c.String(http.StatusBadRequest, "Invalid signature")
			return
		}
		pc.Logger.Warn("malformed webhook payload", zap.Error(err))
		c.String(http.StatusBadRequest, "Bad request")
		return
	}

	switch {
	case event.Kind.Confirmable():
		if event.PaymentID == "" || event.ProviderOrderID == "" {
			pc.Logger.Warn("confirmable webhook event missing identifiers",
				zap.String("event", event.RawType),
			)
			break
		}

		sess, err := pc.Gateway.FetchOrder(event.ProviderOrderID)
		if err != nil {
			pc.Logger.Error("webhook session fetch failed",
				zap.String("provider_order_id", event.ProviderOrderID),
				zap.Error(err),
			)
			c.String(http.StatusInternalServerError, "Webhook processing failed")
			return
		}

		result, err := pc.Reconciler.Materialize(c.Request.Context(), event.PaymentID, sess)
		if err != nil {
			pc.Logger.Error("webhook order materialization failed",
				zap.String("provider_payment_id", event.PaymentID),
				zap.Error(err),
			)
			c.String(http.StatusInternalServerError, "Webhook processing failed")
			return
		}

		pc.Logger.Info("webhook confirmation processed",
			zap.String("event", event.RawType),
			zap.String("order_id", result.OrderID),
			zap.Bool("already_processed", result.AlreadyProcessed),
		)

	case event.Kind == gateway.EventPaymentFailed:
		pc.Logger.Warn("payment failed",
			zap.String("provider_payment_id", event.PaymentID),
		)

	default:
		pc.Logger.Info("unhandled webhook event", zap.String("event", event.RawType))
	}

	c.String(http.StatusOK, "OK")
}
