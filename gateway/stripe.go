package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/webhook"
	"go.uber.org/zap"
)

// StripeGateway implements Gateway on top of Stripe Checkout Sessions. The
// whole priced cart rides in the session metadata, same as the Razorpay
// variant, so the reconciler stays provider-agnostic.
type StripeGateway struct {
	secretKey     string
	webhookSecret string
	successURL    string
	cancelURL     string
	logger        *zap.Logger
}

func NewStripeGateway(secretKey, webhookSecret, successURL, cancelURL string, logger *zap.Logger) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		successURL:    successURL,
		cancelURL:     cancelURL,
		logger:        logger,
	}
}

func (g *StripeGateway) KeyID() string { return "" }

func (g *StripeGateway) CreateOrder(amount int64, currency, receipt string, meta CheckoutMetadata) (*Session, error) {
	encoded, err := meta.Encode()
	if err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(receipt),
		SuccessURL:        stripe.String(g.successURL),
		CancelURL:         stripe.String(g.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(currency)),
					UnitAmount: stripe.Int64(amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("TiaraSteps order"),
					},
				},
			},
		},
	}
	params.AddMetadata(metadataKey, encoded)

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session create failed: %w", err)
	}

	return &Session{
		ID:       sess.ID,
		Amount:   sess.AmountTotal,
		Currency: string(sess.Currency),
		Status:   string(sess.Status),
		Metadata: meta,
	}, nil
}

func (g *StripeGateway) FetchOrder(providerOrderID string) (*Session, error) {
	sess, err := session.Get(providerOrderID, nil)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session fetch failed: %w", err)
	}

	raw := sess.Metadata[metadataKey]
	if raw == "" {
		return nil, fmt.Errorf("stripe session %s has no checkout metadata", providerOrderID)
	}
	meta, err := DecodeCheckoutMetadata(raw)
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:       sess.ID,
		Amount:   sess.AmountTotal,
		Currency: string(sess.Currency),
		Status:   string(sess.Status),
		Metadata: meta,
	}, nil
}

// VerifyPaymentSignature checks the signature the frontend submits after a
// completed payment. Stripe has no client-side equivalent of Razorpay's
// payment signature, so the contract is the same HMAC-SHA256 over
// "orderID|paymentID" keyed with the webhook secret.
func (g *StripeGateway) VerifyPaymentSignature(providerOrderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.webhookSecret))
	mac.Write([]byte(providerOrderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (g *StripeGateway) ParseWebhook(r *http.Request) (*WebhookEvent, error) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("read webhook body: %w", err)
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), g.webhookSecret)
	if err != nil {
		g.logger.Warn("Stripe webhook signature verification failed", zap.Error(err))
		return nil, ErrInvalidSignature
	}

	out := &WebhookEvent{RawType: string(event.Type), Kind: EventIgnored}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("decode checkout session event: %w", err)
		}
		out.Kind = EventPaymentCaptured
		out.ProviderOrderID = sess.ID
		if sess.PaymentIntent != nil {
			out.PaymentID = sess.PaymentIntent.ID
		}
		if out.PaymentID == "" {
			out.PaymentID = sess.ID
		}
	case "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent event: %w", err)
		}
		out.Kind = EventPaymentFailed
		out.PaymentID = pi.ID
	}

	return out, nil
}
