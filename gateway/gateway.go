package gateway

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidSignature is returned when a webhook payload fails signature
	// verification. Callers must not mutate any state on this error.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// EventKind is the normalized webhook event classification. Only captured and
// paid events proceed to order materialization; everything else is
// acknowledged and ignored.
type EventKind string

const (
	EventPaymentCaptured EventKind = "payment_captured"
	EventOrderPaid       EventKind = "order_paid"
	EventPaymentFailed   EventKind = "payment_failed"
	EventIgnored         EventKind = "ignored"
)

// Confirmable reports whether the event should trigger order materialization.
func (k EventKind) Confirmable() bool {
	return k == EventPaymentCaptured || k == EventOrderPaid
}

// Session is the provider-side payment session the system holds a reference
// to. Metadata is the trusted copy of the priced cart stored at
// session-creation time; monetary amounts are never taken from client input
// after this point.
type Session struct {
	ID       string
	Amount   int64 // smallest currency unit
	Currency string
	Status   string
	Metadata CheckoutMetadata
}

// WebhookEvent is a parsed, signature-verified provider event.
type WebhookEvent struct {
	Kind EventKind
	// RawType is the provider's own event name, kept for logging.
	RawType string
	// ProviderOrderID identifies the payment session the event refers to.
	ProviderOrderID string
	// PaymentID is the provider-issued payment reference, the idempotency key.
	PaymentID string
}

// Gateway abstracts the external payment provider. Implementations exist for
// Razorpay and Stripe; tests use fakes.
type Gateway interface {
	// CreateOrder opens a payment session for the given amount carrying the
	// serialized checkout metadata.
	CreateOrder(amount int64, currency, receipt string, meta CheckoutMetadata) (*Session, error)
	// FetchOrder retrieves the session, decoding its metadata. This is the
	// only place session metadata enters the system after checkout.
	FetchOrder(providerOrderID string) (*Session, error)
	// VerifyPaymentSignature checks the signature a client submits on the
	// direct verification path, computed over "orderID|paymentID".
	VerifyPaymentSignature(providerOrderID, paymentID, signature string) bool
	// ParseWebhook verifies the signature over the raw, untouched request
	// body and normalizes the event. Returns ErrInvalidSignature on mismatch.
	ParseWebhook(r *http.Request) (*WebhookEvent, error)
	// KeyID returns the public key identifier the frontend needs to open the
	// provider's payment widget.
	KeyID() string
}
