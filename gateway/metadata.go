package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// MetadataVersion is bumped whenever the serialized layout changes.
const MetadataVersion = 1

// metadataKey is the provider-side metadata/notes key the serialized
// checkout is stored under.
const metadataKey = "checkout"

var validate = validator.New()

// MetadataItem is one priced cart line frozen at session-creation time.
type MetadataItem struct {
	ProductID string `json:"productId" validate:"required"`
	Qty       int    `json:"qty" validate:"required,min=1"`
	Size      int    `json:"size" validate:"required"`
}

// CheckoutMetadata is the trusted cart snapshot embedded in the payment
// session. It is encoded once at checkout and decoded once at the trust
// boundary (session fetch); confirmation requests never contribute to it.
type CheckoutMetadata struct {
	Version   int            `json:"v" validate:"required"`
	UserID    string         `json:"userId" validate:"required"`
	Email     string         `json:"email"`
	AddressID string         `json:"addressId,omitempty"`
	Subtotal  float64        `json:"subtotal" validate:"gte=0"`
	Discount  float64        `json:"discount" validate:"gte=0"`
	Items     []MetadataItem `json:"items" validate:"required,min=1,dive"`
}

// Encode serializes the metadata for storage in the provider session.
func (m CheckoutMetadata) Encode() (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode checkout metadata: %w", err)
	}
	return string(data), nil
}

// DecodeCheckoutMetadata parses and validates metadata fetched back from the
// provider. Unknown versions are rejected rather than half-interpreted.
func DecodeCheckoutMetadata(raw string) (CheckoutMetadata, error) {
	var m CheckoutMetadata
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return m, fmt.Errorf("decode checkout metadata: %w", err)
	}
	if m.Version != MetadataVersion {
		return m, fmt.Errorf("unsupported checkout metadata version %d", m.Version)
	}
	if err := validate.Struct(m); err != nil {
		return m, fmt.Errorf("invalid checkout metadata: %w", err)
	}
	return m, nil
}
