package models

import "time"

// OrderEvent is the message published after an order is materialized.
// Publishing is best-effort; a delivery failure never fails the order.
type OrderEvent struct {
	Type      string    `json:"type"` // e.g. "order_created"
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	PaymentID string    `json:"payment_id"` // provider payment reference
	Amount    int64     `json:"amount"`     // smallest currency unit
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"timestamp"` // UTC event time
}
