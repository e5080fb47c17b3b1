package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DeliveryStatusPending   = "pending"
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusCancelled = "cancelled"

	PaymentStatusPaid = "paid"
)

type OrderProduct struct {
	ProductID  primitive.ObjectID `json:"productId" bson:"productId"`
	Quantity   int                `json:"quantity" bson:"quantity"`
	Size       int                `json:"size" bson:"size"`
	IsReviewed bool               `json:"isReviewed" bson:"isReviewed"`
}

type Shipping struct {
	Email     string `json:"email" bson:"email"`
	AddressID string `json:"addressId,omitempty" bson:"addressId,omitempty"`
}

// Order is created exactly once per payment. The unique index on
// paymentReferenceId (see database.EnsureIndexes) is the idempotency claim.
type Order struct {
	ID                 primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	UserID             primitive.ObjectID `json:"userId" bson:"userId"`
	PaymentReferenceID string             `json:"paymentReferenceId" bson:"paymentReferenceId"`
	Products           []OrderProduct     `json:"products" bson:"products"`
	Subtotal           float64            `json:"subtotal" bson:"subtotal"`
	Total              float64            `json:"total" bson:"total"`
	Shipping           Shipping           `json:"shipping" bson:"shipping"`
	DeliveryStatus     string             `json:"deliveryStatus" bson:"deliveryStatus"`
	PaymentStatus      string             `json:"paymentStatus" bson:"paymentStatus"`
	CreatedAt          time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updatedAt"`
}
