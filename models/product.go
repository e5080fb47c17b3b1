package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SizeQuantity is one stock entry of a product. A fully depleted size is
// removed from the slice, never stored with a non-positive quantity.
type SizeQuantity struct {
	Size     int `json:"size" bson:"size"`
	Quantity int `json:"quantity" bson:"quantity"`
}

type Product struct {
	ID           primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	SKU          string             `json:"sku" bson:"sku"`
	Name         string             `json:"name" bson:"name"`
	Slug         string             `json:"slug,omitempty" bson:"slug,omitempty"`
	Brand        string             `json:"brand" bson:"brand"`
	Category     string             `json:"category" bson:"category"`
	Image        string             `json:"image" bson:"image"`
	Description  string             `json:"description,omitempty" bson:"description,omitempty"`
	SizeQuantity []SizeQuantity     `json:"sizeQuantity" bson:"sizeQuantity"`
	Price        float64            `json:"price" bson:"price"`
	Color        string             `json:"color,omitempty" bson:"color,omitempty"`
	IsActive     bool               `json:"isActive" bson:"isActive"`
	CreatedAt    time.Time          `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt    time.Time          `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// QuantityForSize returns the available stock for a size, zero when absent.
func (p *Product) QuantityForSize(size int) int {
	for _, sq := range p.SizeQuantity {
		if sq.Size == size {
			return sq.Quantity
		}
	}
	return 0
}

// DecrementSize subtracts qty from the matching size entry and drops entries
// whose quantity ends up at or below zero. It returns the resulting slice and
// whether a matching size entry existed. Quantities of other sizes are left
// untouched.
func DecrementSize(sizes []SizeQuantity, size, qty int) ([]SizeQuantity, bool) {
	applied := false
	out := make([]SizeQuantity, 0, len(sizes))
	for _, sq := range sizes {
		if sq.Size == size {
			applied = true
			sq.Quantity -= qty
		}
		if sq.Quantity > 0 {
			out = append(out, sq)
		}
	}
	return out, applied
}
