package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartItem struct {
	ProductID primitive.ObjectID `json:"productId" bson:"productId"`
	Qty       int                `json:"qty" bson:"qty"`
	Size      int                `json:"size" bson:"size"`
}

type Cart struct {
	Items      []CartItem `json:"items" bson:"items"`
	TotalPrice float64    `json:"totalPrice" bson:"totalPrice"`
}

type User struct {
	ID    primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name  string             `json:"name" bson:"name"`
	Email string             `json:"email" bson:"email"`
	Role  string             `json:"role,omitempty" bson:"role,omitempty"`
	Cart  Cart               `json:"cart" bson:"cart"`
}
