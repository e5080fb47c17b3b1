package repository

import (
	"context"
	"errors"
	"time"

	"github.com/EnegixGlobal/Tiara-Server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrDuplicatePayment is returned when an order for the same payment
// reference already exists. Callers treat this as "already processed", not as
// a failure: it is the expected outcome for the loser of the
// verify-vs-webhook race and for webhook redeliveries.
var ErrDuplicatePayment = errors.New("order already exists for payment reference")

type OrderRepository interface {
	// Create inserts the order. The insert doubles as the idempotency claim:
	// the unique index on paymentReferenceId guarantees at most one order per
	// payment, and a duplicate-key violation surfaces as ErrDuplicatePayment.
	Create(ctx context.Context, order *models.Order) error
	FindByPaymentReference(ctx context.Context, paymentRef string) (*models.Order, error)
}

type mongoOrderRepo struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) OrderRepository {
	return &mongoOrderRepo{collection: db.Collection("orders")}
}

func (r *mongoOrderRepo) Create(ctx context.Context, order *models.Order) error {
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, order)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicatePayment
	}
	return err
}

func (r *mongoOrderRepo) FindByPaymentReference(ctx context.Context, paymentRef string) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, bson.M{"paymentReferenceId": paymentRef}).Decode(&order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}
