package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/EnegixGlobal/Tiara-Server/gateway"
	"github.com/EnegixGlobal/Tiara-Server/models"
	awspkg "github.com/EnegixGlobal/Tiara-Server/pkg/aws"
	"github.com/EnegixGlobal/Tiara-Server/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// EventPublisher publishes order events to the message broker.
type EventPublisher interface {
	Publish(event models.OrderEvent) error
}

// ReconcileResult is the terminal outcome of a confirmation attempt.
type ReconcileResult struct {
	OrderID string
	// AlreadyProcessed is true when another confirmation channel won the
	// claim first. This is a success, not an error.
	AlreadyProcessed bool
}

// OrderReconciler turns a confirmed payment into an order exactly once.
// Both confirmation channels (the client's verify-payment call and the
// provider webhook) funnel into Materialize; the unique-key insert in the
// order repository is the only arbitration between them. No lock is held
// across any of the I/O steps.
type OrderReconciler struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	users    repository.UserRepository

	// Event fan-out is optional and best-effort.
	events      EventPublisher
	sns         awspkg.SNSPublisher
	snsTopicArn string

	logger *zap.Logger
}

func NewOrderReconciler(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	events EventPublisher,
	sns awspkg.SNSPublisher,
	snsTopicArn string,
	logger *zap.Logger,
) *OrderReconciler {
	return &OrderReconciler{
		orders:      orders,
		products:    products,
		users:       users,
		events:      events,
		sns:         sns,
		snsTopicArn: snsTopicArn,
		logger:      logger,
	}
}

// Materialize creates the order for paymentRef from the trusted session
// metadata, then decrements inventory and clears the cart. The order insert
// and the idempotency claim are the same atomic operation; once the insert
// has succeeded, failures in the follow-up steps are logged for manual
// reconciliation but never roll the order back.
func (r *OrderReconciler) Materialize(ctx context.Context, paymentRef string, sess *gateway.Session) (*ReconcileResult, error) {
	order, err := buildOrder(paymentRef, sess)
	if err != nil {
		return nil, err
	}

	if err := r.orders.Create(ctx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicatePayment) {
			result := &ReconcileResult{AlreadyProcessed: true}
			if existing, ferr := r.orders.FindByPaymentReference(ctx, paymentRef); ferr == nil {
				result.OrderID = existing.ID.Hex()
			}
			r.logger.Info("payment already materialized, absorbing duplicate confirmation",
				zap.String("payment_reference_id", paymentRef),
				zap.String("order_id", result.OrderID),
			)
			return result, nil
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	r.adjustInventory(ctx, order)

	if err := r.users.ClearCart(ctx, order.UserID); err != nil {
		r.logger.Error("cart clear failed after order creation, needs manual cleanup",
			zap.String("order_id", order.ID.Hex()),
			zap.String("user_id", order.UserID.Hex()),
			zap.Error(err),
		)
	}

	r.publishOrderEvent(ctx, order, paymentRef, sess)

	r.logger.Info("order materialized",
		zap.String("order_id", order.ID.Hex()),
		zap.String("payment_reference_id", paymentRef),
		zap.Float64("total", order.Total),
	)
	return &ReconcileResult{OrderID: order.ID.Hex()}, nil
}

// buildOrder constructs the order solely from the session metadata stored at
// checkout time. Nothing from the confirmation request body is consulted.
func buildOrder(paymentRef string, sess *gateway.Session) (*models.Order, error) {
	userID, err := primitive.ObjectIDFromHex(sess.Metadata.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id in session metadata: %w", err)
	}

	products := make([]models.OrderProduct, 0, len(sess.Metadata.Items))
	for _, item := range sess.Metadata.Items {
		productID, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product id in session metadata: %w", err)
		}
		products = append(products, models.OrderProduct{
			ProductID:  productID,
			Quantity:   item.Qty,
			Size:       item.Size,
			IsReviewed: false,
		})
	}

	return &models.Order{
		ID:                 primitive.NewObjectID(),
		UserID:             userID,
		PaymentReferenceID: paymentRef,
		Products:           products,
		Subtotal:           sess.Metadata.Subtotal,
		Total:              float64(sess.Amount) / 100,
		Shipping: models.Shipping{
			Email:     sess.Metadata.Email,
			AddressID: sess.Metadata.AddressID,
		},
		DeliveryStatus: models.DeliveryStatusPending,
		PaymentStatus:  models.PaymentStatusPaid,
	}, nil
}

// adjustInventory decrements stock per line item, best-effort sequential. A
// failure on one product does not stop the others and never rolls back the
// order; the discrepancy is logged for out-of-band reconciliation.
func (r *OrderReconciler) adjustInventory(ctx context.Context, order *models.Order) {
	for _, item := range order.Products {
		applied, err := r.products.DecrementSize(ctx, item.ProductID, item.Size, item.Quantity)
		if err != nil {
			r.logger.Error("inventory decrement failed, stock needs manual reconciliation",
				zap.String("order_id", order.ID.Hex()),
				zap.String("product_id", item.ProductID.Hex()),
				zap.Int("size", item.Size),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
			continue
		}
		if !applied {
			r.logger.Warn("size entry already depleted at decrement time",
				zap.String("order_id", order.ID.Hex()),
				zap.String("product_id", item.ProductID.Hex()),
				zap.Int("size", item.Size),
			)
		}
	}
}

// publishOrderEvent emits the order-created event to Kafka and, when
// configured, to SNS. Both are best-effort.
func (r *OrderReconciler) publishOrderEvent(ctx context.Context, order *models.Order, paymentRef string, sess *gateway.Session) {
	event := models.OrderEvent{
		Type:      "order_created",
		OrderID:   order.ID.Hex(),
		UserID:    order.UserID.Hex(),
		PaymentID: paymentRef,
		Amount:    sess.Amount,
		Currency:  sess.Currency,
		Timestamp: time.Now().UTC(),
	}

	if r.events != nil {
		if err := r.events.Publish(event); err != nil {
			r.logger.Error("failed to publish order event to Kafka",
				zap.String("order_id", event.OrderID),
				zap.Error(err),
			)
		}
	}

	if r.sns != nil && r.snsTopicArn != "" {
		payload, _ := json.Marshal(event)
		if err := r.sns.Publish(ctx, r.snsTopicArn, payload); err != nil {
			r.logger.Error("failed to publish order event to SNS",
				zap.String("order_id", event.OrderID),
				zap.Error(err),
			)
		}
	}
}
