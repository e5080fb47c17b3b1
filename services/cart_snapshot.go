package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/EnegixGlobal/Tiara-Server/gateway"
	"github.com/EnegixGlobal/Tiara-Server/models"
	"github.com/EnegixGlobal/Tiara-Server/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ErrEmptyCart is returned when a checkout is attempted with no purchasable
// cart lines.
var ErrEmptyCart = errors.New("cart is empty")

// couponDiscounts is the allow-list of coupon codes and their flat discount
// amounts. Unknown or blank codes apply no discount, they never fail checkout.
var couponDiscounts = map[string]float64{
	"SUMILSUTHAR197": 200,
	"NIKE2024":       200,
}

// SnapshotItem is one priced, stock-clamped cart line.
type SnapshotItem struct {
	ProductID primitive.ObjectID
	Name      string
	Image     string
	UnitPrice float64
	Size      int
	Quantity  int
}

// CartSnapshot is an immutable priced view of a cart taken at checkout time.
// It exists only for the duration of the checkout request; its content is
// persisted inside the payment session metadata so the confirmation step
// never has to re-read a possibly-changed cart.
type CartSnapshot struct {
	Items    []SnapshotItem
	Subtotal float64
	Discount float64
	Total    float64
}

// AmountMinorUnits returns the total in the smallest currency unit, as the
// payment gateway expects it.
func (s *CartSnapshot) AmountMinorUnits() int64 {
	return int64(math.Round(s.Total * 100))
}

// Metadata freezes the snapshot into the structure stored in the payment
// session.
func (s *CartSnapshot) Metadata(userID, email, addressID string) gateway.CheckoutMetadata {
	items := make([]gateway.MetadataItem, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, gateway.MetadataItem{
			ProductID: item.ProductID.Hex(),
			Qty:       item.Quantity,
			Size:      item.Size,
		})
	}
	return gateway.CheckoutMetadata{
		Version:   gateway.MetadataVersion,
		UserID:    userID,
		Email:     email,
		AddressID: addressID,
		Subtotal:  s.Subtotal,
		Discount:  s.Discount,
		Items:     items,
	}
}

// CartSnapshotService resolves a user's cart against live prices and stock.
// It never mutates persistent state.
type CartSnapshotService struct {
	users    repository.UserRepository
	products repository.ProductRepository
	logger   *zap.Logger
}

func NewCartSnapshotService(users repository.UserRepository, products repository.ProductRepository, logger *zap.Logger) *CartSnapshotService {
	return &CartSnapshotService{users: users, products: products, logger: logger}
}

// Snapshot prices the user's current cart. Requested quantities are clamped
// down to the live available stock for the requested size, never raised;
// lines with no available stock are dropped.
func (s *CartSnapshotService) Snapshot(ctx context.Context, userID primitive.ObjectID, coupon string) (*CartSnapshot, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user cart: %w", err)
	}
	if len(user.Cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	ids := make([]primitive.ObjectID, 0, len(user.Cart.Items))
	for _, item := range user.Cart.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load cart products: %w", err)
	}
	byID := make(map[primitive.ObjectID]*models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	snapshot := &CartSnapshot{}
	for _, item := range user.Cart.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			s.logger.Warn("cart references missing product, skipping line",
				zap.String("product_id", item.ProductID.Hex()),
				zap.String("user_id", userID.Hex()),
			)
			continue
		}

		qty := item.Qty
		if available := product.QuantityForSize(item.Size); qty > available {
			qty = available
		}
		if qty <= 0 {
			continue
		}

		snapshot.Items = append(snapshot.Items, SnapshotItem{
			ProductID: product.ID,
			Name:      product.Brand + " " + product.Name,
			Image:     product.Image,
			UnitPrice: product.Price,
			Size:      item.Size,
			Quantity:  qty,
		})
		snapshot.Subtotal += product.Price * float64(qty)
	}

	if len(snapshot.Items) == 0 {
		return nil, ErrEmptyCart
	}

	if code := strings.ToUpper(strings.TrimSpace(coupon)); code != "" {
		snapshot.Discount = couponDiscounts[code]
	}

	snapshot.Total = snapshot.Subtotal - snapshot.Discount
	if snapshot.Total < 0 {
		snapshot.Total = 0
	}
	return snapshot, nil
}
