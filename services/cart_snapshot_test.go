package services

import (
	"context"
	"testing"

	"github.com/EnegixGlobal/Tiara-Server/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func snapshotFixtures() (*memUserRepo, *memProductRepo, primitive.ObjectID, primitive.ObjectID) {
	userID := primitive.NewObjectID()
	productID := primitive.NewObjectID()

	products := newMemProductRepo(&models.Product{
		ID:           productID,
		Name:         "Air Zoom",
		Brand:        "Nike",
		Price:        1000,
		SizeQuantity: []models.SizeQuantity{{Size: 9, Quantity: 5}},
	})
	users := &memUserRepo{user: &models.User{
		ID:    userID,
		Email: "shopper@example.com",
		Cart: models.Cart{
			Items:      []models.CartItem{{ProductID: productID, Qty: 2, Size: 9}},
			TotalPrice: 2000,
		},
	}}
	return users, products, userID, productID
}

func TestSnapshotAppliesCouponDiscount(t *testing.T) {
	users, products, userID, _ := snapshotFixtures()
	s := NewCartSnapshotService(users, products, zap.NewNop())

	snap, err := s.Snapshot(context.Background(), userID, "NIKE2024")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.Subtotal != 2000 || snap.Discount != 200 || snap.Total != 1800 {
		t.Fatalf("expected 2000/200/1800, got %v/%v/%v", snap.Subtotal, snap.Discount, snap.Total)
	}
	if snap.AmountMinorUnits() != 180000 {
		t.Fatalf("expected 180000 minor units, got %d", snap.AmountMinorUnits())
	}
}

func TestSnapshotCouponIsCaseInsensitive(t *testing.T) {
	users, products, userID, _ := snapshotFixtures()
	s := NewCartSnapshotService(users, products, zap.NewNop())

	snap, err := s.Snapshot(context.Background(), userID, "  nike2024 ")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.Discount != 200 {
		t.Fatalf("expected normalized coupon to apply, got discount %v", snap.Discount)
	}
}

func TestSnapshotUnknownCouponAppliesNoDiscount(t *testing.T) {
	users, products, userID, _ := snapshotFixtures()
	s := NewCartSnapshotService(users, products, zap.NewNop())

	snap, err := s.Snapshot(context.Background(), userID, "BOGUS")
	if err != nil {
		t.Fatalf("unknown coupon must not fail checkout: %v", err)
	}
	if snap.Discount != 0 || snap.Total != 2000 {
		t.Fatalf("expected no discount, got %v/%v", snap.Discount, snap.Total)
	}
}

func TestSnapshotClampsQuantityToStock(t *testing.T) {
	users, products, userID, productID := snapshotFixtures()
	users.user.Cart.Items = []models.CartItem{{ProductID: productID, Qty: 9, Size: 9}}
	s := NewCartSnapshotService(users, products, zap.NewNop())

	snap, err := s.Snapshot(context.Background(), userID, "")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(snap.Items) != 1 || snap.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity clamped to 5, got %+v", snap.Items)
	}
	if snap.Subtotal != 5000 {
		t.Fatalf("expected subtotal priced from clamped quantity, got %v", snap.Subtotal)
	}
}

func TestSnapshotDropsOutOfStockLines(t *testing.T) {
	users, products, userID, productID := snapshotFixtures()
	users.user.Cart.Items = []models.CartItem{{ProductID: productID, Qty: 2, Size: 12}}
	s := NewCartSnapshotService(users, products, zap.NewNop())

	if _, err := s.Snapshot(context.Background(), userID, ""); err != ErrEmptyCart {
		t.Fatalf("expected ErrEmptyCart when every line is out of stock, got %v", err)
	}
}

func TestSnapshotEmptyCart(t *testing.T) {
	users, products, userID, _ := snapshotFixtures()
	users.user.Cart.Items = nil
	s := NewCartSnapshotService(users, products, zap.NewNop())

	if _, err := s.Snapshot(context.Background(), userID, ""); err != ErrEmptyCart {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestSnapshotSkipsMissingProducts(t *testing.T) {
	users, products, userID, productID := snapshotFixtures()
	users.user.Cart.Items = append(users.user.Cart.Items,
		models.CartItem{ProductID: primitive.NewObjectID(), Qty: 1, Size: 9})
	s := NewCartSnapshotService(users, products, zap.NewNop())

	snap, err := s.Snapshot(context.Background(), userID, "")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(snap.Items) != 1 || snap.Items[0].ProductID != productID {
		t.Fatalf("expected only the existing product, got %+v", snap.Items)
	}
}

func TestSnapshotTotalNeverNegative(t *testing.T) {
	users, products, userID, productID := snapshotFixtures()
	products.products[productID].Price = 50
	users.user.Cart.Items = []models.CartItem{{ProductID: productID, Qty: 1, Size: 9}}
	s := NewCartSnapshotService(users, products, zap.NewNop())

	snap, err := s.Snapshot(context.Background(), userID, "NIKE2024")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.Total != 0 {
		t.Fatalf("total must floor at zero, got %v", snap.Total)
	}
}

func TestSnapshotMetadataFreezesCart(t *testing.T) {
	users, products, userID, productID := snapshotFixtures()
	s := NewCartSnapshotService(users, products, zap.NewNop())

	snap, err := s.Snapshot(context.Background(), userID, "NIKE2024")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	meta := snap.Metadata(userID.Hex(), "shopper@example.com", "addr_1")
	if meta.UserID != userID.Hex() || meta.Subtotal != 2000 || meta.Discount != 200 {
		t.Fatalf("metadata mismatch: %+v", meta)
	}
	if len(meta.Items) != 1 || meta.Items[0].ProductID != productID.Hex() || meta.Items[0].Qty != 2 {
		t.Fatalf("metadata items mismatch: %+v", meta.Items)
	}
}
