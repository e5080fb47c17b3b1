package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/EnegixGlobal/Tiara-Server/gateway"
	"github.com/EnegixGlobal/Tiara-Server/middleware"
	"github.com/EnegixGlobal/Tiara-Server/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type PaymentController struct {
	Carts      *services.CartSnapshotService
	Gateway    gateway.Gateway
	Reconciler *services.OrderReconciler
	Currency   string
	Logger     *zap.Logger
}

type createOrderRequest struct {
	Coupon    string `json:"coupon"`
	AddressID string `json:"addressId"`
}

type verifyPaymentRequest struct {
	ProviderOrderID   string `json:"providerOrderId" binding:"required"`
	ProviderPaymentID string `json:"providerPaymentId" binding:"required"`
	Signature         string `json:"signature" binding:"required"`
}

type snapshotProductView struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Size     int     `json:"size"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
	Image    string  `json:"image"`
}

// CreateOrder snapshots the user's cart and opens a payment session for it.
// Nothing durable is written here; the priced cart travels inside the
// session metadata.
func (pc *PaymentController) CreateOrder(c *gin.Context) {
	userHex := middleware.GetUserID(c)
	userID, err := primitive.ObjectIDFromHex(userHex)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user id"})
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	snapshot, err := pc.Carts.Snapshot(c.Request.Context(), userID, req.Coupon)
	if err != nil {
		if errors.Is(err, services.ErrEmptyCart) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Cart is empty"})
			return
		}
		pc.Logger.Error("cart snapshot failed", zap.String("user_id", userHex), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create payment order"})
		return
	}

	meta := snapshot.Metadata(userHex, middleware.GetUserEmail(c), req.AddressID)
	receipt := newReceipt(userHex)

	sess, err := pc.Gateway.CreateOrder(snapshot.AmountMinorUnits(), pc.Currency, receipt, meta)
	if err != nil {
		pc.Logger.Error("payment session creation failed", zap.String("user_id", userHex), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create payment order"})
		return
	}

	products := make([]snapshotProductView, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		products = append(products, snapshotProductView{
			Name:     item.Name,
			Quantity: item.Quantity,
			Size:     item.Size,
			Price:    item.UnitPrice,
			Total:    item.UnitPrice * float64(item.Quantity),
			Image:    item.Image,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"sessionId": sess.ID,
		"amount":    sess.Amount,
		"currency":  sess.Currency,
		"keyId":     pc.Gateway.KeyID(),
		"products":  products,
		"subtotal":  snapshot.Subtotal,
		"discount":  snapshot.Discount,
		"total":     snapshot.Total,
	})
}

// VerifyPayment is the client-initiated confirmation channel. The submitted
// signature is checked first; the order itself is then built from the
// session's trusted metadata, never from this request.
func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing payment verification fields"})
		return
	}

	if !pc.Gateway.VerifyPaymentSignature(req.ProviderOrderID, req.ProviderPaymentID, req.Signature) {
		pc.Logger.Warn("payment signature verification failed",
			zap.String("provider_order_id", req.ProviderOrderID),
			zap.String("provider_payment_id", req.ProviderPaymentID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Payment verification failed"})
		return
	}

	sess, err := pc.Gateway.FetchOrder(req.ProviderOrderID)
	if err != nil {
		pc.Logger.Error("payment session fetch failed",
			zap.String("provider_order_id", req.ProviderOrderID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create order"})
		return
	}

	result, err := pc.Reconciler.Materialize(c.Request.Context(), req.ProviderPaymentID, sess)
	if err != nil {
		pc.Logger.Error("order materialization failed",
			zap.String("provider_payment_id", req.ProviderPaymentID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"orderId": result.OrderID,
		"message": "Payment verified and order created successfully",
	})
}

// newReceipt builds a provider receipt reference, capped well under
// Razorpay's 40 character limit.
func newReceipt(userHex string) string {
	short := userHex
	if len(short) > 8 {
		short = short[len(short)-8:]
	}
	return fmt.Sprintf("RCP%d%s", time.Now().UnixMilli(), short)
}
