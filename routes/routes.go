package routes

import (
	"github.com/EnegixGlobal/Tiara-Server/controllers"
	"github.com/EnegixGlobal/Tiara-Server/middleware"
	"github.com/gin-gonic/gin"
)

func RegisterPaymentRoutes(r *gin.Engine, pc *controllers.PaymentController, jwtSecret string) {
	// Webhook stays outside the authenticated group and must see the raw body.
	r.POST("/webhook", pc.Webhook)

	payment := r.Group("/api/v1/payment")
	payment.Use(middleware.AuthRequired(jwtSecret), middleware.RateLimit())
	payment.POST("/create-order", pc.CreateOrder)
	payment.POST("/verify-payment", pc.VerifyPayment)
}
