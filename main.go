package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/EnegixGlobal/Tiara-Server/config"
	"github.com/EnegixGlobal/Tiara-Server/controllers"
	"github.com/EnegixGlobal/Tiara-Server/database"
	"github.com/EnegixGlobal/Tiara-Server/gateway"
	appkafka "github.com/EnegixGlobal/Tiara-Server/kafka"
	"github.com/EnegixGlobal/Tiara-Server/logger"
	awspkg "github.com/EnegixGlobal/Tiara-Server/pkg/aws"
	"github.com/EnegixGlobal/Tiara-Server/repository"
	"github.com/EnegixGlobal/Tiara-Server/routes"
	"github.com/EnegixGlobal/Tiara-Server/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("❌ Failed to load config: ", err)
	}

	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()

	if err := database.Connect(cfg.MongoURI, cfg.MongoDB); err != nil {
		log.Fatal("❌ Failed to connect to DB: ", err)
	}
	defer database.Close()

	indexCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.EnsureIndexes(indexCtx, database.DB); err != nil {
		log.Fatal("❌ Failed to create indexes: ", err)
	}

	orderRepo := repository.NewOrderRepository(database.DB)
	userRepo := repository.NewUserRepository(database.DB)

	var productRepo repository.ProductRepository = repository.NewProductRepository(database.DB)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		productRepo = repository.NewCachedProductRepository(productRepo, redisClient, 10*time.Minute, logger.Log)
		logger.Log.Info("product cache enabled", zap.String("redis_addr", cfg.RedisAddr))
	}

	gw := buildGateway(cfg)

	var events services.EventPublisher
	if cfg.KafkaBrokers != "" {
		producer := appkafka.NewOrderEventProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaOrderTopic, logger.Log)
		defer producer.Close()
		events = producer
	}

	var snsClient awspkg.SNSPublisher
	if cfg.OrderSNSTopicARN != "" {
		awsCfg, err := awspkg.LoadConfig(context.Background())
		if err != nil {
			log.Fatal("❌ Failed to load AWS config: ", err)
		}
		snsClient = awspkg.NewSNSClient(awsCfg)
	}

	reconciler := services.NewOrderReconciler(orderRepo, productRepo, userRepo, events, snsClient, cfg.OrderSNSTopicARN, logger.Log)
	carts := services.NewCartSnapshotService(userRepo, productRepo, logger.Log)

	pc := &controllers.PaymentController{
		Carts:      carts,
		Gateway:    gw,
		Reconciler: reconciler,
		Currency:   cfg.PaymentCurrency,
		Logger:     logger.Log,
	}

	r := gin.New()
	r.Use(gin.Recovery(), logger.RequestLogger())
	routes.RegisterPaymentRoutes(r, pc, cfg.JWTSecret)

	logger.Log.Info("server running", zap.String("port", cfg.Port), zap.String("provider", cfg.PaymentProvider))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("❌ Server failed: ", err)
	}
}

func buildGateway(cfg *config.Config) gateway.Gateway {
	switch cfg.PaymentProvider {
	case config.ProviderStripe:
		return gateway.NewStripeGateway(
			cfg.StripeSecretKey,
			cfg.StripeWebhookSecret,
			"http://localhost:5173/payment/success",
			"http://localhost:5173/payment/cancel",
			logger.Log,
		)
	default:
		return gateway.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayWebhookSecret, logger.Log)
	}
}
