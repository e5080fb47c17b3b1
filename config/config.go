package config

import (
	"fmt"
	"os"
)

const (
	ProviderRazorpay = "razorpay"
	ProviderStripe   = "stripe"
)

type Config struct {
	Port string
	Env  string

	MongoURI string
	MongoDB  string

	JWTSecret string

	// Payment gateway selection and credentials. Only the credentials of the
	// selected provider are required.
	PaymentProvider       string
	PaymentCurrency       string
	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string // optional; empty disables webhook signature checks
	StripeSecretKey       string
	StripeWebhookSecret   string

	// Optional infrastructure. Each is disabled when its variable is empty.
	RedisAddr        string
	KafkaBrokers     string
	KafkaOrderTopic  string
	OrderSNSTopicARN string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:                  getEnv("PORT", "5000"),
		Env:                   getEnv("APP_ENV", "development"),
		MongoURI:              os.Getenv("MONGO_URI"),
		MongoDB:               getEnv("MONGO_DB", "tiarasteps"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		PaymentProvider:       getEnv("PAYMENT_PROVIDER", ProviderRazorpay),
		PaymentCurrency:       getEnv("PAYMENT_CURRENCY", "INR"),
		RazorpayKeyID:         os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:     os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayWebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
		StripeSecretKey:       os.Getenv("STRIPE_API_KEY"),
		StripeWebhookSecret:   os.Getenv("STRIPE_WEBHOOK_SECRET"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		KafkaBrokers:          os.Getenv("KAFKA_BROKERS"),
		KafkaOrderTopic:       getEnv("KAFKA_ORDER_TOPIC", "order-events"),
		OrderSNSTopicARN:      os.Getenv("ORDER_SNS_TOPIC_ARN"),
	}

	if cfg.MongoURI == "" || cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing required environment variables MONGO_URI or JWT_SECRET")
	}

	switch cfg.PaymentProvider {
	case ProviderRazorpay:
		if cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" {
			return nil, fmt.Errorf("PAYMENT_PROVIDER=razorpay requires RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET")
		}
	case ProviderStripe:
		if cfg.StripeSecretKey == "" || cfg.StripeWebhookSecret == "" {
			return nil, fmt.Errorf("PAYMENT_PROVIDER=stripe requires STRIPE_API_KEY and STRIPE_WEBHOOK_SECRET")
		}
	default:
		return nil, fmt.Errorf("unsupported PAYMENT_PROVIDER %q", cfg.PaymentProvider)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
