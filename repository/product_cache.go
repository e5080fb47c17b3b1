package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/EnegixGlobal/Tiara-Server/models"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const productCachePrefix = "product:detail:"

// CachedProductRepository is a read-through Redis cache in front of the mongo
// product repository. Reads serve the cart snapshot path; decrements
// invalidate the cached entry so later snapshots see fresh stock.
type CachedProductRepository struct {
	inner  ProductRepository
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedProductRepository(inner ProductRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedProductRepository {
	return &CachedProductRepository{inner: inner, redis: client, ttl: ttl, logger: logger}
}

func (r *CachedProductRepository) cacheKey(id primitive.ObjectID) string {
	return productCachePrefix + id.Hex()
}

func (r *CachedProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	if cached := r.getCached(ctx, id); cached != nil {
		return cached, nil
	}

	product, err := r.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.setCached(ctx, product)
	return product, nil
}

func (r *CachedProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Product, error) {
	products := make([]*models.Product, 0, len(ids))
	misses := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if cached := r.getCached(ctx, id); cached != nil {
			products = append(products, cached)
		} else {
			misses = append(misses, id)
		}
	}
	if len(misses) == 0 {
		return products, nil
	}

	fetched, err := r.inner.FindByIDs(ctx, misses)
	if err != nil {
		return nil, err
	}
	for _, p := range fetched {
		r.setCached(ctx, p)
	}
	return append(products, fetched...), nil
}

func (r *CachedProductRepository) DecrementSize(ctx context.Context, id primitive.ObjectID, size, qty int) (bool, error) {
	applied, err := r.inner.DecrementSize(ctx, id, size, qty)
	if err == nil && applied {
		if derr := r.redis.Del(ctx, r.cacheKey(id)).Err(); derr != nil {
			r.logger.Warn("failed to invalidate product cache entry",
				zap.String("product_id", id.Hex()),
				zap.Error(derr),
			)
		}
	}
	return applied, err
}

func (r *CachedProductRepository) getCached(ctx context.Context, id primitive.ObjectID) *models.Product {
	data, err := r.redis.Get(ctx, r.cacheKey(id)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		r.logger.Warn("product cache read failed", zap.Error(err))
		return nil
	}

	var product models.Product
	if err := json.Unmarshal([]byte(data), &product); err != nil {
		r.logger.Warn("failed to unmarshal cached product", zap.Error(err))
		return nil
	}
	return &product
}

func (r *CachedProductRepository) setCached(ctx context.Context, product *models.Product) {
	data, err := json.Marshal(product)
	if err != nil {
		return
	}
	if err := r.redis.Set(ctx, r.cacheKey(product.ID), data, r.ttl).Err(); err != nil {
		r.logger.Warn("product cache write failed", zap.Error(err))
	}
}
