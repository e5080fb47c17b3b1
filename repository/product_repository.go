package repository

import (
	"context"
	"time"

	"github.com/EnegixGlobal/Tiara-Server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ProductRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Product, error)
	// DecrementSize subtracts qty from the product's stock for the given
	// size, dropping entries that end up non-positive. Returns false when the
	// product has no such size entry (a no-op, not an error). This is a
	// read-modify-write, not a compare-and-swap; two concurrent checkouts can
	// still race it.
	DecrementSize(ctx context.Context, id primitive.ObjectID, size, qty int) (bool, error)
}

type mongoProductRepo struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepo{collection: db.Collection("products")}
}

func (r *mongoProductRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *mongoProductRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Product, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []*models.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *mongoProductRepo) DecrementSize(ctx context.Context, id primitive.ObjectID, size, qty int) (bool, error) {
	product, err := r.FindByID(ctx, id)
	if err != nil {
		return false, err
	}

	updated, applied := models.DecrementSize(product.SizeQuantity, size, qty)
	if !applied {
		return false, nil
	}

	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"sizeQuantity": updated,
			"updatedAt":    time.Now().UTC(),
		},
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
