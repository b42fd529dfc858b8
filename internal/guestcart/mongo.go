package guestcart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jaee/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

type mongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{
		collection: db.Collection("guest_carts"),
	}
}

func (m mongoStore) Get(ctx context.Context, sessionID string) (*domain.GuestCart, error) {
	var cart domain.GuestCart

	filter := bson.M{"session_id": sessionID}
	err := m.collection.FindOne(ctx, filter).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get guest cart: %w", err)
	}

	return &cart, nil
}

func (m mongoStore) Add(ctx context.Context, sessionID string, productID int64, qty int) error {
	if qty < 1 {
		return ErrInvalidQty
	}

	now := time.Now()

	// Repeat add increments the existing line; matches only when it exists.
	if matched, err := m.incrementLine(ctx, sessionID, productID, qty, now); err != nil {
		return err
	} else if matched {
		return nil
	}

	// No such line. The $ne guard makes the push conditional on the line
	// still being absent, and the upsert creates a missing cart, so two
	// concurrent adds of the same product cannot append it twice.
	filter := bson.M{
		"session_id":       sessionID,
		"lines.product_id": bson.M{"$ne": productID},
	}
	update := bson.M{
		"$push":        bson.M{"lines": domain.GuestCartLine{ProductID: productID, Qty: qty}},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}

	_, err := m.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// A concurrent add landed the line between the two updates;
			// fold this quantity into it.
			matched, errInc := m.incrementLine(ctx, sessionID, productID, qty, now)
			if errInc != nil {
				return errInc
			}
			if matched {
				return nil
			}
			return fmt.Errorf("failed to add line for product %d: lost update race", productID)
		}
		return fmt.Errorf("failed to add new line: %w", err)
	}

	return nil
}

func (m mongoStore) incrementLine(ctx context.Context, sessionID string, productID int64, qty int, now time.Time) (bool, error) {
	filter := bson.M{
		"session_id":       sessionID,
		"lines.product_id": productID,
	}
	update := bson.M{
		"$inc": bson.M{"lines.$.qty": qty},
		"$set": bson.M{"updated_at": now},
	}

	res, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to increment line: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (m mongoStore) SetQuantity(ctx context.Context, sessionID string, productID int64, qty int) error {
	if qty <= 0 {
		return m.Remove(ctx, sessionID, productID)
	}

	filter := bson.M{
		"session_id":       sessionID,
		"lines.product_id": productID,
	}

	update := bson.M{
		"$set": bson.M{
			"lines.$[elem].qty": qty,
			"updated_at":        time.Now(),
		},
	}

	arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"elem.product_id": productID},
		},
	})

	// An absent line matches no document; that is a no-op, not an error.
	_, err := m.collection.UpdateOne(ctx, filter, update, arrayFilters)
	if err != nil {
		return fmt.Errorf("failed to set line quantity: %w", err)
	}
	return nil
}

func (m mongoStore) Remove(ctx context.Context, sessionID string, productID int64) error {
	filter := bson.M{"session_id": sessionID}
	update := bson.M{
		"$pull": bson.M{
			"lines": bson.M{"product_id": productID},
		},
		"$set": bson.M{"updated_at": time.Now()},
	}

	_, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to remove line: %w", err)
	}
	return nil
}

func (m mongoStore) Clear(ctx context.Context, sessionID string) error {
	filter := bson.M{"session_id": sessionID}

	_, err := m.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to clear guest cart: %w", err)
	}
	return nil
}

func (m mongoStore) Count(ctx context.Context, sessionID string) (int, error) {
	cart, err := m.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return cart.Count(), nil
}

func (m *mongoStore) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // 90 days TTL
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
