package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitirgenalperen/ilkevim-sub000/models"
	"github.com/bitirgenalperen/ilkevim-sub000/pkg/query"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaxResults caps a property search when the caller gives no limit or a larger one.
const MaxResults = 200

const propertiesCollection = "properties"

type PropertiesRepository struct {
	coll *mongo.Collection
}

func NewPropertiesRepository(db *mongo.Database) *PropertiesRepository {
	return &PropertiesRepository{coll: db.Collection(propertiesCollection)}
}

// EnsureIndexes creates the indexes backing the search filters. Safe to call on every start.
func (r *PropertiesRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "location.city", Value: 1}, {Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "features.propertyType", Value: 1}}},
		{Keys: bson.D{{Key: "listingType", Value: 1}}},
		{Keys: bson.D{{Key: "amenities", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create property indexes: %w", err)
	}
	return nil
}

// EffectiveLimit applies the MaxResults ceiling to an optional caller limit.
func EffectiveLimit(limit *int) int {
	if limit == nil || *limit <= 0 || *limit > MaxResults {
		return MaxResults
	}
	return *limit
}

// Find returns properties matching pred, newest first. Ties on createdAt are broken
// by _id so paging through identical timestamps stays stable.
func (r *PropertiesRepository) Find(ctx context.Context, pred query.Predicate, limit *int) ([]*models.Property, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(EffectiveLimit(limit)))

	cur, err := r.coll.Find(ctx, pred.BSON(), opts)
	if err != nil {
		return nil, fmt.Errorf("find properties: %w", err)
	}
	defer cur.Close(ctx)

	items := make([]*models.Property, 0)
	for cur.Next(ctx) {
		var p models.Property
		if err := cur.Decode(&p); err != nil {
			return nil, fmt.Errorf("decode property: %w", err)
		}
		items = append(items, &p)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate properties: %w", err)
	}
	return items, nil
}

func (r *PropertiesRepository) Count(ctx context.Context, pred query.Predicate) (int, error) {
	n, err := r.coll.CountDocuments(ctx, pred.BSON())
	if err != nil {
		return 0, fmt.Errorf("count properties: %w", err)
	}
	return int(n), nil
}

// GetByID returns nil, nil when the id is malformed or unknown.
func (r *PropertiesRepository) GetByID(ctx context.Context, id string) (*models.Property, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var p models.Property
	err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts p with a fresh id. A preset CreatedAt is kept, which imports rely on.
func (r *PropertiesRepository) Create(ctx context.Context, p *models.Property) error {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Amenities == nil {
		p.Amenities = []string{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	_, err := r.coll.InsertOne(ctx, p)
	return err
}

// Update overwrites the editable fields, keeping createdAt and the image keys.
func (r *PropertiesRepository) Update(ctx context.Context, p *models.Property) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: p.ID}}, bson.D{{Key: "$set", Value: bson.D{
		{Key: "title", Value: p.Title},
		{Key: "description", Value: p.Description},
		{Key: "descriptionLocalized", Value: p.DescriptionLocalized},
		{Key: "price", Value: p.Price},
		{Key: "location", Value: p.Location},
		{Key: "features", Value: p.Features},
		{Key: "amenities", Value: p.Amenities},
		{Key: "listingType", Value: p.ListingType},
		{Key: "status", Value: p.Status},
		{Key: "updatedAt", Value: p.UpdatedAt},
	}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PropertiesRepository) SetStatus(ctx context.Context, id, status string) (bool, error) {
	return r.update(ctx, id, bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: status},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}})
}

func (r *PropertiesRepository) AddImage(ctx context.Context, id, key string) (bool, error) {
	return r.update(ctx, id, bson.D{
		{Key: "$push", Value: bson.D{{Key: "images", Value: key}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}},
	})
}

func (r *PropertiesRepository) RemoveImage(ctx context.Context, id, key string) (bool, error) {
	return r.update(ctx, id, bson.D{
		{Key: "$pull", Value: bson.D{{Key: "images", Value: key}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}},
	})
}

func (r *PropertiesRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *PropertiesRepository) update(ctx context.Context, id string, change bson.D) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, change)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}
