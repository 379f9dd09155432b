package database

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/xavierca1/ecold-outreach/internal/entity"
)

type IncomingEmailRepository struct {
	coll *mongo.Collection
}

func NewIncomingEmailRepository(c *MongoClient) *IncomingEmailRepository {
	return &IncomingEmailRepository{coll: c.Collection(incomingEmailsCollection)}
}

func (r *IncomingEmailRepository) Create(ctx context.Context, e *entity.IncomingEmail) error {
	if _, err := r.coll.InsertOne(ctx, e); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return entity.ErrIncomingEmailDuplicate
		}
		return err
	}
	return nil
}

func (r *IncomingEmailRepository) FindByID(ctx context.Context, ownerID, id string) (*entity.IncomingEmail, error) {
	var e entity.IncomingEmail
	if err := r.coll.FindOne(ctx, ownedBy(ownerID, id)).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrIncomingEmailNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *IncomingEmailRepository) List(ctx context.Context, ownerID string, category entity.IncomingCategory, page entity.PageRequest) (*entity.Page[*entity.IncomingEmail], error) {
	return findPage[*entity.IncomingEmail](ctx, r.coll, inboxFilter(ownerID, category),
		bson.D{{Key: "received_at", Value: -1}}, page)
}

func (r *IncomingEmailRepository) CountUnread(ctx context.Context, ownerID string, category entity.IncomingCategory) (int64, error) {
	filter := inboxFilter(ownerID, category)
	filter["is_read"] = false
	return r.coll.CountDocuments(ctx, filter)
}

func (r *IncomingEmailRepository) SetRead(ctx context.Context, ownerID, id string, read bool) error {
	return r.set(ctx, ownerID, id, bson.M{"is_read": read})
}

func (r *IncomingEmailRepository) SetProcessed(ctx context.Context, ownerID, id string, processed bool) error {
	return r.set(ctx, ownerID, id, bson.M{"is_processed": processed})
}

func (r *IncomingEmailRepository) SetCategory(ctx context.Context, ownerID, id string, category entity.IncomingCategory) error {
	return r.set(ctx, ownerID, id, bson.M{"category": category, "priority": category.Priority()})
}

func (r *IncomingEmailRepository) set(ctx context.Context, ownerID, id string, fields bson.M) error {
	res, err := r.coll.UpdateOne(ctx, ownedBy(ownerID, id), bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return entity.ErrIncomingEmailNotFound
	}
	return nil
}

// An empty category means the whole inbox.
func inboxFilter(ownerID string, category entity.IncomingCategory) bson.M {
	filter := bson.M{"owner_id": ownerID}
	if category != "" {
		filter["category"] = category
	}
	return filter
}
