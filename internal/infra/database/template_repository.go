package database

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/xavierca1/ecold-outreach/internal/entity"
)

type TemplateRepository struct {
	coll *mongo.Collection
}

func NewTemplateRepository(c *MongoClient) *TemplateRepository {
	return &TemplateRepository{coll: c.Collection(templatesCollection)}
}

func (r *TemplateRepository) Create(ctx context.Context, t *entity.Template) error {
	if _, err := r.coll.InsertOne(ctx, t); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return entity.ErrTemplateNameExists
		}
		return err
	}
	return nil
}

func (r *TemplateRepository) Update(ctx context.Context, t *entity.Template) error {
	res, err := r.coll.ReplaceOne(ctx, ownedBy(t.OwnerID, t.ID), t)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return entity.ErrTemplateNameExists
		}
		return err
	}
	if res.MatchedCount == 0 {
		return entity.ErrTemplateNotFound
	}
	return nil
}

func (r *TemplateRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.coll.DeleteOne(ctx, ownedBy(ownerID, id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return entity.ErrTemplateNotFound
	}
	return nil
}

func (r *TemplateRepository) FindByID(ctx context.Context, ownerID, id string) (*entity.Template, error) {
	return r.findOne(ctx, ownedBy(ownerID, id))
}

func (r *TemplateRepository) FindByName(ctx context.Context, ownerID, name string) (*entity.Template, error) {
	return r.findOne(ctx, bson.M{"owner_id": ownerID, "name": name})
}

func (r *TemplateRepository) findOne(ctx context.Context, filter bson.M) (*entity.Template, error) {
	var t entity.Template
	if err := r.coll.FindOne(ctx, filter).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrTemplateNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TemplateRepository) List(ctx context.Context, ownerID string, f entity.TemplateFilter) ([]*entity.Template, error) {
	filter := bson.M{"owner_id": ownerID}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Search != "" {
		pattern := bson.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"subject": pattern},
		}
	}
	return findAll[*entity.Template](ctx, r.coll, filter, bson.D{{Key: "updated_at", Value: -1}})
}

// DemoteActive moves every other ACTIVE template of the category back to DRAFT.
func (r *TemplateRepository) DemoteActive(ctx context.Context, ownerID string, category entity.TemplateCategory, exceptID string) error {
	filter := bson.M{
		"owner_id": ownerID,
		"category": category,
		"status":   entity.TemplateActive,
		"_id":      bson.M{"$ne": exceptID},
	}
	update := bson.M{"$set": bson.M{"status": entity.TemplateDraft, "updated_at": time.Now()}}
	_, err := r.coll.UpdateMany(ctx, filter, update)
	return err
}

func (r *TemplateRepository) IncrementUsage(ctx context.Context, ownerID, id string, at time.Time) error {
	update := bson.M{
		"$inc": bson.M{"usage_count": 1},
		"$set": bson.M{"last_used_at": at, "updated_at": at},
	}
	return r.updateOne(ctx, ownedBy(ownerID, id), update)
}

func (r *TemplateRepository) IncrementEmailsSent(ctx context.Context, ownerID, id string, n int64) error {
	return r.updateOne(ctx, ownedBy(ownerID, id), bson.M{"$inc": bson.M{"emails_sent": n}})
}

func (r *TemplateRepository) updateOne(ctx context.Context, filter, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return entity.ErrTemplateNotFound
	}
	return nil
}

func ownedBy(ownerID, id string) bson.M {
	return bson.M{"_id": id, "owner_id": ownerID}
}
