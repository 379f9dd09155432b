package database

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/xavierca1/ecold-outreach/internal/entity"
)

type RecruiterRepository struct {
	coll *mongo.Collection
}

func NewRecruiterRepository(c *MongoClient) *RecruiterRepository {
	return &RecruiterRepository{coll: c.Collection(recruitersCollection)}
}

func (r *RecruiterRepository) Create(ctx context.Context, rec *entity.Recruiter) error {
	if _, err := r.coll.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return entity.ErrRecruiterEmailExists
		}
		return err
	}
	return nil
}

func (r *RecruiterRepository) Update(ctx context.Context, rec *entity.Recruiter) error {
	res, err := r.coll.ReplaceOne(ctx, ownedBy(rec.OwnerID, rec.ID), rec)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return entity.ErrRecruiterEmailExists
		}
		return err
	}
	if res.MatchedCount == 0 {
		return entity.ErrRecruiterNotFound
	}
	return nil
}

func (r *RecruiterRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.coll.DeleteOne(ctx, ownedBy(ownerID, id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return entity.ErrRecruiterNotFound
	}
	return nil
}

func (r *RecruiterRepository) DeleteMany(ctx context.Context, ownerID string, ids []string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"owner_id": ownerID, "_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *RecruiterRepository) FindByID(ctx context.Context, ownerID, id string) (*entity.Recruiter, error) {
	return r.findOne(ctx, ownedBy(ownerID, id))
}

func (r *RecruiterRepository) FindByEmail(ctx context.Context, ownerID, email string) (*entity.Recruiter, error) {
	return r.findOne(ctx, bson.M{"owner_id": ownerID, "email": email})
}

func (r *RecruiterRepository) findOne(ctx context.Context, filter bson.M) (*entity.Recruiter, error) {
	var rec entity.Recruiter
	if err := r.coll.FindOne(ctx, filter).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrRecruiterNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *RecruiterRepository) List(ctx context.Context, ownerID string, f entity.RecruiterFilter, page entity.PageRequest) (*entity.Page[*entity.Recruiter], error) {
	filter := bson.M{"owner_id": ownerID}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Company != "" {
		filter["company_name"] = bson.Regex{Pattern: regexp.QuoteMeta(f.Company), Options: "i"}
	}
	if f.Search != "" {
		pattern := bson.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"recruiter_name": pattern},
			bson.M{"email": pattern},
			bson.M{"company_name": pattern},
			bson.M{"job_role": pattern},
		}
	}
	return findPage[*entity.Recruiter](ctx, r.coll, filter, bson.D{{Key: "created_at", Value: -1}}, page)
}

func (r *RecruiterRepository) ListUncontacted(ctx context.Context, ownerID string) ([]*entity.Recruiter, error) {
	filter := bson.M{"owner_id": ownerID, "status": entity.RecruiterPending}
	return findAll[*entity.Recruiter](ctx, r.coll, filter, bson.D{{Key: "created_at", Value: 1}})
}

func (r *RecruiterRepository) CountByStatus(ctx context.Context, ownerID string) (map[entity.RecruiterStatus]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"owner_id": ownerID}}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status entity.RecruiterStatus `bson:"_id"`
		Count  int64                  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[entity.RecruiterStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
