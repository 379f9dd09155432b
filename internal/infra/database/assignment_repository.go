package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/xavierca1/ecold-outreach/internal/entity"
)

type AssignmentRepository struct {
	coll *mongo.Collection
}

func NewAssignmentRepository(c *MongoClient) *AssignmentRepository {
	return &AssignmentRepository{coll: c.Collection(assignmentsCollection)}
}

// Bulk assign writes rows in the same millisecond; _id breaks the tie.
var newestAssigned = bson.D{{Key: "assigned_at", Value: -1}, {Key: "_id", Value: -1}}

func (r *AssignmentRepository) Create(ctx context.Context, a *entity.Assignment) error {
	_, err := r.coll.InsertOne(ctx, a)
	return err
}

func (r *AssignmentRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.coll.DeleteOne(ctx, ownedBy(ownerID, id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return entity.ErrAssignmentNotFound
	}
	return nil
}

func (r *AssignmentRepository) DeleteMany(ctx context.Context, ownerID string, ids []string) (int64, error) {
	return r.deleteWhere(ctx, bson.M{"owner_id": ownerID, "_id": bson.M{"$in": ids}})
}

func (r *AssignmentRepository) DeleteByRecruiters(ctx context.Context, ownerID string, recruiterIDs []string) (int64, error) {
	return r.deleteWhere(ctx, bson.M{"owner_id": ownerID, "recruiter_id": bson.M{"$in": recruiterIDs}})
}

func (r *AssignmentRepository) deleteWhere(ctx context.Context, filter bson.M) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *AssignmentRepository) FindByID(ctx context.Context, ownerID, id string) (*entity.Assignment, error) {
	return r.findOne(ctx, ownedBy(ownerID, id))
}

func (r *AssignmentRepository) FindActive(ctx context.Context, ownerID, recruiterID, templateID string) (*entity.Assignment, error) {
	return r.findOne(ctx, bson.M{
		"owner_id":          ownerID,
		"recruiter_id":      recruiterID,
		"template_id":       templateID,
		"assignment_status": entity.AssignmentActive,
	})
}

func (r *AssignmentRepository) findOne(ctx context.Context, filter bson.M) (*entity.Assignment, error) {
	var a entity.Assignment
	if err := r.coll.FindOne(ctx, filter).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrAssignmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AssignmentRepository) ListByTemplate(ctx context.Context, ownerID, templateID string, page entity.PageRequest) (*entity.Page[*entity.Assignment], error) {
	filter := bson.M{"owner_id": ownerID, "template_id": templateID}
	return findPage[*entity.Assignment](ctx, r.coll, filter, newestAssigned, page)
}

// ListActiveInRange matches assigned_at in [from, to).
func (r *AssignmentRepository) ListActiveInRange(ctx context.Context, ownerID, templateID string, from, to time.Time, page entity.PageRequest) (*entity.Page[*entity.Assignment], error) {
	filter := bson.M{
		"owner_id":          ownerID,
		"template_id":       templateID,
		"assignment_status": entity.AssignmentActive,
		"assigned_at":       bson.M{"$gte": from, "$lt": to},
	}
	return findPage[*entity.Assignment](ctx, r.coll, filter, newestAssigned, page)
}

func (r *AssignmentRepository) ListActiveByTemplate(ctx context.Context, ownerID, templateID string) ([]*entity.Assignment, error) {
	filter := bson.M{
		"owner_id":          ownerID,
		"template_id":       templateID,
		"assignment_status": entity.AssignmentActive,
	}
	return findAll[*entity.Assignment](ctx, r.coll, filter, newestAssigned)
}

func (r *AssignmentRepository) UpdateStatus(ctx context.Context, ownerID, id string, status entity.AssignmentStatus) error {
	update := bson.M{"$set": bson.M{"assignment_status": status, "updated_at": time.Now()}}
	return r.updateOne(ctx, ownedBy(ownerID, id), update)
}

func (r *AssignmentRepository) IncrementEmailsSent(ctx context.Context, ownerID, id string, at time.Time) error {
	update := bson.M{
		"$inc": bson.M{"emails_sent": 1},
		"$set": bson.M{"last_email_sent_at": at, "updated_at": at},
	}
	return r.updateOne(ctx, ownedBy(ownerID, id), update)
}

func (r *AssignmentRepository) updateOne(ctx context.Context, filter, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return entity.ErrAssignmentNotFound
	}
	return nil
}
