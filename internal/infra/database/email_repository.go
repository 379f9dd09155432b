package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xavierca1/ecold-outreach/internal/entity"
)

type EmailLogRepository struct {
	coll *mongo.Collection
}

func NewEmailLogRepository(c *MongoClient) *EmailLogRepository {
	return &EmailLogRepository{coll: c.Collection(emailLogsCollection)}
}

func (r *EmailLogRepository) Create(ctx context.Context, l *entity.EmailLog) error {
	_, err := r.coll.InsertOne(ctx, l)
	return err
}

func (r *EmailLogRepository) List(ctx context.Context, ownerID string, page entity.PageRequest) (*entity.Page[*entity.EmailLog], error) {
	return findPage[*entity.EmailLog](ctx, r.coll, bson.M{"owner_id": ownerID},
		bson.D{{Key: "created_at", Value: -1}}, page)
}

type ScheduledEmailRepository struct {
	coll *mongo.Collection
}

func NewScheduledEmailRepository(c *MongoClient) *ScheduledEmailRepository {
	return &ScheduledEmailRepository{coll: c.Collection(scheduledEmailsCollection)}
}

func (r *ScheduledEmailRepository) Create(ctx context.Context, s *entity.ScheduledEmail) error {
	_, err := r.coll.InsertOne(ctx, s)
	return err
}

func (r *ScheduledEmailRepository) FindByID(ctx context.Context, ownerID, id string) (*entity.ScheduledEmail, error) {
	var s entity.ScheduledEmail
	if err := r.coll.FindOne(ctx, ownedBy(ownerID, id)).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrScheduledEmailNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *ScheduledEmailRepository) List(ctx context.Context, ownerID string, page entity.PageRequest) (*entity.Page[*entity.ScheduledEmail], error) {
	return findPage[*entity.ScheduledEmail](ctx, r.coll, bson.M{"owner_id": ownerID},
		bson.D{{Key: "schedule_time", Value: -1}}, page)
}

// FindDue returns SCHEDULED emails at or before now, oldest first, across all owners.
func (r *ScheduledEmailRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*entity.ScheduledEmail, error) {
	filter := bson.M{
		"status":        entity.EmailScheduled,
		"schedule_time": bson.M{"$lte": now},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "schedule_time", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []*entity.ScheduledEmail{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ScheduledEmailRepository) MarkSent(ctx context.Context, id, messageID string, at time.Time) error {
	update := bson.M{"$set": bson.M{
		"status":     entity.EmailSent,
		"message_id": messageID,
		"sent_at":    at,
		"updated_at": at,
	}}
	return r.updateOne(ctx, bson.M{"_id": id}, update)
}

func (r *ScheduledEmailRepository) MarkFailed(ctx context.Context, id, reason string) error {
	update := bson.M{
		"$set": bson.M{
			"status":        entity.EmailFailed,
			"error_message": reason,
			"updated_at":    time.Now(),
		},
		"$inc": bson.M{"retry_count": 1},
	}
	return r.updateOne(ctx, bson.M{"_id": id}, update)
}

// Cancel only flips emails that are still SCHEDULED.
func (r *ScheduledEmailRepository) Cancel(ctx context.Context, ownerID, id string) error {
	filter := ownedBy(ownerID, id)
	filter["status"] = entity.EmailScheduled
	update := bson.M{"$set": bson.M{"status": entity.EmailCancelled, "updated_at": time.Now()}}
	return r.updateOne(ctx, filter, update)
}

func (r *ScheduledEmailRepository) updateOne(ctx context.Context, filter, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return entity.ErrScheduledEmailNotFound
	}
	return nil
}
