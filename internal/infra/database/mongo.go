package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/xavierca1/ecold-outreach/internal/entity"
)

const (
	templatesCollection       = "email_templates"
	recruitersCollection      = "recruiters"
	assignmentsCollection     = "recruiter_template_assignments"
	emailLogsCollection       = "email_logs"
	scheduledEmailsCollection = "scheduled_emails"
	incomingEmailsCollection  = "incoming_emails"
)

// MongoClient wraps the driver client and the outreach database.
type MongoClient struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoClient(ctx context.Context, uri, database string) (*MongoClient, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoClient{client: client, db: client.Database(database)}, nil
}

func (c *MongoClient) Collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}

func (c *MongoClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

func (c *MongoClient) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// CreateIndexes declares the uniqueness rules the repositories rely on,
// plus the indexes behind the hot queries.
func (c *MongoClient) CreateIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	indexes := map[string][]mongo.IndexModel{
		templatesCollection: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "name", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "category", Value: 1}, {Key: "status", Value: 1}}},
		},
		recruitersCollection: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "status", Value: 1}}},
		},
		assignmentsCollection: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "template_id", Value: 1}, {Key: "assignment_status", Value: 1}, {Key: "assigned_at", Value: -1}}},
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "recruiter_id", Value: 1}}},
		},
		emailLogsCollection: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		scheduledEmailsCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "schedule_time", Value: 1}}},
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "schedule_time", Value: -1}}},
		},
		incomingEmailsCollection: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "message_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "category", Value: 1}, {Key: "received_at", Value: -1}}},
		},
	}

	for name, models := range indexes {
		if _, err := c.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}
	return nil
}

// findPage runs a filtered, sorted page query plus the matching count.
func findPage[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, sort bson.D, req entity.PageRequest) (*entity.Page[T], error) {
	req = req.Normalize()
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(stableSort(sort)).
		SetSkip(req.Offset()).
		SetLimit(int64(req.Size))

	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return entity.NewPage(out, req, total), nil
}

// stableSort appends _id to a sort so skip/limit pages never overlap when
// the leading keys tie.
func stableSort(sort bson.D) bson.D {
	dir := any(1)
	for _, e := range sort {
		if e.Key == "_id" {
			return sort
		}
		dir = e.Value
	}
	out := make(bson.D, 0, len(sort)+1)
	out = append(out, sort...)
	return append(out, bson.E{Key: "_id", Value: dir})
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, sort bson.D) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
