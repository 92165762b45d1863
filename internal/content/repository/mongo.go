package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/content"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo stores every content kind in one collection, keyed by (kind, id).
// Comments and likes are embedded arrays; writes are whole-document replaces
// guarded by the version field.
type MongoRepo struct {
	col *mongo.Collection
}

// NewMongoRepo creates the repository and ensures its indexes.
func NewMongoRepo(ctx context.Context, col *mongo.Collection) (*MongoRepo, error) {
	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "comments.username", Value: 1}}},
		{Keys: bson.D{{Key: "likes.username", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("ensure content indexes: %w", err)
	}
	return &MongoRepo{col: col}, nil
}

func refFilter(ref content.Ref) bson.M {
	return bson.M{"kind": ref.Kind, "id": ref.ID}
}

func (m *MongoRepo) Create(ctx context.Context, doc *content.Document) (string, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if doc.Comments == nil {
		doc.Comments = []content.Comment{}
	}
	if doc.Likes == nil {
		doc.Likes = []content.Like{}
	}
	doc.Version = 1
	if _, err := m.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrExists
		}
		return "", fmt.Errorf("insert %s: %w", doc.Ref(), err)
	}
	return doc.ID, nil
}

func (m *MongoRepo) Get(ctx context.Context, ref content.Ref) (*content.Document, error) {
	var d content.Document
	err := m.col.FindOne(ctx, refFilter(ref)).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find %s: %w", ref, err)
	}
	return &d, nil
}

// List returns the documents of kind in insertion (_id) order.
func (m *MongoRepo) List(ctx context.Context, kind content.Kind) ([]*content.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := m.col.Find(ctx, bson.M{"kind": kind}, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	defer cur.Close(ctx)
	out := []*content.Document{}
	for cur.Next(ctx) {
		var d content.Document
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, cur.Err()
}

// versionFilter matches ref at exactly version. Documents written without a
// version field decode as version 0 and must still match it.
func versionFilter(ref content.Ref, version int64) bson.M {
	filter := refFilter(ref)
	if version == 0 {
		filter["$or"] = bson.A{
			bson.M{"version": int64(0)},
			bson.M{"version": bson.M{"$exists": false}},
		}
		return filter
	}
	filter["version"] = version
	return filter
}

func (m *MongoRepo) Save(ctx context.Context, doc *content.Document) error {
	filter := versionFilter(doc.Ref(), doc.Version)

	next := doc.Clone()
	next.Version = doc.Version + 1
	res, err := m.col.ReplaceOne(ctx, filter, next)
	if err != nil {
		return fmt.Errorf("replace %s: %w", doc.Ref(), err)
	}
	if res.MatchedCount == 0 {
		n, err := m.col.CountDocuments(ctx, refFilter(doc.Ref()))
		if err != nil {
			return fmt.Errorf("count %s: %w", doc.Ref(), err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	doc.Version = next.Version
	return nil
}

func (m *MongoRepo) Ping(ctx context.Context) error {
	return m.col.Database().Client().Ping(ctx, nil)
}
