// Package store is the document store contract used by every DAL package.
//
// Two adapters implement it: MongoStore, backed by the official driver, and
// MemoryStore, an in-process evaluator of the same filter, update and
// pipeline subset that honours unique indexes. Filters and updates are plain
// bson.M documents in MongoDB query syntax.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound     = errors.New("store: document not found")
	ErrDuplicateKey = errors.New("store: duplicate key")
)

type SortKey struct {
	Field string
	Desc  bool
}

type FindOptions struct {
	Sort       []SortKey
	Skip       int64
	Limit      int64
	Projection []string
}

type UpdateOptions struct {
	Upsert bool
}

type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
	UpsertedID    primitive.ObjectID
}

// Index describes a (compound) ascending index over Keys.
type Index struct {
	Name   string
	Keys   []string
	Unique bool
}

type Store interface {
	// FindOne decodes the first matching document into out; ErrNotFound when none match.
	FindOne(ctx context.Context, collection string, filter bson.M, out interface{}) error
	// FindMany decodes every matching document into out, which must be a pointer to a slice.
	FindMany(ctx context.Context, collection string, filter bson.M, opts *FindOptions, out interface{}) error
	// Insert stores doc and returns its _id; ErrDuplicateKey on a unique index violation.
	Insert(ctx context.Context, collection string, doc interface{}) (primitive.ObjectID, error)
	UpdateOne(ctx context.Context, collection string, filter, update bson.M, opts *UpdateOptions) (*UpdateResult, error)
	UpdateMany(ctx context.Context, collection string, filter, update bson.M) (*UpdateResult, error)
	// DeleteOne removes at most one matching document and reports how many were removed.
	DeleteOne(ctx context.Context, collection string, filter bson.M) (int64, error)
	DeleteMany(ctx context.Context, collection string, filter bson.M) (int64, error)
	CountDocuments(ctx context.Context, collection string, filter bson.M) (int64, error)
	// Aggregate runs pipeline over collection and decodes the rows into out (pointer to slice).
	Aggregate(ctx context.Context, collection string, pipeline Pipeline, out interface{}) error
	EnsureIndexes(ctx context.Context, collection string, indexes ...Index) error
}

func sortDoc(keys []SortKey) bson.D {
	d := bson.D{}
	hasID := false
	for _, k := range keys {
		dir := 1
		if k.Desc {
			dir = -1
		}
		if k.Field == "_id" {
			hasID = true
		}
		d = append(d, bson.E{Key: k.Field, Value: dir})
	}
	// ties break by creation order
	if !hasID {
		d = append(d, bson.E{Key: "_id", Value: 1})
	}
	return d
}

func projectionDoc(fields []string, excludeID bool) bson.D {
	d := bson.D{}
	for _, f := range fields {
		d = append(d, bson.E{Key: f, Value: 1})
	}
	if excludeID {
		d = append(d, bson.E{Key: "_id", Value: 0})
	}
	return d
}
