package store

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore connects to uri and pings the primary before returning.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(10*time.Second))
	if err != nil {
		return nil, errors.Wrapf(err, "connect mongo %s failed", database)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrapf(err, "ping mongo %s failed", database)
	}
	hlog.Infof("Connect Mongo Success, database=%s", database)
	return &MongoStore{client: client, db: client.Database(database)}, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) FindOne(ctx context.Context, collection string, filter bson.M, out interface{}) error {
	err := s.db.Collection(collection).FindOne(ctx, filter).Decode(out)
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	return err
}

func (s *MongoStore) FindMany(ctx context.Context, collection string, filter bson.M, opts *FindOptions, out interface{}) error {
	findOpts := options.Find()
	if opts != nil {
		if len(opts.Sort) > 0 {
			findOpts.SetSort(sortDoc(opts.Sort))
		}
		if opts.Skip > 0 {
			findOpts.SetSkip(opts.Skip)
		}
		if opts.Limit > 0 {
			findOpts.SetLimit(opts.Limit)
		}
		if len(opts.Projection) > 0 {
			findOpts.SetProjection(projectionDoc(opts.Projection, false))
		}
	}
	cur, err := s.db.Collection(collection).Find(ctx, filter, findOpts)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

func (s *MongoStore) Insert(ctx context.Context, collection string, doc interface{}) (primitive.ObjectID, error) {
	res, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, translate(err)
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

func (s *MongoStore) UpdateOne(ctx context.Context, collection string, filter, update bson.M, opts *UpdateOptions) (*UpdateResult, error) {
	updateOpts := options.Update()
	if opts != nil && opts.Upsert {
		updateOpts.SetUpsert(true)
	}
	res, err := s.db.Collection(collection).UpdateOne(ctx, filter, update, updateOpts)
	if err != nil {
		return nil, translate(err)
	}
	return updateResult(res), nil
}

func (s *MongoStore) UpdateMany(ctx context.Context, collection string, filter, update bson.M) (*UpdateResult, error) {
	res, err := s.db.Collection(collection).UpdateMany(ctx, filter, update)
	if err != nil {
		return nil, translate(err)
	}
	return updateResult(res), nil
}

func (s *MongoStore) DeleteOne(ctx context.Context, collection string, filter bson.M) (int64, error) {
	res, err := s.db.Collection(collection).DeleteOne(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) DeleteMany(ctx context.Context, collection string, filter bson.M) (int64, error) {
	res, err := s.db.Collection(collection).DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) CountDocuments(ctx context.Context, collection string, filter bson.M) (int64, error) {
	return s.db.Collection(collection).CountDocuments(ctx, filter)
}

func (s *MongoStore) Aggregate(ctx context.Context, collection string, pipeline Pipeline, out interface{}) error {
	cur, err := s.db.Collection(collection).Aggregate(ctx, pipeline.BSON())
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

func (s *MongoStore) EnsureIndexes(ctx context.Context, collection string, indexes ...Index) error {
	models := make([]mongo.IndexModel, 0, len(indexes))
	for _, idx := range indexes {
		keys := bson.D{}
		for _, k := range idx.Keys {
			keys = append(keys, bson.E{Key: k, Value: 1})
		}
		opts := options.Index().SetUnique(idx.Unique)
		if idx.Name != "" {
			opts.SetName(idx.Name)
		}
		models = append(models, mongo.IndexModel{Keys: keys, Options: opts})
	}
	if len(models) == 0 {
		return nil
	}
	_, err := s.db.Collection(collection).Indexes().CreateMany(ctx, models)
	return err
}

func updateResult(res *mongo.UpdateResult) *UpdateResult {
	out := &UpdateResult{
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}
	if id, ok := res.UpsertedID.(primitive.ObjectID); ok {
		out.UpsertedID = id
	}
	return out
}

func translate(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return errors.Wrap(ErrDuplicateKey, err.Error())
	}
	return err
}
