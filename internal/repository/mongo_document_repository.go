package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pdch/pdch-server/internal/domain"
)

type mongoDocumentRepository struct {
	coll *mongo.Collection
}

// NewMongoDocumentRepository returns a MongoDB-backed implementation.
// Uniqueness for opts.UniqueEmail is enforced by the index built in
// persistence.Mongo.EnsureIndexes.
func NewMongoDocumentRepository(db *mongo.Database, opts CollectionOptions) DocumentRepository {
	return &mongoDocumentRepository{coll: db.Collection(opts.Name)}
}

func (r *mongoDocumentRepository) List(ctx context.Context, limit int64) ([]domain.Document, error) {
	findOpts := options.Find()
	if limit > 0 {
		findOpts.SetLimit(limit)
	}
	cursor, err := r.coll.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := make([]domain.Document, 0)
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		result = append(result, fromBSON(raw))
	}
	return result, cursor.Err()
}

func (r *mongoDocumentRepository) Get(ctx context.Context, id string) (domain.Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *mongoDocumentRepository) FindByEmail(ctx context.Context, email string) (domain.Document, error) {
	return r.findOne(ctx, bson.M{domain.EmailField: email})
}

func (r *mongoDocumentRepository) Insert(ctx context.Context, doc domain.Document) (string, error) {
	oid := primitive.NewObjectID()
	stored := bson.M(doc.WithoutID())
	stored["_id"] = oid
	if _, err := r.coll.InsertOne(ctx, stored); err != nil {
		return "", mapMongoError(err)
	}
	return oid.Hex(), nil
}

func (r *mongoDocumentRepository) Merge(ctx context.Context, id string, fields domain.Document) (int64, int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, 0, nil
	}
	set := fields.WithoutID()
	if len(set) == 0 {
		n, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid})
		return n, 0, err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M(set)})
	if err != nil {
		return 0, 0, mapMongoError(err)
	}
	return res.MatchedCount, res.ModifiedCount, nil
}

func (r *mongoDocumentRepository) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *mongoDocumentRepository) findOne(ctx context.Context, filter bson.M) (domain.Document, error) {
	var raw bson.M
	if err := r.coll.FindOne(ctx, filter).Decode(&raw); err != nil {
		return nil, mapMongoError(err)
	}
	return fromBSON(raw), nil
}

// fromBSON exposes the ObjectID as its hex string.
func fromBSON(raw bson.M) domain.Document {
	doc := domain.Document(raw)
	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		doc[domain.IDField] = oid.Hex()
	}
	return doc
}
