package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pdch/pdch-server/internal/domain"
)

func TestMapPgError(t *testing.T) {
	require.ErrorIs(t, mapPgError(pgx.ErrNoRows), ErrNotFound)
	require.ErrorIs(t, mapPgError(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})), ErrDuplicate)

	other := &pgconn.PgError{Code: "42P01"}
	require.Same(t, other, mapPgError(other))
}

func TestMapMongoError(t *testing.T) {
	require.ErrorIs(t, mapMongoError(mongo.ErrNoDocuments), ErrNotFound)

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	require.ErrorIs(t, mapMongoError(dup), ErrDuplicate)

	other := errors.New("server selection timeout")
	require.Equal(t, other, mapMongoError(other))
}

func TestFromBSON_ExposesHexID(t *testing.T) {
	oid := primitive.NewObjectID()
	doc := fromBSON(bson.M{"_id": oid, "title": "rice"})
	require.Equal(t, oid.Hex(), doc.ID())
	require.Equal(t, "rice", doc["title"])
}

func TestDecodeBody(t *testing.T) {
	doc, err := decodeBody("abc", []byte(`{"title":"rice","_id":"spoofed"}`))
	require.NoError(t, err)
	require.Equal(t, "abc", doc[domain.IDField])
	require.Equal(t, "rice", doc["title"])

	_, err = decodeBody("abc", []byte(`not json`))
	require.Error(t, err)
}
