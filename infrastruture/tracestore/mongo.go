package tracestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-labyrinth/maze"
	"github.com/beka-birhanu/vinom-labyrinth/service/i"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// traceDocument is the BSON version of a trace for database storage.
type traceDocument struct {
	ID        string       `bson:"_id"`
	Width     int          `bson:"width"`
	Height    int          `bson:"height"`
	Seed      int64        `bson:"seed"`
	Events    []maze.Event `bson:"events"`
	CreatedAt time.Time    `bson:"createdAt"`
}

// MongoStore handles the persistence of traces in a MongoDB collection.
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore creates a new MongoStore with the given MongoDB client, database name, and collection name.
func NewMongoStore(client *mongo.Client, dbName, collectionName string) *MongoStore {
	return &MongoStore{
		collection: client.Database(dbName).Collection(collectionName),
	}
}

// Save inserts or replaces a trace.
func (m *MongoStore) Save(ctx context.Context, trace *maze.Trace) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	doc := traceDocument{
		ID:        trace.ID().String(),
		Width:     trace.Width(),
		Height:    trace.Height(),
		Seed:      trace.Seed(),
		Events:    trace.Events(),
		CreatedAt: time.Now(),
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := m.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		return errors.New("unexpected error: " + err.Error())
	}
	return nil
}

// ByID retrieves a trace by its ID.
func (m *MongoStore) ByID(ctx context.Context, id uuid.UUID) (*maze.Trace, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var doc traceDocument
	if err := m.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", i.ErrTraceNotFound, id)
		}
		return nil, errors.New("unexpected error: " + err.Error())
	}

	traceID, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("decoding trace id %q: %w", doc.ID, err)
	}
	return maze.NewTrace(traceID, doc.Width, doc.Height, doc.Seed, doc.Events)
}
