package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kottinov/website-builder/pkg/page"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "wsb"
	DefaultMongoCollection = "pages"
)

// pageDoc is the stored form of a page. Body holds the encoded JSON so
// reads return exactly what was written.
type pageDoc struct {
	Key       string    `bson:"_id"`
	Body      string    `bson:"body"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Mongo keeps one document per page.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// OpenMongo connects to uri and uses database/collection for pages.
func OpenMongo(ctx context.Context, uri, database, collection string) (*Mongo, error) {
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	err = retry(ctx, connectAttempts, connectDelay, func() error {
		return transient(client.Ping(ctx, nil))
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Mongo{
		client: client,
		coll:   client.Database(database).Collection(collection),
		now:    time.Now,
	}, nil
}

func (s *Mongo) get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc pageDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(doc.Body), true, nil
}

func (s *Mongo) put(ctx context.Context, key string, data []byte) error {
	doc := newPageDoc(key, data, s.now())
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	return err
}

func newPageDoc(key string, data []byte, at time.Time) pageDoc {
	return pageDoc{Key: key, Body: string(data), UpdatedAt: at.UTC()}
}

func (s *Mongo) Load(ctx context.Context, key string) (*page.Page, error) {
	return loadBlob(ctx, BackendMongo, s, key)
}

func (s *Mongo) Save(ctx context.Context, key string, p *page.Page) error {
	return saveBlob(ctx, BackendMongo, s, key, p)
}

func (s *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*Mongo)(nil)
