package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on top of MongoDB. Each top-level path segment
// maps to a collection; every written subtree is one document keyed by its
// full path, carrying a version counter for the optimistic transactions.
// Subscriptions are backed by change streams, so the deployment must be a
// replica set.
type MongoStore struct {
	DB *mongo.Database
}

type storeDoc struct {
	ID      string `bson:"_id"`
	Parent  string `bson:"parent"`
	Value   string `bson:"value"`
	Version int64  `bson:"version"`
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{DB: db}
}

func (s *MongoStore) collection(path string) *mongo.Collection {
	top := path
	if i := strings.Index(path, "/"); i >= 0 {
		top = path[:i]
	}
	return s.DB.Collection(top)
}

func parentOf(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[:i]
	}
	return ""
}

func prefixFilter(path string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"_id": path},
		bson.M{"_id": bson.M{"$regex": "^" + escapeRegex(path) + "/"}},
	}}
}

func escapeRegex(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\.+*?()|[]{}^$`, r) {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *MongoStore) GenerateKey(parent string) string {
	return PushKey()
}

func (s *MongoStore) Write(ctx context.Context, path string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value for %s: %w", path, err)
	}
	coll := s.collection(path)

	// The write replaces the entire subtree: stale descendant documents go
	// first, then the document at the path itself.
	if _, err := coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$regex": "^" + escapeRegex(path) + "/"}}); err != nil {
		return fmt.Errorf("clear subtree %s: %w", path, err)
	}
	_, err = coll.UpdateOne(ctx,
		bson.M{"_id": path},
		bson.M{
			"$set": bson.M{"parent": parentOf(path), "value": string(raw)},
			"$inc": bson.M{"version": 1},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, path string) error {
	_, err := s.collection(path).DeleteMany(ctx, prefixFilter(path))
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

func (s *MongoStore) Read(ctx context.Context, path string) (Snapshot, error) {
	cursor, err := s.collection(path).Find(ctx, prefixFilter(path))
	if err != nil {
		return Snapshot{}, fmt.Errorf("read %s: %w", path, err)
	}
	defer cursor.Close(ctx)

	leaves := map[string]json.RawMessage{}
	for cursor.Next(ctx) {
		var doc storeDoc
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		leaves[doc.ID] = json.RawMessage(doc.Value)
	}
	if err := cursor.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Snapshot{Path: path, Value: assembleTree(path, leaves)}, nil
}

func (s *MongoStore) Subscribe(path string, onSnapshot func(Snapshot), onError func(error)) Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	sub := &mongoSubscription{cancel: cancel}

	go func() {
		stream, err := s.collection(path).Watch(ctx, mongo.Pipeline{},
			options.ChangeStream().SetFullDocument(options.UpdateLookup))
		if err != nil {
			sub.fail(onError, err)
			return
		}
		defer stream.Close(context.Background())

		deliver := func() bool {
			snap, err := s.Read(ctx, path)
			if err != nil {
				sub.fail(onError, err)
				return false
			}
			onSnapshot(snap)
			return true
		}

		// Initial full value, then one re-read per committed change under
		// the path. Change streams deliver events in commit order; a
		// re-read per event keeps the "full snapshot per change" contract.
		if !deliver() {
			return
		}
		for stream.Next(ctx) {
			var ev struct {
				DocumentKey struct {
					ID string `bson:"_id"`
				} `bson:"documentKey"`
			}
			if err := stream.Decode(&ev); err != nil {
				continue
			}
			if !pathsRelated(path, ev.DocumentKey.ID) {
				continue
			}
			if !deliver() {
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			sub.fail(onError, err)
		}
	}()
	return sub
}

func (s *MongoStore) RunAtomic(ctx context.Context, path string, update UpdateFunc) error {
	coll := s.collection(path)
	for attempt := 0; attempt < maxTxnRetries; attempt++ {
		var doc storeDoc
		exists := true
		err := coll.FindOne(ctx, bson.M{"_id": path}).Decode(&doc)
		if err == mongo.ErrNoDocuments {
			exists = false
		} else if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		var current json.RawMessage
		if exists {
			current = json.RawMessage(doc.Value)
		}
		next, err := update(current)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode value for %s: %w", path, err)
		}

		if !exists {
			_, err = coll.InsertOne(ctx, storeDoc{
				ID: path, Parent: parentOf(path), Value: string(raw), Version: 1,
			})
			if mongo.IsDuplicateKeyError(err) {
				continue // someone created it first, retry against their value
			}
			if err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			return nil
		}

		res, err := coll.UpdateOne(ctx,
			bson.M{"_id": path, "version": doc.Version},
			bson.M{"$set": bson.M{"value": string(raw)}, "$inc": bson.M{"version": 1}},
		)
		if err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		if res.ModifiedCount == 0 {
			continue // version moved underneath us, retry
		}
		return nil
	}
	return fmt.Errorf("store: too much contention on %s", path)
}

func (s *MongoStore) QueryEqual(ctx context.Context, parent, field string, value interface{}) (map[string]json.RawMessage, error) {
	want, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	cursor, err := s.collection(parent).Find(ctx, bson.M{"parent": parent})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", parent, err)
	}
	defer cursor.Close(ctx)

	matches := map[string]json.RawMessage{}
	for cursor.Next(ctx) {
		var doc storeDoc
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal([]byte(doc.Value), &fields); err != nil {
			continue
		}
		if got, ok := fields[field]; ok && bytes.Equal(compactJSON(got), compactJSON(want)) {
			matches[strings.TrimPrefix(doc.ID, parent+"/")] = json.RawMessage(doc.Value)
		}
	}
	return matches, cursor.Err()
}

type mongoSubscription struct {
	cancel context.CancelFunc
	once   sync.Once
}

func (sub *mongoSubscription) fail(onError func(error), err error) {
	sub.once.Do(func() {
		log.Printf("store subscription failed: %v", err)
		if onError != nil {
			onError(err)
		}
	})
}

func (sub *mongoSubscription) Unsubscribe() {
	sub.cancel()
}
