package adapters

import (
	"path/filepath"
	"testing"

	"github.com/hybriddb/hybriddb/internal/storage/appendengine"
	"github.com/hybriddb/hybriddb/internal/storage/rowengine"
)

func newTestCollectionEngine(t *testing.T) rowengine.RowEngine {
	t.Helper()
	e, err := appendengine.Open(filepath.Join(t.TempDir(), "coll.hdb"), appendengine.Options{CacheCapacity: 16, BTreeOrder: 2})
	if err != nil {
		t.Fatalf("appendengine.Open() error = %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return rowengine.FromAppendEngine(e)
}

func TestInsertOneAssignsUUID(t *testing.T) {
	coll, err := NewCollection("events", newTestCollectionEngine(t))
	if err != nil {
		t.Fatalf("NewCollection() error = %v", err)
	}
	id, err := coll.InsertOne(rowengine.Record{"kind": "click"})
	if err != nil {
		t.Fatalf("InsertOne() error = %v", err)
	}
	if id == "" {
		t.Fatal("InsertOne() did not assign an _id")
	}
}

func TestFindOneAndFind(t *testing.T) {
	coll, err := NewCollection("events", newTestCollectionEngine(t))
	if err != nil {
		t.Fatalf("NewCollection() error = %v", err)
	}
	if _, err := coll.InsertOne(rowengine.Record{"kind": "click", "count": 1.0}); err != nil {
		t.Fatalf("InsertOne() error = %v", err)
	}
	if _, err := coll.InsertOne(rowengine.Record{"kind": "view", "count": 2.0}); err != nil {
		t.Fatalf("InsertOne() error = %v", err)
	}

	doc, err := coll.FindOne(Where{"kind": "view"})
	if err != nil {
		t.Fatalf("FindOne() error = %v", err)
	}
	if doc["count"] != 2.0 {
		t.Fatalf("FindOne() = %v", doc)
	}

	all, err := coll.Find(nil)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Find(nil) returned %d docs, want 2", len(all))
	}
}

func TestUpdateOneAppliesSetUnsetInc(t *testing.T) {
	coll, err := NewCollection("events", newTestCollectionEngine(t))
	if err != nil {
		t.Fatalf("NewCollection() error = %v", err)
	}
	if _, err := coll.InsertOne(rowengine.Record{"kind": "click", "count": 1.0, "stale": true}); err != nil {
		t.Fatalf("InsertOne() error = %v", err)
	}

	ok, err := coll.UpdateOne(Where{"kind": "click"}, Update{
		"$set":   {"kind": "tap"},
		"$unset": {"stale": nil},
		"$inc":   {"count": 5.0},
	})
	if err != nil {
		t.Fatalf("UpdateOne() error = %v", err)
	}
	if !ok {
		t.Fatal("UpdateOne() reported no match")
	}

	doc, err := coll.FindOne(Where{"kind": "tap"})
	if err != nil {
		t.Fatalf("FindOne() error = %v", err)
	}
	if doc["count"] != 6.0 {
		t.Fatalf("FindOne() count = %v, want 6.0", doc["count"])
	}
	if _, exists := doc["stale"]; exists {
		t.Fatal("FindOne() still has unset field stale")
	}
}

func TestDeleteOneAndDeleteMany(t *testing.T) {
	coll, err := NewCollection("events", newTestCollectionEngine(t))
	if err != nil {
		t.Fatalf("NewCollection() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := coll.InsertOne(rowengine.Record{"kind": "click"}); err != nil {
			t.Fatalf("InsertOne() error = %v", err)
		}
	}

	ok, err := coll.DeleteOne(Where{"kind": "click"})
	if err != nil || !ok {
		t.Fatalf("DeleteOne() = %v, %v", ok, err)
	}

	count, err := coll.DeleteMany(Where{"kind": "click"})
	if err != nil {
		t.Fatalf("DeleteMany() error = %v", err)
	}
	if count != 2 {
		t.Fatalf("DeleteMany() = %d, want 2", count)
	}

	remaining, err := coll.CountDocuments(nil)
	if err != nil {
		t.Fatalf("CountDocuments() error = %v", err)
	}
	if remaining != 0 {
		t.Fatalf("CountDocuments() = %d, want 0", remaining)
	}
}

func TestAggregatePipeline(t *testing.T) {
	coll, err := NewCollection("events", newTestCollectionEngine(t))
	if err != nil {
		t.Fatalf("NewCollection() error = %v", err)
	}
	mustInsert := func(r rowengine.Record) {
		if _, err := coll.InsertOne(r); err != nil {
			t.Fatalf("InsertOne() error = %v", err)
		}
	}
	mustInsert(rowengine.Record{"kind": "click", "count": 3.0})
	mustInsert(rowengine.Record{"kind": "view", "count": 1.0})
	mustInsert(rowengine.Record{"kind": "click", "count": 2.0})

	results, err := coll.Aggregate([]Stage{
		{"$match": Where{"kind": "click"}},
		{"$sort": map[string]int{"count": 1}},
		{"$limit": 1},
	})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Aggregate() returned %d results, want 1", len(results))
	}
	if results[0]["count"] != 2.0 {
		t.Fatalf("Aggregate() = %v, want count 2.0", results[0])
	}
}
