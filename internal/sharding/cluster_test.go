package sharding

import (
	"path/filepath"
	"testing"

	"github.com/hybriddb/hybriddb/internal/storage/appendengine"
	"github.com/hybriddb/hybriddb/internal/storage/rowengine"
)

func newTestNode(t *testing.T) rowengine.RowEngine {
	t.Helper()
	e, err := appendengine.Open(filepath.Join(t.TempDir(), "node.hdb"), appendengine.Options{CacheCapacity: 16, BTreeOrder: 2})
	if err != nil {
		t.Fatalf("appendengine.Open() error = %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return rowengine.FromAppendEngine(e)
}

func TestClusterWriteRoutesToOwningNode(t *testing.T) {
	nodes := map[string]rowengine.RowEngine{
		"n1": newTestNode(t),
		"n2": newTestNode(t),
		"n3": newTestNode(t),
	}
	c := NewCluster(nodes, 10)

	node, id, err := c.Write("users", "user-42", rowengine.Record{"name": "ada"})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if node == "" {
		t.Fatal("Write() did not report a node")
	}

	records, err := nodes[node].Scan("users")
	if err != nil || len(records) != 1 {
		t.Fatalf("Scan(%q) = %v, %v", node, records, err)
	}
	_ = id
}

func TestClusterScatterCollectsFromEveryNode(t *testing.T) {
	nodes := map[string]rowengine.RowEngine{
		"n1": newTestNode(t),
		"n2": newTestNode(t),
	}
	for i := 0; i < 10; i++ {
		c := NewCluster(nodes, 10)
		_, _, err := c.Write("users", "key", rowengine.Record{"i": i})
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}

	c := NewCluster(nodes, 10)
	records, err := c.Scatter("users")
	if err != nil {
		t.Fatalf("Scatter() error = %v", err)
	}
	if len(records) != 10 {
		t.Fatalf("Scatter() returned %d records, want 10", len(records))
	}
}
