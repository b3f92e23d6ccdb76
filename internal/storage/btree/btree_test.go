package btree

import (
	"reflect"
	"testing"
)

func TestDeterministicSplit(t *testing.T) {
	idx := New(2) // t=2, max 3 keys per node

	seq := []int{10, 20, 5, 6, 12, 30, 7, 17}
	for i, k := range seq {
		if !idx.Insert(k, int64(i)) {
			t.Fatalf("Insert(%d) was dropped", k)
		}
	}

	for _, n := range []*node{idx.root} {
		if !n.leaf && len(n.keys) == 0 {
			t.Fatal("non-leaf node has no keys")
		}
	}

	for i, k := range seq {
		off, ok := idx.Search(k)
		if !ok {
			t.Errorf("Search(%d) not found", k)
			continue
		}
		if off != int64(i) {
			t.Errorf("Search(%d) = %d, want %d", k, off, i)
		}
	}

	if _, ok := idx.Search(99); ok {
		t.Error("Search(99) should report absence")
	}

	got := idx.RangeSearch(6, 20)
	var gotKeys []any
	for _, e := range got {
		gotKeys = append(gotKeys, e.Key)
	}
	want := []any{6, 7, 10, 12, 17, 20}
	if !reflect.DeepEqual(gotKeys, want) {
		t.Errorf("RangeSearch(6,20) keys = %v, want %v", gotKeys, want)
	}
}

func TestInOrderYieldsSortedKeys(t *testing.T) {
	idx := New(2)
	keys := []int{50, 10, 40, 20, 5, 30, 45, 25, 35, 15}
	for i, k := range keys {
		idx.Insert(k, int64(i))
	}

	entries := idx.InOrder()
	for i := 1; i < len(entries); i++ {
		if !less(entries[i-1].Key, entries[i].Key) {
			t.Fatalf("entries not sorted at %d: %v then %v", i, entries[i-1].Key, entries[i].Key)
		}
	}
	if len(entries) != len(keys) {
		t.Fatalf("got %d entries, want %d", len(entries), len(keys))
	}
}

func TestInsertDropsIncomparableKeys(t *testing.T) {
	idx := New(2)
	if !idx.Insert(10, 0) {
		t.Fatal("first insert should succeed")
	}
	if idx.Insert("not-a-number", 1) {
		t.Fatal("mismatched-type insert should be dropped")
	}
	if idx.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", idx.Size())
	}
}

func TestDeleteRemovesKeyWithoutRebalancing(t *testing.T) {
	idx := New(2)
	for i, k := range []int{10, 20, 5} {
		idx.Insert(k, int64(i))
	}

	if !idx.Delete(20) {
		t.Fatal("Delete(20) should report success")
	}
	if _, ok := idx.Search(20); ok {
		t.Error("Search(20) should report absence after delete")
	}
	if idx.Delete(999) {
		t.Error("Delete(999) should report failure for a missing key")
	}
}
