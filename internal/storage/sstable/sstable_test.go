package sstable

import (
	"path/filepath"
	"testing"
)

func TestWriteRunAndLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "000001.sst")

	entries := []Entry{
		{Key: "users:1", Value: []byte("ada")},
		{Key: "users:2", Value: []byte("grace")},
		{Key: "users:3", Tombstone: true},
	}
	run, err := WriteRun(path, entries)
	if err != nil {
		t.Fatalf("WriteRun() error = %v", err)
	}
	defer run.Close()

	v, tomb, found, err := run.Lookup("users:2")
	if err != nil || !found || tomb || string(v) != "grace" {
		t.Fatalf("Lookup(users:2) = %q, %v, %v, %v", v, tomb, found, err)
	}

	_, tomb, found, err = run.Lookup("users:3")
	if err != nil || !found || !tomb {
		t.Fatalf("Lookup(users:3) = tombstone=%v found=%v err=%v, want true,true,nil", tomb, found, err)
	}

	_, _, found, err = run.Lookup("users:404")
	if err != nil || found {
		t.Fatalf("Lookup(missing) found=%v err=%v, want false,nil", found, err)
	}
}

func TestOpenRebuildsIndexFromScan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "000001.sst")
	entries := []Entry{
		{Key: "a", Value: []byte("1")},
		{Key: "b", Value: []byte("2")},
	}
	run, err := WriteRun(path, entries)
	if err != nil {
		t.Fatalf("WriteRun() error = %v", err)
	}
	run.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer reopened.Close()

	v, _, found, err := reopened.Lookup("b")
	if err != nil || !found || string(v) != "2" {
		t.Fatalf("Lookup(b) after reopen = %q, %v, %v", v, found, err)
	}
}

func TestAllReturnsEveryEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "000001.sst")
	entries := []Entry{
		{Key: "a", Value: []byte("1")},
		{Key: "b", Value: []byte("2")},
		{Key: "c", Tombstone: true},
	}
	run, err := WriteRun(path, entries)
	if err != nil {
		t.Fatalf("WriteRun() error = %v", err)
	}
	defer run.Close()

	all, err := run.All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("All() returned %d entries, want 3", len(all))
	}
}
