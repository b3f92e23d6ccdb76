package vector

import (
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/hybriddb/hybriddb/internal/dberr"
	"github.com/hybriddb/hybriddb/internal/telemetry/metric"
	"github.com/hybriddb/hybriddb/pkg/cmap"
)

// Store manages the set of named vector indexes persisted under a
// single base directory. Indexes are independent once open, so a
// sharded map lets concurrent CreateIndex/Index calls on different
// names proceed without contending on one lock.
type Store struct {
	dir     string
	indexes *cmap.Map[string, *Index]
	metrics atomic.Pointer[metric.Registry]
}

// SetMetrics attaches reg to the store and every index already open,
// and to every index opened or created afterwards.
func (s *Store) SetMetrics(reg *metric.Registry) {
	s.metrics.Store(reg)
	s.indexes.Range(func(_ string, idx *Index) bool {
		idx.SetMetrics(reg)
		return true
	})
}

// Open opens (or creates) a vector store rooted at dir. Existing
// indexes are not eagerly loaded: dimension is unknown until either
// CreateIndex or Index (which infers it from the persisted blob) is
// called, mirroring the engine this package replaces.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, dberr.ErrIO.WithCause(err)
	}
	return &Store{dir: dir, indexes: cmap.New[string, *Index]()}, nil
}

// CreateIndex creates a new named index with the given dimension.
func (s *Store) CreateIndex(name string, dimension int) (*Index, error) {
	idx, err := openIndex(name, dimension, filepath.Join(s.dir, name))
	if err != nil {
		return nil, err
	}
	idx.SetMetrics(s.metrics.Load())
	s.indexes.Set(name, idx)
	return idx, nil
}

// Index returns the named index, loading it from disk and inferring
// its dimension from the persisted vector blob if it is not already
// open in memory.
func (s *Store) Index(name string) (*Index, error) {
	if idx, ok := s.indexes.Get(name); ok {
		return idx, nil
	}

	idxPath := filepath.Join(s.dir, name)
	dim, err := inferDimension(idxPath)
	if err != nil {
		return nil, err
	}
	idx, err := openIndex(name, dim, idxPath)
	if err != nil {
		return nil, err
	}
	idx.SetMetrics(s.metrics.Load())

	if existing, loaded := s.indexes.GetOrSet(name, idx); loaded {
		return existing, nil
	}
	return idx, nil
}

// inferDimension reads the persisted vector blob of a previously
// persisted index and returns the dimension recorded in its header.
func inferDimension(path string) (int, error) {
	data, err := os.ReadFile(vectorsPath(path))
	if os.IsNotExist(err) {
		return 0, dberr.ErrIndexNotFound.WithDetails(path)
	}
	if err != nil {
		return 0, dberr.ErrIO.WithCause(err)
	}
	if len(data) < 8 {
		return 0, dberr.ErrTruncatedRecord.WithDetails("vector blob header")
	}
	dim := int(uint32(data[4]) | uint32(data[5])<<8 | uint32(data[6])<<16 | uint32(data[7])<<24)
	return dim, nil
}

// Indexes returns the names of every index created or loaded so far.
func (s *Store) Indexes() []string {
	return s.indexes.Keys()
}
