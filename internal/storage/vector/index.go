package vector

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/hybriddb/hybriddb/internal/dberr"
	"github.com/hybriddb/hybriddb/internal/telemetry/metric"
)

// Index is a flat, brute-force similarity index over fixed-dimension
// float32 vectors.
type Index struct {
	mu        sync.RWMutex
	name      string
	dimension int
	path      string
	ids       []string
	vectors   [][]float32
	metrics   *metric.Registry
}

// SetMetrics attaches a registry that Search reports query counts to.
// A nil registry (the default) disables reporting.
func (idx *Index) SetMetrics(reg *metric.Registry) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.metrics = reg
}

// Match is a single search result: the id of a stored vector and its
// cosine similarity against the query.
type Match struct {
	ID    string
	Score float32
}

func vectorsPath(dir string) string { return filepath.Join(dir, "vectors.bin") }
func idsPath(dir string) string     { return filepath.Join(dir, "ids.bin") }

// openIndex opens (or creates empty) the on-disk index rooted at path.
func openIndex(name string, dimension int, path string) (*Index, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, dberr.ErrIO.WithCause(err)
	}
	idx := &Index{name: name, dimension: dimension, path: path}
	if err := idx.load(); err != nil {
		return nil, err
	}
	return idx, nil
}

func (idx *Index) load() error {
	data, err := os.ReadFile(vectorsPath(idx.path))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return dberr.ErrIO.WithCause(err)
	}
	idsData, err := os.ReadFile(idsPath(idx.path))
	if err != nil {
		return dberr.ErrIO.WithCause(err)
	}

	if len(data) < 8 {
		return dberr.ErrTruncatedRecord.WithDetails("vector blob header")
	}
	count := binary.LittleEndian.Uint32(data[0:4])
	dim := int(binary.LittleEndian.Uint32(data[4:8]))
	if dim > 0 {
		idx.dimension = dim
	}

	body := data[8:]
	vectors := make([][]float32, count)
	for i := range vectors {
		v := make([]float32, idx.dimension)
		for j := 0; j < idx.dimension; j++ {
			offset := (i*idx.dimension + j) * 4
			v[j] = math.Float32frombits(binary.LittleEndian.Uint32(body[offset:]))
		}
		vectors[i] = v
	}

	ids, err := decodeIDs(idsData)
	if err != nil {
		return err
	}

	idx.vectors = vectors
	idx.ids = ids
	return nil
}

func (idx *Index) save() error {
	header := make([]byte, 8)
	binary.LittleEndian.PutUint32(header[0:4], uint32(len(idx.vectors)))
	binary.LittleEndian.PutUint32(header[4:8], uint32(idx.dimension))

	body := make([]byte, len(idx.vectors)*idx.dimension*4)
	for i, v := range idx.vectors {
		for j, f := range v {
			offset := (i*idx.dimension + j) * 4
			binary.LittleEndian.PutUint32(body[offset:], math.Float32bits(f))
		}
	}
	if err := os.WriteFile(vectorsPath(idx.path), append(header, body...), 0o644); err != nil {
		return dberr.ErrIO.WithCause(err)
	}
	if err := os.WriteFile(idsPath(idx.path), encodeIDs(idx.ids), 0o644); err != nil {
		return dberr.ErrIO.WithCause(err)
	}
	return nil
}

func encodeIDs(ids []string) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(len(ids)))
	for _, id := range ids {
		lenBuf := make([]byte, 4)
		binary.LittleEndian.PutUint32(lenBuf, uint32(len(id)))
		buf = append(buf, lenBuf...)
		buf = append(buf, []byte(id)...)
	}
	return buf
}

func decodeIDs(data []byte) ([]string, error) {
	if len(data) < 4 {
		return nil, dberr.ErrTruncatedRecord.WithDetails("vector id list header")
	}
	count := binary.LittleEndian.Uint32(data[0:4])
	ids := make([]string, count)
	offset := 4
	for i := range ids {
		if offset+4 > len(data) {
			return nil, dberr.ErrTruncatedRecord.WithDetails("vector id entry")
		}
		l := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		offset += 4
		if offset+l > len(data) {
			return nil, dberr.ErrTruncatedRecord.WithDetails("vector id entry")
		}
		ids[i] = string(data[offset : offset+l])
		offset += l
	}
	return ids, nil
}

// Add appends vector to the index, assigning a fresh uuid when id is
// empty, and persists the index immediately.
func (idx *Index) Add(vector []float32, id string) (string, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if len(vector) != idx.dimension {
		return "", dberr.ErrDimensionMismatch.WithDetails(idx.name)
	}
	if id == "" {
		id = uuid.NewString()
	}

	stored := make([]float32, len(vector))
	copy(stored, vector)
	idx.vectors = append(idx.vectors, stored)
	idx.ids = append(idx.ids, id)

	if err := idx.save(); err != nil {
		return "", err
	}
	return id, nil
}

// Search returns the top k matches for query ranked by cosine
// similarity, highest first.
func (idx *Index) Search(query []float32, k int) ([]Match, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.metrics != nil {
		idx.metrics.VectorQueriesTotal.Inc()
	}

	if len(query) != idx.dimension {
		return nil, dberr.ErrDimensionMismatch.WithDetails(idx.name)
	}
	if len(idx.vectors) == 0 {
		return nil, nil
	}

	qNorm := norm(query)
	if qNorm == 0 {
		return nil, nil
	}

	matches := make([]Match, len(idx.vectors))
	for i, v := range idx.vectors {
		matches[i] = Match{ID: idx.ids[i], Score: cosineSimilarity(v, query, qNorm)}
	}

	// matches is built in ascending index order above, so a stable sort
	// leaves ties in that order without needing to track indices here.
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if k > 0 && k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}

// Dimension reports the vector dimension this index was created with.
func (idx *Index) Dimension() int { return idx.dimension }

// Len reports how many vectors are stored.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.vectors)
}

func norm(v []float32) float32 {
	var sum float32
	for _, f := range v {
		sum += f * f
	}
	return float32(math.Sqrt(float64(sum)))
}

func cosineSimilarity(a, b []float32, bNorm float32) float32 {
	aNorm := norm(a)
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	var dot float32
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot / (aNorm * bNorm)
}
