package sharding

import (
	"encoding/binary"
	"sort"
	"sync"

	"github.com/spaolacci/murmur3"

	"github.com/hybriddb/hybriddb/internal/telemetry/metric"
)

// DefaultVirtualNodes is the number of ring positions assigned to a
// single physical node when Weight is not specified.
const DefaultVirtualNodes = 128

// Ring is a consistent-hash ring mapping keys to physical nodes via a
// sorted array of virtual-node hashes.
type Ring struct {
	mu sync.RWMutex

	seed         uint32
	virtualNodes map[uint64]string
	sortedHashes []uint64
	weights      map[string]int
	metrics      *metric.Registry
}

// SetMetrics attaches reg so AddNode/RemoveNode report the ring's
// physical node count. A nil registry disables reporting.
func (r *Ring) SetMetrics(reg *metric.Registry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = reg
	if reg != nil {
		reg.RingNodeCount.Set(float64(len(r.weights)))
	}
}

// NewRing creates an empty ring using the default hash seed.
func NewRing() *Ring {
	return NewRingWithSeed(0)
}

// NewRingWithSeed creates an empty ring whose virtual-node and key
// hashes are salted with seed, letting two clusters with the same
// node names land on different rings.
func NewRingWithSeed(seed uint32) *Ring {
	return &Ring{
		seed:         seed,
		virtualNodes: make(map[uint64]string),
		weights:      make(map[string]int),
	}
}

// AddNode adds node to the ring with weight virtual nodes (weight<=0
// uses DefaultVirtualNodes, allowing heavier nodes to claim more of
// the keyspace).
func (r *Ring) AddNode(node string, weight int) {
	if weight <= 0 {
		weight = DefaultVirtualNodes
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.weights[node] = weight
	for i := 0; i < weight; i++ {
		r.virtualNodes[r.hashVirtualNode(node, i)] = node
	}
	r.rebuildLocked()
	r.reportNodeCountLocked()
}

// RemoveNode removes every virtual node belonging to node.
func (r *Ring) RemoveNode(node string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	weight := r.weights[node]
	for i := 0; i < weight; i++ {
		delete(r.virtualNodes, r.hashVirtualNode(node, i))
	}
	delete(r.weights, node)
	r.rebuildLocked()
	r.reportNodeCountLocked()
}

// reportNodeCountLocked publishes the current physical node count and
// marks a topology change. It does not count the keys that actually
// remap; tracking that would mean diffing the full keyspace on every
// AddNode/RemoveNode, which defeats the point of a consistent-hash ring.
func (r *Ring) reportNodeCountLocked() {
	if r.metrics == nil {
		return
	}
	r.metrics.RingNodeCount.Set(float64(len(r.weights)))
	r.metrics.RingRemapsTotal.Inc()
}

func (r *Ring) hashVirtualNode(node string, index int) uint64 {
	h := murmur3.New64WithSeed(r.seed)
	h.Write([]byte(node))
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], uint32(index))
	h.Write(idx[:])
	return h.Sum64()
}

func (r *Ring) rebuildLocked() {
	hashes := make([]uint64, 0, len(r.virtualNodes))
	for h := range r.virtualNodes {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
	r.sortedHashes = hashes
}

// Get returns the node responsible for key: the first virtual node at
// or after key's hash, wrapping around the ring.
func (r *Ring) Get(key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.sortedHashes) == 0 {
		return "", false
	}

	h := murmur3.Sum64WithSeed([]byte(key), r.seed)
	idx := sort.Search(len(r.sortedHashes), func(i int) bool { return r.sortedHashes[i] >= h })
	if idx == len(r.sortedHashes) {
		idx = 0
	}
	return r.virtualNodes[r.sortedHashes[idx]], true
}

// GetN returns up to n distinct physical nodes walking clockwise from
// key's position, for replicated reads/writes.
func (r *Ring) GetN(key string, n int) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.sortedHashes) == 0 || n <= 0 {
		return nil
	}

	h := murmur3.Sum64WithSeed([]byte(key), r.seed)
	start := sort.Search(len(r.sortedHashes), func(i int) bool { return r.sortedHashes[i] >= h })

	seen := make(map[string]bool)
	var nodes []string
	for i := 0; i < len(r.sortedHashes) && len(nodes) < n; i++ {
		idx := (start + i) % len(r.sortedHashes)
		node := r.virtualNodes[r.sortedHashes[idx]]
		if seen[node] {
			continue
		}
		seen[node] = true
		nodes = append(nodes, node)
	}
	return nodes
}

// Nodes returns every distinct physical node currently on the ring.
func (r *Ring) Nodes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.weights))
	for node := range r.weights {
		out = append(out, node)
	}
	sort.Strings(out)
	return out
}
