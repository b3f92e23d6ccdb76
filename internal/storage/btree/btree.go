package btree

// node is a single B-tree node. Non-leaf nodes hold len(keys)+1 children.
type node struct {
	keys     []any
	values   []int64
	children []*node
	leaf     bool
}

// Index is a classical B-tree of branching parameter T mapping ordered
// keys to integer offsets.
type Index struct {
	t    int
	root *node
	size int
}

// New creates an empty index with branching parameter t (t>=2): nodes
// hold at most 2t-1 keys, non-root nodes hold at least t-1.
func New(t int) *Index {
	if t < 2 {
		t = 2
	}
	return &Index{
		t:    t,
		root: &node{leaf: true},
	}
}

// Size returns the number of keys currently held: Insert of a new key
// increments it and Delete decrements it.
func (idx *Index) Size() int {
	return idx.size
}

// Clear empties the index.
func (idx *Index) Clear() {
	idx.root = &node{leaf: true}
	idx.size = 0
}

// Insert maps key to value; if an equal key is already present, its
// value is replaced. If key cannot be ordered against the index's
// existing keys (mixed incomparable types), the insert is silently
// dropped and Insert returns false.
func (idx *Index) Insert(key any, value int64) bool {
	if !idx.root.leaf || len(idx.root.keys) > 0 {
		if _, ok := compareKey(idx.root, key); !ok {
			return false
		}
	}

	for n := idx.root; ; {
		i := 0
		for i < len(n.keys) && greater(key, n.keys[i]) {
			i++
		}
		if i < len(n.keys) && equal(key, n.keys[i]) {
			n.values[i] = value
			return true
		}
		if n.leaf {
			break
		}
		n = n.children[i]
	}

	if len(idx.root.keys) >= 2*idx.t-1 {
		newRoot := &node{leaf: false, children: []*node{idx.root}}
		splitChild(newRoot, 0, idx.t)
		idx.root = newRoot
	}
	insertNonFull(idx.root, key, value, idx.t)
	idx.size++
	return true
}

// compareKey reports whether key can be ordered against the first key
// found while descending n, along with the ordering if so.
func compareKey(n *node, key any) (int, bool) {
	if len(n.keys) > 0 {
		return compare(key, n.keys[0])
	}
	if !n.leaf && len(n.children) > 0 {
		return compareKey(n.children[0], key)
	}
	return 0, true
}

// splitChild splits the full child at index i of parent. The median key
// (index t-1 of 2t-1) promotes into parent; the right half becomes a new
// sibling.
func splitChild(parent *node, i int, t int) {
	full := parent.children[i]
	mid := t - 1

	right := &node{leaf: full.leaf}
	right.keys = append([]any{}, full.keys[mid+1:]...)
	right.values = append([]int64{}, full.values[mid+1:]...)

	medianKey := full.keys[mid]
	medianValue := full.values[mid]

	if !full.leaf {
		right.children = append([]*node{}, full.children[mid+1:]...)
		full.children = full.children[:mid+1]
	}

	full.keys = full.keys[:mid]
	full.values = full.values[:mid]

	parent.children = append(parent.children, nil)
	copy(parent.children[i+2:], parent.children[i+1:])
	parent.children[i+1] = right

	parent.keys = append(parent.keys, nil)
	copy(parent.keys[i+1:], parent.keys[i:])
	parent.keys[i] = medianKey

	parent.values = append(parent.values, 0)
	copy(parent.values[i+1:], parent.values[i:])
	parent.values[i] = medianValue
}

func insertNonFull(n *node, key any, value int64, t int) {
	i := len(n.keys) - 1

	if n.leaf {
		n.keys = append(n.keys, nil)
		n.values = append(n.values, 0)
		for i >= 0 && less(key, n.keys[i]) {
			n.keys[i+1] = n.keys[i]
			n.values[i+1] = n.values[i]
			i--
		}
		n.keys[i+1] = key
		n.values[i+1] = value
		return
	}

	for i >= 0 && less(key, n.keys[i]) {
		i--
	}
	i++

	if len(n.children[i].keys) >= 2*t-1 {
		splitChild(n, i, t)
		if greater(key, n.keys[i]) {
			i++
		}
	}
	insertNonFull(n.children[i], key, value, t)
}

// Search returns the offset associated with key, if present.
func (idx *Index) Search(key any) (int64, bool) {
	return searchNode(idx.root, key)
}

func searchNode(n *node, key any) (int64, bool) {
	i := 0
	for i < len(n.keys) && greater(key, n.keys[i]) {
		i++
	}
	if i < len(n.keys) && equal(key, n.keys[i]) {
		return n.values[i], true
	}
	if n.leaf {
		return 0, false
	}
	return searchNode(n.children[i], key)
}

// Entry is one (key, offset) pair returned by RangeSearch.
type Entry struct {
	Key    any
	Offset int64
}

// RangeSearch returns every entry with lo <= key <= hi, in ascending
// key order.
func (idx *Index) RangeSearch(lo, hi any) []Entry {
	var out []Entry
	rangeSearchNode(idx.root, lo, hi, &out)
	return out
}

func rangeSearchNode(n *node, lo, hi any, out *[]Entry) {
	i := 0
	for i < len(n.keys) {
		if !n.leaf && !less(n.keys[i], lo) {
			rangeSearchNode(n.children[i], lo, hi, out)
		}
		if !less(n.keys[i], lo) && !greater(n.keys[i], hi) {
			*out = append(*out, Entry{Key: n.keys[i], Offset: n.values[i]})
		}
		i++
	}
	if !n.leaf && i > 0 && !less(hi, n.keys[i-1]) {
		rangeSearchNode(n.children[i], lo, hi, out)
	}
}

// Delete removes key if present. It does not rebalance the tree; see
// the package doc for the consequence of that simplification.
func (idx *Index) Delete(key any) bool {
	deleted := deleteFromNode(idx.root, key)
	if deleted {
		idx.size--
	}
	return deleted
}

func deleteFromNode(n *node, key any) bool {
	for i, k := range n.keys {
		if equal(key, k) {
			n.keys = append(n.keys[:i], n.keys[i+1:]...)
			n.values = append(n.values[:i], n.values[i+1:]...)
			return true
		}
	}
	if n.leaf {
		return false
	}
	i := 0
	for i < len(n.keys) && greater(key, n.keys[i]) {
		i++
	}
	return deleteFromNode(n.children[i], key)
}

// InOrder returns every entry in ascending key order.
func (idx *Index) InOrder() []Entry {
	var out []Entry
	inOrder(idx.root, &out)
	return out
}

func inOrder(n *node, out *[]Entry) {
	for i, k := range n.keys {
		if !n.leaf {
			inOrder(n.children[i], out)
		}
		*out = append(*out, Entry{Key: k, Offset: n.values[i]})
	}
	if !n.leaf {
		inOrder(n.children[len(n.children)-1], out)
	}
}
