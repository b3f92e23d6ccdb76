package appendengine

// containerMeta tracks one container's insertion-ordered offset list. It is
// the unit persisted in the META block and rebuilt from a linear replay on
// open.
type containerMeta struct {
	Kind    string  `json:"kind"`
	Offsets []int64 `json:"offsets"`
}

// indexMeta records that a secondary index exists on field, with the
// B-tree order it was created with, so it can be rebuilt on open.
type indexMeta struct {
	Order int `json:"order"`
}

// meta is the full container directory and index catalog, serialized as
// the file's single META block.
type meta struct {
	Containers map[string]*containerMeta        `json:"containers"`
	Indexes    map[string]map[string]*indexMeta `json:"indexes"`
}

func newMeta() *meta {
	return &meta{
		Containers: make(map[string]*containerMeta),
		Indexes:    make(map[string]map[string]*indexMeta),
	}
}
