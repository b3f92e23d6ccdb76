package dbconfig

// Config is the root configuration for hybriddbd.
type Config struct {
	DataDir  string          `koanf:"data_dir"`
	Row      RowSection      `koanf:"row"`
	Columnar ColumnarSection `koanf:"columnar"`
	Vector   VectorSection   `koanf:"vector"`
	Ring     RingSection     `koanf:"ring"`
	Log      LogSection      `koanf:"log"`
}

// RowSection configures the row tier: which engine backs it, and each
// engine's tunables.
type RowSection struct {
	Engine      string             `koanf:"engine"` // "append" | "lsm"
	AppendTable AppendEngineConfig `koanf:"append"`
	LSM         LSMConfig          `koanf:"lsm"`
}

// AppendEngineConfig configures the append-only row engine.
type AppendEngineConfig struct {
	CacheCapacity int `koanf:"cache_capacity"`
	BTreeOrder    int `koanf:"btree_order"`
}

// LSMConfig configures the log-structured row engine.
type LSMConfig struct {
	MemtableCapacity int    `koanf:"memtable_capacity"`
	WALSyncMode      string `koanf:"wal_sync_mode"` // only "sync" is implemented
}

// ColumnarSection configures the analytics tier.
type ColumnarSection struct {
	Dir string `koanf:"dir"`
}

// VectorSection configures the embeddings tier.
type VectorSection struct {
	Dir string `koanf:"dir"`
}

// RingSection configures the consistent-hash shard ring.
type RingSection struct {
	VirtualNodes int    `koanf:"virtual_nodes"`
	HashSeed     uint32 `koanf:"hash_seed"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
