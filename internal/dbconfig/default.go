package dbconfig

// Default configuration values.
const (
	DefaultDataDir = "/var/lib/hybriddb/data"

	DefaultRowEngine           = "append"
	DefaultAppendCacheCapacity = 1024
	DefaultAppendBTreeOrder    = 32
	DefaultLSMMemtableCapacity = 1000
	DefaultLSMWALSyncMode      = "sync"

	DefaultColumnarDir = "columnar"
	DefaultVectorDir   = "vectors"

	DefaultRingVirtualNodes = 128

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataDir: DefaultDataDir,
		Row: RowSection{
			Engine: DefaultRowEngine,
			AppendTable: AppendEngineConfig{
				CacheCapacity: DefaultAppendCacheCapacity,
				BTreeOrder:    DefaultAppendBTreeOrder,
			},
			LSM: LSMConfig{
				MemtableCapacity: DefaultLSMMemtableCapacity,
				WALSyncMode:      DefaultLSMWALSyncMode,
			},
		},
		Columnar: ColumnarSection{Dir: DefaultColumnarDir},
		Vector:   VectorSection{Dir: DefaultVectorDir},
		Ring:     RingSection{VirtualNodes: DefaultRingVirtualNodes},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
