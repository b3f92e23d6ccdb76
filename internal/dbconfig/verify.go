package dbconfig

import (
	"errors"
	"os"
)

// Verify validates cfg, creating its data directory if necessary.
func Verify(cfg *Config) error {
	if cfg.DataDir == "" {
		return errors.New("data_dir is required")
	}
	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return errors.New("cannot create data directory: " + err.Error())
	}

	switch cfg.Row.Engine {
	case "append", "lsm":
	default:
		return errors.New("row.engine must be \"append\" or \"lsm\"")
	}

	if cfg.Row.AppendTable.CacheCapacity <= 0 {
		return errors.New("row.append.cache_capacity must be positive")
	}
	if cfg.Row.AppendTable.BTreeOrder < 2 {
		return errors.New("row.append.btree_order must be at least 2")
	}
	if cfg.Row.LSM.MemtableCapacity <= 0 {
		return errors.New("row.lsm.memtable_capacity must be positive")
	}
	if cfg.Row.LSM.WALSyncMode != "sync" {
		return errors.New("row.lsm.wal_sync_mode: only \"sync\" is implemented")
	}

	if cfg.Ring.VirtualNodes <= 0 {
		return errors.New("ring.virtual_nodes must be positive")
	}

	return nil
}
