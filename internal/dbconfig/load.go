package dbconfig

import (
	"fmt"

	"github.com/hybriddb/hybriddb/internal/infra/confloader"
)

// Load builds a Config starting from Default(), layering in filePath
// (if non-empty) and HYBRIDDB_-prefixed environment variables, then
// verifies the result.
func Load(filePath string) (*Config, error) {
	cfg := Default()

	loader := confloader.NewLoader(confloader.WithConfigFile(filePath))
	if err := loader.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
