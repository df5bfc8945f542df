package simcli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// Config holds the simulator configuration. The first four fields match
// the cache's boot/live parameters; the rest are workload knobs.
type Config struct {
	Enabled             *bool  `json:"enabled,omitempty"`
	Compressor          string `json:"compressor,omitempty"`
	MaxPoolPercent      uint   `json:"max_pool_percent,omitempty"`
	MaxCompressionRatio uint   `json:"max_compression_ratio,omitempty"`

	TotalRAM string `json:"total_ram,omitempty"`
	Pages    int    `json:"pages,omitempty"`
	Workers  int    `json:"workers,omitempty"`
	Seed     int64  `json:"seed,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Pages:   4096,
		Workers: 4,
		Seed:    1,
	}
}

var errConfigRead = errors.New("simcli: cannot read config file")

// LoadConfig reads a HuJSON config file over the defaults. A missing
// path returns the defaults unchanged; a missing file at an explicit
// path is an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", errConfigRead, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC in %s: %w", path, err)
	}

	unmarshalErr := json.Unmarshal(standardized, &cfg)
	if unmarshalErr != nil {
		return Config{}, fmt.Errorf("invalid JSON in %s: %w", path, unmarshalErr)
	}

	return cfg, nil
}
