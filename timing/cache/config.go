package cache

import (
	"encoding/json"
	"fmt"
	"os"
)

// LevelConfig describes one cache level.
type LevelConfig struct {
	Name string `json:"name"`
	// Size in bytes
	Size int `json:"size"`
	// BlockSize in bytes (cache line size)
	BlockSize int `json:"block_size"`
	// Associativity (number of ways). Ignored when FullyAssociative is set.
	Associativity int `json:"associativity"`
	// FullyAssociative places every block in one global pool.
	FullyAssociative bool `json:"fully_associative"`
	// Policy names the replacement policy: "lru" (default) or "fifo".
	Policy string `json:"policy"`
}

// NumBlocks returns the number of blocks the level holds.
func (c LevelConfig) NumBlocks() int {
	return c.Size / c.BlockSize
}

// NumSets returns the number of sets. A fully-associative level has one.
func (c LevelConfig) NumSets() int {
	if c.FullyAssociative {
		return 1
	}
	return c.Size / (c.Associativity * c.BlockSize)
}

// Validate checks that the geometry is consistent.
func (c LevelConfig) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("%s: size must be > 0", c.Name)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("%s: block_size must be > 0", c.Name)
	}
	if c.Size%c.BlockSize != 0 {
		return fmt.Errorf("%s: size must be a multiple of block_size", c.Name)
	}

	if !c.FullyAssociative {
		if c.Associativity <= 0 {
			return fmt.Errorf("%s: associativity must be > 0", c.Name)
		}
		if c.Size%(c.Associativity*c.BlockSize) != 0 {
			return fmt.Errorf("%s: size must be a multiple of associativity * block_size", c.Name)
		}
	}

	switch c.Policy {
	case "", PolicyLRU, PolicyFIFO:
	default:
		return fmt.Errorf("%s: unknown replacement policy %q", c.Name, c.Policy)
	}

	return nil
}

// DefaultL1IConfig returns default configuration for L1 instruction cache.
// Apple M2 P-core figures:
// - 192KB per performance core (6-way, 64B line)
func DefaultL1IConfig() LevelConfig {
	return LevelConfig{
		Name:          "L1I",
		Size:          192 * 1024, // 192KB
		Associativity: 6,          // 6-way
		BlockSize:     64,         // 64B cache line
		Policy:        PolicyLRU,
	}
}

// DefaultL1DConfig returns default configuration for L1 data cache.
// Apple M2 P-core figures:
// - 128KB per performance core (8-way, 64B line)
func DefaultL1DConfig() LevelConfig {
	return LevelConfig{
		Name:          "L1D",
		Size:          128 * 1024, // 128KB
		Associativity: 8,          // 8-way
		BlockSize:     64,         // 64B cache line
		Policy:        PolicyLRU,
	}
}

// DefaultL2Config returns default configuration for unified L2 cache.
// Apple M2 P-core figures:
// - 24MB shared L2 (entire chip)
// - 16-way set associative
// - 128B cache line
func DefaultL2Config() LevelConfig {
	return LevelConfig{
		Name:          "L2",
		Size:          24 * 1024 * 1024, // 24MB (M2)
		Associativity: 16,               // 16-way
		BlockSize:     128,              // 128B cache line
		Policy:        PolicyLRU,
	}
}

// DefaultL2PerCoreConfig returns L2 configuration for per-core L2 setups.
// Useful for simulating systems with private L2 per core.
func DefaultL2PerCoreConfig() LevelConfig {
	return LevelConfig{
		Name:          "L2",
		Size:          512 * 1024, // 512KB per core
		Associativity: 8,          // 8-way
		BlockSize:     128,        // 128B cache line
		Policy:        PolicyLRU,
	}
}

// HierarchyConfig lists the cache levels from closest to the core to
// farthest. Backing memory is appended automatically.
type HierarchyConfig struct {
	Levels []LevelConfig `json:"levels"`
}

// DefaultHierarchyConfig returns an L1D + shared L2 hierarchy.
func DefaultHierarchyConfig() HierarchyConfig {
	return HierarchyConfig{
		Levels: []LevelConfig{DefaultL1DConfig(), DefaultL2Config()},
	}
}

// Validate checks every level.
func (c HierarchyConfig) Validate() error {
	names := make(map[string]bool)

	for i, l := range c.Levels {
		if l.Name == "" {
			return fmt.Errorf("level %d: name must not be empty", i)
		}
		if names[l.Name] {
			return fmt.Errorf("duplicate level name %q", l.Name)
		}
		names[l.Name] = true

		if err := l.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Clone returns a deep copy.
func (c HierarchyConfig) Clone() HierarchyConfig {
	levels := make([]LevelConfig, len(c.Levels))
	copy(levels, c.Levels)
	return HierarchyConfig{Levels: levels}
}

// LoadHierarchyConfig loads a HierarchyConfig from a JSON file.
func LoadHierarchyConfig(path string) (HierarchyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return HierarchyConfig{}, fmt.Errorf("failed to read hierarchy config file: %w", err)
	}

	var config HierarchyConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return HierarchyConfig{}, fmt.Errorf("failed to parse hierarchy config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return HierarchyConfig{}, fmt.Errorf("invalid hierarchy config: %w", err)
	}

	return config, nil
}
