package core

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/tracesim/timing/cache"
	"github.com/sarchlab/tracesim/timing/predictor"
)

// Config holds everything needed to build a simulation.
type Config struct {
	// Hierarchy lists the cache levels. Backing memory is implicit.
	Hierarchy cache.HierarchyConfig `json:"hierarchy"`

	// Predictor selects and sizes the branch predictor.
	Predictor predictor.Config `json:"predictor"`

	// WarmupInstructions is the number of retired instructions to skip
	// before branches and memory accesses are simulated. Default: 0.
	WarmupInstructions uint64 `json:"warmup_instructions"`

	// MaxInstructions ends the run when this many instructions have
	// retired. 0 means unlimited. Default: 0.
	MaxInstructions uint64 `json:"max_instructions"`

	// ROIGated makes the run wait for a region-of-interest begin marker.
	// When false the region of interest is active from the start.
	ROIGated bool `json:"roi_gated"`

	// TrackAllocations enables the MALLOC/FREE trace.
	TrackAllocations bool `json:"track_allocations"`
}

// DefaultConfig returns an ungated, unlimited run over the default
// hierarchy and a tournament predictor.
func DefaultConfig() *Config {
	return &Config{
		Hierarchy: cache.DefaultHierarchyConfig(),
		Predictor: predictor.DefaultConfig(),
	}
}

// LoadConfig loads a Config from a JSON file. Fields missing from the file
// keep their defaults, except that levels given in the file are taken as
// written and never filled in from the default hierarchy.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read simulation config file: %w", err)
	}

	config := DefaultConfig()
	config.Hierarchy.Levels = nil
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse simulation config: %w", err)
	}

	if config.Hierarchy.Levels == nil {
		config.Hierarchy = cache.DefaultHierarchyConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize simulation config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write simulation config file: %w", err)
	}

	return nil
}

// Validate checks the hierarchy, the predictor and the instruction budget.
func (c *Config) Validate() error {
	if err := c.Hierarchy.Validate(); err != nil {
		return err
	}
	if err := c.Predictor.Validate(); err != nil {
		return err
	}
	if c.MaxInstructions > 0 && c.WarmupInstructions >= c.MaxInstructions {
		return fmt.Errorf("warmup_instructions must be < max_instructions")
	}
	return nil
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Hierarchy = c.Hierarchy.Clone()
	return &clone
}
