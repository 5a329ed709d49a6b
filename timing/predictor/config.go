package predictor

import "fmt"

// Predictor kinds accepted by Config.Kind.
const (
	KindTournament = "tournament"
	KindBimodal    = "bimodal"
)

// Constants sizes the tournament predictor tables. All table sizes must be
// powers of two.
type Constants struct {
	// InstShiftAmt is the number of PC alignment bits dropped before
	// indexing. Default: 2.
	InstShiftAmt uint `json:"inst_shift_amt"`

	// LocalPredictorSize is the number of local counters. Its log2 is the
	// width of each local history register. Default: 4096.
	LocalPredictorSize uint32 `json:"local_predictor_size"`
	LocalCounterBits   uint   `json:"local_counter_bits"`

	// LocalHistoryTableSize is the number of per-address history
	// registers. Default: 4096.
	LocalHistoryTableSize uint32 `json:"local_history_table_size"`

	// GlobalPredictorSize is the number of global counters. Its log2 is
	// the width of the global history register. Default: 8192.
	GlobalPredictorSize uint32 `json:"global_predictor_size"`
	GlobalCounterBits   uint   `json:"global_counter_bits"`

	// ChoicePredictorSize must equal GlobalPredictorSize. Default: 8192.
	ChoicePredictorSize uint32 `json:"choice_predictor_size"`
	ChoiceCounterBits   uint   `json:"choice_counter_bits"`

	// InitialCounter seeds the local and global counters.
	// Default: 1 (weakly not taken).
	InitialCounter uint8 `json:"initial_counter"`

	// InitialChoice seeds the choice counters. Values in the lower half of
	// the range prefer the local predictor. Default: 1.
	InitialChoice uint8 `json:"initial_choice"`
}

// DefaultConstants returns the standard tournament sizing.
func DefaultConstants() Constants {
	return Constants{
		InstShiftAmt:          2,
		LocalPredictorSize:    4096,
		LocalCounterBits:      2,
		LocalHistoryTableSize: 4096,
		GlobalPredictorSize:   8192,
		GlobalCounterBits:     2,
		ChoicePredictorSize:   8192,
		ChoiceCounterBits:     2,
		InitialCounter:        1,
		InitialChoice:         1,
	}
}

// Validate checks the table geometry.
func (c Constants) Validate() error {
	tables := []struct {
		name string
		size uint32
	}{
		{"local_predictor_size", c.LocalPredictorSize},
		{"local_history_table_size", c.LocalHistoryTableSize},
		{"global_predictor_size", c.GlobalPredictorSize},
		{"choice_predictor_size", c.ChoicePredictorSize},
	}
	for _, t := range tables {
		if !isPowerOfTwo(t.size) {
			return fmt.Errorf("%s must be a power of 2, got %d", t.name, t.size)
		}
	}

	if c.ChoicePredictorSize != c.GlobalPredictorSize {
		return fmt.Errorf("choice_predictor_size must equal global_predictor_size")
	}

	for _, bits := range []uint{c.LocalCounterBits, c.GlobalCounterBits, c.ChoiceCounterBits} {
		if bits == 0 || bits > 8 {
			return fmt.Errorf("counter bits must be in [1, 8], got %d", bits)
		}
	}

	if c.InstShiftAmt >= 64 {
		return fmt.Errorf("inst_shift_amt must be < 64")
	}

	return nil
}

// BimodalConfig sizes the bimodal predictor.
type BimodalConfig struct {
	// BHTSize is the number of entries in the Branch History Table.
	// Must be a power of 2. Default is 1024.
	BHTSize uint32 `json:"bht_size"`
	// BTBSize is the number of entries in the Branch Target Buffer.
	// Must be a power of 2. Default is 256.
	BTBSize uint32 `json:"btb_size"`
}

// DefaultBimodalConfig returns a default configuration.
func DefaultBimodalConfig() BimodalConfig {
	return BimodalConfig{
		BHTSize: 1024,
		BTBSize: 256,
	}
}

// Validate checks the table sizes.
func (c BimodalConfig) Validate() error {
	if !isPowerOfTwo(c.BHTSize) {
		return fmt.Errorf("bht_size must be a power of 2, got %d", c.BHTSize)
	}
	if !isPowerOfTwo(c.BTBSize) {
		return fmt.Errorf("btb_size must be a power of 2, got %d", c.BTBSize)
	}
	return nil
}

// Config selects and sizes a predictor.
type Config struct {
	Kind       string        `json:"kind"`
	Tournament Constants     `json:"tournament"`
	Bimodal    BimodalConfig `json:"bimodal"`
}

// DefaultConfig returns a tournament predictor configuration.
func DefaultConfig() Config {
	return Config{
		Kind:       KindTournament,
		Tournament: DefaultConstants(),
		Bimodal:    DefaultBimodalConfig(),
	}
}

// Validate checks the selected predictor's settings.
func (c Config) Validate() error {
	switch c.Kind {
	case KindTournament, "":
		return c.Tournament.Validate()
	case KindBimodal:
		return c.Bimodal.Validate()
	default:
		return fmt.Errorf("unknown predictor kind %q", c.Kind)
	}
}
