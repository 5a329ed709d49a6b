package core_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tracesim/timing/core"
	"github.com/sarchlab/tracesim/timing/predictor"
)

var _ = Describe("Config", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("should provide a valid default", func() {
		config := core.DefaultConfig()
		Expect(config.Validate()).To(Succeed())
		Expect(config.ROIGated).To(BeFalse())
		Expect(config.Predictor.Kind).To(Equal(predictor.KindTournament))
	})

	It("should round-trip through a file", func() {
		config := core.DefaultConfig()
		config.MaxInstructions = 1000
		config.WarmupInstructions = 100
		config.ROIGated = true
		config.Predictor.Kind = predictor.KindBimodal

		path := filepath.Join(dir, "config.json")
		Expect(config.SaveConfig(path)).To(Succeed())

		loaded, err := core.LoadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal(config))
	})

	It("should keep defaults for missing fields", func() {
		path := filepath.Join(dir, "partial.json")
		Expect(os.WriteFile(path, []byte(`{"max_instructions": 50}`), 0644)).To(Succeed())

		loaded, err := core.LoadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.MaxInstructions).To(Equal(uint64(50)))
		Expect(loaded.Hierarchy.Levels).To(HaveLen(2))
		Expect(loaded.Predictor.Tournament.GlobalPredictorSize).To(Equal(uint32(8192)))
	})

	It("should not fill file levels from the default hierarchy", func() {
		path := filepath.Join(dir, "levels.json")
		Expect(os.WriteFile(path, []byte(
			`{"hierarchy":{"levels":[{"name":"X","size":4096,"block_size":64}]}}`), 0644)).To(Succeed())

		_, err := core.LoadConfig(path)
		Expect(err).To(MatchError(ContainSubstring("associativity must be > 0")))
	})

	It("should take file levels as written", func() {
		path := filepath.Join(dir, "levels.json")
		Expect(os.WriteFile(path, []byte(`{"hierarchy":{"levels":[
			{"name":"X","size":4096,"block_size":32,"associativity":2}
		]}}`), 0644)).To(Succeed())

		loaded, err := core.LoadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Hierarchy.Levels).To(HaveLen(1))
		Expect(loaded.Hierarchy.Levels[0].BlockSize).To(Equal(32))
		Expect(loaded.Hierarchy.Levels[0].Associativity).To(Equal(2))
		Expect(loaded.Hierarchy.Levels[0].Policy).To(BeEmpty())
	})

	It("should reject a warm-up longer than the budget", func() {
		config := core.DefaultConfig()
		config.MaxInstructions = 10
		config.WarmupInstructions = 10
		Expect(config.Validate()).To(MatchError(ContainSubstring("warmup_instructions")))
	})

	It("should reject a bad predictor geometry on load", func() {
		path := filepath.Join(dir, "bad.json")
		Expect(os.WriteFile(path,
			[]byte(`{"predictor": {"tournament": {"global_predictor_size": 1000}}}`), 0644)).To(Succeed())

		_, err := core.LoadConfig(path)
		Expect(err).To(MatchError(ContainSubstring("invalid simulation config")))
	})

	It("should fail on malformed JSON", func() {
		path := filepath.Join(dir, "broken.json")
		Expect(os.WriteFile(path, []byte(`{`), 0644)).To(Succeed())

		_, err := core.LoadConfig(path)
		Expect(err).To(MatchError(ContainSubstring("failed to parse")))
	})

	It("should clone deeply", func() {
		config := core.DefaultConfig()
		clone := config.Clone()
		clone.Hierarchy.Levels[0].Size = 1

		Expect(config.Hierarchy.Levels[0].Size).To(Equal(128 * 1024))
	})
})
