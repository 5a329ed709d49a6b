package cache_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tracesim/timing/cache"
)

var _ = Describe("Config", func() {
	Describe("Default configurations", func() {
		It("should create L1I config", func() {
			config := cache.DefaultL1IConfig()
			Expect(config.Size).To(Equal(192 * 1024))
			Expect(config.Associativity).To(Equal(6))
			Expect(config.BlockSize).To(Equal(64))
			Expect(config.Validate()).To(Succeed())
		})

		It("should create L1D config", func() {
			config := cache.DefaultL1DConfig()
			Expect(config.Size).To(Equal(128 * 1024))
			Expect(config.Associativity).To(Equal(8))
			Expect(config.NumSets()).To(Equal(256))
		})

		It("should create a valid default hierarchy", func() {
			config := cache.DefaultHierarchyConfig()
			Expect(config.Levels).To(HaveLen(2))
			Expect(config.Validate()).To(Succeed())
			Expect(cache.DefaultL2PerCoreConfig().Validate()).To(Succeed())
		})
	})

	Describe("Validate", func() {
		DescribeTable("should reject bad geometry",
			func(level cache.LevelConfig, msg string) {
				Expect(level.Validate()).To(MatchError(ContainSubstring(msg)))
			},
			Entry("zero size", cache.LevelConfig{Name: "L1", BlockSize: 64, Associativity: 1}, "size must be > 0"),
			Entry("zero block", cache.LevelConfig{Name: "L1", Size: 64, Associativity: 1}, "block_size must be > 0"),
			Entry("zero ways", cache.LevelConfig{Name: "L1", Size: 128, BlockSize: 64}, "associativity must be > 0"),
			Entry("uneven sets", cache.LevelConfig{Name: "L1", Size: 192, BlockSize: 64, Associativity: 2}, "multiple of associativity"),
			Entry("bad policy", cache.LevelConfig{Name: "L1", Size: 128, BlockSize: 64, Associativity: 1, Policy: "mru"}, "unknown replacement policy"),
		)

		It("should not need associativity when fully associative", func() {
			level := cache.LevelConfig{Name: "FA", Size: 192, BlockSize: 64, FullyAssociative: true}
			Expect(level.Validate()).To(Succeed())
			Expect(level.NumSets()).To(Equal(1))
			Expect(level.NumBlocks()).To(Equal(3))
		})

		It("should reject duplicate and empty names", func() {
			l := cache.DefaultL1DConfig()
			Expect(cache.HierarchyConfig{Levels: []cache.LevelConfig{l, l}}.Validate()).
				To(MatchError(ContainSubstring("duplicate")))

			l.Name = ""
			Expect(cache.HierarchyConfig{Levels: []cache.LevelConfig{l}}.Validate()).
				To(MatchError(ContainSubstring("name must not be empty")))
		})
	})

	Describe("LoadHierarchyConfig", func() {
		var dir string

		BeforeEach(func() {
			dir = GinkgoT().TempDir()
		})

		It("should load levels from JSON", func() {
			path := filepath.Join(dir, "h.json")
			Expect(os.WriteFile(path, []byte(`{"levels":[
				{"name":"L1","size":1024,"block_size":64,"associativity":2,"policy":"fifo"},
				{"name":"L2","size":4096,"block_size":64,"fully_associative":true}
			]}`), 0644)).To(Succeed())

			config, err := cache.LoadHierarchyConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(config.Levels).To(HaveLen(2))
			Expect(config.Levels[0].Policy).To(Equal("fifo"))
			Expect(config.Levels[1].FullyAssociative).To(BeTrue())

			clone := config.Clone()
			clone.Levels[0].Name = "X"
			Expect(config.Levels[0].Name).To(Equal("L1"))
		})

		It("should fail on a missing file", func() {
			_, err := cache.LoadHierarchyConfig(filepath.Join(dir, "missing.json"))
			Expect(err).To(MatchError(ContainSubstring("failed to read")))
		})

		It("should fail on malformed JSON", func() {
			path := filepath.Join(dir, "bad.json")
			Expect(os.WriteFile(path, []byte(`{"levels":`), 0644)).To(Succeed())

			_, err := cache.LoadHierarchyConfig(path)
			Expect(err).To(MatchError(ContainSubstring("failed to parse")))
		})

		It("should fail on invalid geometry", func() {
			path := filepath.Join(dir, "invalid.json")
			Expect(os.WriteFile(path, []byte(`{"levels":[{"name":"L1","size":100,"block_size":64,"associativity":1}]}`), 0644)).To(Succeed())

			_, err := cache.LoadHierarchyConfig(path)
			Expect(err).To(MatchError(ContainSubstring("invalid hierarchy config")))
		})
	})
})
