package predictor_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tracesim/event"
	"github.com/sarchlab/tracesim/timing/predictor"
)

var _ = Describe("Bimodal", func() {
	var bp *predictor.Bimodal

	BeforeEach(func() {
		bp = predictor.NewBimodal(0, predictor.BimodalConfig{BHTSize: 16, BTBSize: 8})
	})

	taken := func(pc, target uint64) event.BranchEvent {
		return event.BranchEvent{PC: pc, Taken: true, Target: target}
	}

	notTaken := func(pc uint64) event.BranchEvent {
		return event.BranchEvent{PC: pc}
	}

	Describe("Prediction", func() {
		It("should initially predict taken (biased)", func() {
			Expect(bp.Predict(taken(0x1000, 0x2000), 0)).To(BeTrue())
		})

		It("should mispredict a first not-taken branch", func() {
			Expect(bp.Predict(notTaken(0x1000), 0)).To(BeFalse())
		})

		It("should learn not-taken pattern", func() {
			for i := 0; i < 10; i++ {
				bp.Predict(notTaken(0x1000), uint64(i))
			}
			Expect(bp.Predict(notTaken(0x1000), 10)).To(BeTrue())
		})

		It("should require 2 mispredictions to change direction", func() {
			pc := uint64(0x1000)
			for i := 0; i < 3; i++ {
				bp.Predict(taken(pc, 0x2000), 0)
			}

			// At 3: first not-taken is a mispredict, counter drops to 2.
			Expect(bp.Predict(notTaken(pc), 0)).To(BeFalse())
			// At 2: still predicts taken.
			Expect(bp.Predict(notTaken(pc), 0)).To(BeFalse())
			// At 1: now predicts not taken.
			Expect(bp.Predict(notTaken(pc), 0)).To(BeTrue())
		})
	})

	Describe("BTB", func() {
		It("should cache branch targets", func() {
			_, known := bp.Target(0x1000)
			Expect(known).To(BeFalse())

			bp.Predict(taken(0x1000, 0x2000), 0)

			target, known := bp.Target(0x1000)
			Expect(known).To(BeTrue())
			Expect(target).To(Equal(uint64(0x2000)))
		})

		It("should not cache not-taken branches", func() {
			bp.Predict(event.BranchEvent{PC: 0x1000, Target: 0x2000}, 0)

			_, known := bp.Target(0x1000)
			Expect(known).To(BeFalse())
		})

		It("should handle BTB conflicts correctly", func() {
			bp = predictor.NewBimodal(0, predictor.BimodalConfig{BHTSize: 16, BTBSize: 4})

			pc1 := uint64(0x1000)
			// pc2 conflicts with pc1 (same BTB index)
			pc2 := uint64(0x1000 + 4*4)

			bp.Predict(taken(pc1, 0x2000), 0)
			bp.Predict(taken(pc2, 0x3000), 0)

			target, known := bp.Target(pc2)
			Expect(known).To(BeTrue())
			Expect(target).To(Equal(uint64(0x3000)))

			_, known = bp.Target(pc1)
			Expect(known).To(BeFalse())
		})

		It("should count BTB hits and misses", func() {
			bp.Predict(taken(0x1000, 0x2000), 0)
			bp.Predict(taken(0x1000, 0x2000), 1)

			s := bp.BTBStats()
			Expect(s.Misses).To(Equal(uint64(1)))
			Expect(s.Hits).To(Equal(uint64(1)))
			Expect(s.HitRate()).To(BeNumerically("~", 50.0))
		})
	})

	Describe("Statistics", func() {
		It("should compute accuracy correctly", func() {
			pc := uint64(0x1000)
			for i := 0; i < 8; i++ {
				bp.Predict(taken(pc, 0x2000), uint64(i))
			}
			bp.Predict(notTaken(pc), 8)
			bp.Predict(notTaken(pc), 9)

			c := bp.Counters()
			Expect(c.Predictions()).To(Equal(uint64(10)))
			Expect(c.Correct).To(Equal(uint64(8)))
			Expect(c.Accuracy()).To(BeNumerically("~", 80.0))
		})
	})

	It("should reset state", func() {
		bp.Predict(taken(0x1000, 0x2000), 0)
		bp.Reset()

		_, known := bp.Target(0x1000)
		Expect(known).To(BeFalse())
		Expect(bp.BTBStats()).To(Equal(predictor.BTBStats{}))
	})
})
