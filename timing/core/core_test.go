package core_test

import (
	"bytes"
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tracesim/event"
	"github.com/sarchlab/tracesim/report"
	"github.com/sarchlab/tracesim/timing/cache"
	"github.com/sarchlab/tracesim/timing/core"
)

func smallConfig() *core.Config {
	config := core.DefaultConfig()
	config.Hierarchy = cache.HierarchyConfig{Levels: []cache.LevelConfig{
		{Name: "L1", Size: 1024, Associativity: 2, BlockSize: 64},
	}}
	return config
}

type tickRecorder struct {
	ticks []uint64
}

func (r *tickRecorder) Func(ctx sim.HookCtx) {
	if req, ok := ctx.Item.(*cache.Request); ok && ctx.Pos != cache.HookPosEvict {
		if ctx.Domain.(interface{ Name() string }).Name() == "L1" {
			r.ticks = append(r.ticks, req.Tick)
		}
	}
}

type failingSource struct {
	err error
}

func (s failingSource) Next() (event.Event, error) {
	return event.Event{}, s.err
}

var _ = Describe("Core", func() {
	var (
		config *core.Config
		c      *core.Core
	)

	build := func(opts ...core.CoreOption) {
		var err error
		opts = append(opts, core.WithLogger(GinkgoLogr))
		c, err = core.NewCore(config, opts...)
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		config = smallConfig()
	})

	It("should number the predictor and the levels", func() {
		build()
		Expect(c.Predictor.ID()).To(Equal(core.PredictorID))
		Expect(c.Hierarchy.Levels[0].ID()).To(Equal(1))
		Expect(c.Hierarchy.Memory.ID()).To(Equal(2))
		Expect(c.Stats().Snapshot()).To(HaveLen(3))
	})

	It("should reject an invalid config", func() {
		config.Predictor.Kind = "perceptron"
		_, err := core.NewCore(config)
		Expect(err).To(MatchError(ContainSubstring("unknown predictor kind")))
	})

	It("should route events to the predictor and the hierarchy", func() {
		build()

		c.Dispatch(event.Branch(0x400, false, 0x800))
		c.Dispatch(event.Memory(0x400, 0x1000, event.Read, 8))
		c.Dispatch(event.Memory(0x404, 0x1000, event.Write, 8))
		c.Dispatch(event.Retire(0))

		pred := c.Stats().Get(core.PredictorID)
		Expect(pred.Predictions()).To(Equal(uint64(1)))
		Expect(pred.Correct).To(Equal(uint64(1)))

		l1 := c.Stats().Get(1)
		Expect(l1.Misses).To(Equal(uint64(1)))
		Expect(l1.Hits).To(Equal(uint64(1)))
		Expect(l1.Writes).To(Equal(uint64(1)))
		Expect(c.Instructions()).To(Equal(uint64(1)))
	})

	It("should stamp memory accesses with increasing ticks from 1", func() {
		rec := &tickRecorder{}
		build(core.WithHook(rec))

		for i := 0; i < 4; i++ {
			c.OnMemoryAccess(event.MemoryEvent{Addr: uint64(i) * 0x40, Kind: event.Read})
		}

		Expect(rec.ticks).To(Equal([]uint64{1, 2, 3, 4}))
	})

	Context("with a gated region of interest", func() {
		BeforeEach(func() {
			config.ROIGated = true
		})

		It("should ignore events outside the region", func() {
			build()
			Expect(c.ROIActive()).To(BeFalse())

			c.OnBranch(event.BranchEvent{PC: 0x400}, 1)
			c.OnMemoryAccess(event.MemoryEvent{Addr: 0x1000})
			c.OnInstructionRetired(0)

			Expect(c.Stats().Get(core.PredictorID).Predictions()).To(BeZero())
			Expect(c.Stats().Get(1).Accesses()).To(BeZero())
			Expect(c.Instructions()).To(BeZero())

			c.BeginROI()
			c.OnMemoryAccess(event.MemoryEvent{Addr: 0x1000})
			c.OnInstructionRetired(0)
			c.EndROI()
			c.OnInstructionRetired(0)

			Expect(c.Stats().Get(1).Accesses()).To(Equal(uint64(1)))
			Expect(c.Instructions()).To(Equal(uint64(1)))
		})
	})

	Context("with a warm-up", func() {
		BeforeEach(func() {
			config.WarmupInstructions = 3
		})

		It("should simulate only after the warm-up instructions", func() {
			build()

			for i := 0; i < 3; i++ {
				c.OnBranch(event.BranchEvent{PC: 0x400}, uint64(i))
				c.OnInstructionRetired(0)
			}
			Expect(c.Stats().Get(core.PredictorID).Predictions()).To(BeZero())

			c.OnBranch(event.BranchEvent{PC: 0x400}, 3)
			Expect(c.Stats().Get(core.PredictorID).Predictions()).To(Equal(uint64(1)))
		})
	})

	Context("with an instruction budget", func() {
		BeforeEach(func() {
			config.MaxInstructions = 10
		})

		It("should finish exactly once", func() {
			build()

			var reports []report.Report
			c.OnFinish(func(r report.Report) {
				reports = append(reports, r)
			})

			for i := 0; i < 25; i++ {
				c.OnInstructionRetired(0)
			}

			Expect(c.Finished()).To(BeTrue())
			Expect(reports).To(HaveLen(1))
			Expect(reports[0].Instructions).To(Equal(uint64(10)))

			r := c.Finish()
			Expect(r.RunID).To(Equal(reports[0].RunID))
			Expect(reports).To(HaveLen(1))
		})

		It("should not change state after finishing", func() {
			build()
			for i := 0; i < 10; i++ {
				c.OnInstructionRetired(0)
			}

			c.OnMemoryAccess(event.MemoryEvent{Addr: 0x1000})
			c.OnBranch(event.BranchEvent{PC: 0x400}, 11)
			c.BeginROI()

			Expect(c.Stats().Get(1).Accesses()).To(BeZero())
			Expect(c.Stats().Get(core.PredictorID).Predictions()).To(BeZero())
		})

		It("should stop a run at the budget", func() {
			build(core.WithRunID("budget"))

			events := make([]event.Event, 0, 40)
			for i := 0; i < 20; i++ {
				events = append(events, event.Retire(0), event.Branch(0x400, true, 0x800))
			}
			src := event.NewSliceSource(events)

			Expect(c.Run(context.Background(), src)).To(Succeed())
			Expect(c.Finished()).To(BeTrue())
			Expect(src.Remaining()).To(Equal(21))
			Expect(c.Finish().RunID).To(Equal("budget"))
		})

		It("should run late OnFinish callbacks immediately", func() {
			build()
			c.Finish()

			called := false
			c.OnFinish(func(report.Report) { called = true })
			Expect(called).To(BeTrue())
		})
	})

	It("should stop on a cancelled context", func() {
		build()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := c.Run(ctx, event.NewSliceSource([]event.Event{event.Retire(0)}))
		Expect(err).To(MatchError(context.Canceled))
		Expect(c.Instructions()).To(BeZero())
	})

	It("should return source errors", func() {
		build()
		boom := errors.New("boom")

		err := c.Run(context.Background(), failingSource{err: boom})
		Expect(errors.Is(err, boom)).To(BeTrue())
	})

	It("should return at the end of the source without finishing", func() {
		build()
		src := event.NewSliceSource([]event.Event{event.Retire(0), event.Retire(1)})

		Expect(c.Run(context.Background(), src)).To(Succeed())
		Expect(c.Finished()).To(BeFalse())
		Expect(c.Instructions()).To(Equal(uint64(2)))
	})

	Context("with allocation tracking", func() {
		var out *bytes.Buffer

		BeforeEach(func() {
			config.TrackAllocations = true
			config.ROIGated = true
			out = &bytes.Buffer{}
		})

		It("should write pairs only inside the region", func() {
			build(core.WithAllocWriter(out))

			c.Dispatch(event.Malloc(0x1000, 16))
			c.Dispatch(event.ROIBegin())
			c.Dispatch(event.Malloc(0x2000, 32))
			c.Dispatch(event.Free(0x1000))
			c.Dispatch(event.Free(0x3000))
			c.Dispatch(event.ROIEnd())
			c.Dispatch(event.Free(0x2000))

			r := c.Finish()

			Expect(out.String()).To(Equal("MALLOC 0x2000 32\nFREE 0x1000 16\n"))
			Expect(r.UnmatchedFrees).To(Equal(uint64(1)))
			Expect(c.AllocErr()).NotTo(HaveOccurred())
		})

		It("should buffer the trace until the run finishes", func() {
			build(core.WithAllocWriter(out))

			c.BeginROI()
			c.OnMalloc(event.AllocEvent{Addr: 0x10, Size: 8})
			Expect(out.Len()).To(BeZero())

			c.Finish()
			Expect(out.String()).To(Equal("MALLOC 0x10 8\n"))
		})
	})

	It("should ignore allocations when tracking is off", func() {
		build()
		c.OnFree(0x1000)
		Expect(c.Finish().UnmatchedFrees).To(BeZero())
	})
})
