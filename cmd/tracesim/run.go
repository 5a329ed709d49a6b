package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/tracesim/benchmarks"
	"github.com/sarchlab/tracesim/report"
	"github.com/sarchlab/tracesim/timing/core"
	"github.com/sarchlab/tracesim/trace"
)

type runOptions struct {
	traces     []string
	configPath string
	saveConfig string
	predictor  string
	workload   string

	maxInstructions uint64
	warmup          uint64
	roiGated        bool
	maxSet          bool
	warmupSet       bool
	roiSet          bool

	allocTrace string
	sqlite     string
	host       bool
	verbosity  int
}

func newLogger(w io.Writer, verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(w, args)
	}, funcr.Options{Verbosity: verbosity})
}

func findWorkload(name string) (benchmarks.Workload, error) {
	for _, w := range benchmarks.GetWorkloads() {
		if w.Name == name {
			return w, nil
		}
	}
	return benchmarks.Workload{}, fmt.Errorf("unknown workload %q", name)
}

func buildConfig(opts *runOptions) (*core.Config, error) {
	config := core.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := core.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	if opts.workload != "" {
		w, err := findWorkload(opts.workload)
		if err != nil {
			return nil, err
		}
		if w.Configure != nil {
			w.Configure(config)
		}
	}

	if opts.predictor != "" {
		config.Predictor.Kind = opts.predictor
	}
	if opts.maxSet || opts.maxInstructions > 0 {
		config.MaxInstructions = opts.maxInstructions
	}
	if opts.warmupSet {
		config.WarmupInstructions = opts.warmup
	}
	if opts.roiSet {
		config.ROIGated = opts.roiGated
	}
	if opts.allocTrace != "" {
		config.TrackAllocations = true
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}

	return config, nil
}

func run(ctx context.Context, opts *runOptions, stdout, stderr io.Writer) error {
	log := newLogger(stderr, opts.verbosity)

	config, err := buildConfig(opts)
	if err != nil {
		return err
	}

	if opts.saveConfig != "" {
		if err := config.SaveConfig(opts.saveConfig); err != nil {
			return err
		}
	}

	coreOpts := []core.CoreOption{core.WithLogger(log)}
	if opts.verbosity >= 2 {
		coreOpts = append(coreOpts, core.WithHook(report.NewAccessLogger(log)))
	}

	if opts.allocTrace != "" {
		f, err := os.Create(opts.allocTrace)
		if err != nil {
			return fmt.Errorf("failed to create allocation trace: %w", err)
		}
		closeFile := sync.OnceFunc(func() { _ = f.Close() })
		atexit.Register(closeFile)
		defer closeFile()

		coreOpts = append(coreOpts, core.WithAllocWriter(f))
	}

	c, err := core.NewCore(config, coreOpts...)
	if err != nil {
		return err
	}

	var exporter *report.SQLiteExporter
	if opts.sqlite != "" {
		exporter, err = report.NewSQLiteExporter(opts.sqlite)
		if err != nil {
			return err
		}
		closeDB := sync.OnceFunc(func() { _ = exporter.Close() })
		atexit.Register(closeDB)
		defer closeDB()
	}

	replayErr := replay(ctx, c, opts)
	if replayErr != nil && ctx.Err() == nil {
		return replayErr
	}
	if replayErr != nil {
		log.Info("interrupted, reporting partial results")
	}

	r := c.Finish()

	if opts.host {
		if err := report.SampleHost(&r); err != nil {
			log.Error(err, "failed to sample host usage")
		}
	}

	if err := report.WriteText(stdout, r); err != nil {
		return err
	}

	if exporter != nil {
		if err := exporter.Export(r); err != nil {
			return err
		}
		log.V(1).Info("report exported", "path", exporter.Path())
	}

	if err := c.AllocErr(); err != nil {
		return err
	}

	return replayErr
}

func openTrace(path string) (*trace.Reader, func(), error) {
	if path == "-" {
		return trace.NewReader(os.Stdin), func() {}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open trace: %w", err)
	}

	return trace.NewReader(f), func() { _ = f.Close() }, nil
}

func replay(ctx context.Context, c *core.Core, opts *runOptions) error {
	if opts.workload != "" {
		w, err := findWorkload(opts.workload)
		if err != nil {
			return err
		}
		return c.Run(ctx, w.Source())
	}

	if len(opts.traces) == 1 {
		r, closeFn, err := openTrace(opts.traces[0])
		if err != nil {
			return err
		}
		defer closeFn()

		if err := c.Run(ctx, r); err != nil {
			return fmt.Errorf("%s: %w", opts.traces[0], err)
		}
		return nil
	}

	q := core.NewQueue(ctx, c, 1024)
	for _, path := range opts.traces {
		q.Go(func(ctx context.Context) error {
			return feed(q, path)
		})
	}

	return q.Close()
}

// feed submits every event of the trace at path to q.
func feed(q *core.Queue, path string) error {
	r, closeFn, err := openTrace(path)
	if err != nil {
		return err
	}
	defer closeFn()

	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		if err := q.Submit(ev); err != nil {
			return err
		}
	}
}
