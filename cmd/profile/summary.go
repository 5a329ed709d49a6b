package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/google/pprof/profile"
)

type funcCost struct {
	name  string
	flat  int64
	cum   int64
	total int64
}

// topFunctions ranks functions by the flat value of the last sample type.
// Cumulative values count a function once per sample even when it recurses.
func topFunctions(p *profile.Profile, n int) []funcCost {
	if len(p.SampleType) == 0 {
		return nil
	}
	idx := len(p.SampleType) - 1

	costs := make(map[string]*funcCost)
	get := func(name string) *funcCost {
		c, ok := costs[name]
		if !ok {
			c = &funcCost{name: name}
			costs[name] = c
		}
		return c
	}

	var total int64
	for _, s := range p.Sample {
		v := s.Value[idx]
		total += v

		seen := make(map[string]bool)
		for i, loc := range s.Location {
			for j, line := range loc.Line {
				if line.Function == nil {
					continue
				}
				name := line.Function.Name
				if i == 0 && j == 0 {
					get(name).flat += v
				}
				if !seen[name] {
					seen[name] = true
					get(name).cum += v
				}
			}
		}
	}

	out := make([]funcCost, 0, len(costs))
	for _, c := range costs {
		c.total = total
		out = append(out, *c)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].flat != out[j].flat {
			return out[i].flat > out[j].flat
		}
		return out[i].name < out[j].name
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func printSummary(w io.Writer, data []byte, n int) error {
	p, err := profile.ParseData(data)
	if err != nil {
		return err
	}

	costs := topFunctions(p, n)
	if len(costs) == 0 {
		_, err := fmt.Fprintln(w, "\nCPU profile: no samples")
		return err
	}

	unit := p.SampleType[len(p.SampleType)-1].Unit
	fmt.Fprintf(w, "\nHottest functions (flat %s):\n", unit)
	for _, c := range costs {
		pct := 0.0
		if c.total > 0 {
			pct = float64(c.flat) / float64(c.total) * 100
		}
		fmt.Fprintf(w, "  %6.2f%% %12d %12d  %s\n", pct, c.flat, c.cum, c.name)
	}

	return nil
}
