package report

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/process"
)

// SampleHost records the resident memory and CPU usage of this process.
func SampleHost(r *Report) error {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return fmt.Errorf("failed to inspect process: %w", err)
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		return fmt.Errorf("failed to read cpu usage: %w", err)
	}

	mem, err := proc.MemoryInfo()
	if err != nil {
		return fmt.Errorf("failed to read memory usage: %w", err)
	}

	r.HostCPU = cpuPercent
	r.HostRSS = mem.RSS

	return nil
}
