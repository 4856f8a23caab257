package logging

import (
	"context"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
	"go.uber.org/zap"
)

// ResourceSampler periodically logs process RSS/CPU at Debug level (spec
// SPEC_FULL.md B: "an ambient concern the original leaves to the platform
// logger sink"). It is started explicitly by a host that wants it; nothing
// in the core runtime depends on it.
type ResourceSampler struct {
	log    *Service
	period time.Duration
	proc   *process.Process

	stop chan struct{}
}

// NewResourceSampler builds a sampler for the current process, logging
// through log every period.
func NewResourceSampler(log *Service, period time.Duration) (*ResourceSampler, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}

	return &ResourceSampler{log: log, period: period, proc: p, stop: make(chan struct{})}, nil
}

// Start runs the sampling loop until ctx is cancelled or Stop is called.
func (r *ResourceSampler) Start(ctx context.Context) {
	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case <-ticker.C:
			r.sample()
		}
	}
}

// Stop ends the sampling loop.
func (r *ResourceSampler) Stop() { close(r.stop) }

func (r *ResourceSampler) sample() {
	cpu, cpuErr := r.proc.CPUPercent()
	mem, memErr := r.proc.MemoryInfo()

	if cpuErr != nil || memErr != nil || mem == nil {
		return
	}

	ce := r.log.z.Check(zap.DebugLevel, "resource usage")
	if ce == nil {
		return
	}

	ce.Write(
		zap.String("sender", r.log.sender),
		zap.Float64("cpu_percent", cpu),
		zap.Uint64("rss_bytes", mem.RSS),
	)
}
