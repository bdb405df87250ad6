// Package sysinfo collects the host metrics served by GET /system.
package sysinfo

import (
	"context"
	"math"
	"os"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"llmgate/pkg/types"
)

const bytesPerGB = 1 << 30

// Reporter reads host metrics on every call; nothing is cached. Probe
// failures degrade to runtime fallbacks or zero values so Report always
// succeeds.
type Reporter struct {
	log zerolog.Logger

	hostInfo   func(context.Context) (*host.InfoStat, error)
	cpuCounts  func(context.Context, bool) (int, error)
	cpuPercent func(context.Context) ([]float64, error)
	virtualMem func(context.Context) (*mem.VirtualMemoryStat, error)
}

// New returns a Reporter backed by gopsutil.
func New(l zerolog.Logger) *Reporter {
	return &Reporter{
		log:        l.With().Str("component", "sysinfo").Logger(),
		hostInfo:   host.InfoWithContext,
		cpuCounts:  cpu.CountsWithContext,
		cpuPercent: func(ctx context.Context) ([]float64, error) { return cpu.PercentWithContext(ctx, 0, false) },
		virtualMem: mem.VirtualMemoryWithContext,
	}
}

// Report returns a fresh host snapshot. ModelPath is left for the caller.
func (r *Reporter) Report(ctx context.Context) types.SystemInfoResponse {
	out := types.SystemInfoResponse{GoVersion: runtime.Version()}

	if hi, err := r.hostInfo(ctx); err == nil && hi != nil {
		out.Hostname = hi.Hostname
		out.Platform = platformString(hi)
	} else {
		r.log.Debug().Err(err).Msg("host info")
	}
	if out.Hostname == "" {
		out.Hostname, _ = os.Hostname()
	}
	if out.Platform == "" {
		out.Platform = runtime.GOOS + "-" + runtime.GOARCH
	}

	if n, err := r.cpuCounts(ctx, true); err == nil && n > 0 {
		out.CPUCount = n
	} else {
		out.CPUCount = runtime.NumCPU()
	}

	// Interval 0 compares against the previous call, so the first sample
	// after startup may read 0.
	if pct, err := r.cpuPercent(ctx); err == nil && len(pct) > 0 {
		out.CPUPercent = round(pct[0], 1)
	} else if err != nil {
		r.log.Debug().Err(err).Msg("cpu percent")
	}

	if vm, err := r.virtualMem(ctx); err == nil && vm != nil {
		out.MemoryUsedGB = round(float64(vm.Used)/bytesPerGB, 2)
		out.MemoryTotalGB = round(float64(vm.Total)/bytesPerGB, 2)
	} else {
		r.log.Debug().Err(err).Msg("virtual memory")
	}
	return out
}

// platformString renders e.g. "linux-6.1.0-13-amd64-x86_64".
func platformString(hi *host.InfoStat) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{hi.OS, hi.KernelVersion, hi.KernelArch} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "-")
}

func round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
