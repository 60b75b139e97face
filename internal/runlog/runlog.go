// Package runlog records benchmark runs: one CSV row per run annotated with
// the host CPU, and a throughput chart across worker counts.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
)

// Host describes the machine a run executed on.
type Host struct {
	Model      string
	Cores      int
	Threads    int
	GoMaxProcs int
}

// DetectHost queries the CPU model and core counts, falling back to the Go
// runtime's view when the platform does not report them.
func DetectHost() Host {
	h := Host{Model: "unknown", Threads: runtime.NumCPU(), GoMaxProcs: runtime.GOMAXPROCS(0)}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		h.Model = infos[0].ModelName
	}
	if n, err := cpu.Counts(false); err == nil && n > 0 {
		h.Cores = n
	}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		h.Threads = n
	}
	if h.Cores == 0 {
		h.Cores = h.Threads
	}
	return h
}

// CPUSampler measures system-wide CPU utilisation between Start and Stop.
type CPUSampler struct{}

// Start primes the sampler.
func (CPUSampler) Start() {
	_, _ = cpu.Percent(0, false)
}

// Stop returns the utilisation percentage since Start, or -1 when the
// platform does not report it.
func (CPUSampler) Stop() float64 {
	p, err := cpu.Percent(0, false)
	if err != nil || len(p) == 0 {
		return -1
	}
	return p[0]
}

// Result is the outcome of one timed run.
type Result struct {
	Strategy    string
	Lifetime    string
	Rule        string
	Rows, Cols  int
	Workers     int
	Generations uint64
	Updates     uint64
	Elapsed     time.Duration
	CPUPercent  float64
}

// Rate returns generations per second.
func (r Result) Rate() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Generations) / r.Elapsed.Seconds()
}

// Series returns the chart series the result belongs to.
func (r Result) Series() string {
	if r.Lifetime == "" {
		return r.Strategy
	}
	return r.Strategy + "/" + r.Lifetime
}

var header = []string{
	"strategy", "lifetime", "rule", "rows", "cols", "workers",
	"generations", "updates", "elapsed_ms", "gen_per_sec", "cpu_percent",
	"cpu_model", "cores", "threads", "gomaxprocs",
}

// Writer appends results as CSV rows.
type Writer struct {
	w    *csv.Writer
	host Host
}

// NewWriter writes the header row to w.
func NewWriter(w io.Writer, host Host) (*Writer, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return nil, fmt.Errorf("runlog: write header: %w", err)
	}
	return &Writer{w: cw, host: host}, nil
}

// Write appends one result and flushes it.
func (w *Writer) Write(r Result) error {
	row := []string{
		r.Strategy,
		r.Lifetime,
		r.Rule,
		strconv.Itoa(r.Rows),
		strconv.Itoa(r.Cols),
		strconv.Itoa(r.Workers),
		strconv.FormatUint(r.Generations, 10),
		strconv.FormatUint(r.Updates, 10),
		strconv.FormatInt(r.Elapsed.Milliseconds(), 10),
		strconv.FormatFloat(r.Rate(), 'f', 2, 64),
		strconv.FormatFloat(r.CPUPercent, 'f', 1, 64),
		w.host.Model,
		strconv.Itoa(w.host.Cores),
		strconv.Itoa(w.host.Threads),
		strconv.Itoa(w.host.GoMaxProcs),
	}
	if err := w.w.Write(row); err != nil {
		return fmt.Errorf("runlog: write row: %w", err)
	}
	w.w.Flush()
	return w.w.Error()
}
