package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"cellsim/internal/control"
	"cellsim/internal/runlog"
	"cellsim/internal/schedulers/celllock"
	"cellsim/internal/schedulers/partition"
	"cellsim/pkg/rules"
)

type variant struct {
	strategy string
	lifetime string
}

func (v variant) String() string {
	if v.lifetime == "" {
		return v.strategy
	}
	return v.strategy + "/" + v.lifetime
}

type job struct {
	variant variant
	workers int
}

func parseVariants(s string) ([]variant, error) {
	var out []variant
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, lifetime, _ := strings.Cut(part, "/")
		switch name {
		case partition.Name:
			l, err := partition.ParseLifetime(lifetime)
			if err != nil {
				return nil, err
			}
			out = append(out, variant{strategy: name, lifetime: l.String()})
		case celllock.Name:
			out = append(out, variant{strategy: name})
		default:
			return nil, fmt.Errorf("unknown strategy %q", name)
		}
	}
	return out, nil
}

func checkFlags(size, maxWorkers, parallel int) error {
	switch {
	case size <= 0:
		return fmt.Errorf("-size must be positive, got %d", size)
	case maxWorkers <= 0:
		return fmt.Errorf("-max-workers must be positive, got %d", maxWorkers)
	case parallel <= 0:
		return fmt.Errorf("-parallel must be positive, got %d", parallel)
	}
	return nil
}

func workerCounts(max int) []int {
	var counts []int
	for n := 1; n < max; n *= 2 {
		counts = append(counts, n)
	}
	return append(counts, max)
}

func main() {
	size := flag.Int("size", 256, "grid rows and columns")
	turns := flag.Uint64("turns", 200, "generations (partition) or full sweeps (celllock) per run")
	maxWorkers := flag.Int("max-workers", runtime.NumCPU(), "largest worker count to sweep")
	parallel := flag.Int("parallel", 1, "runs executed at the same time")
	strategies := flag.String("strategies", "partition/persistent,partition/ephemeral,celllock", "comma separated variants")
	ruleName := flag.String("rule", "life", "rule to benchmark")
	borderName := flag.String("border", "wrapped", "border policy")
	csvPath := flag.String("csv", "cellbench.csv", "CSV output path")
	chartPath := flag.String("chart", "", "optional PNG chart output path")
	flag.Parse()
	if err := checkFlags(*size, *maxWorkers, *parallel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(1)
	}

	rule, err := rules.ParseRule(*ruleName)
	if err != nil {
		log.Print(err)
		os.Exit(5)
	}
	border, err := rules.ParseBorder(*borderName)
	if err != nil {
		log.Fatal(err)
	}
	variants, err := parseVariants(*strategies)
	if err != nil {
		log.Fatal(err)
	}
	if *maxWorkers > *size {
		*maxWorkers = *size
	}

	var jobsList []job
	for _, v := range variants {
		for _, n := range workerCounts(*maxWorkers) {
			jobsList = append(jobsList, job{variant: v, workers: n})
		}
	}

	f, err := os.Create(*csvPath)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	host := runlog.DetectHost()
	w, err := runlog.NewWriter(f, host)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Benchmarking %d runs on %s (%d cores, %d threads), %dx%d grid, %d turns\n",
		len(jobsList), host.Model, host.Cores, host.Threads, *size, *size, *turns)

	jobs := make(chan job)
	results := make(chan runlog.Result)
	var wg sync.WaitGroup

	for i := 0; i < *parallel; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				res, err := runScenario(j, *size, *turns, rule, border)
				if err != nil {
					log.Printf("%s x%d: %v", j.variant, j.workers, err)
					continue
				}
				results <- res
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		for _, j := range jobsList {
			jobs <- j
		}
		close(jobs)
	}()

	start := time.Now()
	var all []runlog.Result
	for res := range results {
		all = append(all, res)
		if err := w.Write(res); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%-22s workers=%-3d gen/s=%10.2f cpu=%5.1f%% elapsed=%s\n",
			res.Series(), res.Workers, res.Rate(), res.CPUPercent, res.Elapsed.Round(time.Millisecond))
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Rate() > all[j].Rate() })
	fmt.Printf("\nFastest runs (elapsed %s):\n", time.Since(start).Round(time.Millisecond))
	for i := 0; i < len(all) && i < 5; i++ {
		fmt.Printf("%2d) %s workers=%d gen/s=%.2f\n", i+1, all[i].Series(), all[i].Workers, all[i].Rate())
	}

	if *chartPath != "" {
		cf, err := os.Create(*chartPath)
		if err != nil {
			log.Fatal(err)
		}
		defer cf.Close()
		if err := runlog.Chart(all, cf); err != nil {
			log.Fatal(err)
		}
	}
}

// runScenario times one run to completion with pausing disabled.
func runScenario(j job, size int, turns uint64, rule rules.Rule, border rules.BorderPolicy) (runlog.Result, error) {
	ctrl, err := control.New(control.Config{
		Rows:     size,
		Cols:     size,
		Workers:  j.workers,
		Strategy: j.variant.strategy,
		Lifetime: j.variant.lifetime,
		Rule:     rule,
		Border:   border,
		Delay:    -1,
		Seed:     1,
		Turns:    turns,
	})
	if err != nil {
		return runlog.Result{}, err
	}
	var cpu runlog.CPUSampler
	cpu.Start()
	start := time.Now()
	if err := ctrl.Start(context.Background()); err != nil {
		return runlog.Result{}, err
	}
	<-ctrl.Finished()
	elapsed := time.Since(start)
	usage := cpu.Stop()
	if err := ctrl.Shutdown(); err != nil {
		return runlog.Result{}, err
	}
	return runlog.Result{
		Strategy:    j.variant.strategy,
		Lifetime:    j.variant.lifetime,
		Rule:        rule.String(),
		Rows:        size,
		Cols:        size,
		Workers:     j.workers,
		Generations: ctrl.Generation(),
		Updates:     ctrl.State().Updates(),
		Elapsed:     elapsed,
		CPUPercent:  usage,
	}, nil
}
