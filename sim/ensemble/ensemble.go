// Package ensemble runs independent replicates of a broadcast simulation in
// parallel and summarizes their final snapshots.
//
// Every replicate builds its own graph, selector and RNG from its own seed, so
// replicates share no mutable state and results do not depend on the number of
// workers or on scheduling order.
package ensemble

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/gammazero/workerpool"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/broadcast-sim/sim"
)

// Config controls an ensemble run.
type Config struct {
	Replicates int   `json:"replicates" yaml:"replicates"`
	Workers    int   `json:"workers" yaml:"workers"` // 0 = runtime.NumCPU()
	Steps      int   `json:"steps" yaml:"steps"`     // 0 = run each replicate to exhaustion
	Seed       int64 `json:"seed" yaml:"seed"`
}

// Validate checks that the config describes a runnable ensemble.
func (c Config) Validate() error {
	if c.Replicates < 1 {
		return fmt.Errorf("replicates must be >= 1, got %d", c.Replicates)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.Steps < 0 {
		return fmt.Errorf("steps must be >= 0, got %d", c.Steps)
	}
	return nil
}

// Replicate is the outcome of one replicate.
type Replicate struct {
	ID        int          `json:"id" yaml:"id"`
	Seed      int64        `json:"seed" yaml:"seed"`
	Completed bool         `json:"completed" yaml:"completed"`
	Final     sim.Snapshot `json:"final" yaml:"final"`
}

// Report collects successful replicates in ID order with summaries of their
// final counters.
type Report struct {
	Replicates []Replicate `json:"replicates" yaml:"replicates"`
	Broadcasts Summary     `json:"broadcasts" yaml:"broadcasts"`
	Steps      Summary     `json:"steps" yaml:"steps"`
	Tests      Summary     `json:"tests" yaml:"tests"`
}

// Seeds derives the per-replicate seeds for a master seed.
func Seeds(master int64, n int) []int64 {
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(master))
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = rng.SeedFor(sim.SubsystemReplicate(i))
	}
	return seeds
}

// Run builds one simulation per replicate with factory and advances each
// through cfg.Steps steps, or to exhaustion. Failed replicates are left out of
// the report and their errors are aggregated into the returned error; the
// report is nil only when every replicate failed.
func Run[N comparable](ctx context.Context, cfg Config, factory func(seed int64) (*sim.Simulation[N], error)) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	k := sim.AllSteps
	if cfg.Steps > 0 {
		k = cfg.Steps
	}
	logrus.Infof("ensemble: %d replicates on %d workers, master seed %d", cfg.Replicates, workers, cfg.Seed)

	seeds := Seeds(cfg.Seed, cfg.Replicates)
	results := make([]Replicate, cfg.Replicates)
	errs := make([]error, cfg.Replicates)

	wp := workerpool.New(workers)
	for i, seed := range seeds {
		wp.Submit(func() {
			results[i], errs[i] = runReplicate(ctx, i, seed, k, factory)
		})
	}
	wp.StopWait()

	var result *multierror.Error
	report := &Report{}
	for i := range results {
		if errs[i] != nil {
			logrus.Warnf("ensemble: replicate %d failed: %v", i, errs[i])
			result = multierror.Append(result, errs[i])
			continue
		}
		report.Replicates = append(report.Replicates, results[i])
	}
	if len(report.Replicates) == 0 {
		return nil, result.ErrorOrNil()
	}
	if err := report.summarize(); err != nil {
		return nil, err
	}
	return report, result.ErrorOrNil()
}

func runReplicate[N comparable](ctx context.Context, id int, seed int64, k int,
	factory func(seed int64) (*sim.Simulation[N], error)) (rep Replicate, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("replicate %d: panic: %v", id, r)
		}
	}()
	if err := ctx.Err(); err != nil {
		return Replicate{}, fmt.Errorf("replicate %d: %w", id, err)
	}
	s, err := factory(seed)
	if err != nil {
		return Replicate{}, fmt.Errorf("replicate %d: %w", id, err)
	}
	s.Path(k)
	final, err := s.Final()
	if errors.Is(err, sim.ErrEmptyPath) {
		// Exhausted before the first step: only the origin was reached.
		final = sim.Snapshot{Broadcasts: s.Transmission().Broadcasts()}
	}
	logrus.Debugf("ensemble: replicate %d (seed %d): %v", id, seed, final)
	return Replicate{ID: id, Seed: seed, Completed: s.Completed(), Final: final}, nil
}

func (r *Report) summarize() error {
	broadcasts := make([]float64, len(r.Replicates))
	steps := make([]float64, len(r.Replicates))
	tests := make([]float64, len(r.Replicates))
	for i, rep := range r.Replicates {
		broadcasts[i] = float64(rep.Final.Broadcasts)
		steps[i] = float64(rep.Final.Steps)
		tests[i] = float64(rep.Final.Tests)
	}
	var err error
	if r.Broadcasts, err = Summarize(broadcasts); err != nil {
		return fmt.Errorf("summarizing broadcasts: %w", err)
	}
	if r.Steps, err = Summarize(steps); err != nil {
		return fmt.Errorf("summarizing steps: %w", err)
	}
	if r.Tests, err = Summarize(tests); err != nil {
		return fmt.Errorf("summarizing tests: %w", err)
	}
	return nil
}
