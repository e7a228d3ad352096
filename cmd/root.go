package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/broadcast-sim/sim/ensemble"
	"github.com/inference-sim/broadcast-sim/sim/scenario"
)

var (
	// CLI flags shared by run and ensemble
	scenarioPath string // Path to the scenario YAML
	seed         int64  // Overrides the scenario seed when set
	steps        int    // Overrides the scenario step limit when set
	logLevel     string // Log verbosity level
	outputPath   string // Where to write the JSON result; empty = stdout

	// CLI flags for ensemble
	replicates int // Number of independent replicates
	workers    int // Worker goroutines; 0 = one per CPU
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "broadcast-sim",
	Short: "Step-wise simulator for broadcasts propagating over graphs",
}

// runCmd executes one scenario and prints its path and history
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a broadcast scenario",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		spec := loadScenario(cmd)

		startTime := time.Now()
		res, err := spec.Run()
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		logrus.Infof("Reached %d nodes in %d steps (%d tests) in %v",
			res.Final.Broadcasts, res.Final.Steps, res.Final.Tests, time.Since(startTime))

		writeOutput(res)
		logrus.Info("Simulation complete.")
	},
}

// ensembleCmd runs independent replicates of one scenario and summarizes them
var ensembleCmd = &cobra.Command{
	Use:   "ensemble",
	Short: "Run independent replicates of a scenario in parallel",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		spec := loadScenario(cmd)

		startTime := time.Now()
		report, err := runEnsemble(context.Background(), spec, replicates, workers)
		if report == nil {
			logrus.Fatalf("Ensemble failed: %v", err)
		}
		if err != nil {
			logrus.Warnf("Some replicates failed: %v", err)
		}
		logrus.Infof("%d replicates in %v; broadcasts %v", len(report.Replicates), time.Since(startTime), report.Broadcasts)

		writeOutput(report)
		logrus.Info("Ensemble complete.")
	},
}

func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// loadScenario reads --scenario and applies the flags the user set explicitly.
func loadScenario(cmd *cobra.Command) *scenario.Spec {
	if scenarioPath == "" {
		logrus.Fatalf("Scenario file not provided. Use --scenario <path>.")
	}
	spec, err := scenario.Load(scenarioPath)
	if err != nil {
		logrus.Fatalf("Failed to load scenario: %v", err)
	}
	applyOverrides(spec, cmd.Flags().Changed)
	if err := spec.Validate(); err != nil {
		logrus.Fatalf("Invalid scenario %s: %v", scenarioPath, err)
	}
	return spec
}

// applyOverrides copies flag values into spec for every flag changed reports
// as set, so an unset --seed keeps the scenario's own seed.
func applyOverrides(spec *scenario.Spec, changed func(name string) bool) {
	if changed("seed") {
		logrus.Infof("CLI --seed %d overrides scenario seed %d", seed, spec.Seed)
		spec.Seed = seed
	}
	if changed("steps") {
		spec.Steps = steps
	}
}

// runEnsemble runs n replicates of spec. The replicate seeds derive from
// spec.Seed, and each replicate rebuilds the scenario with its own seed.
func runEnsemble(ctx context.Context, spec *scenario.Spec, n, workers int) (*ensemble.Report, error) {
	cfg := ensemble.Config{Replicates: n, Workers: workers, Steps: spec.Steps, Seed: spec.Seed}
	return ensemble.Run(ctx, cfg, spec.Factory())
}

func writeOutput(v any) {
	w := io.Writer(os.Stdout)
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			logrus.Fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		w = f
	}
	if err := writeJSON(w, v); err != nil {
		logrus.Fatalf("Failed to write output: %v", err)
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	for _, c := range []*cobra.Command{runCmd, ensembleCmd} {
		c.Flags().StringVar(&scenarioPath, "scenario", "", "Path to the scenario YAML")
		c.Flags().Int64Var(&seed, "seed", 42, "Seed for every random draw; overrides the scenario seed when set")
		c.Flags().IntVar(&steps, "steps", 0, "Maximum number of steps (0 = until exhausted); overrides the scenario when set")
		c.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
		c.Flags().StringVar(&outputPath, "output", "", "Write the JSON result to this file instead of stdout")
	}
	ensembleCmd.Flags().IntVar(&replicates, "replicates", 100, "Number of independent replicates")
	ensembleCmd.Flags().IntVar(&workers, "workers", 0, "Worker goroutines (0 = one per CPU)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(ensembleCmd)
}
