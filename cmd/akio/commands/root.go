// Package commands implements the akio command-line demo, one subcommand
// per scenario in spec.md §8.
package commands

import (
	"os"

	"github.com/kphelps/akio/internal/baselib/actor"
	"github.com/kphelps/akio/internal/build"
	"github.com/spf13/cobra"
)

var (
	// numWorkers overrides the scheduler's worker pool size (default:
	// runtime.NumCPU()).
	numWorkers int

	// batchSize overrides the scheduler's per-visit batch size (default:
	// actor.DefaultBatchSize).
	batchSize int

	// logLevel controls the console logger's verbosity.
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "akio",
	Short: "akio runs small demo programs on the akio actor runtime",
	Long: `akio is a demo CLI for the location-transparent actor runtime in
internal/baselib/actor. Each subcommand spins up a System and runs one of
the scenarios from the runtime's design document: ping-pong, echo,
Skynet-10^5, and a telephone chain.`,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().IntVar(
		&numWorkers, "workers", 0,
		"scheduler worker pool size (0 = runtime.NumCPU())",
	)
	rootCmd.PersistentFlags().IntVar(
		&batchSize, "batch-size", 0,
		"messages processed per cell visit (0 = default of 10)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "info",
		"console log level: trace, debug, info, warn, error",
	)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(pingPongCmd)
	rootCmd.AddCommand(echoCmd)
	rootCmd.AddCommand(skynetCmd)
	rootCmd.AddCommand(telephoneCmd)
}

// newSystem builds a System using the global --workers/--batch-size/
// --log-level flags, wiring the console logger into the actor package the
// same way the teacher's daemon wires actor.UseLogger in main.go.
func newSystem() *actor.System {
	handler := build.NewConsoleHandler(os.Stderr)
	handler.SetLevel(parseLevel(logLevel))
	actor.UseLogger(build.NewLogger(handler))

	cfg := actor.DefaultSystemConfig()
	if numWorkers > 0 {
		cfg.Scheduler.NumWorkers = numWorkers
	}
	if batchSize > 0 {
		cfg.Scheduler.BatchSize = batchSize
	}

	return actor.NewSystem(cfg)
}
