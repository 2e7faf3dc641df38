package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/panyam/ecsl/ecs"
	"github.com/spf13/cobra"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	var (
		ticks           int
		continueOnError bool
		sequentialIDs   bool
		tracePath       string
	)
	runCmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Runs a program",
		Long: `Loads a program, runs its init systems once and then its run systems
for the given number of ticks.  Use "-" to read the program from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config
			if cmd.Flags().Changed("ticks") {
				cfg.Ticks = ticks
			}
			if cmd.Flags().Changed("continue-on-error") {
				cfg.ContinueOnError = continueOnError
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			prog, err := loadProgram(cmd, args[0])
			if err != nil {
				return err
			}

			var ids ecs.IDGen = ecs.RandomIDs{}
			if sequentialIDs {
				ids = &ecs.SequentialIDs{}
			}
			sched := ecs.NewScheduler(prog, cmd.OutOrStdout(), ids)
			sched.ContinueOnError = cfg.ContinueOnError
			if tracePath != "" {
				sched.Tracer = ecs.NewExecutionTracer()
			}
			err = sched.Run(cfg.Ticks)
			if sched.Tracer != nil {
				if werr := writeTrace(sched, args[0], tracePath); werr != nil && err == nil {
					err = werr
				}
			}
			if failures := sched.Errors(); cfg.ContinueOnError && len(failures) > 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), color.YellowString("%d invocation(s) failed in %d tick(s):", len(failures), sched.Ticks()))
				printErrors(cmd.ErrOrStderr(), failures)
			}
			return err
		},
	}
	runCmd.Flags().IntVarP(&ticks, "ticks", "n", DefaultTicks, "Number of ticks to run")
	runCmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "Keep running after a system invocation fails")
	runCmd.Flags().BoolVar(&sequentialIDs, "seq-ids", false, "Use sequential entity ids for reproducible output")
	runCmd.Flags().StringVar(&tracePath, "trace", "", "Write an execution trace as JSON to this file")
	return runCmd
}

// The trace is written even when the run failed.
func writeTrace(sched *ecs.Scheduler, program, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create trace file: %w", err)
	}
	defer f.Close()
	return sched.Tracer.WriteJSON(f, program, sched.Ticks())
}
