package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/panyam/ecsl/runtime"
	"github.com/spf13/cobra"
)

// Settings shared by all subcommands of one invocation.
type rootOptions struct {
	configPath string
	logLevel   string
	config     Config
}

// NewRootCmd builds the ecsl command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{config: DefaultConfig()}
	rootCmd := &cobra.Command{
		Use:   "ecsl",
		Short: "ECSL runs Entity-Component-System simulations",
		Long: `ECSL (Entity Component System Language) declares components, resources,
structs, statics and systems, and runs the systems against a world of entities.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = opts.logLevel
			}
			if cfg.LogLevel != "" {
				level, err := runtime.ParseLogLevel(cfg.LogLevel)
				if err != nil {
					return err
				}
				runtime.SetLogLevel(level)
			}
			opts.config = cfg
			slog.Debug("config resolved", "path", opts.configPath, "ticks", cfg.Ticks, "log_level", cfg.LogLevel, "continue_on_error", cfg.ContinueOnError)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error or off")

	rootCmd.AddCommand(
		newRunCmd(opts),
		newValidateCmd(opts),
		newDescribeCmd(opts),
		newEvalCmd(opts),
		newFmtCmd(opts),
	)
	return rootCmd
}

// Execute runs the command line.  This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		os.Exit(1)
	}
}
