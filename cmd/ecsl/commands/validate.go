package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file...>",
		Short: "Parses and semantically checks ECSL file(s)",
		Long: `The validate command loads one or more ECSL files to check their syntax,
their declarations and their statics.  It does not run any system.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLoader(cmd, args...)
			if err != nil {
				return err
			}
			results, ok := l.LoadFilesAndValidate(args...)
			out := cmd.OutOrStdout()
			failed := 0
			for _, result := range results {
				if len(result.Errors) == 0 {
					fmt.Fprintf(out, "%s %s\n", color.GreenString("ok  "), result.Path)
					continue
				}
				failed++
				fmt.Fprintf(out, "%s %s\n", color.RedString("FAIL"), result.Path)
				printErrors(out, result.Errors)
			}
			if !ok {
				return fmt.Errorf("%d of %d file(s) failed validation", failed, len(results))
			}
			return nil
		},
	}
}

func printErrors(w io.Writer, errs []error) {
	for _, err := range errs {
		fmt.Fprintf(w, "    %v\n", err)
	}
}
