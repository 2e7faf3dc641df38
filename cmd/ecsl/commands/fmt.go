package commands

import (
	"bytes"
	"fmt"
	"os"

	"github.com/panyam/ecsl/decl"
	"github.com/spf13/cobra"
)

func newFmtCmd(opts *rootOptions) *cobra.Command {
	var (
		write bool
		list  bool
	)
	fmtCmd := &cobra.Command{
		Use:   "fmt <file...>",
		Short: "Reformats ECSL source",
		Long: `Prints the canonical formatting of each file.  With --write the files are
rewritten in place and with --list only the names of files whose formatting
differs are printed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLoader(cmd, args...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, path := range args {
				result, err := l.ParseFile(path)
				if err != nil {
					return err
				}
				formatted := []byte(decl.Format(result.File))
				changed := !bytes.Equal(formatted, result.Source)
				switch {
				case list:
					if changed {
						fmt.Fprintln(out, result.Path)
					}
				case write && path != StdinPath:
					if !changed {
						continue
					}
					if err := os.WriteFile(result.Path, formatted, 0o644); err != nil {
						return fmt.Errorf("could not write '%s': %w", result.Path, err)
					}
				default:
					out.Write(formatted)
				}
			}
			return nil
		},
	}
	fmtCmd.Flags().BoolVarP(&write, "write", "w", false, "Write the result back to the source file")
	fmtCmd.Flags().BoolVarP(&list, "list", "l", false, "List files whose formatting differs")
	return fmtCmd
}
