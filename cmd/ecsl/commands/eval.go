package commands

import (
	"fmt"

	"github.com/panyam/ecsl/parser"
	"github.com/panyam/ecsl/runtime"
	"github.com/spf13/cobra"
)

func newEvalCmd(opts *rootOptions) *cobra.Command {
	var filePath string
	evalCmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluates an expression and prints its value",
		Long: `Evaluates a single expression outside of any world, so Spawn and Delete
are not available.  With --file the shapes and statics of a program are in scope.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := runtime.NewContext()
			if filePath != "" {
				prog, err := loadProgram(cmd, filePath)
				if err != nil {
					return err
				}
				ctx = prog.Context
			}

			expr, err := parser.ParseExpr(args[0])
			if err != nil {
				return err
			}
			value, err := runtime.NewEvaluator(cmd.OutOrStdout()).Eval(expr, ctx.NewScope())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
	evalCmd.Flags().StringVarP(&filePath, "file", "f", "", "Program whose shapes and statics are in scope")
	return evalCmd
}
