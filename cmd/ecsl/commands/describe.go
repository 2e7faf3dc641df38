package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/panyam/ecsl/decl"
	"github.com/panyam/ecsl/ecs"
	gfn "github.com/panyam/goutils/fn"
	"github.com/spf13/cobra"
)

func newDescribeCmd(opts *rootOptions) *cobra.Command {
	var showBodies bool
	describeCmd := &cobra.Command{
		Use:   "describe <file>",
		Short: "Shows the shapes, statics, systems and schedule of a program",
		Long: `Loads a program and lists its shapes (with their fields), the initial
values of its statics, its systems (with their filters) and its schedule.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loadProgram(cmd, args[0])
			if err != nil {
				return err
			}
			describeProgram(cmd.OutOrStdout(), prog, showBodies)
			return nil
		},
	}
	describeCmd.Flags().BoolVarP(&showBodies, "bodies", "b", false, "Also print the body of every system")
	return describeCmd
}

func describeProgram(w io.Writer, prog *ecs.Program, showBodies bool) {
	heading := color.New(color.Bold).SprintFunc()
	keyword := color.New(color.FgCyan).SprintFunc()
	name := color.New(color.FgGreen).SprintFunc()

	ctx := prog.Context
	fmt.Fprintln(w, heading("Shapes:"))
	for _, def := range ctx.Defs() {
		fields := gfn.Map(def.Order, func(f string) string { return fmt.Sprintf("%s: %s", f, def.Fields[f]) })
		body := "{}"
		if len(fields) > 0 {
			body = "{ " + strings.Join(fields, ", ") + " }"
		}
		fmt.Fprintf(w, "  %s %s %s\n", keyword(def.Kind), name(def.Name), body)
	}

	fmt.Fprintln(w, heading("Statics:"))
	for _, static := range ctx.StaticNames() {
		value, _ := ctx.Static(static)
		fmt.Fprintf(w, "  %s: %s = %s\n", name(static), value.GetType(), value)
	}

	fmt.Fprintln(w, heading("Systems:"))
	for _, sysName := range prog.Order {
		sys := prog.Systems[sysName]
		filters := gfn.Map(sys.Filters, func(f *decl.Filter) string { return f.String() })
		fmt.Fprintf(w, "  %s(%s): %d expression(s)\n", name(sysName), strings.Join(filters, ", "), len(sys.Body))
		if showBodies {
			for _, expr := range sys.Body {
				fmt.Fprintf(w, "    %s;\n", expr)
			}
		}
	}

	fmt.Fprintf(w, "%s %s\n", heading("Init:"), scheduleString(prog.Init))
	fmt.Fprintf(w, "%s %s\n", heading("Run:"), scheduleString(prog.Run))
}

func scheduleString(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}
