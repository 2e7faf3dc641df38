package commands

import (
	"fmt"
	"io"

	"github.com/panyam/ecsl/ecs"
	"github.com/panyam/ecsl/loader"
	"github.com/spf13/cobra"
)

// StdinPath names the standard input in place of a file path.
const StdinPath = "-"

func newLoader(cmd *cobra.Command, paths ...string) (*loader.Loader, error) {
	var resolver loader.FileResolver = loader.NewDefaultFileResolver()
	for _, path := range paths {
		if path != StdinPath {
			continue
		}
		source, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		resolver = &stdinResolver{
			MemoryResolver: loader.NewMemoryResolver(map[string]string{StdinPath: string(source)}),
			disk:           resolver,
		}
		break
	}
	l := loader.NewLoader(nil, resolver)
	l.Out = cmd.OutOrStdout()
	return l, nil
}

// stdinResolver serves "-" from memory and everything else from disk.
type stdinResolver struct {
	*loader.MemoryResolver
	disk loader.FileResolver
}

func (r *stdinResolver) Resolve(path string) (io.ReadCloser, string, error) {
	if path == StdinPath {
		return r.MemoryResolver.Resolve(path)
	}
	return r.disk.Resolve(path)
}

// loadProgram loads a single program, returning all load errors joined
// into the error.
func loadProgram(cmd *cobra.Command, path string) (*ecs.Program, error) {
	l, err := newLoader(cmd, path)
	if err != nil {
		return nil, err
	}
	result, err := l.LoadFile(path)
	if err != nil {
		printErrors(cmd.ErrOrStderr(), result.Errors[1:])
		return nil, err
	}
	return result.Program, nil
}
