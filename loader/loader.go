package loader

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/panyam/ecsl/decl"
	"github.com/panyam/ecsl/ecs"
	"github.com/panyam/ecsl/parser"
	"github.com/panyam/ecsl/runtime"
)

// LoadResult holds the outcome of a loading operation.
type LoadResult struct {
	Path    string         // Canonical path of the loaded file
	Source  []byte
	File    *decl.FileDecl // nil if the file could not be parsed
	Program *ecs.Program   // Partially built if there were errors
	Errors  []error
}

// Loader parses ECSL files and builds runnable programs from them.
type Loader struct {
	parser   Parser
	resolver FileResolver

	Out       io.Writer // Where Print writes while statics are evaluated
	Logger    runtime.Logger
	MaxErrors int // 0 => no limit
}

// NewLoader creates a loader.  A nil parser or resolver selects the ECSL
// parser and the local filesystem.
func NewLoader(p Parser, resolver FileResolver) *Loader {
	if p == nil {
		p = &ECSLParser{}
	}
	if resolver == nil {
		resolver = NewDefaultFileResolver()
	}
	return &Loader{
		parser:   p,
		resolver: resolver,
		Out:      os.Stdout,
		Logger:   runtime.GlobalLogger(),
	}
}

// ParseFile reads and parses the file at path without building a program.
func (l *Loader) ParseFile(path string) (*LoadResult, error) {
	content, canonicalPath, err := l.resolver.Resolve(path)
	if err != nil {
		return &LoadResult{Path: path, Errors: []error{err}}, err
	}
	defer content.Close()

	source, err := io.ReadAll(content)
	if err != nil {
		err = fmt.Errorf("could not read '%s': %w", canonicalPath, err)
		return &LoadResult{Path: canonicalPath, Errors: []error{err}}, err
	}

	file, err := l.parser.Parse(bytes.NewReader(source), canonicalPath)
	if err != nil {
		return &LoadResult{Path: canonicalPath, Source: source, Errors: []error{err}}, err
	}
	return &LoadResult{Path: canonicalPath, Source: source, File: file}, nil
}

// LoadFile reads, parses and builds the program at path.  The returned error
// is the first of result.Errors.
func (l *Loader) LoadFile(path string) (*LoadResult, error) {
	parsed, err := l.ParseFile(path)
	if err != nil {
		return parsed, err
	}

	result := l.Build(parsed.Path, parsed.Source, parsed.File)
	if len(result.Errors) > 0 {
		return result, result.Errors[0]
	}
	l.Logger.Debug("loaded %s: %d shapes, %d statics, %d systems", result.Path,
		len(result.Program.Context.Defs()), len(result.Program.Context.StaticNames()), len(result.Program.Order))
	return result, nil
}

// Build turns a parsed file into a program.  source is only used to report
// error positions and may be nil.
func (l *Loader) Build(path string, source []byte, file *decl.FileDecl) *LoadResult {
	errs := &ErrorCollector{MaxErrors: l.MaxErrors, path: path, source: source}
	ctx := runtime.NewContext()
	prog := ecs.NewProgram(ctx)

	l.registerShapes(ctx, file, errs)
	l.evalStatics(ctx, file, errs)

	for _, sys := range file.Systems() {
		if err := prog.AddSystem(sys); err != nil {
			errs.Add(sys, err)
		}
	}
	initList, runList := file.Schedules()
	if err := prog.SetSchedule(initList, runList); err != nil {
		errs.Add(scheduleNode(file), err)
	}

	return &LoadResult{Path: path, Source: source, File: file, Program: prog, Errors: errs.Errors}
}

func (l *Loader) registerShapes(ctx *runtime.Context, file *decl.FileDecl, errs *ErrorCollector) {
	shapes := file.Shapes()
	for _, shape := range shapes {
		def, err := runtime.NewDef(shape.Kind, shape.Name, shape.Fields...)
		if err == nil {
			err = ctx.RegisterDef(def)
		}
		if err != nil {
			errs.Add(shape, err)
		}
	}

	// Field types may refer to shapes declared later in the file
	for _, shape := range shapes {
		for _, field := range shape.Fields {
			if err := checkType(ctx, field.Type); err != nil {
				errs.Errorf(field, "field %s.%s: %w", shape.Name, field.Name, err)
			}
		}
	}
}

// Statics are evaluated in declaration order so later statics see earlier
// ones.  There is no world yet so Spawn and Delete fail.
func (l *Loader) evalStatics(ctx *runtime.Context, file *decl.FileDecl, errs *ErrorCollector) {
	eval := &runtime.Evaluator{Out: l.Out, Logger: l.Logger}
	for _, static := range file.Statics() {
		if err := checkType(ctx, static.Type); err != nil {
			errs.Errorf(static, "static %s: %w", static.Name, err)
			continue
		}
		value, err := eval.Eval(static.Value, ctx.NewScope())
		if err != nil {
			errs.Errorf(static, "static %s: %w", static.Name, err)
			continue
		}
		if !runtime.Conforms(static.Type, value) {
			errs.Errorf(static, "static %s: %w: declared %s, got %s", static.Name, runtime.ErrTypeMismatch, static.Type, value.GetType())
			continue
		}
		if err := ctx.DefineStatic(static.Name, value); err != nil {
			errs.Add(static, err)
		}
	}
}

// checkType verifies that every named type inside t is a registered shape.
func checkType(ctx *runtime.Context, t *decl.Type) error {
	switch {
	case t.IsList():
		if elem := t.ElementType(); elem != nil {
			return checkType(ctx, elem)
		}
	case t.IsNamed():
		_, err := ctx.GetDef(t.ShapeName())
		return err
	}
	return nil
}

func scheduleNode(file *decl.FileDecl) decl.Node {
	for _, d := range file.Declarations {
		if s, ok := d.(*decl.ScheduleDecl); ok {
			return s
		}
	}
	return nil
}

// ECSLParser adapts parser.Parse to the Parser interface.
type ECSLParser struct{}

func (pa *ECSLParser) Parse(input io.Reader, sourceName string) (*decl.FileDecl, error) {
	_, ast, err := parser.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("in '%s': %w", sourceName, err)
	}
	return ast, nil
}
