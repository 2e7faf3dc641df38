package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/panyam/ecsl/ecs"
	"github.com/panyam/ecsl/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/golden"
)

func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	color.NoColor = true
	t.Cleanup(runtime.QuietTest(t))

	cmd := NewRootCmd()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const failingProgram = `
component C { v: int }
system setup() { Spawn(C { v: 1 }); Spawn(C { v: 0 }); }
system divide(entity(C c)) { Print(10 / c.v); }
system after() { Print("after"); }
init [setup]
run [divide, after]
`

func TestRunGolden(t *testing.T) {
	out, _, err := execute(t, "", "run", "testdata/walkers.ecsl", "-n", "5", "--seq-ids")
	require.NoError(t, err)
	golden.Assert(t, out, "run_walkers.golden")
}

func TestDescribeGolden(t *testing.T) {
	out, _, err := execute(t, "", "describe", "--bodies", "testdata/walkers.ecsl")
	require.NoError(t, err)
	golden.Assert(t, out, "describe_walkers.golden")
}

func TestDescribeWithoutBodies(t *testing.T) {
	out, _, err := execute(t, "component Tag {}", "describe", "-")
	require.NoError(t, err)
	assert.Equal(t, "Shapes:\n  component Tag {}\nStatics:\nSystems:\nInit: (none)\nRun: (none)\n", out)
}

func TestRunFromStdin(t *testing.T) {
	src := `
resource Counter { n: int }
system setup() { Spawn(Counter { n: 0 }); }
system count(resource(Counter c)) { c.n = c.n + 1; Print(c.n); }
init [setup]
run [count]
`
	out, _, err := execute(t, src, "run", "-", "-n", "3")
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n3\n", out)
}

func TestRunStopsOnFailure(t *testing.T) {
	path := writeFile(t, "fail.ecsl", failingProgram)
	out, _, err := execute(t, "", "run", path, "-n", "1", "--seq-ids")
	require.Error(t, err)
	assert.Equal(t, "10\n", out)
	assert.Contains(t, err.Error(), "system divide (entity 00000000-0000-0000-0000-000000000002)")
	assert.Contains(t, err.Error(), "division by zero")
}

func TestRunContinueOnError(t *testing.T) {
	path := writeFile(t, "fail.ecsl", failingProgram)
	out, errOut, err := execute(t, "", "run", path, "-n", "2", "--continue-on-error", "--seq-ids")
	require.NoError(t, err)
	assert.Equal(t, "10\nafter\n10\nafter\n", out)
	assert.Contains(t, errOut, "2 invocation(s) failed in 2 tick(s):")
	assert.Contains(t, errOut, "division by zero")
}

func TestRunSettingsPrecedence(t *testing.T) {
	src := `
resource Counter { n: int }
system setup() { Spawn(Counter { n: 0 }); }
system count(resource(Counter c)) { c.n = c.n + 1; }
system show(resource(const Counter c)) { Print(c.n); }
init [setup]
run [count]
`
	prog := writeFile(t, "count.ecsl", src+"\nrun [show]\n")
	config := writeFile(t, "ecsl.yaml", "ticks: 2\n")

	// The second run list adds show after count
	out, _, err := execute(t, "", "run", prog, "-c", config)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n", out)

	t.Setenv(EnvTicks, "3")
	out, _, err = execute(t, "", "run", prog, "-c", config)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n3\n", out)

	out, _, err = execute(t, "", "run", prog, "-c", config, "--ticks", "1")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	_, _, err = execute(t, "", "run", prog, "--ticks", "-1")
	assert.ErrorContains(t, err, "must not be negative")
}

func TestRunLoadErrors(t *testing.T) {
	path := writeFile(t, "bad.ecsl", "static int a = true;\nstatic int b = 1.0;")
	_, errOut, err := execute(t, "", "run", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.ecsl:1:1: static a")
	assert.Contains(t, errOut, "bad.ecsl:2:1: static b")

	_, _, err = execute(t, "", "run", "testdata/missing.ecsl")
	assert.ErrorContains(t, err, "file not found")
}

func TestValidate(t *testing.T) {
	good := writeFile(t, "good.ecsl", "component C { x: int }")
	bad := writeFile(t, "bad.ecsl", "static int x = true;")

	out, _, err := execute(t, "", "validate", good, "testdata/walkers.ecsl")
	require.NoError(t, err)
	assert.Contains(t, out, "ok   "+good)
	assert.Contains(t, out, "walkers.ecsl")

	out, _, err = execute(t, "", "validate", good, bad)
	require.Error(t, err)
	assert.Equal(t, "1 of 2 file(s) failed validation", err.Error())
	assert.Contains(t, out, "FAIL "+bad)
	assert.Contains(t, out, "type mismatch")
}

func TestEval(t *testing.T) {
	tests := []struct {
		args     []string
		expected string
	}{
		{[]string{"eval", "1 + 2 * 3"}, "7\n"},
		{[]string{"eval", `"a" + "b"`}, "ab\n"},
		{[]string{"eval", "[1, 2] + [3]"}, "[1, 2, 3]\n"},
		{[]string{"eval", "x = 4"}, "4\n"},
		{[]string{"eval", `Print("hi")`}, "hi\nvoid\n"},
		{[]string{"eval", "-f", "testdata/walkers.ecsl", "walls.hi - walls.lo"}, "10\n"},
		{[]string{"eval", "-f", "testdata/walkers.ecsl", "Pos { x: moves }"}, "Pos { x: 0 }\n"},
	}
	for _, tt := range tests {
		out, _, err := execute(t, "", tt.args...)
		require.NoError(t, err, "args %v", tt.args)
		assert.Equal(t, tt.expected, out, "args %v", tt.args)
	}
}

func TestEvalErrors(t *testing.T) {
	_, _, err := execute(t, "", "eval", "Spawn(P {})")
	assert.ErrorIs(t, err, runtime.ErrUndefinedName)

	_, _, err = execute(t, "", "eval", "-f", "testdata/walkers.ecsl", "Spawn(Pos { x: 1 })")
	assert.ErrorIs(t, err, runtime.ErrNoHost)

	_, _, err = execute(t, "", "eval", "1 +")
	assert.ErrorContains(t, err, "unexpected token")
}

func TestBadLogLevel(t *testing.T) {
	_, _, err := execute(t, "", "--log-level", "loud", "eval", "1")
	assert.ErrorContains(t, err, "unknown log level")
}

func TestRunTrace(t *testing.T) {
	path := writeFile(t, "fail.ecsl", failingProgram)
	tracePath := filepath.Join(t.TempDir(), "trace.json")
	_, _, err := execute(t, "", "run", path, "-n", "1", "--seq-ids", "--trace", tracePath)
	require.Error(t, err)

	data, err := os.ReadFile(tracePath)
	require.NoError(t, err)
	var trace ecs.TraceData
	require.NoError(t, json.Unmarshal(data, &trace))
	assert.Equal(t, path, trace.Program)
	assert.Equal(t, 1, trace.Ticks)

	var failed []string
	for _, e := range trace.Events {
		if e.Kind == ecs.EventExit && e.ErrorMessage != "" {
			failed = append(failed, e.ErrorMessage)
		}
	}
	// The invocation, its system and the tick all fail
	require.Len(t, failed, 3)
	assert.Contains(t, failed[0], "division by zero")
}

func TestFmt(t *testing.T) {
	src := "component Pos{x:int}\nsystem s(entity(Pos p)){p.x=(p.x+1)*2;}\n"
	expected := "component Pos { x: int }\n\nsystem s(entity(Pos p)) {\n  p.x = (p.x + 1) * 2;\n}\n"

	out, _, err := execute(t, src, "fmt", "-")
	require.NoError(t, err)
	assert.Equal(t, expected, out)

	path := writeFile(t, "messy.ecsl", src)
	tidy := writeFile(t, "tidy.ecsl", expected)
	out, _, err = execute(t, "", "fmt", "--list", path, tidy)
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)

	out, _, err = execute(t, "", "fmt", "-w", path)
	require.NoError(t, err)
	assert.Empty(t, out)
	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, expected, string(written))

	_, _, err = execute(t, "", "fmt", writeFile(t, "bad.ecsl", "system {"))
	assert.ErrorContains(t, err, "expected identifier for system name")
}
