package compiler_test

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArmindoFlores/MineScript2/pkg/compiler"
)

func TestCompileSimpleFunction(t *testing.T) {
	src := `
void main() {
    int x = 1;
    x = x + 1;
}
`
	result, diags, err := compiler.Compile(src, "testpack", compiler.Options{FilePath: "main.ms"})
	require.NoError(t, err)
	require.Empty(t, diags)
	require.NotNil(t, result)

	fn, ok := result.Output.Functions["main"]
	require.True(t, ok)
	assert.NotEmpty(t, fn.Commands)
}

func TestCompileReturnSlotAndBreakFlagRegistered(t *testing.T) {
	src := `int answer() { return 42; }`
	result, diags, err := compiler.Compile(src, "testpack", compiler.Options{})
	require.NoError(t, err)
	require.Empty(t, diags)

	assert.Contains(t, result.Output.GlobalTypes, "_f_answer")
	assert.Contains(t, result.Output.GlobalTypes, "_break_answer")
}

func TestCompileWhileLoopProducesLoopFunction(t *testing.T) {
	src := `
void main() {
    int i = 0;
    while (i < 10) {
        i = i + 1;
    }
}
`
	result, diags, err := compiler.Compile(src, "testpack", compiler.Options{})
	require.NoError(t, err)
	require.Empty(t, diags)
	assert.NotEmpty(t, result.Output.Loops)
	assert.Len(t, result.Output.LoopOrder, 1)
}

func TestCompileWhileLoopGuardUsesStopSentinel(t *testing.T) {
	src := `
void main() {
    int i = 0;
    while (i < 10) {
        i = i + 1;
    }
}
`
	result, diags, err := compiler.Compile(src, "testpack", compiler.Options{})
	require.NoError(t, err)
	require.Empty(t, diags)

	main := strings.Join(result.Output.Functions["main"].Commands, "\n")
	re := regexp.MustCompile(`scoreboard players set #MineScript (_var\d+) 0`)
	matches := re.FindAllStringSubmatch(main, -1)
	require.NotEmpty(t, matches, "expected the loop's break-scratch var to be zero-initialized in main")
	breakVar := matches[len(matches)-1][1]

	require.Len(t, result.Output.LoopOrder, 1)
	loopCmds := strings.Join(result.Output.Loops[result.Output.LoopOrder[0]], "\n")

	// The guard must key on the stop sentinel (1 == break), not the
	// initial/keep-going value (0) - otherwise the loop body never runs.
	assert.Contains(t, loopCmds, fmt.Sprintf("unless score #MineScript %s matches 1", breakVar))
	assert.NotContains(t, loopCmds, fmt.Sprintf("unless score #MineScript %s matches 0", breakVar))
}

func TestCompileRuntimeIntToCharCastMasksModulo256(t *testing.T) {
	src := `
void main() {
    int n = 1;
    char c = (char) n;
}
`
	result, diags, err := compiler.Compile(src, "testpack", compiler.Options{})
	require.NoError(t, err)
	require.Empty(t, diags)

	main := strings.Join(result.Output.Functions["main"].Commands, "\n")
	assert.Contains(t, main, "scoreboard players set #MineScript _var0 256")
	assert.NotContains(t, main, "scoreboard players set #MineScript _var0 255")
}

func TestCompileDuplicateFunctionReportsDiagnostic(t *testing.T) {
	src := `void main() {} void main() {}`
	result, diags, err := compiler.Compile(src, "testpack", compiler.Options{})
	require.NoError(t, err)
	assert.Nil(t, result)
	require.NotEmpty(t, diags)
}

func TestCompileBreakOutsideLoopReportsDiagnostic(t *testing.T) {
	src := `void main() { break; }`
	result, diags, err := compiler.Compile(src, "testpack", compiler.Options{})
	require.NoError(t, err)
	assert.Nil(t, result)
	require.NotEmpty(t, diags)
	assert.Equal(t, "E010", string(diags[0].Code))
}

func TestCompileTypeMismatchOnDeclaration(t *testing.T) {
	src := `void main() { int x = 'a'; }`
	result, diags, err := compiler.Compile(src, "testpack", compiler.Options{})
	require.NoError(t, err)
	assert.Nil(t, result)
	require.NotEmpty(t, diags)
}

func TestCompileArrayLiteralDeclaration(t *testing.T) {
	src := `void main() { int a[] = {1, 2, 3}; }`
	result, diags, err := compiler.Compile(src, "testpack", compiler.Options{})
	require.NoError(t, err)
	require.Empty(t, diags)
	fn := result.Output.Functions["main"]
	require.NotEmpty(t, fn.Commands)
	assert.Contains(t, strings.Join(fn.Commands, "\n"), "data modify storage")
}
