package symbols_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArmindoFlores/MineScript2/internal/symbols"
	"github.com/ArmindoFlores/MineScript2/internal/typesystem"
)

func TestDeclareAndLookupGlobal(t *testing.T) {
	tab := symbols.New()
	require.NoError(t, tab.DeclareGlobal("x", typesystem.Int))

	sym, err := tab.Lookup("x")
	require.NoError(t, err)
	assert.Equal(t, symbols.GlobalRuntime, sym.Kind)
	assert.Equal(t, typesystem.Int, sym.Type)
}

func TestDeclareGlobalTwiceErrors(t *testing.T) {
	tab := symbols.New()
	require.NoError(t, tab.DeclareGlobal("x", typesystem.Int))
	err := tab.DeclareGlobal("x", typesystem.Int)
	var already *symbols.AlreadyDefinedError
	assert.ErrorAs(t, err, &already)
}

func TestLocalShadowsGlobal(t *testing.T) {
	tab := symbols.New()
	require.NoError(t, tab.DeclareGlobal("x", typesystem.Int))

	tab.PushLocalScope()
	require.NoError(t, tab.DeclareLocal("x", typesystem.Char))

	sym, err := tab.Lookup("x")
	require.NoError(t, err)
	assert.Equal(t, symbols.LocalRuntime, sym.Kind)
	assert.Equal(t, typesystem.Char, sym.Type)

	tab.PopLocalScope()
	sym, err = tab.Lookup("x")
	require.NoError(t, err)
	assert.Equal(t, symbols.GlobalRuntime, sym.Kind)
}

func TestDeclareLocalWithoutScopeErrors(t *testing.T) {
	tab := symbols.New()
	err := tab.DeclareLocal("x", typesystem.Int)
	assert.Error(t, err)
}

func TestLookupUndefinedErrors(t *testing.T) {
	tab := symbols.New()
	_, err := tab.Lookup("missing")
	var undef *symbols.UndefinedError
	assert.ErrorAs(t, err, &undef)
	assert.False(t, tab.IsDefined("missing"))
}

func TestCompileTimeDeclareAndMutate(t *testing.T) {
	tab := symbols.New()
	require.NoError(t, tab.DeclareCompileTime("n", typesystem.NewIntLiteral(1)))
	assert.True(t, tab.IsCompileTimeDefined("n"))

	require.NoError(t, tab.SetCompileTime("n", typesystem.NewIntLiteral(2)))
	sym, err := tab.LookupCompileTime("n")
	require.NoError(t, err)
	assert.Equal(t, int64(2), sym.Value.Int())
}

func TestSetCompileTimeUndefinedErrors(t *testing.T) {
	tab := symbols.New()
	err := tab.SetCompileTime("missing", typesystem.NewIntLiteral(1))
	assert.Error(t, err)
}

func TestGlobalsSnapshot(t *testing.T) {
	tab := symbols.New()
	require.NoError(t, tab.DeclareGlobal("a", typesystem.Int))
	require.NoError(t, tab.DeclareGlobal("b", typesystem.Char))
	assert.Len(t, tab.Globals(), 2)
}
