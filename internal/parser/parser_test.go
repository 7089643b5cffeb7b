package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArmindoFlores/MineScript2/internal/ast"
	"github.com/ArmindoFlores/MineScript2/internal/diagnostics"
	"github.com/ArmindoFlores/MineScript2/internal/lexer"
	"github.com/ArmindoFlores/MineScript2/internal/parser"
)

// parseProgram is a test helper: lexes+parses input and fails on diagnostics.
func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	diags := diagnostics.NewSink()
	lex := lexer.New(input)
	p := parser.New(lex, "<test>", diags)
	prog := p.ParseProgram()
	if diags.HasErrors() {
		for _, d := range diags.All() {
			t.Errorf("parse error: %s", d)
		}
		t.FailNow()
	}
	return prog
}

func TestParseEmptyFunction(t *testing.T) {
	prog := parseProgram(t, "void main() {}")
	require.Len(t, prog.Functions, 1)
	fn := prog.Functions[0]
	assert.Equal(t, "main", fn.Name)
	assert.Equal(t, ast.TVoid, fn.Return)
	assert.Empty(t, fn.Params)
	assert.Empty(t, fn.Body.Stats)
}

func TestParseFunctionWithParams(t *testing.T) {
	prog := parseProgram(t, "int add(int a, int b) { return a + b; }")
	fn := prog.Functions[0]
	require.Len(t, fn.Params, 2)
	assert.Equal(t, ast.Param{Type: ast.TInt, Name: "a"}, fn.Params[0])
	assert.Equal(t, ast.Param{Type: ast.TInt, Name: "b"}, fn.Params[1])

	require.Len(t, fn.Body.Stats, 1)
	ret, ok := fn.Body.Stats[0].(*ast.Return)
	require.True(t, ok)
	binop, ok := ret.Value.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, ast.OpAdd, binop.Op)
}

func TestParseVarDeclAndAssign(t *testing.T) {
	prog := parseProgram(t, "void main() { int x = 5; x = x + 1; }")
	fn := prog.Functions[0]
	require.Len(t, fn.Body.Stats, 2)

	decl, ok := fn.Body.Stats[0].(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, ast.TInt, decl.Type)
	require.Len(t, decl.Vars, 1)
	assert.Equal(t, "x", decl.Vars[0].Name)

	assign, ok := fn.Body.Stats[1].(*ast.VarAssign)
	require.True(t, ok)
	assert.Equal(t, "x", assign.Name)
}

func TestParseArrayDeclaration(t *testing.T) {
	prog := parseProgram(t, "void main() { int a[] = {1, 2, 3}; }")
	fn := prog.Functions[0]
	decl := fn.Body.Stats[0].(*ast.VarDecl)
	assert.Equal(t, ast.TInt, decl.Type)
	assert.True(t, decl.Vars[0].ArrayMarker)
	arr, ok := decl.Vars[0].Value.(*ast.Array)
	require.True(t, ok)
	assert.Len(t, arr.Elements, 3)
}

func TestParseArrayIndexAssignment(t *testing.T) {
	prog := parseProgram(t, "void main() { int a[] = {1}; a[0] = 2; }")
	fn := prog.Functions[0]
	assign := fn.Body.Stats[1].(*ast.VarAssign)
	assert.Equal(t, "a", assign.Name)
	require.NotNil(t, assign.Index)
}

func TestParseIfElse(t *testing.T) {
	prog := parseProgram(t, "void main() { if (1 < 2) { print(1); } else { print(2); } }")
	fn := prog.Functions[0]
	ifStmt, ok := fn.Body.Stats[0].(*ast.If)
	require.True(t, ok)
	require.NotNil(t, ifStmt.Condition)
	require.NotNil(t, ifStmt.Else)
}

func TestParseWhileLoopWithBreak(t *testing.T) {
	prog := parseProgram(t, "void main() { while (1) { break; } }")
	fn := prog.Functions[0]
	while, ok := fn.Body.Stats[0].(*ast.While)
	require.True(t, ok)
	block := while.Body.(*ast.StatBlock)
	_, ok = block.Stats[0].(*ast.Break)
	assert.True(t, ok)
}

func TestParseForLoop(t *testing.T) {
	prog := parseProgram(t, "void main() { for (int i = 0; i < 10; i++) { } }")
	fn := prog.Functions[0]
	forStmt, ok := fn.Body.Stats[0].(*ast.For)
	require.True(t, ok)
	require.NotNil(t, forStmt.Init)
	require.NotNil(t, forStmt.Condition)
	require.NotNil(t, forStmt.Update)
}

func TestParsePrecedence(t *testing.T) {
	// 1 + 2 * 3 should parse as 1 + (2 * 3)
	prog := parseProgram(t, "void main() { int x = 1 + 2 * 3; }")
	decl := prog.Functions[0].Body.Stats[0].(*ast.VarDecl)
	add := decl.Vars[0].Value.(*ast.BinOp)
	assert.Equal(t, ast.OpAdd, add.Op)
	mul, ok := add.Right.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, ast.OpMul, mul.Op)
}

func TestParseCompileTimeIdentifier(t *testing.T) {
	prog := parseProgram(t, "void main() { int x = $n; }")
	decl := prog.Functions[0].Body.Stats[0].(*ast.VarDecl)
	ident, ok := decl.Vars[0].Value.(*ast.Identifier)
	require.True(t, ok)
	assert.True(t, ident.CompileTime)
	assert.Equal(t, "n", ident.Name)
}

func TestParseCast(t *testing.T) {
	prog := parseProgram(t, "void main() { char c = (char)65; }")
	decl := prog.Functions[0].Body.Stats[0].(*ast.VarDecl)
	cast, ok := decl.Vars[0].Value.(*ast.Cast)
	require.True(t, ok)
	assert.Equal(t, ast.TChar, cast.To)
}

func TestParseRawCommand(t *testing.T) {
	prog := parseProgram(t, `void main() { command "say hello"; }`)
	cmd, ok := prog.Functions[0].Body.Stats[0].(*ast.McCommand)
	require.True(t, ok)
	assert.Equal(t, "say hello", cmd.Command)
}

func TestParseCallExpression(t *testing.T) {
	prog := parseProgram(t, "void main() { foo(1, 2); }")
	ignore, ok := prog.Functions[0].Body.Stats[0].(*ast.Ignore)
	require.True(t, ok)
	call, ok := ignore.Expr.(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, "foo", call.Name)
	assert.Len(t, call.Args, 2)
}

func TestParseSyntaxErrorRecorded(t *testing.T) {
	diags := diagnostics.NewSink()
	lex := lexer.New("void main( {")
	p := parser.New(lex, "<test>", diags)
	p.ParseProgram()
	assert.True(t, diags.HasErrors())
}
