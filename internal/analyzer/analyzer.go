// Package analyzer implements the mapping pass from spec.md §4.1: a single
// walk over function declarations that registers every function's
// signature, rejects redefinition, and reserves return slots — before the
// lowering pass (internal/codegen) ever runs. It does not check for nested
// declarations: the parser only accepts function declarations at top level
// and reports one inside a body as a syntax error (E017), so ErrNestedFunction
// is never emitted. It is grounded
// line for line on original_source/MappingVisitor.py; the multi-stage
// "collect signatures, then lower" sequencing style follows
// funvibe-funxy/internal/analyzer/analyzer.go's AnalyzeNaming/
// AnalyzeHeaders/AnalyzeBodies split, adapted here to MineScript's
// two-pass (not three-pass) architecture.
package analyzer

import (
	"github.com/ArmindoFlores/MineScript2/internal/ast"
	"github.com/ArmindoFlores/MineScript2/internal/diagnostics"
	"github.com/ArmindoFlores/MineScript2/internal/symbols"
	"github.com/ArmindoFlores/MineScript2/internal/token"
	"github.com/ArmindoFlores/MineScript2/internal/typesystem"
)

// FunctionSig is one function's collected signature.
type FunctionSig struct {
	Decl       *ast.FunctionDecl
	Params     []ast.Param
	Return     ast.ValueType
	ReturnSlot string // "_f_<name>", empty for void
	BreakFlag  string // "_break_<name>"
}

// Table maps function name to its collected signature, preserving
// declaration order for deterministic downstream iteration.
type Table struct {
	funcs map[string]*FunctionSig
	order []string
}

func newTable() *Table {
	return &Table{funcs: make(map[string]*FunctionSig)}
}

// Lookup resolves a function name to its signature.
func (t *Table) Lookup(name string) (*FunctionSig, bool) {
	sig, ok := t.funcs[name]
	return sig, ok
}

// Order returns function names in declaration order.
func (t *Table) Order() []string {
	return t.order
}

const (
	builtinLoad = "load"
	builtinTick = "tick"
)

// Collect runs the mapping pass over prog, populating syms with every
// reserved return-slot global, and returns the signature table the
// lowering pass (internal/codegen) will consume. It stops at the first
// error, matching spec.md §7's "the first error raised during lowering
// aborts the pass" policy (applied here to the mapping pass as well).
func Collect(prog *ast.Program, syms *symbols.Table, diags *diagnostics.Sink, file string) (*Table, error) {
	table := newTable()

	for _, fn := range prog.Functions {
		if _, exists := table.funcs[fn.Name]; exists {
			err := diagErr(file, fn.Token, diagnostics.ErrDuplicateFunction,
				"function %q is already defined", fn.Name)
			diags.Add(err)
			return nil, err
		}

		if (fn.Name == builtinLoad || fn.Name == builtinTick) && len(fn.Params) > 0 {
			err := diagErr(file, fn.Token, diagnostics.ErrBuiltinArity,
				"%q must take zero parameters", fn.Name)
			diags.Add(err)
			return nil, err
		}

		sig := &FunctionSig{
			Decl:      fn,
			Params:    fn.Params,
			Return:    fn.Return,
			BreakFlag: "_break_" + fn.Name,
		}
		if fn.Return != ast.TVoid {
			sig.ReturnSlot = "_f_" + fn.Name
			if err := syms.DeclareGlobal(sig.ReturnSlot, typesystem.FromAST(fn.Return)); err != nil {
				diagErr2 := diagErr(file, fn.Token, diagnostics.ErrRedefinition, "%v", err)
				diags.Add(diagErr2)
				return nil, diagErr2
			}
		}

		table.funcs[fn.Name] = sig
		table.order = append(table.order, fn.Name)
	}

	return table, nil
}

func diagErr(file string, tok token.Token, code diagnostics.Code, format string, args ...interface{}) *diagnostics.DiagnosticError {
	return diagnostics.New(code, diagnostics.Error, file, tok.Pos(), format, args...)
}
