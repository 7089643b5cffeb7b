package codegen

import (
	"fmt"

	"github.com/ArmindoFlores/MineScript2/internal/analyzer"
	"github.com/ArmindoFlores/MineScript2/internal/ast"
	"github.com/ArmindoFlores/MineScript2/internal/diagnostics"
	"github.com/ArmindoFlores/MineScript2/internal/symbols"
	"github.com/ArmindoFlores/MineScript2/internal/token"
	"github.com/ArmindoFlores/MineScript2/internal/typesystem"
)

// Lowering is the lowering-pass context threaded through the whole walk —
// spec.md §9's "Global mutable state ... is encapsulated in a Lowering
// context value threaded through the walk, not static globals."
type Lowering struct {
	pack string
	file string

	syms *symbols.Table
	sigs *analyzer.Table
	diags *diagnostics.Sink
	output *Output

	regs *regAlloc
	g    *guard

	loopCounter int
	breakStack  []string // stack of per-loop break variables, innermost loop last

	curFunc *analyzer.FunctionSig
}

// New creates a Lowering context ready to lower prog's bodies. sigs must
// already have been produced by analyzer.Collect over the same prog/syms.
func New(pack, file string, syms *symbols.Table, sigs *analyzer.Table, diags *diagnostics.Sink) *Lowering {
	return &Lowering{
		pack:   pack,
		file:   file,
		syms:   syms,
		sigs:   sigs,
		diags:  diags,
		output: NewOutput(),
		regs:   newRegAlloc(),
		g:      newGuard(),
	}
}

// Lower runs the full lowering pass over prog and returns the output
// tables, or the first diagnostic error encountered (spec.md §7: the
// first error aborts the pass).
func (l *Lowering) Lower(prog *ast.Program) (*Output, error) {
	for _, name := range l.sigs.Order() {
		sig, _ := l.sigs.Lookup(name)
		if err := l.lowerFunction(sig); err != nil {
			return nil, err
		}
	}
	return l.output, nil
}

func (l *Lowering) lowerFunction(sig *analyzer.FunctionSig) error {
	l.curFunc = sig
	l.syms.PushLocalScope()
	defer func() {
		l.syms.PopLocalScope()
		l.curFunc = nil
	}()

	info := &FunctionInfo{
		Name:       sig.Decl.Name,
		Args:       sig.Params,
		Return:     sig.Return,
		ReturnSlot: sig.ReturnSlot,
		BreakFlag:  sig.BreakFlag,
	}
	l.output.declareFunction(info)
	if sig.ReturnSlot != "" {
		l.output.GlobalTypes[sig.ReturnSlot] = typesystem.FromAST(sig.Return)
	}

	for _, p := range sig.Params {
		if err := l.syms.DeclareLocal(p.Name, typesystem.FromAST(p.Type)); err != nil {
			return l.errAt(sig.Decl.Token, diagnostics.ErrRedefinition, "%v", err)
		}
		l.output.LocalTypes[sig.Decl.Name][p.Name] = typesystem.FromAST(p.Type)
	}

	if err := l.syms.DeclareGlobal(sig.BreakFlag, typesystem.Int); err != nil {
		// Each function has its own break-flag name and DeclareGlobal rejects
		// a second declaration, so this can only happen on a genuine bug.
		return l.errAt(sig.Decl.Token, diagnostics.ErrRedefinition, "%v", err)
	}
	l.output.GlobalTypes[sig.BreakFlag] = typesystem.Int
	l.g.pushSink(sig.Decl.Name)
	if err := l.setVar(sig.BreakFlag, typesystem.NewIntLiteral(0)); err != nil {
		return err
	}

	l.g.pushPrefix(fmt.Sprintf("unless score #MineScript %s matches 1", sig.BreakFlag))
	err := l.lowerStat(sig.Decl.Body)
	l.g.popPrefix()
	l.g.popSink()
	return err
}

// addCmd renders cmd through the active prefix stack and appends it to the
// active sink's command buffer (spec.md §4.6).
func (l *Lowering) addCmd(cmd string) error {
	sink, ok := l.g.activeSink()
	if !ok {
		return &CodeOutsideFunctionError{}
	}
	l.output.appendTo(sink, l.g.render(cmd))
	return nil
}

func (l *Lowering) getTempVar(t typesystem.Type) string {
	return l.regs.get(l.output, t)
}

func (l *Lowering) markUnusedIfTemp(v typesystem.Value) {
	if !v.IsConst() {
		l.regs.markUnused(v.Register())
	}
}

func (l *Lowering) startLoop() string {
	name := fmt.Sprintf("_loop%d", l.loopCounter)
	l.loopCounter++
	l.output.newLoop(name)
	l.g.pushSink(name)
	return name
}

func (l *Lowering) endLoop() {
	l.g.popSink()
}

func (l *Lowering) startLoopWithBreak(breakVar string) string {
	name := l.startLoop()
	l.breakStack = append(l.breakStack, breakVar)
	l.g.pushPrefix(fmt.Sprintf("unless score #MineScript %s matches 1", breakVar))
	return name
}

func (l *Lowering) endLoopWithBreak() {
	l.g.popPrefix()
	bv := l.breakStack[len(l.breakStack)-1]
	l.breakStack = l.breakStack[:len(l.breakStack)-1]
	l.regs.markUnused(bv)
	l.endLoop()
}

// setVar emits the command(s) that store value into the runtime register
// or storage path named dest (spec.md §4.5's set_var). dest must already
// carry any "+local" mangling; compile-time destinations never reach this
// function (those are written directly into the symbol table).
func (l *Lowering) setVar(dest string, value typesystem.Value) error {
	if value.IsConst() {
		if value.Type().IsArray() {
			return l.addCmd(fmt.Sprintf("data modify storage %s:minescript %s set value %s", l.pack, dest, renderArrayLiteral(value)))
		}
		return l.addCmd(fmt.Sprintf("scoreboard players set #MineScript %s %d", dest, scalarOf(value)))
	}
	if value.Type().IsArray() {
		return l.addCmd(fmt.Sprintf("data modify storage %s:minescript %s set from storage %s:minescript %s", l.pack, dest, l.pack, value.Register()))
	}
	return l.addCmd(fmt.Sprintf("scoreboard players operation #MineScript %s = #MineScript %s", dest, value.Register()))
}

func scalarOf(v typesystem.Value) int64 {
	if v.Type() == typesystem.Char {
		return v.CodePoint()
	}
	return v.Int()
}

func renderArrayLiteral(v typesystem.Value) string {
	elems := v.Elements()
	s := "{value:["
	for i, e := range elems {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%d", scalarOf(e))
	}
	s += fmt.Sprintf("],size:%d}", len(elems))
	return s
}

// registerName resolves a declared runtime symbol to the mangled name used
// in emitted commands: locals get the "+local" suffix, globals don't
// (spec.md §3, §5).
func (l *Lowering) registerName(sym *symbols.Symbol) string {
	if sym.Kind == symbols.LocalRuntime {
		return sym.Name + "+local"
	}
	return sym.Name
}

func (l *Lowering) errAt(tok token.Token, code diagnostics.Code, format string, args ...interface{}) *diagnostics.DiagnosticError {
	err := diagnostics.New(code, diagnostics.Error, l.file, tok.Pos(), format, args...)
	l.diags.Add(err)
	return err
}
