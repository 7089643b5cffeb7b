package codegen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ArmindoFlores/MineScript2/internal/ast"
	"github.com/ArmindoFlores/MineScript2/internal/diagnostics"
	"github.com/ArmindoFlores/MineScript2/internal/symbols"
	"github.com/ArmindoFlores/MineScript2/internal/typesystem"
)

// lowerStat lowers one statement node, following spec.md §4.6.
func (l *Lowering) lowerStat(s ast.Statement) error {
	switch n := s.(type) {
	case *ast.StatBlock:
		for _, stat := range n.Stats {
			if err := l.lowerStat(stat); err != nil {
				return err
			}
		}
		return nil
	case *ast.VarDecl:
		return l.lowerVarDecl(n)
	case *ast.Ignore:
		_, err := l.lowerExpr(n.Expr, false)
		return err
	case *ast.If:
		return l.lowerIf(n)
	case *ast.For:
		return l.lowerFor(n)
	case *ast.While:
		return l.lowerWhile(n)
	case *ast.Break:
		return l.lowerBreak(n)
	case *ast.Return:
		return l.lowerReturn(n)
	case *ast.Print:
		return l.lowerPrint(n)
	case *ast.McCommand:
		return l.addCmd(n.Command)
	default:
		return l.errAt(s.GetToken(), diagnostics.ErrSyntax, "unsupported statement node %T", s)
	}
}

func (l *Lowering) lowerVarDecl(n *ast.VarDecl) error {
	for _, va := range n.Vars {
		declType := n.Type
		if va.ArrayMarker {
			declType = declType.Array()
		}
		t := typesystem.FromAST(declType)

		if va.CompileTime {
			if err := l.declareCompileTimeVar(va, t); err != nil {
				return err
			}
			continue
		}
		if err := l.declareLocalVar(va, t); err != nil {
			return err
		}
	}
	return nil
}

func (l *Lowering) declareCompileTimeVar(va *ast.VarAssign, t typesystem.Type) error {
	if va.Value == nil {
		return l.errAt(va.Token, diagnostics.ErrNotCompileTime, "compile-time variable %q must be initialized", va.Name)
	}
	value, err := l.lowerExpr(va.Value, true)
	if err != nil {
		return err
	}
	if !value.IsConst() {
		return l.errAt(va.Token, diagnostics.ErrAssignRuntimeToConst, "%v", &AssignRuntimeToCompileError{Name: "$" + va.Name})
	}
	if err := symbols.AssertTypesMatch("declaration", t, value.Type()); err != nil {
		return l.errAt(va.Token, diagnostics.ErrTypeMismatch, "%v", err)
	}
	if err := l.syms.DeclareCompileTime(va.Name, value); err != nil {
		return l.errAt(va.Token, diagnostics.ErrRedefinition, "%v", err)
	}
	return nil
}

func (l *Lowering) declareLocalVar(va *ast.VarAssign, t typesystem.Type) error {
	if err := l.syms.DeclareLocal(va.Name, t); err != nil {
		return l.errAt(va.Token, diagnostics.ErrRedefinition, "%v", err)
	}
	l.output.LocalTypes[l.curFunc.Decl.Name][va.Name] = t
	dest := va.Name + "+local"

	if va.Value == nil {
		return l.setVar(dest, zeroValue(t))
	}
	value, err := l.lowerExpr(va.Value, true)
	if err != nil {
		return err
	}
	if err := symbols.AssertTypesMatch("declaration", t, value.Type()); err != nil {
		return l.errAt(va.Token, diagnostics.ErrTypeMismatch, "%v", err)
	}
	if err := l.setVar(dest, value); err != nil {
		return err
	}
	l.markUnusedIfTemp(value)
	return nil
}

func zeroValue(t typesystem.Type) typesystem.Value {
	switch {
	case t.IsArray():
		return typesystem.NewArrayLiteral(t.Elem(), nil)
	case t == typesystem.Char:
		return typesystem.NewCharLiteral(0)
	default:
		return typesystem.NewIntLiteral(0)
	}
}

func (l *Lowering) lowerIf(n *ast.If) error {
	cond, err := l.lowerExpr(n.Condition, true)
	if err != nil {
		return err
	}

	if cond.IsConst() {
		truthy, err := typesystem.Truthy(cond)
		if err != nil {
			return l.errAt(n.Token, diagnostics.ErrTypeMismatch, "%v", err)
		}
		if truthy {
			l.diags.Add(diagnostics.New(diagnostics.WarnAlwaysTrue, diagnostics.Warning, l.file, n.Token.Pos(), "condition is always true"))
			return l.lowerStat(n.Then)
		}
		l.diags.Add(diagnostics.New(diagnostics.WarnAlwaysFalse, diagnostics.Warning, l.file, n.Token.Pos(), "condition is always false"))
		if n.Else != nil {
			return l.lowerStat(n.Else)
		}
		return nil
	}

	l.g.pushPrefix(fmt.Sprintf("unless score #MineScript %s matches 0", cond.Register()))
	err = l.lowerStat(n.Then)
	l.g.popPrefix()
	if err != nil {
		return err
	}

	if n.Else != nil {
		l.g.pushPrefix(fmt.Sprintf("if score #MineScript %s matches 0", cond.Register()))
		err = l.lowerStat(n.Else)
		l.g.popPrefix()
		if err != nil {
			return err
		}
	}

	l.markUnusedIfTemp(cond)
	return nil
}

// lowerWhile implements spec.md §4.6's synthetic-loop-function lowering: the
// loop body becomes its own function, called once up front and then
// recursively from its own tail, guarded throughout by a per-loop break
// register so that a failed condition or a break statement simply lets the
// recursion die out.
func (l *Lowering) lowerWhile(n *ast.While) error {
	breakVar := l.getTempVar(typesystem.Int)
	if err := l.setVar(breakVar, typesystem.NewIntLiteral(0)); err != nil {
		return err
	}

	loopName := fmt.Sprintf("_loop%d", l.loopCounter)
	if err := l.addCmd(fmt.Sprintf("function %s:%s", l.pack, loopName)); err != nil {
		return err
	}

	l.startLoopWithBreak(breakVar)
	err := l.lowerLoopBody(n.Condition, n.Body, breakVar, loopName)
	l.endLoopWithBreak()
	return err
}

// lowerFor desugars into the same shape as lowerWhile, running Init once
// before the loop and Update at the end of each guarded iteration
// (spec.md §6: For).
func (l *Lowering) lowerFor(n *ast.For) error {
	l.syms.PushLocalScope()
	defer l.syms.PopLocalScope()

	if n.Init != nil {
		if err := l.lowerStat(n.Init); err != nil {
			return err
		}
	}

	breakVar := l.getTempVar(typesystem.Int)
	if err := l.setVar(breakVar, typesystem.NewIntLiteral(0)); err != nil {
		return err
	}

	loopName := fmt.Sprintf("_loop%d", l.loopCounter)
	if err := l.addCmd(fmt.Sprintf("function %s:%s", l.pack, loopName)); err != nil {
		return err
	}

	l.startLoopWithBreak(breakVar)
	err := l.lowerForLoopBody(n, breakVar, loopName)
	l.endLoopWithBreak()
	return err
}

func (l *Lowering) lowerLoopBody(cond ast.Expression, body ast.Statement, breakVar, loopName string) error {
	if err := l.emitConditionGuard(cond, breakVar); err != nil {
		return err
	}
	if err := l.lowerStat(body); err != nil {
		return err
	}
	return l.addCmd(fmt.Sprintf("function %s:%s", l.pack, loopName))
}

func (l *Lowering) lowerForLoopBody(n *ast.For, breakVar, loopName string) error {
	if n.Condition != nil {
		if err := l.emitConditionGuard(n.Condition, breakVar); err != nil {
			return err
		}
	}
	if err := l.lowerStat(n.Body); err != nil {
		return err
	}
	if n.Update != nil {
		if _, err := l.lowerExpr(n.Update, false); err != nil {
			return err
		}
	}
	return l.addCmd(fmt.Sprintf("function %s:%s", l.pack, loopName))
}

// emitConditionGuard evaluates cond and, if false, sets breakVar so the
// remaining guarded commands in this loop invocation (including the tail
// call) are skipped.
func (l *Lowering) emitConditionGuard(cond ast.Expression, breakVar string) error {
	v, err := l.lowerExpr(cond, true)
	if err != nil {
		return err
	}
	if v.IsConst() {
		truthy, err := typesystem.Truthy(v)
		if err != nil {
			return l.errAt(cond.GetToken(), diagnostics.ErrTypeMismatch, "%v", err)
		}
		if !truthy {
			return l.addCmd(fmt.Sprintf("scoreboard players set #MineScript %s 1", breakVar))
		}
		return nil
	}
	if err := l.addCmd(fmt.Sprintf("execute if score #MineScript %s matches 0 run scoreboard players set #MineScript %s 1", v.Register(), breakVar)); err != nil {
		return err
	}
	l.markUnusedIfTemp(v)
	return nil
}

func (l *Lowering) lowerBreak(n *ast.Break) error {
	if len(l.breakStack) == 0 {
		return l.errAt(n.Token, diagnostics.ErrBreakOutsideLoop, "%v", &BreakOutsideLoopError{})
	}
	top := l.breakStack[len(l.breakStack)-1]
	return l.addCmd(fmt.Sprintf("scoreboard players set #MineScript %s 1", top))
}

func (l *Lowering) lowerReturn(n *ast.Return) error {
	if l.curFunc == nil {
		return l.errAt(n.Token, diagnostics.ErrReturnOutsideFn, "%v", &ReturnOutsideFunctionError{})
	}

	if l.curFunc.Return == ast.TVoid {
		if n.Value != nil {
			return l.errAt(n.Token, diagnostics.ErrVoidReturnsValue, "%v", &VoidReturnsValueError{Function: l.curFunc.Decl.Name})
		}
	} else {
		if n.Value == nil {
			return l.errAt(n.Token, diagnostics.ErrNonVoidMissingReturn, "%v", &NonVoidMissingReturnError{Function: l.curFunc.Decl.Name})
		}
		value, err := l.lowerExpr(n.Value, true)
		if err != nil {
			return err
		}
		want := typesystem.FromAST(l.curFunc.Return)
		if err := symbols.AssertTypesMatch("return", want, value.Type()); err != nil {
			return l.errAt(n.Token, diagnostics.ErrTypeMismatch, "%v", err)
		}
		if err := l.setVar(l.curFunc.ReturnSlot, value); err != nil {
			return err
		}
		l.markUnusedIfTemp(value)
	}

	return l.addCmd(fmt.Sprintf("scoreboard players set #MineScript %s 1", l.curFunc.BreakFlag))
}

type tellrawScore struct {
	Name      string `json:"name"`
	Objective string `json:"objective"`
}

type tellrawComponent struct {
	Text  string        `json:"text,omitempty"`
	Color string        `json:"color,omitempty"`
	Score *tellrawScore `json:"score,omitempty"`
}

// lowerPrint implements spec.md §4.6's print statement: the first two
// arguments (selector, colour) must be char[] strings known at compile
// time; the rest are rendered left to right as tellraw components.
func (l *Lowering) lowerPrint(n *ast.Print) error {
	if len(n.Args) < 3 {
		return l.errAt(n.Token, diagnostics.ErrBuiltinArity, "%v", &PrintArityError{Got: len(n.Args)})
	}

	selectorVal, err := l.lowerExpr(n.Args[0], true)
	if err != nil {
		return err
	}
	selector, ok := stringFromValue(selectorVal)
	if !ok {
		return l.errAt(n.Args[0].GetToken(), diagnostics.ErrPrintArgType, "%v", &PrintArgTypeError{Which: "selector"})
	}

	colorVal, err := l.lowerExpr(n.Args[1], true)
	if err != nil {
		return err
	}
	color, ok := stringFromValue(colorVal)
	if !ok {
		return l.errAt(n.Args[1].GetToken(), diagnostics.ErrPrintArgType, "%v", &PrintArgTypeError{Which: "color"})
	}

	components := make([]tellrawComponent, 0, len(n.Args)-2)
	for _, argExpr := range n.Args[2:] {
		v, err := l.lowerExpr(argExpr, true)
		if err != nil {
			return err
		}
		components = append(components, printComponent(v, color))
		l.markUnusedIfTemp(v)
	}

	payload, err := json.Marshal(components)
	if err != nil {
		return l.errAt(n.Token, diagnostics.ErrSyntax, "failed to encode print payload: %v", err)
	}
	return l.addCmd(fmt.Sprintf("tellraw %s %s", selector, string(payload)))
}

func stringFromValue(v typesystem.Value) (string, bool) {
	if !v.IsConst() || v.Type() != typesystem.CharArray {
		return "", false
	}
	var sb strings.Builder
	for _, e := range v.Elements() {
		sb.WriteRune(rune(e.CodePoint()))
	}
	return sb.String(), true
}

func printComponent(v typesystem.Value, color string) tellrawComponent {
	if v.IsConst() {
		if s, ok := stringFromValue(v); ok {
			return tellrawComponent{Text: s, Color: color}
		}
		return tellrawComponent{Text: fmt.Sprintf("%d", scalarOf(v)), Color: color}
	}
	return tellrawComponent{Color: color, Score: &tellrawScore{Name: "#MineScript", Objective: v.Register()}}
}
