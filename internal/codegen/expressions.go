package codegen

import (
	"fmt"

	"github.com/ArmindoFlores/MineScript2/internal/ast"
	"github.com/ArmindoFlores/MineScript2/internal/diagnostics"
	"github.com/ArmindoFlores/MineScript2/internal/symbols"
	"github.com/ArmindoFlores/MineScript2/internal/typesystem"
)

// lowerExpr lowers one expression node to a Value, following spec.md §4.4.
// want reports whether the caller actually consumes the result — the Go
// stand-in for the original's ancestor-walking is_used predicate, threaded
// explicitly instead of inferred from AST context (spec.md §9: no runtime
// type introspection).
func (l *Lowering) lowerExpr(e ast.Expression, want bool) (typesystem.Value, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return l.lowerLiteral(n)
	case *ast.Parens:
		return l.lowerExpr(n.Inner, want)
	case *ast.Array:
		return l.lowerArray(n, want)
	case *ast.Identifier:
		return l.lowerIdentifier(n)
	case *ast.VarAssign:
		return l.lowerVarAssignExpr(n, want)
	case *ast.IncDec:
		return l.lowerIncDec(n, want)
	case *ast.BinOp:
		return l.lowerBinOp(n, want)
	case *ast.Cast:
		return l.lowerCast(n)
	case *ast.Call:
		return l.lowerCall(n)
	default:
		return typesystem.Value{}, l.errAt(e.GetToken(), diagnostics.ErrSyntax, "unsupported expression node %T", e)
	}
}

func (l *Lowering) lowerLiteral(n *ast.Literal) (typesystem.Value, error) {
	switch n.Kind {
	case ast.LitNumber:
		return typesystem.NewIntLiteral(n.Num), nil
	case ast.LitChar:
		return typesystem.NewCharLiteral(n.Ch), nil
	case ast.LitString:
		elems := make([]typesystem.Value, len(n.Str))
		for i, r := range n.Str {
			elems[i] = typesystem.NewCharLiteral(int64(r))
		}
		return typesystem.NewArrayLiteral(typesystem.Char, elems), nil
	default:
		return typesystem.Value{}, l.errAt(n.Token, diagnostics.ErrSyntax, "unknown literal kind")
	}
}

func (l *Lowering) lowerArray(n *ast.Array, want bool) (typesystem.Value, error) {
	elems := make([]typesystem.Value, 0, len(n.Elements))
	var elemType typesystem.Type
	for i, e := range n.Elements {
		v, err := l.lowerExpr(e, true)
		if err != nil {
			return typesystem.Value{}, err
		}
		if i == 0 {
			elemType = v.Type()
		} else if v.Type() != elemType {
			return typesystem.Value{}, l.errAt(e.GetToken(), diagnostics.ErrTypeMismatch,
				"mismatching types in array literal: %s and %s", elemType, v.Type())
		}
		elems = append(elems, v)
	}
	if !want {
		return typesystem.Value{}, nil
	}
	lit := typesystem.NewArrayLiteral(elemType, elems)
	temp := l.getTempVar(lit.Type())
	if err := l.setVar(temp, lit); err != nil {
		return typesystem.Value{}, err
	}
	return typesystem.NewRegister(lit.Type(), temp), nil
}

func (l *Lowering) lowerIdentifier(n *ast.Identifier) (typesystem.Value, error) {
	if n.CompileTime {
		sym, err := l.syms.LookupCompileTime(n.Name)
		if err != nil {
			return typesystem.Value{}, l.errAt(n.Token, diagnostics.ErrUndeclaredVariable, "%v", err)
		}
		return sym.Value, nil
	}
	sym, err := l.syms.Lookup(n.Name)
	if err != nil {
		return typesystem.Value{}, l.errAt(n.Token, diagnostics.ErrUndeclaredVariable, "%v", err)
	}
	return typesystem.NewRegister(sym.Type, l.registerName(sym)), nil
}

// lowerVarAssignExpr handles the three overloaded shapes a VarAssign can
// take in expression position (spec.md §4.5): a plain assignment `a=v`, an
// array-element write `a[i]=v`, and an array-element read `a[i]`.
func (l *Lowering) lowerVarAssignExpr(n *ast.VarAssign, want bool) (typesystem.Value, error) {
	if n.CompileTime {
		return l.lowerCompileTimeAssign(n)
	}

	sym, err := l.syms.Lookup(n.Name)
	if err != nil {
		return typesystem.Value{}, l.errAt(n.Token, diagnostics.ErrUndeclaredVariable, "%v", err)
	}
	dest := l.registerName(sym)

	if n.Index == nil && n.Value == nil {
		return typesystem.NewRegister(sym.Type, dest), nil
	}

	if n.Index == nil && n.Value != nil {
		value, err := l.lowerExpr(n.Value, true)
		if err != nil {
			return typesystem.Value{}, err
		}
		if err := symbols.AssertTypesMatch("assignment", sym.Type, value.Type()); err != nil {
			return typesystem.Value{}, l.errAt(n.Token, diagnostics.ErrTypeMismatch, "%v", err)
		}
		if err := l.setVar(dest, value); err != nil {
			return typesystem.Value{}, err
		}
		l.markUnusedIfTemp(value)
		if !want {
			return typesystem.Value{}, nil
		}
		return typesystem.NewRegister(sym.Type, dest), nil
	}

	if n.Index != nil && n.Value != nil {
		index, err := l.lowerExpr(n.Index, true)
		if err != nil {
			return typesystem.Value{}, err
		}
		if index.Type() != typesystem.Int {
			return typesystem.Value{}, l.errAt(n.Token, diagnostics.ErrNonIntIndex, "%v", &NonIntIndexError{Got: index.Type().String()})
		}
		value, err := l.lowerExpr(n.Value, true)
		if err != nil {
			return typesystem.Value{}, err
		}
		if err := symbols.AssertTypesMatch("array element assignment", sym.Type.Elem(), value.Type()); err != nil {
			return typesystem.Value{}, l.errAt(n.Token, diagnostics.ErrTypeMismatch, "%v", err)
		}
		if err := l.setArrElement(dest, index, value); err != nil {
			return typesystem.Value{}, err
		}
		l.markUnusedIfTemp(index)
		l.markUnusedIfTemp(value)
		return typesystem.Value{}, nil
	}

	// Index != nil, Value == nil: array element read a[i].
	index, err := l.lowerExpr(n.Index, true)
	if err != nil {
		return typesystem.Value{}, err
	}
	if index.Type() != typesystem.Int {
		return typesystem.Value{}, l.errAt(n.Token, diagnostics.ErrNonIntIndex, "%v", &NonIntIndexError{Got: index.Type().String()})
	}
	result, err := l.getArrElement(dest, sym.Type, index)
	if err != nil {
		return typesystem.Value{}, err
	}
	l.markUnusedIfTemp(index)
	return result, nil
}

func (l *Lowering) lowerCompileTimeAssign(n *ast.VarAssign) (typesystem.Value, error) {
	if n.Value == nil {
		sym, err := l.syms.LookupCompileTime(n.Name)
		if err != nil {
			return typesystem.Value{}, l.errAt(n.Token, diagnostics.ErrUndeclaredVariable, "%v", err)
		}
		if n.Index != nil {
			idx, err := l.lowerExpr(n.Index, true)
			if err != nil {
				return typesystem.Value{}, err
			}
			if !idx.IsConst() {
				return typesystem.Value{}, l.errAt(n.Token, diagnostics.ErrNotCompileTime, "array index must be evaluated at compile time")
			}
			elems := sym.Value.Elements()
			i := idx.Int()
			if i < 0 || int(i) >= len(elems) {
				return typesystem.Value{}, l.errAt(n.Token, diagnostics.ErrTypeMismatch, "array index out of range")
			}
			return elems[i], nil
		}
		return sym.Value, nil
	}

	value, err := l.lowerExpr(n.Value, true)
	if err != nil {
		return typesystem.Value{}, err
	}
	if !value.IsConst() {
		return typesystem.Value{}, l.errAt(n.Token, diagnostics.ErrAssignRuntimeToConst, "%v", &AssignRuntimeToCompileError{Name: "$" + n.Name})
	}

	if n.Index != nil {
		sym, err := l.syms.LookupCompileTime(n.Name)
		if err != nil {
			return typesystem.Value{}, l.errAt(n.Token, diagnostics.ErrUndeclaredVariable, "%v", err)
		}
		idx, err := l.lowerExpr(n.Index, true)
		if err != nil {
			return typesystem.Value{}, err
		}
		if !idx.IsConst() {
			return typesystem.Value{}, l.errAt(n.Token, diagnostics.ErrNotCompileTime, "array index must be evaluated at compile time")
		}
		elems := append([]typesystem.Value(nil), sym.Value.Elements()...)
		i := int(idx.Int())
		if i < 0 || i >= len(elems) {
			return typesystem.Value{}, l.errAt(n.Token, diagnostics.ErrTypeMismatch, "array index out of range")
		}
		elems[i] = value
		updated := typesystem.NewArrayLiteral(value.Type(), elems)
		if err := l.syms.SetCompileTime(n.Name, updated); err != nil {
			return typesystem.Value{}, l.errAt(n.Token, diagnostics.ErrUndeclaredVariable, "%v", err)
		}
		return typesystem.Value{}, nil
	}

	if err := l.syms.SetCompileTime(n.Name, value); err != nil {
		return typesystem.Value{}, l.errAt(n.Token, diagnostics.ErrUndeclaredVariable, "%v", err)
	}
	return value, nil
}

// getArrElement implements spec.md §4.5's array element read.
func (l *Lowering) getArrElement(name string, arrType typesystem.Type, index typesystem.Value) (typesystem.Value, error) {
	elemType := arrType.Elem()
	if index.IsConst() {
		temp := l.getTempVar(elemType)
		if err := l.addCmd(fmt.Sprintf("execute store result score #MineScript %s run data get storage %s:minescript %s.value[%d]",
			temp, l.pack, name, scalarOf(index))); err != nil {
			return typesystem.Value{}, err
		}
		return typesystem.NewRegister(elemType, temp), nil
	}

	tempList := l.getTempVar(arrType)
	count := l.getTempVar(typesystem.Int)
	result := l.getTempVar(elemType)
	if err := l.setVar(count, typesystem.NewIntLiteral(0)); err != nil {
		return typesystem.Value{}, err
	}
	if err := l.setVar(tempList, typesystem.NewRegister(arrType, name)); err != nil {
		return typesystem.Value{}, err
	}

	loopName := fmt.Sprintf("_loop%d", l.loopCounter)
	if err := l.addCmd(fmt.Sprintf("function %s:%s", l.pack, loopName)); err != nil {
		return typesystem.Value{}, err
	}

	l.startLoop()
	if err := l.addCmd(fmt.Sprintf("scoreboard players add #MineScript %s 1", count)); err != nil {
		return typesystem.Value{}, err
	}
	if err := l.addCmd(fmt.Sprintf("execute store result score #MineScript %s run data get storage %s:minescript %s.value[0]",
		result, l.pack, tempList)); err != nil {
		return typesystem.Value{}, err
	}
	if err := l.addCmd(fmt.Sprintf("data remove storage %s:minescript %s.value[0]", l.pack, tempList)); err != nil {
		return typesystem.Value{}, err
	}
	if err := l.addCmd(fmt.Sprintf("execute unless score #MineScript %s > #MineScript %s run function %s:%s",
		count, index.Register(), l.pack, loopName)); err != nil {
		return typesystem.Value{}, err
	}
	l.endLoop()

	l.regs.markUnused(tempList)
	l.regs.markUnused(count)
	return typesystem.NewRegister(elemType, result), nil
}

// setArrElement implements spec.md §4.5's array element write.
func (l *Lowering) setArrElement(name string, index, value typesystem.Value) error {
	if index.IsConst() {
		if value.IsConst() {
			return l.addCmd(fmt.Sprintf("data modify storage %s:minescript %s.value[%d] value %d",
				l.pack, name, scalarOf(index), scalarOf(value)))
		}
		return l.addCmd(fmt.Sprintf("execute store result storage %s:minescript %s.value[%d] int 1 run scoreboard players get #MineScript %s",
			l.pack, name, scalarOf(index), value.Register()))
	}

	arrType := value.Type().Array()
	tempList := l.getTempVar(arrType)
	count := l.getTempVar(typesystem.Int)
	done := l.getTempVar(typesystem.Int)
	size := l.getTempVar(typesystem.Int)

	if err := l.addCmd(fmt.Sprintf("execute store result score #MineScript %s run data get storage %s:minescript %s.size", size, l.pack, name)); err != nil {
		return err
	}
	if err := l.setVar(count, typesystem.NewIntLiteral(0)); err != nil {
		return err
	}
	if err := l.setVar(done, typesystem.NewIntLiteral(0)); err != nil {
		return err
	}
	empty := typesystem.NewArrayLiteral(value.Type(), nil)
	if err := l.setVar(tempList, empty); err != nil {
		return err
	}

	loopName := fmt.Sprintf("_loop%d", l.loopCounter)
	if err := l.addCmd(fmt.Sprintf("function %s:%s", l.pack, loopName)); err != nil {
		return err
	}

	l.startLoop()
	if err := l.addCmd(fmt.Sprintf("execute unless score #MineScript %s = #MineScript %s run data modify storage %s:minescript %s.value append from storage %s:minescript %s.value[0]",
		count, index.Register(), l.pack, tempList, l.pack, name)); err != nil {
		return err
	}
	if value.IsConst() {
		if err := l.addCmd(fmt.Sprintf("execute if score #MineScript %s = #MineScript %s if score #MineScript %s matches 0 run data modify storage %s:minescript %s.value append value %d",
			count, index.Register(), done, l.pack, tempList, scalarOf(value))); err != nil {
			return err
		}
	} else {
		if err := l.addCmd(fmt.Sprintf("execute if score #MineScript %s = #MineScript %s if score #MineScript %s matches 0 run data modify storage %s:minescript %s.value append value 0",
			count, index.Register(), done, l.pack, tempList)); err != nil {
			return err
		}
		if err := l.addCmd(fmt.Sprintf("execute if score #MineScript %s = #MineScript %s if score #MineScript %s matches 0 run execute store result storage %s:minescript %s.value[-1] int 1 run scoreboard players get #MineScript %s",
			count, index.Register(), done, l.pack, tempList, value.Register())); err != nil {
			return err
		}
	}
	if err := l.addCmd(fmt.Sprintf("execute if score #MineScript %s = #MineScript %s if score #MineScript %s matches 0 run scoreboard players set #MineScript %s 1",
		count, index.Register(), done, done)); err != nil {
		return err
	}
	if err := l.addCmd(fmt.Sprintf("data remove storage %s:minescript %s.value[0]", l.pack, name)); err != nil {
		return err
	}
	if err := l.addCmd(fmt.Sprintf("scoreboard players add #MineScript %s 1", count)); err != nil {
		return err
	}
	if err := l.addCmd(fmt.Sprintf("execute unless score #MineScript %s >= #MineScript %s run function %s:%s",
		count, size, l.pack, loopName)); err != nil {
		return err
	}
	l.endLoop()

	if err := l.addCmd(fmt.Sprintf("data modify storage %s:minescript %s.value set from storage %s:minescript %s.value",
		l.pack, name, l.pack, tempList)); err != nil {
		return err
	}

	l.regs.markUnused(tempList)
	l.regs.markUnused(count)
	l.regs.markUnused(size)
	l.regs.markUnused(done)
	return nil
}

func (l *Lowering) lowerIncDec(n *ast.IncDec, want bool) (typesystem.Value, error) {
	var sym *symbols.Symbol
	var err error
	if n.CompileTime {
		return typesystem.Value{}, l.errAt(n.Token, diagnostics.ErrNotCompileTime, "increment/decrement is not supported on compile-time names")
	}
	sym, err = l.syms.Lookup(n.Name)
	if err != nil {
		return typesystem.Value{}, l.errAt(n.Token, diagnostics.ErrUndeclaredVariable, "%v", err)
	}
	dest := l.registerName(sym)

	delta := "add"
	if n.Form == ast.PreDec || n.Form == ast.PostDec {
		delta = "remove"
	}

	switch n.Form {
	case ast.PreInc, ast.PreDec:
		if err := l.addCmd(fmt.Sprintf("scoreboard players %s #MineScript %s 1", delta, dest)); err != nil {
			return typesystem.Value{}, err
		}
		return typesystem.NewRegister(sym.Type, dest), nil
	default: // PostInc, PostDec
		var captured string
		if want {
			captured = l.getTempVar(sym.Type)
			if err := l.setVar(captured, typesystem.NewRegister(sym.Type, dest)); err != nil {
				return typesystem.Value{}, err
			}
		}
		if err := l.addCmd(fmt.Sprintf("scoreboard players %s #MineScript %s 1", delta, dest)); err != nil {
			return typesystem.Value{}, err
		}
		if !want {
			return typesystem.Value{}, nil
		}
		return typesystem.NewRegister(sym.Type, captured), nil
	}
}

func (l *Lowering) lowerBinOp(n *ast.BinOp, want bool) (typesystem.Value, error) {
	left, err := l.lowerExpr(n.Left, true)
	if err != nil {
		return typesystem.Value{}, err
	}
	right, err := l.lowerExpr(n.Right, true)
	if err != nil {
		return typesystem.Value{}, err
	}

	if n.Op.IsComparison() {
		v, err := l.compareValues(n.Op, left, right)
		if err != nil {
			return typesystem.Value{}, l.errAt(n.Token, diagnostics.ErrTypeMismatch, "%v", err)
		}
		if !want {
			l.markUnusedIfTemp(v)
			return typesystem.Value{}, nil
		}
		return v, nil
	}

	v, err := l.operateValues(n.Op, left, right)
	if err != nil {
		return typesystem.Value{}, l.errAt(n.Token, diagnostics.ErrTypeMismatch, "%v", err)
	}
	if !want {
		l.markUnusedIfTemp(v)
		return typesystem.Value{}, nil
	}
	return v, nil
}

func (l *Lowering) compareValues(op ast.BinOpKind, a, b typesystem.Value) (typesystem.Value, error) {
	if a.Type() != b.Type() {
		return typesystem.Value{}, &typesystem.TypeMismatchError{Op: string(op), Left: a.Type(), Right: b.Type(), HasRight: true}
	}

	if a.IsConst() && b.IsConst() {
		result, err := typesystem.Compare(string(op), a, b)
		if err != nil {
			return typesystem.Value{}, err
		}
		if result {
			return typesystem.NewIntLiteral(1), nil
		}
		return typesystem.NewIntLiteral(0), nil
	}

	if !a.IsConst() && b.IsConst() {
		return l.compareRegLit(op, a, b)
	}

	if a.IsConst() && !b.IsConst() {
		return l.compareValues(mirrorOp(op), b, a)
	}

	return l.compareRegReg(op, a, b)
}

func mirrorOp(op ast.BinOpKind) ast.BinOpKind {
	switch op {
	case ast.OpGe:
		return ast.OpLe
	case ast.OpLe:
		return ast.OpGe
	case ast.OpGt:
		return ast.OpLt
	case ast.OpLt:
		return ast.OpGt
	default:
		return op
	}
}

func (l *Lowering) compareRegLit(op ast.BinOpKind, reg, lit typesystem.Value) (typesystem.Value, error) {
	temp := l.getTempVar(typesystem.Int)
	if err := l.setVar(temp, typesystem.NewIntLiteral(0)); err != nil {
		return typesystem.Value{}, err
	}
	n := scalarOf(lit)
	var cmd string
	switch op {
	case ast.OpEq:
		cmd = fmt.Sprintf("execute if score #MineScript %s matches %d run scoreboard players set #MineScript %s 1", reg.Register(), n, temp)
	case ast.OpNeq:
		cmd = fmt.Sprintf("execute unless score #MineScript %s matches %d run scoreboard players set #MineScript %s 1", reg.Register(), n, temp)
	case ast.OpLe:
		cmd = fmt.Sprintf("execute if score #MineScript %s matches ..%d run scoreboard players set #MineScript %s 1", reg.Register(), n, temp)
	case ast.OpGe:
		cmd = fmt.Sprintf("execute if score #MineScript %s matches %d.. run scoreboard players set #MineScript %s 1", reg.Register(), n, temp)
	case ast.OpLt:
		cmd = fmt.Sprintf("execute unless score #MineScript %s matches %d.. run scoreboard players set #MineScript %s 1", reg.Register(), n, temp)
	case ast.OpGt:
		cmd = fmt.Sprintf("execute unless score #MineScript %s matches ..%d run scoreboard players set #MineScript %s 1", reg.Register(), n, temp)
	}
	if err := l.addCmd(cmd); err != nil {
		return typesystem.Value{}, err
	}
	l.regs.markUnused(reg.Register())
	return typesystem.NewRegister(typesystem.Int, temp), nil
}

func (l *Lowering) compareRegReg(op ast.BinOpKind, a, b typesystem.Value) (typesystem.Value, error) {
	temp := l.getTempVar(typesystem.Int)
	if err := l.setVar(temp, typesystem.NewIntLiteral(0)); err != nil {
		return typesystem.Value{}, err
	}
	var cmd string
	switch op {
	case ast.OpEq:
		cmd = fmt.Sprintf("execute if score #MineScript %s = #MineScript %s run scoreboard players set #MineScript %s 1", a.Register(), b.Register(), temp)
	case ast.OpNeq:
		cmd = fmt.Sprintf("execute unless score #MineScript %s = #MineScript %s run scoreboard players set #MineScript %s 1", a.Register(), b.Register(), temp)
	default:
		cmd = fmt.Sprintf("execute if score #MineScript %s %s #MineScript %s run scoreboard players set #MineScript %s 1", a.Register(), string(op), b.Register(), temp)
	}
	if err := l.addCmd(cmd); err != nil {
		return typesystem.Value{}, err
	}
	l.regs.markUnused(a.Register())
	l.regs.markUnused(b.Register())
	return typesystem.NewRegister(typesystem.Int, temp), nil
}

func (l *Lowering) operateValues(op ast.BinOpKind, a, b typesystem.Value) (typesystem.Value, error) {
	if a.Type() != b.Type() {
		return typesystem.Value{}, &typesystem.TypeMismatchError{Op: string(op), Left: a.Type(), Right: b.Type(), HasRight: true}
	}
	if a.IsConst() && b.IsConst() {
		return typesystem.Operate(string(op), a, b)
	}

	resultType := a.Type()

	if !a.IsConst() && b.IsConst() {
		return l.operateRegLit(op, a, b, resultType)
	}
	if a.IsConst() && !b.IsConst() {
		if op == ast.OpAdd || op == ast.OpMul {
			return l.operateRegLit(op, b, a, resultType)
		}
		return l.operateLitReg(op, a, b, resultType)
	}
	return l.operateRegReg(op, a, b, resultType)
}

func (l *Lowering) operateRegLit(op ast.BinOpKind, reg, lit typesystem.Value, t typesystem.Type) (typesystem.Value, error) {
	temp := l.getTempVar(t)
	switch op {
	case ast.OpAdd:
		if err := l.setVar(temp, reg); err != nil {
			return typesystem.Value{}, err
		}
		if err := l.addCmd(fmt.Sprintf("scoreboard players add #MineScript %s %d", temp, scalarOf(lit))); err != nil {
			return typesystem.Value{}, err
		}
	case ast.OpSub:
		if err := l.setVar(temp, reg); err != nil {
			return typesystem.Value{}, err
		}
		if err := l.addCmd(fmt.Sprintf("scoreboard players remove #MineScript %s %d", temp, scalarOf(lit))); err != nil {
			return typesystem.Value{}, err
		}
	case ast.OpMul:
		if err := l.setVar(temp, lit); err != nil {
			return typesystem.Value{}, err
		}
		if err := l.addCmd(fmt.Sprintf("scoreboard players operation #MineScript %s *= #MineScript %s", temp, reg.Register())); err != nil {
			return typesystem.Value{}, err
		}
	case ast.OpDiv, ast.OpMod:
		scratch := l.getTempVar(t)
		if err := l.setVar(scratch, lit); err != nil {
			return typesystem.Value{}, err
		}
		if err := l.setVar(temp, reg); err != nil {
			return typesystem.Value{}, err
		}
		sym := "/="
		if op == ast.OpMod {
			sym = "%="
		}
		if err := l.addCmd(fmt.Sprintf("scoreboard players operation #MineScript %s %s #MineScript %s", temp, sym, scratch)); err != nil {
			return typesystem.Value{}, err
		}
		l.regs.markUnused(scratch)
	}
	l.regs.markUnused(reg.Register())
	return typesystem.NewRegister(t, temp), nil
}

func (l *Lowering) operateLitReg(op ast.BinOpKind, lit, reg typesystem.Value, t typesystem.Type) (typesystem.Value, error) {
	temp := l.getTempVar(t)
	switch op {
	case ast.OpSub:
		if err := l.setVar(temp, lit); err != nil {
			return typesystem.Value{}, err
		}
		if err := l.addCmd(fmt.Sprintf("scoreboard players operation #MineScript %s -= #MineScript %s", temp, reg.Register())); err != nil {
			return typesystem.Value{}, err
		}
	case ast.OpDiv, ast.OpMod:
		if err := l.setVar(temp, lit); err != nil {
			return typesystem.Value{}, err
		}
		sym := "/="
		if op == ast.OpMod {
			sym = "%="
		}
		if err := l.addCmd(fmt.Sprintf("scoreboard players operation #MineScript %s %s #MineScript %s", temp, sym, reg.Register())); err != nil {
			return typesystem.Value{}, err
		}
	}
	l.regs.markUnused(reg.Register())
	return typesystem.NewRegister(t, temp), nil
}

func (l *Lowering) operateRegReg(op ast.BinOpKind, a, b typesystem.Value, t typesystem.Type) (typesystem.Value, error) {
	temp := l.getTempVar(t)
	if err := l.setVar(temp, a); err != nil {
		return typesystem.Value{}, err
	}
	if err := l.addCmd(fmt.Sprintf("scoreboard players operation #MineScript %s %s= #MineScript %s", temp, string(op), b.Register())); err != nil {
		return typesystem.Value{}, err
	}
	l.regs.markUnused(a.Register())
	l.regs.markUnused(b.Register())
	return typesystem.NewRegister(t, temp), nil
}

func (l *Lowering) lowerCast(n *ast.Cast) (typesystem.Value, error) {
	v, err := l.lowerExpr(n.Inner, true)
	if err != nil {
		return typesystem.Value{}, err
	}
	to := typesystem.FromAST(n.To)

	if v.IsConst() {
		result, err := typesystem.Cast(v, to)
		if err != nil {
			return typesystem.Value{}, l.errAt(n.Token, diagnostics.ErrTypeMismatch, "%v", err)
		}
		return result, nil
	}

	if v.Type() == typesystem.Char && to == typesystem.Int {
		temp := l.getTempVar(typesystem.Int)
		if err := l.setVar(temp, v); err != nil {
			return typesystem.Value{}, err
		}
		return typesystem.NewRegister(typesystem.Int, temp), nil
	}
	if v.Type() == typesystem.Int && to == typesystem.Char {
		scratch := l.getTempVar(typesystem.Int)
		if err := l.setVar(scratch, typesystem.NewIntLiteral(256)); err != nil {
			return typesystem.Value{}, err
		}
		temp := l.getTempVar(typesystem.Char)
		if err := l.setVar(temp, v); err != nil {
			return typesystem.Value{}, err
		}
		if err := l.addCmd(fmt.Sprintf("scoreboard players operation #MineScript %s %%= #MineScript %s", temp, scratch)); err != nil {
			return typesystem.Value{}, err
		}
		l.regs.markUnused(scratch)
		return typesystem.NewRegister(typesystem.Char, temp), nil
	}
	return typesystem.Value{}, l.errAt(n.Token, diagnostics.ErrTypeMismatch, "cast from %s to %s is not supported", v.Type(), to)
}

func (l *Lowering) lowerCall(n *ast.Call) (typesystem.Value, error) {
	sig, ok := l.sigs.Lookup(n.Name)
	if !ok {
		return typesystem.Value{}, l.errAt(n.Token, diagnostics.ErrUndefinedFunction, "%v", &UndefinedFunctionError{Name: n.Name})
	}
	if len(n.Args) != len(sig.Params) {
		return typesystem.Value{}, l.errAt(n.Token, diagnostics.ErrBuiltinArity, "%v",
			&ArgumentCountError{Function: n.Name, Want: len(sig.Params), Got: len(n.Args)})
	}
	for i, argExpr := range n.Args {
		arg, err := l.lowerExpr(argExpr, true)
		if err != nil {
			return typesystem.Value{}, err
		}
		want := typesystem.FromAST(sig.Params[i].Type)
		if arg.Type() != want {
			return typesystem.Value{}, l.errAt(argExpr.GetToken(), diagnostics.ErrTypeMismatch,
				"argument %q is of type %s, but %s was provided", sig.Params[i].Name, want, arg.Type())
		}
		if err := l.setVar(sig.Params[i].Name+"+local", arg); err != nil {
			return typesystem.Value{}, err
		}
		l.markUnusedIfTemp(arg)
	}
	if err := l.addCmd(fmt.Sprintf("function %s:%s", l.pack, n.Name)); err != nil {
		return typesystem.Value{}, err
	}
	if sig.Return == ast.TVoid {
		return typesystem.Value{}, nil
	}
	return typesystem.NewRegister(typesystem.FromAST(sig.Return), sig.ReturnSlot), nil
}
