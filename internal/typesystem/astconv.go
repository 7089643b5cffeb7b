package typesystem

import "github.com/ArmindoFlores/MineScript2/internal/ast"

// FromAST converts a surface-syntax type spelling to the runtime Type it
// denotes. Callers must not pass ast.TVoid: void only ever appears as a
// function return type, never as a Value's type.
func FromAST(t ast.ValueType) Type {
	switch t {
	case ast.TChar:
		return Char
	case ast.TIntArr:
		return IntArray
	case ast.TCharArr:
		return CharArray
	default:
		return Int
	}
}

// ToAST converts a runtime Type back to its surface-syntax spelling, used
// when rendering diagnostic messages.
func (t Type) ToAST() ast.ValueType {
	switch t {
	case Char:
		return ast.TChar
	case IntArray:
		return ast.TIntArr
	case CharArray:
		return ast.TCharArr
	default:
		return ast.TInt
	}
}
