// Package codegen is the lowering pass: expression/statement lowering,
// the temp-register allocator, and the prefix/guard stack (spec.md §4.3,
// §4.4, §4.6). Command emission is transliterated from
// original_source/Visitor.py; the dispatch shape (a type switch calling
// one method per node kind from a central Lower entry point) follows
// funvibe-funxy/internal/backend/treewalk.go's per-node-kind method style.
package codegen

import (
	"github.com/ArmindoFlores/MineScript2/internal/ast"
	"github.com/ArmindoFlores/MineScript2/internal/typesystem"
)

// FunctionInfo is one entry in the Output.Functions table (spec.md §6).
type FunctionInfo struct {
	Name       string
	Args       []ast.Param
	Return     ast.ValueType
	ReturnSlot string // "" for void
	BreakFlag  string
	Commands   []string
}

// Output is the set of tables handed to internal/pack (spec.md §6).
type Output struct {
	GlobalTypes map[string]typesystem.Type
	LocalTypes  map[string]map[string]typesystem.Type
	Functions   map[string]*FunctionInfo
	Loops       map[string][]string

	// FunctionOrder and LoopOrder preserve emission order for deterministic
	// packaging output (spec.md §8: "recompiling identical input twice
	// produces byte-identical output tables").
	FunctionOrder []string
	LoopOrder     []string
}

// NewOutput creates an empty Output ready for the lowering pass to fill.
func NewOutput() *Output {
	return &Output{
		GlobalTypes: make(map[string]typesystem.Type),
		LocalTypes:  make(map[string]map[string]typesystem.Type),
		Functions:   make(map[string]*FunctionInfo),
		Loops:       make(map[string][]string),
	}
}

func (o *Output) declareFunction(info *FunctionInfo) {
	if _, exists := o.Functions[info.Name]; !exists {
		o.FunctionOrder = append(o.FunctionOrder, info.Name)
	}
	o.Functions[info.Name] = info
	if _, ok := o.LocalTypes[info.Name]; !ok {
		o.LocalTypes[info.Name] = make(map[string]typesystem.Type)
	}
}

func (o *Output) newLoop(name string) {
	o.Loops[name] = nil
	o.LoopOrder = append(o.LoopOrder, name)
}

func (o *Output) appendTo(sink string, cmd string) {
	if fn, ok := o.Functions[sink]; ok {
		fn.Commands = append(fn.Commands, cmd)
		return
	}
	o.Loops[sink] = append(o.Loops[sink], cmd)
}
