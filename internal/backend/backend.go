// Package backend decouples "what walks the lowered tree" from "what
// orchestrates the walk", mirroring funvibe-funxy/internal/backend/backend.go's
// Backend interface. MineScript only ever ships one real backend — there is
// no VM/tree-walk choice to make, a program only ever executes inside the
// game — but the seam costs nothing and is where a future alternate target
// (e.g. a disassembler backend) would plug in.
package backend

import (
	"fmt"

	"github.com/ArmindoFlores/MineScript2/internal/analyzer"
	"github.com/ArmindoFlores/MineScript2/internal/codegen"
	"github.com/ArmindoFlores/MineScript2/internal/pipeline"
)

// Backend lowers a pipeline Context's AST into a codegen.Output.
type Backend interface {
	Run(ctx *pipeline.Context) (*codegen.Output, error)
	Name() string
}

// CommandBackend lowers MineScript source to Minecraft `/function` command
// bundles — the only Backend this compiler ships.
type CommandBackend struct{}

// NewCommand creates a CommandBackend.
func NewCommand() *CommandBackend {
	return &CommandBackend{}
}

// Run performs the lowering pass (internal/codegen) over ctx.AstRoot, using
// the signature table the CollectSignatures stage (internal/analyzer) left
// in ctx.Sigs; it does not run the mapping pass itself.
func (b *CommandBackend) Run(ctx *pipeline.Context) (*codegen.Output, error) {
	if ctx.AstRoot == nil {
		return nil, fmt.Errorf("no AST to lower")
	}
	if ctx.HasErrors() {
		return nil, fmt.Errorf("aborting lowering: %d diagnostic(s) already recorded", len(ctx.Diagnostics.All()))
	}

	sigs, ok := ctx.Sigs.(*analyzer.Table)
	if !ok {
		return nil, fmt.Errorf("no function signature table: CollectSignatures stage must run before Lower")
	}

	lowering := codegen.New(ctx.PackName, ctx.FilePath, ctx.Symbols, sigs, ctx.Diagnostics)
	output, err := lowering.Lower(ctx.AstRoot)
	if err != nil {
		return nil, err
	}
	return output, nil
}

// Name returns the backend's display name.
func (b *CommandBackend) Name() string {
	return "command"
}
