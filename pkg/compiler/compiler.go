// Package compiler is MineScript's embeddable compile entry point,
// separating the lex/parse/analyze/lower pipeline from the CLI frontend —
// the same split funvibe-funxy draws between pkg/embed and cmd/funxy.
package compiler

import (
	"fmt"

	"github.com/ArmindoFlores/MineScript2/internal/backend"
	"github.com/ArmindoFlores/MineScript2/internal/analyzer"
	"github.com/ArmindoFlores/MineScript2/internal/codegen"
	"github.com/ArmindoFlores/MineScript2/internal/diagnostics"
	"github.com/ArmindoFlores/MineScript2/internal/parser"
	"github.com/ArmindoFlores/MineScript2/internal/pipeline"
)

// Options configures a single Compile call.
type Options struct {
	// FilePath is used only to tag diagnostics; `<pack>:minescript` storage
	// references use the packName argument of Compile.
	FilePath string
}

// Result is everything a successful compile produces, ready for
// internal/pack to turn into a datapack.
type Result struct {
	Output *codegen.Output
}

// Compile lexes, parses, and lowers source into Minecraft function
// commands, without touching the filesystem. On failure it returns a nil
// Result and the diagnostics explaining why; on success it returns the
// Result together with any non-error diagnostics (warnings) recorded.
func Compile(source, packName string, opts Options) (*Result, []*diagnostics.DiagnosticError, error) {
	filePath := opts.FilePath
	if filePath == "" {
		filePath = "<source>"
	}

	ctx := pipeline.NewContext(source, filePath, packName)

	p := pipeline.New(
		&parser.LexParseProcessor{},
		&analyzer.CollectSignaturesProcessor{},
		backend.NewLowerProcessor(backend.NewCommand()),
	)
	ctx = p.Run(ctx)

	if ctx.HasErrors() {
		return nil, ctx.Diagnostics.All(), nil
	}

	output, ok := ctx.Output.(*codegen.Output)
	if !ok {
		return nil, nil, fmt.Errorf("internal error: pipeline produced no lowered output")
	}

	return &Result{Output: output}, ctx.Diagnostics.All(), nil
}
