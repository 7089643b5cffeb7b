package analyzer

import "github.com/ArmindoFlores/MineScript2/internal/pipeline"

// CollectSignaturesProcessor runs the mapping pass, following
// funvibe-funxy/internal/analyzer/processor.go's SemanticAnalyzerProcessor
// shape: a thin pipeline.Processor wrapper around the package's real
// entry point, so internal/pipeline never has to know analyzer internals.
type CollectSignaturesProcessor struct{}

func (csp *CollectSignaturesProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.AstRoot == nil || ctx.HasErrors() {
		return ctx
	}
	sigs, err := Collect(ctx.AstRoot, ctx.Symbols, ctx.Diagnostics, ctx.FilePath)
	if err != nil {
		// Collect already recorded a diagnostic for err; nothing further to do.
		return ctx
	}
	ctx.Sigs = sigs
	return ctx
}

func (csp *CollectSignaturesProcessor) Name() string {
	return "CollectSignatures"
}
