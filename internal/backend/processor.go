package backend

import "github.com/ArmindoFlores/MineScript2/internal/pipeline"

// LowerProcessor runs a Backend as the pipeline's final stage, following
// funvibe-funxy/internal/backend/processor.go's ExecutionProcessor shape.
type LowerProcessor struct {
	Backend Backend
}

// NewLowerProcessor wraps b as a pipeline.Processor.
func NewLowerProcessor(b Backend) *LowerProcessor {
	return &LowerProcessor{Backend: b}
}

func (lp *LowerProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.AstRoot == nil || ctx.HasErrors() {
		return ctx
	}
	output, err := lp.Backend.Run(ctx)
	if err != nil {
		// Run only returns an error for conditions already reflected in
		// ctx.Diagnostics (missing AST, prior-stage errors) or a genuine
		// internal bug; either way there's nothing more to record here.
		return ctx
	}
	ctx.Output = output
	return ctx
}

func (lp *LowerProcessor) Name() string {
	return "Lower"
}
