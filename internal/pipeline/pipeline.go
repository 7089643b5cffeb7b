// Package pipeline threads a single compilation's state through a sequence
// of stages. It is grounded on funvibe-funxy/internal/pipeline's
// Pipeline/Processor/PipelineContext shape (the type itself is not present
// in the retrieved pack, only its call sites across internal/parser,
// internal/analyzer, internal/backend; this reconstructs it from that
// usage): a Context struct threaded by pointer through Processor.Process
// calls. The Pipeline itself runs every stage; the stages after LexParse
// return early once ctx.HasErrors() is true, so no diagnostics are added
// after the first stage that records an error.
package pipeline

import (
	"github.com/ArmindoFlores/MineScript2/internal/ast"
	"github.com/ArmindoFlores/MineScript2/internal/diagnostics"
	"github.com/ArmindoFlores/MineScript2/internal/symbols"
)

// Context carries one compilation's state between pipeline stages.
type Context struct {
	SourceCode string
	FilePath   string
	PackName   string

	AstRoot *ast.Program
	Symbols *symbols.Table

	Diagnostics *diagnostics.Sink

	// Sigs is populated by the CollectSignatures stage (an *analyzer.Table);
	// kept as interface{} here so this package never has to import
	// internal/analyzer, which itself imports internal/pipeline.
	Sigs interface{}

	// Output is populated by the Lower stage (a *codegen.Output); nil until
	// then, kept as interface{} for the same reason.
	Output interface{}
}

// NewContext creates a Context ready for the LexParse stage.
func NewContext(source, filePath, packName string) *Context {
	return &Context{
		SourceCode:  source,
		FilePath:    filePath,
		PackName:    packName,
		Symbols:     symbols.New(),
		Diagnostics: diagnostics.NewSink(),
	}
}

// HasErrors reports whether any stage so far has recorded an error.
func (c *Context) HasErrors() bool {
	return c.Diagnostics.HasErrors()
}

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *Context) *Context
	Name() string
}

// Pipeline runs an ordered sequence of Processors over one Context.
type Pipeline struct {
	processors []Processor
}

// New builds a Pipeline from the given stages, run in order.
func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes every stage in order and does not itself stop when a stage
// records errors. Each later stage is expected to no-op cheaply once
// ctx.HasErrors() is true, so the Sink ends up holding the diagnostics of
// the stages up to and including the first one that failed.
func (p *Pipeline) Run(initial *Context) *Context {
	ctx := initial
	for _, proc := range p.processors {
		ctx = proc.Process(ctx)
	}
	return ctx
}
