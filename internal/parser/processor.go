package parser

import (
	"github.com/ArmindoFlores/MineScript2/internal/lexer"
	"github.com/ArmindoFlores/MineScript2/internal/pipeline"
)

// LexParseProcessor is the pipeline.Processor that turns ctx.SourceCode
// into ctx.AstRoot, following funvibe-funxy/internal/parser/processor.go's
// ParserProcessor shape — combined with the lexing step since MineScript's
// Lexer needs nothing beyond the raw source string.
type LexParseProcessor struct{}

func (lp *LexParseProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	lex := lexer.New(ctx.SourceCode)
	p := New(lex, ctx.FilePath, ctx.Diagnostics)
	ctx.AstRoot = p.ParseProgram()
	return ctx
}

func (lp *LexParseProcessor) Name() string {
	return "LexParse"
}
