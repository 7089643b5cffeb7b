// Package parser turns a token.Token stream into the internal/ast tree
// consumed by internal/analyzer and internal/codegen. The curToken/
// peekToken/nextToken plumbing and the diagnostics-sink error reporting
// follow funvibe-funxy/internal/parser's shape, but MineScript's grammar
// (see SPEC_FULL.md) is small and already stratified by precedence level,
// so expressions are parsed with one function per grammar level rather
// than funxy's general prefix/infix function-table Pratt machinery — there
// is no extensible operator set here for a table to earn its keep.
package parser

import (
	"strconv"
	"unicode/utf8"

	"github.com/ArmindoFlores/MineScript2/internal/ast"
	"github.com/ArmindoFlores/MineScript2/internal/diagnostics"
	"github.com/ArmindoFlores/MineScript2/internal/lexer"
	"github.com/ArmindoFlores/MineScript2/internal/token"
)

// Parser is a hand-written recursive-descent parser over a single file's
// token stream.
type Parser struct {
	lex  *lexer.Lexer
	file string

	curToken  token.Token
	peekToken token.Token

	diags *diagnostics.Sink
}

// New creates a Parser reading from lex, reporting syntax errors tagged
// with file into diags.
func New(lex *lexer.Lexer, file string, diags *diagnostics.Sink) *Parser {
	p := &Parser{lex: lex, file: file, diags: diags}
	p.advance()
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.curToken = p.peekToken
	p.peekToken = p.lex.NextToken()
}

// expect consumes curToken if it has type tt, otherwise records a syntax
// diagnostic and leaves curToken unchanged.
func (p *Parser) expect(tt token.Type) bool {
	if p.curToken.Type == tt {
		p.advance()
		return true
	}
	p.errorf(p.curToken, "expected %q, got %q", tt.String(), p.curToken.Lexeme)
	return false
}

func (p *Parser) errorf(tok token.Token, format string, args ...interface{}) {
	p.diags.Add(diagnostics.New(diagnostics.ErrSyntax, diagnostics.Error, p.file, tok.Pos(), format, args...))
}

// ParseProgram parses the whole token stream into a flat list of function
// declarations (spec.md §6: Program), recovering from a malformed
// declaration by skipping to the next one that starts with a type keyword.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{File: p.file}
	for p.curToken.Type != token.EOF {
		fn := p.parseFunctionDecl()
		if fn == nil {
			p.synchronizeTopLevel()
			continue
		}
		prog.Functions = append(prog.Functions, fn)
	}
	return prog
}

func (p *Parser) synchronizeTopLevel() {
	for p.curToken.Type != token.EOF {
		switch p.curToken.Type {
		case token.INT, token.CHARTYPE, token.VOID:
			return
		}
		p.advance()
	}
}

func (p *Parser) synchronizeStatement() {
	for p.curToken.Type != token.SEMICOLON && p.curToken.Type != token.RBRACE && p.curToken.Type != token.EOF {
		p.advance()
	}
	if p.curToken.Type == token.SEMICOLON {
		p.advance()
	}
}

// parseValueType parses a surface type spelling: "int"|"char"|"void",
// optionally followed by "[]". On entry curToken is the type keyword; on
// success curToken is left on the first token after the type.
func (p *Parser) parseValueType() (ast.ValueType, bool) {
	var base ast.ValueType
	switch p.curToken.Type {
	case token.INT:
		base = ast.TInt
	case token.CHARTYPE:
		base = ast.TChar
	case token.VOID:
		base = ast.TVoid
	default:
		p.errorf(p.curToken, "expected a type, got %q", p.curToken.Lexeme)
		return ast.TNotFound, false
	}
	p.advance()

	if p.curToken.Type == token.LBRACKET {
		p.advance()
		if !p.expect(token.RBRACKET) {
			return ast.TNotFound, false
		}
		if base == ast.TVoid {
			p.errorf(p.curToken, "void cannot be an array type")
			return ast.TNotFound, false
		}
		base = base.Array()
	}
	return base, true
}

func (p *Parser) parseFunctionDecl() *ast.FunctionDecl {
	startTok := p.curToken
	ret, ok := p.parseValueType()
	if !ok {
		return nil
	}
	if p.curToken.Type != token.IDENT {
		p.errorf(p.curToken, "expected function name, got %q", p.curToken.Lexeme)
		return nil
	}
	name := p.curToken.Lexeme
	p.advance()

	if !p.expect(token.LPAREN) {
		return nil
	}
	params, ok := p.parseParams()
	if !ok {
		return nil
	}

	braceTok := p.curToken
	if !p.expect(token.LBRACE) {
		return nil
	}
	body := p.parseBlock(braceTok)
	if body == nil {
		return nil
	}

	return &ast.FunctionDecl{Token: startTok, Return: ret, Name: name, Params: params, Body: body}
}

// parseParams assumes the opening "(" has already been consumed and
// consumes the closing ")" itself.
func (p *Parser) parseParams() ([]ast.Param, bool) {
	var params []ast.Param
	if p.curToken.Type == token.RPAREN {
		p.advance()
		return params, true
	}
	for {
		t, ok := p.parseValueType()
		if !ok {
			return nil, false
		}
		if p.curToken.Type != token.IDENT {
			p.errorf(p.curToken, "expected parameter name, got %q", p.curToken.Lexeme)
			return nil, false
		}
		params = append(params, ast.Param{Type: t, Name: p.curToken.Lexeme})
		p.advance()
		if p.curToken.Type == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	if !p.expect(token.RPAREN) {
		return nil, false
	}
	return params, true
}

// parseBlock assumes the opening "{" has already been consumed (braceTok
// is that token, kept for the node's position) and consumes the closing
// "}" itself.
func (p *Parser) parseBlock(braceTok token.Token) *ast.StatBlock {
	block := &ast.StatBlock{Token: braceTok}
	for p.curToken.Type != token.RBRACE && p.curToken.Type != token.EOF {
		stat := p.parseStatement()
		if stat == nil {
			p.synchronizeStatement()
			continue
		}
		block.Stats = append(block.Stats, stat)
	}
	if !p.expect(token.RBRACE) {
		return nil
	}
	return block
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.INT, token.CHARTYPE:
		return p.parseVarDeclStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.BREAK:
		return p.parseBreakStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.PRINT:
		return p.parsePrintStatement()
	case token.COMMAND:
		return p.parseMcCommandStatement()
	case token.LBRACE:
		braceTok := p.curToken
		p.advance()
		return p.parseBlock(braceTok)
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseVarDeclStatement() ast.Statement {
	startTok := p.curToken
	t, ok := p.parseValueType()
	if !ok {
		return nil
	}
	decl := &ast.VarDecl{Token: startTok, Type: t}
	for {
		va := p.parseVarAssign()
		if va == nil {
			return nil
		}
		decl.Vars = append(decl.Vars, va)
		if p.curToken.Type == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	if !p.expect(token.SEMICOLON) {
		return nil
	}
	return decl
}

// parseVarAssign parses "[ '$' ] IDENT [ '[' [ expr ] ']' ] [ '=' expr ]",
// used both inside a VarDecl's comma list and (via parseAssignment) as a
// standalone assignment's left-hand side.
func (p *Parser) parseVarAssign() *ast.VarAssign {
	tok := p.curToken
	compileTime := false
	if p.curToken.Type == token.DOLLAR {
		compileTime = true
		p.advance()
	}
	if p.curToken.Type != token.IDENT {
		p.errorf(p.curToken, "expected identifier, got %q", p.curToken.Lexeme)
		return nil
	}
	name := p.curToken.Lexeme
	p.advance()

	va := &ast.VarAssign{Token: tok, Name: name, CompileTime: compileTime}

	if p.curToken.Type == token.LBRACKET {
		p.advance()
		if p.curToken.Type == token.RBRACKET {
			va.ArrayMarker = true
			p.advance()
		} else {
			idx := p.parseExpression()
			if idx == nil {
				return nil
			}
			va.Index = idx
			if !p.expect(token.RBRACKET) {
				return nil
			}
		}
	}

	if p.curToken.Type == token.ASSIGN {
		p.advance()
		val := p.parseExpression()
		if val == nil {
			return nil
		}
		va.Value = val
	}

	return va
}

func (p *Parser) parseExprStatement() ast.Statement {
	tok := p.curToken
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	if !p.expect(token.SEMICOLON) {
		return nil
	}
	if va, ok := expr.(*ast.VarAssign); ok {
		return va
	}
	return &ast.Ignore{Token: tok, Expr: expr}
}

func (p *Parser) parseIfStatement() ast.Statement {
	tok := p.curToken
	p.advance()
	if !p.expect(token.LPAREN) {
		return nil
	}
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	if !p.expect(token.RPAREN) {
		return nil
	}
	then := p.parseStatement()
	if then == nil {
		return nil
	}
	var elseStat ast.Statement
	if p.curToken.Type == token.ELSE {
		p.advance()
		elseStat = p.parseStatement()
		if elseStat == nil {
			return nil
		}
	}
	return &ast.If{Token: tok, Condition: cond, Then: then, Else: elseStat}
}

func (p *Parser) parseForStatement() ast.Statement {
	tok := p.curToken
	p.advance()
	if !p.expect(token.LPAREN) {
		return nil
	}

	var init ast.Statement
	if p.curToken.Type == token.INT || p.curToken.Type == token.CHARTYPE {
		init = p.parseVarDeclStatement()
		if init == nil {
			return nil
		}
	} else {
		initTok := p.curToken
		expr := p.parseExpression()
		if expr == nil {
			return nil
		}
		if !p.expect(token.SEMICOLON) {
			return nil
		}
		if va, ok := expr.(*ast.VarAssign); ok {
			init = va
		} else {
			init = &ast.Ignore{Token: initTok, Expr: expr}
		}
	}

	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	if !p.expect(token.SEMICOLON) {
		return nil
	}

	update := p.parseExpression()
	if update == nil {
		return nil
	}
	if !p.expect(token.RPAREN) {
		return nil
	}

	body := p.parseStatement()
	if body == nil {
		return nil
	}

	return &ast.For{Token: tok, Init: init, Condition: cond, Update: update, Body: body}
}

func (p *Parser) parseWhileStatement() ast.Statement {
	tok := p.curToken
	p.advance()
	if !p.expect(token.LPAREN) {
		return nil
	}
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	if !p.expect(token.RPAREN) {
		return nil
	}
	body := p.parseStatement()
	if body == nil {
		return nil
	}
	return &ast.While{Token: tok, Condition: cond, Body: body}
}

func (p *Parser) parseBreakStatement() ast.Statement {
	tok := p.curToken
	p.advance()
	if !p.expect(token.SEMICOLON) {
		return nil
	}
	return &ast.Break{Token: tok}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	tok := p.curToken
	p.advance()
	if p.curToken.Type == token.SEMICOLON {
		p.advance()
		return &ast.Return{Token: tok}
	}
	val := p.parseExpression()
	if val == nil {
		return nil
	}
	if !p.expect(token.SEMICOLON) {
		return nil
	}
	return &ast.Return{Token: tok, Value: val}
}

func (p *Parser) parsePrintStatement() ast.Statement {
	tok := p.curToken
	p.advance()
	if !p.expect(token.LPAREN) {
		return nil
	}
	var args []ast.Expression
	if p.curToken.Type != token.RPAREN {
		for {
			e := p.parseExpression()
			if e == nil {
				return nil
			}
			args = append(args, e)
			if p.curToken.Type == token.COMMA {
				p.advance()
				continue
			}
			break
		}
	}
	if !p.expect(token.RPAREN) {
		return nil
	}
	if !p.expect(token.SEMICOLON) {
		return nil
	}
	return &ast.Print{Token: tok, Args: args}
}

func (p *Parser) parseMcCommandStatement() ast.Statement {
	tok := p.curToken
	p.advance()
	if p.curToken.Type != token.STRING {
		p.errorf(p.curToken, "expected a string literal after 'command'")
		return nil
	}
	cmd := p.curToken.Lexeme
	p.advance()
	if !p.expect(token.SEMICOLON) {
		return nil
	}
	return &ast.McCommand{Token: tok, Command: cmd}
}

// --- Expressions, one function per grammar level (lowest to highest
// precedence): assignment, comparison, additive, multiplicative, unary,
// postfix, primary.

func (p *Parser) parseExpression() ast.Expression {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() ast.Expression {
	left := p.parseComparison()
	if left == nil {
		return nil
	}
	if p.curToken.Type != token.ASSIGN {
		return left
	}

	switch target := left.(type) {
	case *ast.Identifier:
		p.advance()
		val := p.parseAssignment()
		if val == nil {
			return nil
		}
		return &ast.VarAssign{Token: target.Token, Name: target.Name, CompileTime: target.CompileTime, Value: val}
	case *ast.VarAssign:
		if target.Value != nil {
			p.errorf(p.curToken, "invalid assignment target")
			return nil
		}
		p.advance()
		val := p.parseAssignment()
		if val == nil {
			return nil
		}
		target.Value = val
		return target
	default:
		p.errorf(p.curToken, "invalid assignment target")
		return nil
	}
}

func comparisonOp(t token.Type) (ast.BinOpKind, bool) {
	switch t {
	case token.EQ:
		return ast.OpEq, true
	case token.NEQ:
		return ast.OpNeq, true
	case token.LT:
		return ast.OpLt, true
	case token.LE:
		return ast.OpLe, true
	case token.GT:
		return ast.OpGt, true
	case token.GE:
		return ast.OpGe, true
	default:
		return "", false
	}
}

func (p *Parser) parseComparison() ast.Expression {
	left := p.parseAdditive()
	if left == nil {
		return nil
	}
	op, ok := comparisonOp(p.curToken.Type)
	if !ok {
		return left
	}
	tok := p.curToken
	p.advance()
	right := p.parseAdditive()
	if right == nil {
		return nil
	}
	return &ast.BinOp{Token: tok, Op: op, Left: left, Right: right}
}

func (p *Parser) parseAdditive() ast.Expression {
	left := p.parseMultiplicative()
	if left == nil {
		return nil
	}
	for p.curToken.Type == token.PLUS || p.curToken.Type == token.MINUS {
		op := ast.OpAdd
		if p.curToken.Type == token.MINUS {
			op = ast.OpSub
		}
		tok := p.curToken
		p.advance()
		right := p.parseMultiplicative()
		if right == nil {
			return nil
		}
		left = &ast.BinOp{Token: tok, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expression {
	left := p.parseUnary()
	if left == nil {
		return nil
	}
	for p.curToken.Type == token.STAR || p.curToken.Type == token.SLASH || p.curToken.Type == token.PERCENT {
		var op ast.BinOpKind
		switch p.curToken.Type {
		case token.STAR:
			op = ast.OpMul
		case token.SLASH:
			op = ast.OpDiv
		default:
			op = ast.OpMod
		}
		tok := p.curToken
		p.advance()
		right := p.parseUnary()
		if right == nil {
			return nil
		}
		left = &ast.BinOp{Token: tok, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expression {
	switch p.curToken.Type {
	case token.PLUSPLUS, token.MINUSMINUS:
		form := ast.PreInc
		if p.curToken.Type == token.MINUSMINUS {
			form = ast.PreDec
		}
		tok := p.curToken
		p.advance()
		compileTime := false
		if p.curToken.Type == token.DOLLAR {
			compileTime = true
			p.advance()
		}
		if p.curToken.Type != token.IDENT {
			p.errorf(p.curToken, "expected identifier after %q", tok.Lexeme)
			return nil
		}
		name := p.curToken.Lexeme
		p.advance()
		return &ast.IncDec{Token: tok, Form: form, Name: name, CompileTime: compileTime}

	case token.LPAREN:
		if p.peekToken.Type == token.INT || p.peekToken.Type == token.CHARTYPE {
			tok := p.curToken
			p.advance() // consume '('
			to, ok := p.parseValueType()
			if !ok {
				return nil
			}
			if to.IsArray() {
				p.errorf(tok, "cast target must be a scalar type")
				return nil
			}
			if !p.expect(token.RPAREN) {
				return nil
			}
			inner := p.parseUnary()
			if inner == nil {
				return nil
			}
			return &ast.Cast{Token: tok, To: to, Inner: inner}
		}
		return p.parsePostfix()

	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}
	for {
		switch p.curToken.Type {
		case token.PLUSPLUS, token.MINUSMINUS:
			ident, ok := expr.(*ast.Identifier)
			if !ok {
				p.errorf(p.curToken, "invalid operand for %q", p.curToken.Lexeme)
				return nil
			}
			form := ast.PostInc
			if p.curToken.Type == token.MINUSMINUS {
				form = ast.PostDec
			}
			tok := p.curToken
			p.advance()
			expr = &ast.IncDec{Token: tok, Form: form, Name: ident.Name, CompileTime: ident.CompileTime}

		case token.LBRACKET:
			ident, ok := expr.(*ast.Identifier)
			if !ok {
				p.errorf(p.curToken, "invalid operand for indexing")
				return nil
			}
			tok := p.curToken
			p.advance()
			idx := p.parseExpression()
			if idx == nil {
				return nil
			}
			if !p.expect(token.RBRACKET) {
				return nil
			}
			expr = &ast.VarAssign{Token: tok, Name: ident.Name, CompileTime: ident.CompileTime, Index: idx}

		case token.LPAREN:
			ident, ok := expr.(*ast.Identifier)
			if !ok || ident.CompileTime {
				p.errorf(p.curToken, "invalid operand for a call")
				return nil
			}
			tok := p.curToken
			p.advance()
			args, ok := p.parseArgs()
			if !ok {
				return nil
			}
			expr = &ast.Call{Token: tok, Name: ident.Name, Args: args}

		default:
			return expr
		}
	}
}

func (p *Parser) parseArgs() ([]ast.Expression, bool) {
	var args []ast.Expression
	if p.curToken.Type == token.RPAREN {
		p.advance()
		return args, true
	}
	for {
		e := p.parseExpression()
		if e == nil {
			return nil, false
		}
		args = append(args, e)
		if p.curToken.Type == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	if !p.expect(token.RPAREN) {
		return nil, false
	}
	return args, true
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.curToken
	switch tok.Type {
	case token.NUMBER:
		n, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			p.errorf(tok, "invalid number literal %q", tok.Lexeme)
			return nil
		}
		p.advance()
		return &ast.Literal{Token: tok, Kind: ast.LitNumber, Num: n}

	case token.CHAR:
		r, _ := utf8.DecodeRuneInString(tok.Lexeme)
		p.advance()
		return &ast.Literal{Token: tok, Kind: ast.LitChar, Ch: int64(r)}

	case token.STRING:
		p.advance()
		return &ast.Literal{Token: tok, Kind: ast.LitString, Str: tok.Lexeme}

	case token.DOLLAR:
		p.advance()
		if p.curToken.Type != token.IDENT {
			p.errorf(p.curToken, "expected identifier after '$'")
			return nil
		}
		identTok := p.curToken
		p.advance()
		return &ast.Identifier{Token: identTok, Name: identTok.Lexeme, CompileTime: true}

	case token.IDENT:
		p.advance()
		return &ast.Identifier{Token: tok, Name: tok.Lexeme}

	case token.LPAREN:
		p.advance()
		inner := p.parseExpression()
		if inner == nil {
			return nil
		}
		if !p.expect(token.RPAREN) {
			return nil
		}
		return &ast.Parens{Token: tok, Inner: inner}

	case token.LBRACE:
		p.advance()
		var elems []ast.Expression
		if p.curToken.Type != token.RBRACE {
			for {
				e := p.parseExpression()
				if e == nil {
					return nil
				}
				elems = append(elems, e)
				if p.curToken.Type == token.COMMA {
					p.advance()
					continue
				}
				break
			}
		}
		if !p.expect(token.RBRACE) {
			return nil
		}
		return &ast.Array{Token: tok, Elements: elems}

	default:
		p.errorf(tok, "unexpected token %q", tok.Lexeme)
		return nil
	}
}
