// Package parser implements the DICE lexer and recursive-descent parser:
// source text in, a single *Program AST out.
package parser

import (
	"fmt"
	"strconv"
)

// Parse translates DICE source text into a Program AST.
func Parse(src string) (*Program, error) {
	p := &parser{lx: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, wrapError(err)
	}
	stmts, err := p.parseStatementsUntil(tokenEOF)
	if err != nil {
		return nil, err
	}
	return &Program{Body: stmts}, nil
}

type parser struct {
	lx      *lexer
	curr    Token
	peekTok Token
	hasPeek bool
}

func (p *parser) advance() error {
	if p.hasPeek {
		p.curr = p.peekTok
		p.hasPeek = false
		return nil
	}
	tok, err := p.lx.nextToken()
	if err != nil {
		return wrapLexError(err)
	}
	p.curr = tok
	return nil
}

func (p *parser) peek() (Token, error) {
	if !p.hasPeek {
		tok, err := p.lx.nextToken()
		if err != nil {
			return Token{}, wrapLexError(err)
		}
		p.peekTok = tok
		p.hasPeek = true
	}
	return p.peekTok, nil
}

func (p *parser) expect(tt TokenType, what string) (Token, error) {
	if p.curr.Type != tt {
		return Token{}, expectedErrorf(p.curr.Pos, what, p.curr)
	}
	tok := p.curr
	if err := p.advance(); err != nil {
		return Token{}, err
	}
	return tok, nil
}

// parseStatementsUntil parses statements until it sees `stop` (RBrace or
// EOF), consuming `stop` itself only when it is RBrace.
func (p *parser) parseStatementsUntil(stop TokenType) (*Statements, error) {
	startPos := p.curr.Pos
	stmts := &Statements{Posn: startPos}
	for p.curr.Type != stop && p.curr.Type != tokenEOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts.List = append(stmts.List, stmt)
	}
	if stop == tokenRBrace {
		if _, err := p.expect(tokenRBrace, "}"); err != nil {
			return nil, err
		}
	}
	return stmts, nil
}

func (p *parser) parseBlock() (*Statements, error) {
	if _, err := p.expect(tokenLBrace, "{"); err != nil {
		return nil, err
	}
	return p.parseStatementsUntil(tokenRBrace)
}

// parseStatement implements the `stmt` production.
func (p *parser) parseStatement() (Stmt, error) {
	var stmt Stmt
	var err error
	switch p.curr.Type {
	case tokenFunc:
		stmt, err = p.parseFuncDef()
	case tokenTaskUnit:
		stmt, err = p.parseTaskUnitDef()
	case tokenAt:
		stmt, err = p.parseAnnotated()
	default:
		stmt, err = p.parseSeqStmt()
	}
	if err != nil {
		return nil, err
	}
	if p.curr.Type == tokenSemicolon {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *parser) parseFuncDef() (Stmt, error) {
	start := p.curr.Pos
	if err := p.advance(); err != nil { // consume 'func'
		return nil, err
	}
	nameTok, err := p.expect(tokenIdentifier, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenLParen, "("); err != nil {
		return nil, err
	}
	params, err := p.parseParamNames()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenRParen, ")"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &FuncDef{Name: nameTok.Lexeme, Params: params, Body: body, Posn: start}, nil
}

func (p *parser) parseParamNames() ([]string, error) {
	var params []string
	if p.curr.Type == tokenRParen {
		return params, nil
	}
	for {
		tok, err := p.expect(tokenIdentifier, "identifier")
		if err != nil {
			return nil, err
		}
		params = append(params, tok.Lexeme)
		if p.curr.Type != tokenComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return params, nil
}

func (p *parser) parseTaskUnitDef() (Stmt, error) {
	start := p.curr.Pos
	if err := p.advance(); err != nil { // consume 'taskunit'
		return nil, err
	}
	nameTok, err := p.expect(tokenIdentifier, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenLBrace, "{"); err != nil {
		return nil, err
	}
	var methods []*FuncDef
	for p.curr.Type != tokenRBrace && p.curr.Type != tokenEOF {
		method, err := p.parseTaskUnitMethod()
		if err != nil {
			return nil, err
		}
		methods = append(methods, method)
	}
	if _, err := p.expect(tokenRBrace, "}"); err != nil {
		return nil, err
	}
	return &TaskUnitDef{Name: nameTok.Lexeme, Methods: methods, Posn: start}, nil
}

func (p *parser) parseTaskUnitMethod() (*FuncDef, error) {
	nameTok, err := p.expect(tokenIdentifier, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenLParen, "("); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenRParen, ")"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &FuncDef{Name: nameTok.Lexeme, Body: body, Posn: nameTok.Pos}, nil
}

// parseAnnotated implements `'@' 'timed' ('(' STRING ')')? stmt`.
func (p *parser) parseAnnotated() (Stmt, error) {
	start := p.curr.Pos
	if err := p.advance(); err != nil { // consume '@'
		return nil, err
	}
	nameTok, err := p.expect(tokenIdentifier, "'timed'")
	if err != nil {
		return nil, err
	}
	if nameTok.Lexeme != "timed" {
		return nil, expectedErrorf(nameTok.Pos, "'timed'", nameTok)
	}
	label := ""
	hasLabel := false
	if p.curr.Type == tokenLParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		strTok, err := p.expect(tokenString, "string")
		if err != nil {
			return nil, err
		}
		label = strTok.Lexeme
		hasLabel = true
		if _, err := p.expect(tokenRParen, ")"); err != nil {
			return nil, err
		}
	}
	target, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if _, ok := target.(*Timed); ok {
		return nil, wrapError(fmt.Errorf("(%d:%d): @timed may not wrap another @timed", start.Line, start.Column))
	}
	if !hasLabel {
		label = deriveTimedLabel(target)
	}
	return &Timed{Label: label, Target: target, Posn: start}, nil
}

func deriveTimedLabel(target Node) string {
	switch t := target.(type) {
	case *FuncDef:
		return "function"
	case *Parallel:
		return "parallel"
	case *ParallelLoop:
		return "parallel"
	case *Statements:
		return "block"
	case *Call:
		if id, ok := t.Callee.(*Identifier); ok {
			return id.Name
		}
		return "expr"
	case *MethodCall:
		return t.Name
	case *If:
		return "if"
	case *Loop:
		return "loop"
	case *Assign:
		return "assign"
	case *Sequence:
		return "sequence"
	case *ExprStmt:
		return deriveTimedLabel(t.Expr)
	default:
		return "expr"
	}
}

// parseSeqStmt implements `seqUnit ('->' seqUnit)*`, building a
// right-leaning Sequence chain.
func (p *parser) parseSeqStmt() (Stmt, error) {
	units, err := p.collectSeqUnits()
	if err != nil {
		return nil, err
	}
	return buildSequence(units), nil
}

func (p *parser) collectSeqUnits() ([]Stmt, error) {
	first, err := p.parseSeqUnit()
	if err != nil {
		return nil, err
	}
	units := []Stmt{first}
	for p.curr.Type == tokenArrow {
		if err := p.advance(); err != nil {
			return nil, err
		}
		next, err := p.parseSeqUnit()
		if err != nil {
			return nil, err
		}
		units = append(units, next)
	}
	return units, nil
}

// buildSequence right-associates a flat list of units into a Sequence
// chain: [a, b, c] -> Sequence(a, Sequence(b, c)).
func buildSequence(units []Stmt) Stmt {
	if len(units) == 1 {
		return units[0]
	}
	tail := buildSequence(units[1:])
	return &Sequence{Head: units[0], Tail: tail, Posn: units[0].Pos()}
}

// parseSeqUnit implements `block-expr | exprOrCall`.
func (p *parser) parseSeqUnit() (Stmt, error) {
	switch p.curr.Type {
	case tokenParallel, tokenP:
		return p.parseParallelBlock()
	case tokenIf:
		return p.parseIfBlock()
	case tokenLoop:
		return p.parseLoopBlock()
	case tokenLBrace:
		return p.parseBlock()
	default:
		return p.parseExprOrCall()
	}
}

func (p *parser) parseParallelBlock() (Stmt, error) {
	start := p.curr.Pos
	if err := p.advance(); err != nil { // consume 'parallel' or 'p'
		return nil, err
	}
	if p.curr.Type == tokenLoop {
		return p.parseLoopTail(start, true)
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &Parallel{Body: body, Posn: start}, nil
}

func (p *parser) parseLoopBlock() (Stmt, error) {
	start := p.curr.Pos
	return p.parseLoopTail(start, false)
}

// parseLoopTail implements `'loop' IDENT 'in' expr '..' expr block`,
// shared by both the sequential `loop` and the `p loop` forms.
func (p *parser) parseLoopTail(start Position, parallel bool) (Stmt, error) {
	if _, err := p.expect(tokenLoop, "loop"); err != nil {
		return nil, err
	}
	varTok, err := p.expect(tokenIdentifier, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenIn, "in"); err != nil {
		return nil, err
	}
	lo, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenDotDot, ".."); err != nil {
		return nil, err
	}
	hi, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if parallel {
		return &ParallelLoop{Var: varTok.Lexeme, RangeLo: lo, RangeHi: hi, Body: body, Posn: start}, nil
	}
	return &Loop{Var: varTok.Lexeme, RangeLo: lo, RangeHi: hi, Body: body, Posn: start}, nil
}

func (p *parser) parseIfBlock() (Stmt, error) {
	start := p.curr.Pos
	if err := p.advance(); err != nil { // consume 'if'
		return nil, err
	}
	if _, err := p.expect(tokenLParen, "("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenRParen, ")"); err != nil {
		return nil, err
	}
	thenBlock, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var elseBlock *Statements
	if p.curr.Type == tokenElse {
		if err := p.advance(); err != nil {
			return nil, err
		}
		elseBlock, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return &If{Cond: cond, Then: thenBlock, Else: elseBlock, Posn: start}, nil
}

// parseExprOrCall implements `assignment | expr`, using a single-token
// lookahead to tell an assignment's leading identifier from a bare
// expression starting with one.
func (p *parser) parseExprOrCall() (Stmt, error) {
	if p.curr.Type == tokenIdentifier {
		peeked, err := p.peek()
		if err != nil {
			return nil, err
		}
		if peeked.Type == tokenAssign {
			return p.parseAssignment()
		}
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ExprStmt{Expr: expr, Posn: expr.Pos()}, nil
}

func (p *parser) parseAssignment() (Stmt, error) {
	nameTok, err := p.expect(tokenIdentifier, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenAssign, "="); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &Assign{Name: nameTok.Lexeme, Value: value, Posn: nameTok.Pos}, nil
}

// --- Expression precedence chain (lowest to highest) ---

func (p *parser) parseExpression() (Expr, error) {
	return p.parseLogicalOr()
}

func (p *parser) parseLogicalOr() (Expr, error) {
	left, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.curr.Type == tokenOrOr {
		opTok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: opTok.Type, Left: left, Right: right, Posn: opTok.Pos}
	}
	return left, nil
}

func (p *parser) parseLogicalAnd() (Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.curr.Type == tokenAndAnd {
		opTok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: opTok.Type, Left: left, Right: right, Posn: opTok.Pos}
	}
	return left, nil
}

func (p *parser) parseEquality() (Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.curr.Type == tokenEqualEqual || p.curr.Type == tokenBangEqual {
		opTok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: opTok.Type, Left: left, Right: right, Posn: opTok.Pos}
	}
	return left, nil
}

func (p *parser) parseComparison() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.curr.Type == tokenLess || p.curr.Type == tokenLessEqual ||
		p.curr.Type == tokenGreater || p.curr.Type == tokenGreaterEqual {
		opTok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: opTok.Type, Left: left, Right: right, Posn: opTok.Pos}
	}
	return left, nil
}

func (p *parser) parseTerm() (Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.curr.Type == tokenPlus || p.curr.Type == tokenMinus {
		opTok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: opTok.Type, Left: left, Right: right, Posn: opTok.Pos}
	}
	return left, nil
}

func (p *parser) parseFactor() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.curr.Type == tokenStar || p.curr.Type == tokenSlash {
		opTok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: opTok.Type, Left: left, Right: right, Posn: opTok.Pos}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.curr.Type == tokenBang || p.curr.Type == tokenMinus {
		opTok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: opTok.Type, Operand: operand, Posn: opTok.Pos}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Expr, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.curr.Type {
		case tokenLParen:
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			node = &Call{Callee: node, Args: args, Posn: node.Pos()}
		case tokenDot:
			if err := p.advance(); err != nil {
				return nil, err
			}
			nameTok, err := p.expect(tokenIdentifier, "identifier")
			if err != nil {
				return nil, err
			}
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			node = &MethodCall{Receiver: node, Name: nameTok.Lexeme, Args: args, Posn: node.Pos()}
		default:
			return node, nil
		}
	}
}

// parseArgList parses a parenthesized, comma-separated argument list,
// including the delimiting parens; DICE's grammar never invokes anything
// without one, so `.name` is always followed by a call.
func (p *parser) parseArgList() ([]Expr, error) {
	if _, err := p.expect(tokenLParen, "("); err != nil {
		return nil, err
	}
	var args []Expr
	if p.curr.Type == tokenRParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		return args, nil
	}
	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.curr.Type != tokenComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(tokenRParen, ")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	tok := p.curr
	switch tok.Type {
	case tokenIdentifier:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Identifier{Name: tok.Lexeme, Posn: tok.Pos}, nil
	case tokenNumber:
		if err := p.advance(); err != nil {
			return nil, err
		}
		val, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, wrapError(fmt.Errorf("(%d:%d): invalid number literal %q", tok.Pos.Line, tok.Pos.Column, tok.Lexeme))
		}
		return &NumberLiteral{Value: val, Posn: tok.Pos}, nil
	case tokenString:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &StringLiteral{Value: tok.Lexeme, Posn: tok.Pos}, nil
	case tokenTrue, tokenFalse:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &BooleanLiteral{Value: tok.Type == tokenTrue, Posn: tok.Pos}, nil
	case tokenLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRParen, ")"); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, expectedErrorf(tok.Pos, "expression", tok)
	}
}
