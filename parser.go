package rubble

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
)

// ParseError is a syntax error with position.
type ParseError struct {
	Pos lexer.Position
	Msg string
}

func (e *ParseError) Error() string { return e.Pos.String() + ": " + e.Msg }

// Position returns the location of the error.
func (e *ParseError) Position() lexer.Position { return e.Pos }

// Message returns the error message without the position prefix.
func (e *ParseError) Message() string { return e.Msg }

// Parse parses rubble source and returns the syntax tree.
// This function is thread-safe.
func Parse(data []byte) (*Program, error) {
	return ParseString("", string(data))
}

// ParseString parses rubble source with a filename for positions.
//
// The grammar is newline-sensitive, so parsing is hand-rolled recursive
// descent over the token stream rather than a participle tag grammar: a
// constant on the line after a bare `rescue` must parse as the first body
// statement, not as a declared exception class.
func ParseString(filename, src string) (*Program, error) {
	lx, err := Lexer.LexString(filename, src)
	if err != nil {
		return nil, err
	}

	var tokens []lexer.Token

	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}

		// Comments and horizontal whitespace are insignificant; newlines are
		// statement terminators and stay in the stream.
		if tok.Type == TokenWhitespace || tok.Type == TokenComment {
			continue
		}

		tokens = append(tokens, tok)

		if tok.Type == TokenEOF {
			break
		}
	}

	p := &parser{tokens: tokens}
	p.pushScope()

	return p.parseProgram()
}

// parser consumes the filtered token stream. scopes tracks local variable
// bindings so implicit hash values can resolve the way the runtime would.
type parser struct {
	tokens []lexer.Token
	pos    int
	scopes []map[string]bool
}

func (p *parser) cur() lexer.Token { return p.tokens[p.pos] }

func (p *parser) at(typ lexer.TokenType) bool { return p.cur().Type == typ }

func (p *parser) next() lexer.Token {
	tok := p.tokens[p.pos]
	if tok.Type != TokenEOF {
		p.pos++
	}

	return tok
}

func (p *parser) accept(typ lexer.TokenType) (lexer.Token, bool) {
	if p.at(typ) {
		return p.next(), true
	}

	return lexer.Token{}, false
}

func (p *parser) expect(typ lexer.TokenType, what string) (lexer.Token, error) {
	if !p.at(typ) {
		return lexer.Token{}, p.errorf("expected " + what)
	}

	return p.next(), nil
}

func (p *parser) errorf(msg string) *ParseError {
	return &ParseError{Pos: p.cur().Pos, Msg: msg}
}

func (p *parser) skipNewlines() {
	for p.at(TokenNewline) || p.at(TokenSemi) {
		p.next()
	}
}

// Scope handling.

func (p *parser) pushScope() {
	p.scopes = append(p.scopes, make(map[string]bool))
}

func (p *parser) declareLocal(name string) {
	p.scopes[len(p.scopes)-1][name] = true
}

func (p *parser) isLocal(name string) bool {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if p.scopes[i][name] {
			return true
		}
	}

	return false
}

// tokenEnd returns the position just past a token.
func tokenEnd(tok lexer.Token) lexer.Position {
	pos := tok.Pos
	for _, r := range tok.Value {
		if r == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}

	pos.Offset = tok.Pos.Offset + len(tok.Value)

	return pos
}

func (p *parser) parseProgram() (*Program, error) {
	prog := &Program{Pos: lexer.Position{Filename: p.cur().Pos.Filename, Line: 1, Column: 1}}

	stmts, err := p.parseStmts(TokenEOF)
	if err != nil {
		return nil, err
	}

	prog.Stmts = stmts
	prog.EndPos = p.cur().Pos

	return prog, nil
}

// parseStmts parses statements until one of the stop token types (or EOF,
// which always stops so missing `end` reports at the right place).
func (p *parser) parseStmts(stops ...lexer.TokenType) ([]Stmt, error) {
	var stmts []Stmt

	for {
		p.skipNewlines()

		if p.at(TokenEOF) || tokenIn(p.cur().Type, stops) {
			return stmts, nil
		}

		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, stmt)

		if err := p.expectTerminator(); err != nil {
			return nil, err
		}
	}
}

func tokenIn(typ lexer.TokenType, set []lexer.TokenType) bool {
	for _, t := range set {
		if typ == t {
			return true
		}
	}

	return false
}

// expectTerminator requires a statement boundary: a newline, a semicolon,
// EOF, or a block-closing keyword that the caller will consume.
func (p *parser) expectTerminator() error {
	switch p.cur().Type {
	case TokenNewline, TokenSemi:
		p.next()

		return nil
	case TokenEOF, TokenEnd, TokenRescue, TokenEnsure, TokenElse:
		return nil
	default:
		return p.errorf("expected newline after statement")
	}
}

//nolint:ireturn // Statement polymorphism requires returning the interface.
func (p *parser) parseStmt() (Stmt, error) {
	switch p.cur().Type {
	case TokenDef:
		return p.parseMethodDef()
	case TokenBegin:
		return p.parseBeginBlock()
	case TokenIf:
		return p.parseIfStmt()
	case TokenReturn:
		return p.parseReturnStmt()
	case TokenIdent:
		if p.tokens[p.pos+1].Type == TokenAssign {
			return p.parseAssignment()
		}
	}

	start := p.cur().Pos

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &ExprStmt{Pos: start, EndPos: expr.Span().End, X: expr}, nil
}

func (p *parser) parseAssignment() (*Assignment, error) {
	name := p.next()
	p.next() // =

	// The local is bound from the assignment onward, including its own
	// right-hand side.
	p.declareLocal(name.Value)

	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &Assignment{
		Pos:    name.Pos,
		EndPos: value.Span().End,
		Name:   name.Value,
		Value:  value,
	}, nil
}

func (p *parser) parseMethodDef() (*MethodDef, error) {
	def := p.next() // def

	name, err := p.expect(TokenIdent, "method name")
	if err != nil {
		return nil, err
	}

	md := &MethodDef{Pos: def.Pos, Name: name.Value, NamePos: name.Pos}

	// A method body cannot see enclosing locals, so it gets a fresh scope
	// stack rather than a nested scope.
	outer := p.scopes
	p.scopes = nil
	p.pushScope()

	defer func() { p.scopes = outer }()

	if _, ok := p.accept(TokenLParen); ok {
		for !p.at(TokenRParen) {
			param, err := p.expect(TokenIdent, "parameter name")
			if err != nil {
				return nil, err
			}

			md.Params = append(md.Params, param.Value)
			p.declareLocal(param.Value)

			if _, ok := p.accept(TokenComma); !ok {
				break
			}
		}

		if _, err := p.expect(TokenRParen, "')'"); err != nil {
			return nil, err
		}
	}

	body, rescues, ensure, endPos, err := p.parseBlockBody()
	if err != nil {
		return nil, err
	}

	md.Body, md.Rescues, md.Ensure, md.EndPos = body, rescues, ensure, endPos

	return md, nil
}

func (p *parser) parseBeginBlock() (*BeginBlock, error) {
	begin := p.next() // begin

	body, rescues, ensure, endPos, err := p.parseBlockBody()
	if err != nil {
		return nil, err
	}

	return &BeginBlock{
		Pos:     begin.Pos,
		EndPos:  endPos,
		Body:    body,
		Rescues: rescues,
		Ensure:  ensure,
	}, nil
}

// parseBlockBody parses the shared tail of def and begin: body statements,
// rescue clauses, an optional ensure block, and the closing `end`.
func (p *parser) parseBlockBody() ([]Stmt, []*RescueClause, []Stmt, lexer.Position, error) {
	var none lexer.Position

	body, err := p.parseStmts(TokenEnd, TokenRescue, TokenEnsure)
	if err != nil {
		return nil, nil, nil, none, err
	}

	var rescues []*RescueClause

	for p.at(TokenRescue) {
		clause, err := p.parseRescueClause()
		if err != nil {
			return nil, nil, nil, none, err
		}

		rescues = append(rescues, clause)
	}

	var ensure []Stmt

	if _, ok := p.accept(TokenEnsure); ok {
		ensure, err = p.parseStmts(TokenEnd)
		if err != nil {
			return nil, nil, nil, none, err
		}
	}

	end, err := p.expect(TokenEnd, "'end'")
	if err != nil {
		return nil, nil, nil, none, err
	}

	return body, rescues, ensure, tokenEnd(end), nil
}

func (p *parser) parseRescueClause() (*RescueClause, error) {
	kw := p.next() // rescue
	clause := &RescueClause{Pos: kw.Pos, EndPos: tokenEnd(kw)}

	// Exception classes must start on the rescue line; a constant on the
	// next line is the first body statement.
	for p.at(TokenConst) {
		c := p.next()
		clause.Classes = append(clause.Classes, &ConstantRef{
			Pos:    c.Pos,
			EndPos: tokenEnd(c),
			Name:   c.Value,
		})

		if _, ok := p.accept(TokenComma); !ok {
			break
		}

		p.skipNewlines() // a class list may wrap after a comma
	}

	if _, ok := p.accept(TokenArrow); ok {
		binding, err := p.expect(TokenIdent, "rescue binding name")
		if err != nil {
			return nil, err
		}

		clause.Binding = binding.Value
		clause.EndPos = tokenEnd(binding)
		p.declareLocal(binding.Value)
	} else if len(clause.Classes) > 0 {
		clause.EndPos = clause.Classes[len(clause.Classes)-1].EndPos
	}

	body, err := p.parseStmts(TokenEnd, TokenRescue, TokenEnsure)
	if err != nil {
		return nil, err
	}

	clause.Body = body
	if len(body) > 0 {
		clause.EndPos = body[len(body)-1].Span().End
	}

	return clause, nil
}

func (p *parser) parseIfStmt() (*IfStmt, error) {
	kw := p.next() // if

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	then, err := p.parseStmts(TokenEnd, TokenElse)
	if err != nil {
		return nil, err
	}

	stmt := &IfStmt{Pos: kw.Pos, Cond: cond, Then: then}

	if _, ok := p.accept(TokenElse); ok {
		stmt.Else, err = p.parseStmts(TokenEnd)
		if err != nil {
			return nil, err
		}
	}

	end, err := p.expect(TokenEnd, "'end'")
	if err != nil {
		return nil, err
	}

	stmt.EndPos = tokenEnd(end)

	return stmt, nil
}

func (p *parser) parseReturnStmt() (*ReturnStmt, error) {
	kw := p.next() // return
	stmt := &ReturnStmt{Pos: kw.Pos, EndPos: tokenEnd(kw)}

	switch p.cur().Type {
	case TokenNewline, TokenSemi, TokenEOF, TokenEnd, TokenRescue, TokenEnsure, TokenElse:
		return stmt, nil
	}

	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	stmt.Value = value
	stmt.EndPos = value.Span().End

	return stmt, nil
}

// Expression parsing - precedence climbing.

var binaryPrec = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3, "<": 3, ">": 3, "<=": 3, ">=": 3,
	"+": 4, "-": 4,
	"*": 5, "/": 5, "%": 5,
}

//nolint:ireturn // Expression polymorphism requires returning the interface.
func (p *parser) parseExpr() (Expr, error) {
	return p.parseBinary(1)
}

//nolint:ireturn // Expression polymorphism requires returning the interface.
func (p *parser) parseBinary(minPrec int) (Expr, error) {
	lhs, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}

	for p.at(TokenOp) {
		prec, known := binaryPrec[p.cur().Value]
		if !known || prec < minPrec {
			break
		}

		op := p.next()

		rhs, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}

		lhs = &BinaryExpr{
			Pos:    lhs.Span().Start,
			EndPos: rhs.Span().End,
			Op:     op.Value,
			LHS:    lhs,
			RHS:    rhs,
		}
	}

	return lhs, nil
}

//nolint:ireturn // Expression polymorphism requires returning the interface.
func (p *parser) parsePostfix() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		if _, ok := p.accept(TokenDot); !ok {
			return expr, nil
		}

		name, err := p.expect(TokenIdent, "method name after '.'")
		if err != nil {
			return nil, err
		}

		call := &MethodCall{
			Pos:      expr.Span().Start,
			EndPos:   tokenEnd(name),
			Receiver: expr,
			Name:     name.Value,
		}

		if p.at(TokenLParen) {
			if err := p.parseCallArgs(call); err != nil {
				return nil, err
			}
		}

		expr = call
	}
}

//nolint:ireturn,cyclop // Expression polymorphism; one arm per literal kind.
func (p *parser) parsePrimary() (Expr, error) {
	tok := p.cur()

	switch tok.Type {
	case TokenNumber:
		return p.parseNumber()

	case TokenString:
		p.next()

		return &StringLit{Pos: tok.Pos, EndPos: tokenEnd(tok), Value: unquote(tok.Value)}, nil

	case TokenTrue, TokenFalse:
		p.next()

		return &BoolLit{Pos: tok.Pos, EndPos: tokenEnd(tok), Value: tok.Type == TokenTrue}, nil

	case TokenNil:
		p.next()

		return &NilLit{Pos: tok.Pos, EndPos: tokenEnd(tok)}, nil

	case TokenConst:
		p.next()

		return &ConstantRef{Pos: tok.Pos, EndPos: tokenEnd(tok), Name: tok.Value}, nil

	case TokenIdent:
		return p.parseIdentExpr()

	case TokenLBracket:
		return p.parseArrayLit()

	case TokenLBrace:
		return p.parseHashLit()

	case TokenLParen:
		p.next()
		p.skipNewlines()

		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		p.skipNewlines()

		if _, err := p.expect(TokenRParen, "')'"); err != nil {
			return nil, err
		}

		return inner, nil

	case TokenOp:
		if tok.Value == "-" {
			p.next()

			return p.parseNegatedNumber(tok.Pos)
		}
	}

	return nil, p.errorf("expected expression")
}

//nolint:ireturn // Expression polymorphism requires returning the interface.
func (p *parser) parseNumber() (Expr, error) {
	tok := p.next()
	text := strings.ReplaceAll(tok.Value, "_", "")

	if strings.Contains(text, ".") {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, &ParseError{Pos: tok.Pos, Msg: "invalid number: " + tok.Value}
		}

		return &FloatLit{Pos: tok.Pos, EndPos: tokenEnd(tok), Value: v}, nil
	}

	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, &ParseError{Pos: tok.Pos, Msg: "invalid number: " + tok.Value}
	}

	return &IntLit{Pos: tok.Pos, EndPos: tokenEnd(tok), Value: v}, nil
}

//nolint:ireturn // Expression polymorphism requires returning the interface.
func (p *parser) parseNegatedNumber(start lexer.Position) (Expr, error) {
	if !p.at(TokenNumber) {
		return nil, p.errorf("expected number after '-'")
	}

	num, err := p.parseNumber()
	if err != nil {
		return nil, err
	}

	switch n := num.(type) {
	case *IntLit:
		n.Pos = start
		n.Value = -n.Value

		return n, nil
	case *FloatLit:
		n.Pos = start
		n.Value = -n.Value

		return n, nil
	default:
		return nil, p.errorf("expected number after '-'")
	}
}

// parseIdentExpr parses a bare identifier: a call with arguments, a local
// variable read if the name is bound, or a receiverless call otherwise.
//
//nolint:ireturn // Expression polymorphism requires returning the interface.
func (p *parser) parseIdentExpr() (Expr, error) {
	tok := p.next()

	call := &MethodCall{Pos: tok.Pos, EndPos: tokenEnd(tok), Name: tok.Value}

	if p.at(TokenLParen) {
		if err := p.parseCallArgs(call); err != nil {
			return nil, err
		}

		return call, nil
	}

	if p.isLocal(tok.Value) {
		return &LocalVarRef{Pos: tok.Pos, EndPos: tokenEnd(tok), Name: tok.Value}, nil
	}

	return call, nil
}

func (p *parser) parseCallArgs(call *MethodCall) error {
	p.next() // (
	p.skipNewlines()

	for !p.at(TokenRParen) {
		arg, err := p.parseExpr()
		if err != nil {
			return err
		}

		call.Args = append(call.Args, arg)
		p.skipNewlines()

		if _, ok := p.accept(TokenComma); !ok {
			break
		}

		p.skipNewlines()
	}

	rp, err := p.expect(TokenRParen, "')'")
	if err != nil {
		return err
	}

	call.EndPos = tokenEnd(rp)

	return nil
}

func (p *parser) parseArrayLit() (*ArrayLit, error) {
	lb := p.next() // [
	arr := &ArrayLit{Pos: lb.Pos}

	p.skipNewlines()

	for !p.at(TokenRBracket) {
		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		arr.Elems = append(arr.Elems, elem)
		p.skipNewlines()

		if _, ok := p.accept(TokenComma); !ok {
			break
		}

		p.skipNewlines()
	}

	rb, err := p.expect(TokenRBracket, "']'")
	if err != nil {
		return nil, err
	}

	arr.EndPos = tokenEnd(rb)

	return arr, nil
}

func (p *parser) parseHashLit() (*HashLit, error) {
	lb := p.next() // {
	hash := &HashLit{Pos: lb.Pos}

	p.skipNewlines()

	for !p.at(TokenRBrace) {
		entry, err := p.parseHashEntry()
		if err != nil {
			return nil, err
		}

		hash.Entries = append(hash.Entries, entry)
		p.skipNewlines()

		if _, ok := p.accept(TokenComma); !ok {
			break
		}

		p.skipNewlines()
	}

	rb, err := p.expect(TokenRBrace, "'}'")
	if err != nil {
		return nil, err
	}

	hash.EndPos = tokenEnd(rb)

	return hash, nil
}

func (p *parser) parseHashEntry() (*HashEntry, error) {
	if p.at(TokenLabel) {
		return p.parseLabelEntry()
	}

	keyExpr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenArrow, "'=>'"); err != nil {
		return nil, err
	}

	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &HashEntry{
		Pos:     keyExpr.Span().Start,
		EndPos:  value.Span().End,
		KeyExpr: keyExpr,
		Value:   value,
	}, nil
}

func (p *parser) parseLabelEntry() (*HashEntry, error) {
	label := p.next()
	key := strings.TrimSuffix(label.Value, ":")
	entry := &HashEntry{Pos: label.Pos, EndPos: tokenEnd(label), Key: key}

	// The value must start on the label's line; a comma, closing brace, or
	// line break after the label means the value was omitted and the key
	// name itself is the value (the hash shorthand).
	switch p.cur().Type {
	case TokenComma, TokenRBrace, TokenNewline:
		entry.Implicit = p.implicitValue(label, key)

		return entry, nil
	}

	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	entry.Value = value
	entry.EndPos = value.Span().End

	return entry, nil
}

// implicitValue synthesizes the expression an omitted hash value refers to.
// The node spans the label (key and colon); the inner expression spans just
// the key text. An uppercase-initial key is a constant; a key bound as a
// local variable reads that local; anything else is a receiverless call.
func (p *parser) implicitValue(label lexer.Token, key string) *ImplicitValue {
	keyEnd := label.Pos
	keyEnd.Column += len(key)
	keyEnd.Offset += len(key)

	var inner Expr

	first, _ := utf8.DecodeRuneInString(key)

	switch {
	case unicode.IsUpper(first):
		inner = &ConstantRef{Pos: label.Pos, EndPos: keyEnd, Name: key}
	case p.isLocal(key):
		inner = &LocalVarRef{Pos: label.Pos, EndPos: keyEnd, Name: key}
	default:
		inner = &MethodCall{Pos: label.Pos, EndPos: keyEnd, Name: key}
	}

	return &ImplicitValue{Pos: label.Pos, EndPos: tokenEnd(label), Inner: inner}
}

// unquote strips the surrounding quotes and resolves simple escapes.
func unquote(s string) string {
	if len(s) < 2 { //nolint:mnd // opening and closing quote
		return s
	}

	body := s[1 : len(s)-1]
	if !strings.ContainsRune(body, '\\') {
		return body
	}

	var b strings.Builder

	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			b.WriteByte(c)

			continue
		}

		i++

		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(body[i])
		}
	}

	return b.String()
}
