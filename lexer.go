package rubble

import (
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
)

// Token type constants - negative values as per participle convention.
const (
	TokenEOF        lexer.TokenType = lexer.EOF
	TokenComment    lexer.TokenType = -(iota + 2) //nolint:mnd // participle convention
	TokenWhitespace                               // spaces and tabs, never newlines
	TokenNewline                                  // one or more line breaks
	TokenString                                   // quoted strings
	TokenNumber                                   // integer and float literals
	TokenIdent                                    // lowercase-initial identifiers
	TokenConst                                    // uppercase-initial identifiers
	TokenLabel                                    // identifier immediately followed by ':'
	TokenArrow                                    // =>
	TokenAssign                                   // =
	TokenOp                                       // other operators
	TokenDot                                      // .
	TokenComma                                    // ,
	TokenSemi                                     // ;
	TokenLParen                                   // (
	TokenRParen                                   // )
	TokenLBracket                                 // [
	TokenRBracket                                 // ]
	TokenLBrace                                   // {
	TokenRBrace                                   // }
	// Keywords - distinct token types so the parser can distinguish them
	// from identifiers.
	TokenDef    // def
	TokenEnd    // end
	TokenBegin  // begin
	TokenRescue // rescue
	TokenEnsure // ensure
	TokenIf     // if
	TokenElse   // else
	TokenReturn // return
	TokenTrue   // true
	TokenFalse  // false
	TokenNil    // nil
)

// keywords maps keyword strings to their token types.
var keywords = map[string]lexer.TokenType{
	"def":    TokenDef,
	"end":    TokenEnd,
	"begin":  TokenBegin,
	"rescue": TokenRescue,
	"ensure": TokenEnsure,
	"if":     TokenIf,
	"else":   TokenElse,
	"return": TokenReturn,
	"true":   TokenTrue,
	"false":  TokenFalse,
	"nil":    TokenNil,
}

// Lexer errors.
var (
	ErrUnterminatedString  = &LexerError{msg: "unterminated string"}
	ErrUnexpectedCharacter = &LexerError{msg: "unexpected character"}
)

// LexerError represents a lexer error with position.
type LexerError struct {
	msg string
	pos lexer.Position
	ch  rune
}

func (e *LexerError) Error() string {
	if e.ch != 0 {
		return e.pos.String() + ": " + e.msg + ": " + string(e.ch)
	}

	return e.pos.String() + ": " + e.msg
}

// Position returns the location of the error.
func (e *LexerError) Position() lexer.Position { return e.pos }

func (e *LexerError) withPos(pos lexer.Position) *LexerError {
	return &LexerError{msg: e.msg, pos: pos, ch: e.ch}
}

func (e *LexerError) withChar(ch rune) *LexerError {
	return &LexerError{msg: e.msg, pos: e.pos, ch: ch}
}

// definition implements lexer.Definition for rubble source. It is stateless
// and safe for concurrent use.
type definition struct {
	symbols map[string]lexer.TokenType
}

// Lexer is the shared lexer definition for rubble source files.
var Lexer = newDefinition() //nolint:gochecknoglobals // stateless definition

func newDefinition() *definition {
	return &definition{
		symbols: map[string]lexer.TokenType{
			"EOF":        TokenEOF,
			"Comment":    TokenComment,
			"Whitespace": TokenWhitespace,
			"Newline":    TokenNewline,
			"String":     TokenString,
			"Number":     TokenNumber,
			"Ident":      TokenIdent,
			"Const":      TokenConst,
			"Label":      TokenLabel,
			"Arrow":      TokenArrow,
			"Assign":     TokenAssign,
			"Op":         TokenOp,
			"Dot":        TokenDot,
			"Comma":      TokenComma,
			"Semi":       TokenSemi,
			"(":          TokenLParen,
			")":          TokenRParen,
			"[":          TokenLBracket,
			"]":          TokenRBracket,
			"{":          TokenLBrace,
			"}":          TokenRBrace,
			"def":        TokenDef,
			"end":        TokenEnd,
			"begin":      TokenBegin,
			"rescue":     TokenRescue,
			"ensure":     TokenEnsure,
			"if":         TokenIf,
			"else":       TokenElse,
			"return":     TokenReturn,
			"true":       TokenTrue,
			"false":      TokenFalse,
			"nil":        TokenNil,
		},
	}
}

// Symbols returns the mapping of symbol names to token types.
func (d *definition) Symbols() map[string]lexer.TokenType {
	return d.symbols
}

// Lex creates a new Lexer for the given reader.
//
//nolint:ireturn // Required by participle's lexer.Definition interface.
func (d *definition) Lex(filename string, r io.Reader) (lexer.Lexer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return newLexerState(filename, string(data)), nil
}

// LexString implements lexer.StringDefinition for efficiency.
//
//nolint:ireturn // Required by participle's lexer.StringDefinition interface.
func (d *definition) LexString(filename string, input string) (lexer.Lexer, error) {
	return newLexerState(filename, input), nil
}

// lexerState holds the state for lexing one input.
type lexerState struct {
	filename string
	input    string
	offset   int
	line     int
	col      int
}

func newLexerState(filename, input string) *lexerState {
	return &lexerState{
		filename: filename,
		input:    input,
		line:     1,
		col:      1,
	}
}

// Next returns the next token.
func (l *lexerState) Next() (lexer.Token, error) {
	if l.eof() {
		return lexer.EOFToken(l.pos()), nil
	}

	start := l.pos()
	r := l.peek()

	// Newlines are significant: they terminate statements. A run of line
	// breaks and interleaved blank-line whitespace collapses to one token.
	if r == '\n' || r == '\r' {
		for !l.eof() {
			c := l.peek()
			if c != '\n' && c != '\r' && c != ' ' && c != '\t' {
				break
			}

			l.advance()
		}

		return l.token(TokenNewline, start), nil
	}

	// Horizontal whitespace.
	if r == ' ' || r == '\t' {
		for !l.eof() && (l.peek() == ' ' || l.peek() == '\t') {
			l.advance()
		}

		return l.token(TokenWhitespace, start), nil
	}

	// Comment - runs to end of line.
	if r == '#' {
		for !l.eof() && l.peek() != '\n' {
			l.advance()
		}

		return l.token(TokenComment, start), nil
	}

	// String
	if r == '"' || r == '\'' {
		return l.scanString(start, r)
	}

	// Number
	if isDigit(r) {
		return l.scanNumber(start), nil
	}

	// Identifier, constant, keyword, or label
	if isIdentStart(r) {
		return l.scanWord(start, r), nil
	}

	// Multi-character operators (check before single-char)
	if tok, ok := l.scanMultiCharOp(start); ok {
		return tok, nil
	}

	// Single character tokens
	l.advance()

	switch r {
	case '.':
		return l.token(TokenDot, start), nil
	case ',':
		return l.token(TokenComma, start), nil
	case ';':
		return l.token(TokenSemi, start), nil
	case '(':
		return l.token(TokenLParen, start), nil
	case ')':
		return l.token(TokenRParen, start), nil
	case '[':
		return l.token(TokenLBracket, start), nil
	case ']':
		return l.token(TokenRBracket, start), nil
	case '{':
		return l.token(TokenLBrace, start), nil
	case '}':
		return l.token(TokenRBrace, start), nil
	case '=':
		return l.token(TokenAssign, start), nil
	}

	if strings.ContainsRune("+-*/%<>!", r) {
		return l.token(TokenOp, start), nil
	}

	return lexer.Token{}, ErrUnexpectedCharacter.withPos(start).withChar(r)
}

// scanWord lexes an identifier, constant, keyword, or label.
func (l *lexerState) scanWord(start lexer.Position, first rune) lexer.Token {
	l.advance()

	for !l.eof() && isIdentContinue(l.peek()) {
		l.advance()
	}

	// Ruby-style trailing ? and ! in method names.
	if !l.eof() && (l.peek() == '?' || l.peek() == '!') {
		l.advance()
	}

	tok := l.token(TokenIdent, start)

	if kwType, isKeyword := keywords[tok.Value]; isKeyword {
		tok.Type = kwType

		return tok
	}

	// A word immediately followed by ':' is a hash label. The colon is part
	// of the token so the parser never confuses it with other colon uses.
	if l.peek() == ':' {
		l.advance()

		return l.token(TokenLabel, start)
	}

	if unicode.IsUpper(first) {
		tok.Type = TokenConst
	}

	return tok
}

func (l *lexerState) scanNumber(start lexer.Position) lexer.Token {
	for !l.eof() && (isDigit(l.peek()) || l.peek() == '_') {
		l.advance()
	}

	// Fraction - only if a digit follows the dot, so `1.upto` still lexes
	// as a method chain.
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.advance()

		for !l.eof() && isDigit(l.peek()) {
			l.advance()
		}
	}

	return l.token(TokenNumber, start)
}

func (l *lexerState) scanString(start lexer.Position, quote rune) (lexer.Token, error) {
	l.advance() // opening quote

	for !l.eof() {
		r := l.peek()

		if r == '\\' {
			l.advance()

			if !l.eof() {
				l.advance()
			}

			continue
		}

		if r == '\n' {
			return lexer.Token{}, ErrUnterminatedString.withPos(start)
		}

		l.advance()

		if r == quote {
			return l.token(TokenString, start), nil
		}
	}

	return lexer.Token{}, ErrUnterminatedString.withPos(start)
}

func (l *lexerState) scanMultiCharOp(start lexer.Position) (lexer.Token, bool) {
	ops := []struct {
		text string
		typ  lexer.TokenType
	}{
		{"=>", TokenArrow},
		{"==", TokenOp},
		{"!=", TokenOp},
		{"<=", TokenOp},
		{">=", TokenOp},
		{"&&", TokenOp},
		{"||", TokenOp},
	}

	for _, op := range ops {
		if l.match(op.text) {
			for i := 0; i < len(op.text); i++ {
				l.advance()
			}

			return l.token(op.typ, start), true
		}
	}

	return lexer.Token{}, false
}

func (l *lexerState) pos() lexer.Position {
	return lexer.Position{
		Filename: l.filename,
		Offset:   l.offset,
		Line:     l.line,
		Column:   l.col,
	}
}

func (l *lexerState) eof() bool {
	return l.offset >= len(l.input)
}

func (l *lexerState) peek() rune {
	if l.eof() {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.offset:])

	return r
}

func (l *lexerState) peekAt(n int) rune {
	off := l.offset + n
	if off >= len(l.input) {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.input[off:])

	return r
}

func (l *lexerState) advance() rune {
	if l.eof() {
		return 0
	}

	r, size := utf8.DecodeRuneInString(l.input[l.offset:])
	l.offset += size

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	return r
}

func (l *lexerState) match(s string) bool {
	return strings.HasPrefix(l.input[l.offset:], s)
}

func (l *lexerState) token(typ lexer.TokenType, start lexer.Position) lexer.Token {
	return lexer.Token{
		Type:  typ,
		Value: l.input[start.Offset:l.offset],
		Pos:   start,
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentContinue(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
