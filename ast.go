// Package rubble provides a lexer, parser, and syntax tree for the rubble
// scripting language.
package rubble

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Span represents a range in source code. Positions follow the participle
// convention: 1-based line and column, byte offset from the start of input.
type Span struct {
	Start lexer.Position
	End   lexer.Position
}

// NodeKind identifies the concrete type of a syntax tree node. The set is
// closed; consumers switch over it with an explicit default arm.
type NodeKind int

// Node kinds.
const (
	KindProgram NodeKind = iota
	KindMethodDef
	KindBeginBlock
	KindRescueClause
	KindIfStmt
	KindReturnStmt
	KindAssignment
	KindExprStmt
	KindMethodCall
	KindConstantRef
	KindLocalVarRef
	KindImplicitValue
	KindHashLit
	KindHashEntry
	KindArrayLit
	KindBinaryExpr
	KindIntLit
	KindFloatLit
	KindStringLit
	KindBoolLit
	KindNilLit
)

// String returns the kind's name for logs and diagnostics.
func (k NodeKind) String() string {
	switch k {
	case KindProgram:
		return "Program"
	case KindMethodDef:
		return "MethodDef"
	case KindBeginBlock:
		return "BeginBlock"
	case KindRescueClause:
		return "RescueClause"
	case KindIfStmt:
		return "IfStmt"
	case KindReturnStmt:
		return "ReturnStmt"
	case KindAssignment:
		return "Assignment"
	case KindExprStmt:
		return "ExprStmt"
	case KindMethodCall:
		return "MethodCall"
	case KindConstantRef:
		return "ConstantRef"
	case KindLocalVarRef:
		return "LocalVarRef"
	case KindImplicitValue:
		return "ImplicitValue"
	case KindHashLit:
		return "HashLit"
	case KindHashEntry:
		return "HashEntry"
	case KindArrayLit:
		return "ArrayLit"
	case KindBinaryExpr:
		return "BinaryExpr"
	case KindIntLit:
		return "IntLit"
	case KindFloatLit:
		return "FloatLit"
	case KindStringLit:
		return "StringLit"
	case KindBoolLit:
		return "BoolLit"
	case KindNilLit:
		return "NilLit"
	default:
		return "Unknown"
	}
}

// Node is implemented by every syntax tree node.
type Node interface {
	Kind() NodeKind
	Span() Span
}

// Stmt is implemented by statement nodes.
type Stmt interface {
	Node
	stmt()
}

// Expr is implemented by expression nodes.
type Expr interface {
	Node
	expr()
}

// Program is the root of a parsed file.
type Program struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Stmts []Stmt
}

// MethodDef is a `def name(params) ... end` definition. Like a begin block,
// the body may carry rescue clauses and an ensure block before `end`.
type MethodDef struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Name    string
	NamePos lexer.Position
	Params  []string
	Body    []Stmt
	Rescues []*RescueClause
	Ensure  []Stmt
}

// BeginBlock is a `begin ... end` block with optional rescue clauses and an
// optional ensure block.
type BeginBlock struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Body    []Stmt
	Rescues []*RescueClause
	Ensure  []Stmt
}

// RescueClause is a single `rescue [Const{,Const}] [=> ident]` clause. A
// clause with no exception classes is a bare rescue, which catches the
// language-default StandardError.
type RescueClause struct {
	Pos    lexer.Position
	EndPos lexer.Position

	// Classes are the declared exception classes; empty for a bare rescue.
	Classes []*ConstantRef
	// Binding is the `=> name` local binding, empty if absent.
	Binding string
	Body    []Stmt
}

// Bare reports whether the clause declares no exception classes.
func (r *RescueClause) Bare() bool { return len(r.Classes) == 0 }

// IfStmt is an `if cond ... [else ...] end` statement.
type IfStmt struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Cond Expr
	Then []Stmt
	Else []Stmt
}

// ReturnStmt is a `return [expr]` statement.
type ReturnStmt struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Value Expr // nil for a bare return
}

// Assignment is a `name = expr` statement. Assignments introduce a local
// variable into the enclosing scope.
type Assignment struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Name  string
	Value Expr
}

// ExprStmt wraps an expression used in statement position.
type ExprStmt struct {
	Pos    lexer.Position
	EndPos lexer.Position

	X Expr
}

// MethodCall is a call expression, with or without an explicit receiver.
// A bare identifier that does not resolve to a local variable parses as a
// receiverless call.
type MethodCall struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Receiver Expr // nil for receiverless calls
	Name     string
	Args     []Expr
}

// ConstantRef is a reference to an uppercase-initial constant.
type ConstantRef struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Name string
}

// LocalVarRef is a read of a local variable bound in the enclosing scope.
type LocalVarRef struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Name string
}

// ImplicitValue marks a hash entry value that was omitted in source
// (`{ name: }`). It wraps the expression the key name resolves to: a
// constant, a local variable, or a receiverless method call.
type ImplicitValue struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Inner Expr
}

// HashLit is a `{ ... }` hash literal.
type HashLit struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Entries []*HashEntry
}

// HashEntry is one entry of a hash literal. Label entries (`key: value`)
// carry Key; arrow entries (`expr => value`) carry KeyExpr. A label entry
// with its value omitted carries Implicit instead of Value.
type HashEntry struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Key      string
	KeyExpr  Expr
	Value    Expr
	Implicit *ImplicitValue
}

// ArrayLit is a `[ ... ]` array literal.
type ArrayLit struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Elems []Expr
}

// BinaryExpr is an infix operator expression.
type BinaryExpr struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Op  string
	LHS Expr
	RHS Expr
}

// IntLit is an integer literal.
type IntLit struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Value int64
}

// FloatLit is a floating point literal.
type FloatLit struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Value float64
}

// StringLit is a string literal with escapes resolved.
type StringLit struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Value string
}

// BoolLit is a `true` or `false` literal.
type BoolLit struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Value bool
}

// NilLit is the `nil` literal.
type NilLit struct {
	Pos    lexer.Position
	EndPos lexer.Position
}

// Kind implementations.

func (*Program) Kind() NodeKind       { return KindProgram }
func (*MethodDef) Kind() NodeKind     { return KindMethodDef }
func (*BeginBlock) Kind() NodeKind    { return KindBeginBlock }
func (*RescueClause) Kind() NodeKind  { return KindRescueClause }
func (*IfStmt) Kind() NodeKind        { return KindIfStmt }
func (*ReturnStmt) Kind() NodeKind    { return KindReturnStmt }
func (*Assignment) Kind() NodeKind    { return KindAssignment }
func (*ExprStmt) Kind() NodeKind      { return KindExprStmt }
func (*MethodCall) Kind() NodeKind    { return KindMethodCall }
func (*ConstantRef) Kind() NodeKind   { return KindConstantRef }
func (*LocalVarRef) Kind() NodeKind   { return KindLocalVarRef }
func (*ImplicitValue) Kind() NodeKind { return KindImplicitValue }
func (*HashLit) Kind() NodeKind       { return KindHashLit }
func (*HashEntry) Kind() NodeKind     { return KindHashEntry }
func (*ArrayLit) Kind() NodeKind      { return KindArrayLit }
func (*BinaryExpr) Kind() NodeKind    { return KindBinaryExpr }
func (*IntLit) Kind() NodeKind        { return KindIntLit }
func (*FloatLit) Kind() NodeKind      { return KindFloatLit }
func (*StringLit) Kind() NodeKind     { return KindStringLit }
func (*BoolLit) Kind() NodeKind       { return KindBoolLit }
func (*NilLit) Kind() NodeKind        { return KindNilLit }

// Span implementations.

func (n *Program) Span() Span       { return Span{n.Pos, n.EndPos} }
func (n *MethodDef) Span() Span     { return Span{n.Pos, n.EndPos} }
func (n *BeginBlock) Span() Span    { return Span{n.Pos, n.EndPos} }
func (n *RescueClause) Span() Span  { return Span{n.Pos, n.EndPos} }
func (n *IfStmt) Span() Span        { return Span{n.Pos, n.EndPos} }
func (n *ReturnStmt) Span() Span    { return Span{n.Pos, n.EndPos} }
func (n *Assignment) Span() Span    { return Span{n.Pos, n.EndPos} }
func (n *ExprStmt) Span() Span      { return Span{n.Pos, n.EndPos} }
func (n *MethodCall) Span() Span    { return Span{n.Pos, n.EndPos} }
func (n *ConstantRef) Span() Span   { return Span{n.Pos, n.EndPos} }
func (n *LocalVarRef) Span() Span   { return Span{n.Pos, n.EndPos} }
func (n *ImplicitValue) Span() Span { return Span{n.Pos, n.EndPos} }
func (n *HashLit) Span() Span       { return Span{n.Pos, n.EndPos} }
func (n *HashEntry) Span() Span     { return Span{n.Pos, n.EndPos} }
func (n *ArrayLit) Span() Span      { return Span{n.Pos, n.EndPos} }
func (n *BinaryExpr) Span() Span    { return Span{n.Pos, n.EndPos} }
func (n *IntLit) Span() Span        { return Span{n.Pos, n.EndPos} }
func (n *FloatLit) Span() Span      { return Span{n.Pos, n.EndPos} }
func (n *StringLit) Span() Span     { return Span{n.Pos, n.EndPos} }
func (n *BoolLit) Span() Span       { return Span{n.Pos, n.EndPos} }
func (n *NilLit) Span() Span        { return Span{n.Pos, n.EndPos} }

// Statement markers.

func (*MethodDef) stmt()  {}
func (*BeginBlock) stmt() {}
func (*IfStmt) stmt()     {}
func (*ReturnStmt) stmt() {}
func (*Assignment) stmt() {}
func (*ExprStmt) stmt()   {}

// Expression markers.

func (*MethodCall) expr()    {}
func (*ConstantRef) expr()   {}
func (*LocalVarRef) expr()   {}
func (*ImplicitValue) expr() {}
func (*HashLit) expr()       {}
func (*ArrayLit) expr()      {}
func (*BinaryExpr) expr()    {}
func (*IntLit) expr()        {}
func (*FloatLit) expr()      {}
func (*StringLit) expr()     {}
func (*BoolLit) expr()       {}
func (*NilLit) expr()        {}
