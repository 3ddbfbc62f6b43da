package rubble_test

import (
	"errors"
	"testing"

	"rubble"
)

func parse(t *testing.T, src string) *rubble.Program {
	t.Helper()

	prog, err := rubble.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	return prog
}

func TestParseMethodDef(t *testing.T) {
	t.Parallel()

	prog := parse(t, `
def fetch_user(id, scope)
  find(id)
end
`)

	if len(prog.Stmts) != 1 {
		t.Fatalf("statement count = %d, want 1", len(prog.Stmts))
	}

	def, ok := prog.Stmts[0].(*rubble.MethodDef)
	if !ok {
		t.Fatalf("statement type = %T, want *rubble.MethodDef", prog.Stmts[0])
	}

	if def.Name != "fetch_user" {
		t.Errorf("name = %q, want %q", def.Name, "fetch_user")
	}

	if len(def.Params) != 2 || def.Params[0] != "id" || def.Params[1] != "scope" {
		t.Errorf("params = %v, want [id scope]", def.Params)
	}

	if len(def.Body) != 1 {
		t.Errorf("body length = %d, want 1", len(def.Body))
	}

	if def.Span().Start.Line != 2 || def.Span().End.Line != 4 {
		t.Errorf("span lines = %d..%d, want 2..4", def.Span().Start.Line, def.Span().End.Line)
	}
}

func TestParseBareRescue(t *testing.T) {
	t.Parallel()

	prog := parse(t, `
def risky
  perform
rescue
  recover
end
`)

	def := prog.Stmts[0].(*rubble.MethodDef)

	if len(def.Rescues) != 1 {
		t.Fatalf("rescue count = %d, want 1", len(def.Rescues))
	}

	clause := def.Rescues[0]

	if !clause.Bare() {
		t.Error("Bare() = false, want true")
	}

	if clause.Span().Start.Line != 4 || clause.Span().Start.Column != 1 {
		t.Errorf("rescue position = %d:%d, want 4:1",
			clause.Span().Start.Line, clause.Span().Start.Column)
	}

	if len(clause.Body) != 1 {
		t.Errorf("rescue body length = %d, want 1", len(clause.Body))
	}
}

func TestParseRescueClassOnNextLine(t *testing.T) {
	t.Parallel()

	// A constant on the line after a bare rescue is the first body
	// statement, not a declared exception class.
	prog := parse(t, `
begin
  perform
rescue
  SomeConstant
end
`)

	block := prog.Stmts[0].(*rubble.BeginBlock)
	clause := block.Rescues[0]

	if !clause.Bare() {
		t.Fatal("Bare() = false, want true")
	}

	if len(clause.Body) != 1 {
		t.Fatalf("rescue body length = %d, want 1", len(clause.Body))
	}

	stmt := clause.Body[0].(*rubble.ExprStmt)
	if _, ok := stmt.X.(*rubble.ConstantRef); !ok {
		t.Errorf("body statement = %T, want *rubble.ConstantRef", stmt.X)
	}
}

func TestParseRescueWithClasses(t *testing.T) {
	t.Parallel()

	prog := parse(t, `
begin
  perform
rescue ArgumentError, TypeError => e
  log(e)
rescue RuntimeError
  retry_it
ensure
  cleanup
end
`)

	block := prog.Stmts[0].(*rubble.BeginBlock)

	if len(block.Rescues) != 2 {
		t.Fatalf("rescue count = %d, want 2", len(block.Rescues))
	}

	first := block.Rescues[0]

	if first.Bare() {
		t.Error("first Bare() = true, want false")
	}

	if len(first.Classes) != 2 {
		t.Fatalf("first class count = %d, want 2", len(first.Classes))
	}

	if first.Classes[0].Name != "ArgumentError" || first.Classes[1].Name != "TypeError" {
		t.Errorf("classes = %q, %q, want ArgumentError, TypeError",
			first.Classes[0].Name, first.Classes[1].Name)
	}

	if first.Binding != "e" {
		t.Errorf("binding = %q, want %q", first.Binding, "e")
	}

	second := block.Rescues[1]
	if len(second.Classes) != 1 || second.Classes[0].Name != "RuntimeError" {
		t.Errorf("second classes = %v, want [RuntimeError]", second.Classes)
	}

	if len(block.Ensure) != 1 {
		t.Errorf("ensure length = %d, want 1", len(block.Ensure))
	}
}

func TestParseImplicitHashValues(t *testing.T) {
	t.Parallel()

	prog := parse(t, `
name = "alice"
h = { name:, Config:, total:, count: 3 }
`)

	assign := prog.Stmts[1].(*rubble.Assignment)
	hash := assign.Value.(*rubble.HashLit)

	if len(hash.Entries) != 4 {
		t.Fatalf("entry count = %d, want 4", len(hash.Entries))
	}

	// name is a bound local
	iv := hash.Entries[0].Implicit
	if iv == nil {
		t.Fatal("entry 0 Implicit = nil, want implicit value")
	}

	if ref, ok := iv.Inner.(*rubble.LocalVarRef); !ok || ref.Name != "name" {
		t.Errorf("entry 0 inner = %T, want *rubble.LocalVarRef{name}", iv.Inner)
	}

	// Config starts uppercase
	iv = hash.Entries[1].Implicit
	if ref, ok := iv.Inner.(*rubble.ConstantRef); !ok || ref.Name != "Config" {
		t.Errorf("entry 1 inner = %T, want *rubble.ConstantRef{Config}", iv.Inner)
	}

	// total is unbound, so it reads as a receiverless call
	iv = hash.Entries[2].Implicit
	if call, ok := iv.Inner.(*rubble.MethodCall); !ok || call.Name != "total" {
		t.Errorf("entry 2 inner = %T, want *rubble.MethodCall{total}", iv.Inner)
	}

	// count has an explicit value
	last := hash.Entries[3]
	if last.Implicit != nil {
		t.Error("entry 3 Implicit != nil, want nil")
	}

	if _, ok := last.Value.(*rubble.IntLit); !ok {
		t.Errorf("entry 3 value = %T, want *rubble.IntLit", last.Value)
	}
}

func TestParseImplicitValueScoping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string // "local", "call", or "const"
	}{
		{
			name: "method parameter is a local",
			src:  "def m(name)\n  { name: }\nend",
			want: "local",
		},
		{
			name: "rescue binding is a local",
			src:  "begin\n  go\nrescue => err\n  { err: }\nend",
			want: "local",
		},
		{
			name: "outer local is invisible inside def",
			src:  "name = 1\ndef m\n  { name: }\nend",
			want: "call",
		},
		{
			name: "assignment after the hash does not bind",
			src:  "h = { name: }\nname = 1",
			want: "call",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			prog := parse(t, tt.src)

			var found *rubble.ImplicitValue

			rubble.Inspect(prog, func(n rubble.Node) {
				if iv, ok := n.(*rubble.ImplicitValue); ok {
					found = iv
				}
			})

			if found == nil {
				t.Fatal("no implicit value in tree")
			}

			var got string

			switch found.Inner.(type) {
			case *rubble.LocalVarRef:
				got = "local"
			case *rubble.MethodCall:
				got = "call"
			case *rubble.ConstantRef:
				got = "const"
			}

			if got != tt.want {
				t.Errorf("resolution = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseArrowEntries(t *testing.T) {
	t.Parallel()

	prog := parse(t, `h = { "key" => 1, Other => two }`)

	assign := prog.Stmts[0].(*rubble.Assignment)
	hash := assign.Value.(*rubble.HashLit)

	if len(hash.Entries) != 2 {
		t.Fatalf("entry count = %d, want 2", len(hash.Entries))
	}

	if _, ok := hash.Entries[0].KeyExpr.(*rubble.StringLit); !ok {
		t.Errorf("entry 0 key = %T, want *rubble.StringLit", hash.Entries[0].KeyExpr)
	}

	if _, ok := hash.Entries[1].KeyExpr.(*rubble.ConstantRef); !ok {
		t.Errorf("entry 1 key = %T, want *rubble.ConstantRef", hash.Entries[1].KeyExpr)
	}
}

func TestParseBinaryPrecedence(t *testing.T) {
	t.Parallel()

	prog := parse(t, `x = 1 + 2 * 3`)

	assign := prog.Stmts[0].(*rubble.Assignment)

	add, ok := assign.Value.(*rubble.BinaryExpr)
	if !ok || add.Op != "+" {
		t.Fatalf("top expression = %T, want + binary", assign.Value)
	}

	mul, ok := add.RHS.(*rubble.BinaryExpr)
	if !ok || mul.Op != "*" {
		t.Fatalf("right side = %T, want * binary", add.RHS)
	}
}

func TestParseMethodChain(t *testing.T) {
	t.Parallel()

	prog := parse(t, `user.profile.name`)

	stmt := prog.Stmts[0].(*rubble.ExprStmt)

	outer, ok := stmt.X.(*rubble.MethodCall)
	if !ok || outer.Name != "name" {
		t.Fatalf("outer call = %T, want name call", stmt.X)
	}

	inner, ok := outer.Receiver.(*rubble.MethodCall)
	if !ok || inner.Name != "profile" {
		t.Fatalf("receiver = %T, want profile call", outer.Receiver)
	}
}

func TestParseIfElse(t *testing.T) {
	t.Parallel()

	prog := parse(t, `
if ready
  go
else
  wait
end
`)

	stmt := prog.Stmts[0].(*rubble.IfStmt)

	if len(stmt.Then) != 1 || len(stmt.Else) != 1 {
		t.Errorf("branch lengths = %d/%d, want 1/1", len(stmt.Then), len(stmt.Else))
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{name: "missing end", src: "def m\n  x"},
		{name: "missing method name", src: "def (a)"},
		{name: "unclosed hash", src: "h = { name: 1"},
		{name: "arrow without value", src: "h = { 1 => }"},
		{name: "two statements on one line", src: "a b = 1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := rubble.Parse([]byte(tt.src))
			if err == nil {
				t.Fatal("Parse() succeeded, want error")
			}

			var parseErr *rubble.ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("error type = %T, want *rubble.ParseError", err)
			}

			if parseErr.Pos.Line == 0 {
				t.Error("error position missing")
			}
		})
	}
}
