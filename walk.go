package rubble

// Dispatcher drives one depth-first traversal of a syntax tree and invokes
// registered callbacks when it enters nodes of specific kinds. Callbacks
// fire in document order (top to bottom, left to right, matching nesting)
// and exactly once per matching node.
//
// A Dispatcher is built per request and handed to consumers explicitly;
// there is no shared registry.
type Dispatcher struct {
	handlers map[NodeKind][]func(Node)
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[NodeKind][]func(Node))}
}

// Register adds a callback for nodes of the given kind.
func (d *Dispatcher) Register(kind NodeKind, fn func(Node)) {
	d.handlers[kind] = append(d.handlers[kind], fn)
}

// Walk traverses the tree rooted at n, firing callbacks on entry.
func (d *Dispatcher) Walk(n Node) {
	if n == nil {
		return
	}

	for _, fn := range d.handlers[n.Kind()] {
		fn(n)
	}

	walkChildren(n, d.Walk)
}

// Inspect traverses the tree in document order, invoking fn for every node.
func Inspect(n Node, fn func(Node)) {
	if n == nil {
		return
	}

	fn(n)
	walkChildren(n, func(child Node) { Inspect(child, fn) })
}

// walkChildren visits n's direct children in source order.
func walkChildren(n Node, visit func(Node)) {
	stmts := func(list []Stmt) {
		for _, s := range list {
			visit(s)
		}
	}
	expr := func(e Expr) {
		if e != nil {
			visit(e)
		}
	}

	switch node := n.(type) {
	case *Program:
		stmts(node.Stmts)

	case *MethodDef:
		stmts(node.Body)

		for _, r := range node.Rescues {
			visit(r)
		}

		stmts(node.Ensure)

	case *BeginBlock:
		stmts(node.Body)

		for _, r := range node.Rescues {
			visit(r)
		}

		stmts(node.Ensure)

	case *RescueClause:
		for _, c := range node.Classes {
			visit(c)
		}

		stmts(node.Body)

	case *IfStmt:
		expr(node.Cond)
		stmts(node.Then)
		stmts(node.Else)

	case *ReturnStmt:
		expr(node.Value)

	case *Assignment:
		expr(node.Value)

	case *ExprStmt:
		expr(node.X)

	case *MethodCall:
		expr(node.Receiver)

		for _, arg := range node.Args {
			expr(arg)
		}

	case *ImplicitValue:
		expr(node.Inner)

	case *HashLit:
		for _, e := range node.Entries {
			visit(e)
		}

	case *HashEntry:
		expr(node.KeyExpr)
		expr(node.Value)

		if node.Implicit != nil {
			visit(node.Implicit)
		}

	case *ArrayLit:
		for _, e := range node.Elems {
			expr(e)
		}

	case *BinaryExpr:
		expr(node.LHS)
		expr(node.RHS)

	default:
		// Leaf nodes (literals, references) have no children.
	}
}
