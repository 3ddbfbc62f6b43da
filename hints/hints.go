// Package hints computes inlay hints for rubble source: the implied
// StandardError on bare rescue clauses, and the resolved value of hash
// entries that use the value-omission shorthand.
package hints

import (
	"rubble"
	"rubble/analysis"
)

// FlagSource answers whether a named feature is enabled. The hint engine
// never looks past this capability; override semantics belong to the
// provider.
type FlagSource interface {
	Enabled(name string) bool
}

// Position is a 0-based line/character pair, matching editor coordinates.
type Position struct {
	Line      uint32
	Character uint32
}

// Hint is one inlay hint. Immutable once constructed.
type Hint struct {
	Position    Position
	Label       string
	PaddingLeft bool
	Tooltip     string
}

const (
	rescueKeyword         = "rescue"
	defaultExceptionClass = "StandardError"
)

// Collector accumulates inlay hints over one traversal. A collector is
// scoped to a single request: it owns its hint list exclusively and is
// discarded once the result has been read.
type Collector struct {
	rng   analysis.LineRange
	flags FlagSource
	hints []Hint
}

// New creates a collector bound to one request's line range and feature
// flags, and registers its callbacks with the dispatcher that will drive
// the traversal.
func New(d *rubble.Dispatcher, rng analysis.LineRange, flags FlagSource) *Collector {
	c := &Collector{rng: rng, flags: flags}

	d.Register(rubble.KindRescueClause, c.rescueClause)
	d.Register(rubble.KindImplicitValue, c.implicitValue)

	return c
}

// Hints returns the hints accumulated so far, in document order. Safe to
// call repeatedly; it never mutates the collector.
func (c *Collector) Hints() []Hint {
	return c.hints
}

// rescueClause emits the implied exception class after a bare rescue
// keyword. Clauses that declare classes, or fall outside the requested
// range, produce nothing.
func (c *Collector) rescueClause(n rubble.Node) {
	if !c.flags.Enabled(rubble.FeatureImplicitRescue) {
		return
	}

	clause := n.(*rubble.RescueClause) //nolint:forcetypeassert // kind-dispatched

	if !clause.Bare() {
		return
	}

	span := clause.Span()
	if !analysis.Visible(span, c.rng) {
		return
	}

	c.hints = append(c.hints, Hint{
		Position: Position{
			Line:      uint32(span.Start.Line - 1),                       //nolint:gosec // lines are small
			Character: uint32(span.Start.Column - 1 + len(rescueKeyword)), //nolint:gosec // columns are small
		},
		Label:       defaultExceptionClass,
		PaddingLeft: true,
		Tooltip:     "StandardError is implied in a bare rescue",
	})
}

// implicitValue emits the name an omitted hash value resolves to, placed
// just after the entry's colon.
func (c *Collector) implicitValue(n rubble.Node) {
	if !c.flags.Enabled(rubble.FeatureImplicitHashValue) {
		return
	}

	node := n.(*rubble.ImplicitValue) //nolint:forcetypeassert // kind-dispatched

	span := node.Span()
	if !analysis.Visible(span, c.rng) {
		return
	}

	var name, tooltip string

	switch inner := node.Inner.(type) {
	case *rubble.MethodCall:
		name = inner.Name
		tooltip = "This is a method call. Method name: " + name
	case *rubble.ConstantRef:
		name = inner.Name
		tooltip = "This is a constant: " + name
	case *rubble.LocalVarRef:
		name = inner.Name
		tooltip = "This is a local variable: " + name
	default:
		// Unhandled inner kinds still emit, with an empty label and
		// tooltip. TODO: decide whether these should be suppressed
		// instead; editors render an empty hint as a bare padding space.
	}

	c.hints = append(c.hints, Hint{
		Position: Position{
			Line:      uint32(span.Start.Line - 1),                      //nolint:gosec // lines are small
			Character: uint32(span.Start.Column - 1 + len(name) + 1),    //nolint:gosec // columns are small
		},
		Label:       name,
		PaddingLeft: true,
		Tooltip:     tooltip,
	})
}
