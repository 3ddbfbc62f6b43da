package analysis

import (
	"github.com/alecthomas/participle/v2/lexer"

	"rubble"
)

// LineRange is the caller-requested line window for a request, 1-based and
// inclusive on both ends. The zero value means "whole document".
type LineRange struct {
	Start int
	End   int
}

// Whole reports whether the range covers the entire document.
func (r LineRange) Whole() bool { return r.Start == 0 && r.End == 0 }

// Visible reports whether a node's span intersects the requested range.
// It is a pure predicate over lines; column precision is not needed for
// viewport filtering.
func Visible(span rubble.Span, rng LineRange) bool {
	if rng.Whole() {
		return true
	}

	return span.Start.Line <= rng.End && span.End.Line >= rng.Start
}

// PositionToLexer converts LSP 0-based line/character to the lexer's
// 1-based line/column.
func PositionToLexer(line, character uint32) lexer.Position {
	return lexer.Position{
		Line:   int(line) + 1,
		Column: int(character) + 1,
	}
}

// NodeAtPosition finds the most specific node at a given position.
// Returns nil if no node contains the position.
//
//nolint:ireturn // Returning interface is intentional for node polymorphism.
func NodeAtPosition(f *AnalyzedFile, pos lexer.Position) rubble.Node {
	if f.Program == nil {
		return nil
	}

	var best rubble.Node

	rubble.Inspect(f.Program, func(n rubble.Node) {
		if _, isRoot := n.(*rubble.Program); isRoot {
			return
		}

		if !containsPosition(n.Span(), pos) {
			return
		}

		// Children are visited after parents, and a child's span nests
		// inside its parent's, so preferring narrower spans keeps the
		// innermost match.
		if best == nil || narrower(n.Span(), best.Span()) {
			best = n
		}
	})

	return best
}

// narrower reports whether a covers fewer bytes than b.
func narrower(a, b rubble.Span) bool {
	return a.End.Offset-a.Start.Offset <= b.End.Offset-b.Start.Offset
}

// containsPosition checks if a span contains a position.
func containsPosition(span rubble.Span, pos lexer.Position) bool {
	if pos.Line < span.Start.Line {
		return false
	}

	if pos.Line == span.Start.Line && pos.Column < span.Start.Column {
		return false
	}

	if pos.Line > span.End.Line {
		return false
	}

	if pos.Line == span.End.Line && pos.Column > span.End.Column {
		return false
	}

	return true
}
