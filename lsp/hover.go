package lsp

import (
	"context"
	"fmt"
	"strings"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"rubble"
	"rubble/analysis"
)

// Hover handles textDocument/hover requests.
func (s *Server) Hover(_ context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	s.logger.Debug("Hover",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character))

	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok || doc.Analysis == nil || doc.Analysis.Program == nil {
		return nil, nil //nolint:nilnil
	}

	pos := analysis.PositionToLexer(params.Position.Line, params.Position.Character)

	// Find the node at this position
	node := analysis.NodeAtPosition(doc.Analysis, pos)
	if node == nil {
		return nil, nil //nolint:nilnil
	}

	// Generate hover content based on node type
	content, rng := s.hoverContent(node)
	if content == "" {
		return nil, nil //nolint:nilnil
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: content,
		},
		Range: rng,
	}, nil
}

// hoverContent generates hover markdown for a node.
func (s *Server) hoverContent(node rubble.Node) (string, *protocol.Range) {
	switch n := node.(type) {
	case *rubble.MethodDef:
		return s.hoverMethodDef(n), rangePtr(spanToRange(n.Span()))

	case *rubble.RescueClause:
		return s.hoverRescue(n), rangePtr(spanToRange(n.Span()))

	case *rubble.ImplicitValue:
		return s.hoverImplicitValue(n), rangePtr(spanToRange(n.Span()))

	case *rubble.ConstantRef:
		return fmt.Sprintf("**Constant:** `%s`", n.Name), rangePtr(spanToRange(n.Span()))

	case *rubble.LocalVarRef:
		return fmt.Sprintf("**Local variable:** `%s`", n.Name), rangePtr(spanToRange(n.Span()))

	default:
		return "", nil
	}
}

// hoverMethodDef generates hover content for a method definition.
func (s *Server) hoverMethodDef(def *rubble.MethodDef) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("**Method:** `%s`\n\n", def.Name))
	b.WriteString("```\ndef ")
	b.WriteString(def.Name)

	if len(def.Params) > 0 {
		b.WriteString("(" + strings.Join(def.Params, ", ") + ")")
	}

	b.WriteString("\n```")

	if len(def.Rescues) > 0 {
		b.WriteString(fmt.Sprintf("\n\n- **Rescue clauses:** %d", len(def.Rescues)))
	}

	if len(def.Ensure) > 0 {
		b.WriteString("\n- **Has ensure:** yes")
	}

	return b.String()
}

// hoverRescue generates hover content for a rescue clause.
func (s *Server) hoverRescue(clause *rubble.RescueClause) string {
	var b strings.Builder

	if clause.Bare() {
		b.WriteString("**Rescue:** `StandardError` (implied)\n\n")
		b.WriteString("A rescue clause without an exception class catches `StandardError` and its subclasses.")
	} else {
		names := make([]string, len(clause.Classes))
		for i, c := range clause.Classes {
			names[i] = "`" + c.Name + "`"
		}

		b.WriteString("**Rescue:** " + strings.Join(names, ", "))
	}

	if clause.Binding != "" {
		b.WriteString(fmt.Sprintf("\n\n**Bound to:** `%s`", clause.Binding))
	}

	return b.String()
}

// hoverImplicitValue generates hover content for an omitted hash value.
func (s *Server) hoverImplicitValue(iv *rubble.ImplicitValue) string {
	switch inner := iv.Inner.(type) {
	case *rubble.MethodCall:
		return fmt.Sprintf("**Implicit value:** method call `%s`", inner.Name)
	case *rubble.ConstantRef:
		return fmt.Sprintf("**Implicit value:** constant `%s`", inner.Name)
	case *rubble.LocalVarRef:
		return fmt.Sprintf("**Implicit value:** local variable `%s`", inner.Name)
	default:
		return ""
	}
}
