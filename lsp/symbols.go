package lsp

import (
	"context"
	"strings"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"rubble"
	"rubble/analysis"
)

// DocumentSymbol handles textDocument/documentSymbol requests.
// Returns a hierarchical tree of symbols for the outline view.
func (s *Server) DocumentSymbol(_ context.Context, params *protocol.DocumentSymbolParams) ([]any, error) {
	s.logger.Debug("DocumentSymbol",
		zap.String("uri", string(params.TextDocument.URI)))

	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok || doc.Analysis == nil || doc.Analysis.Program == nil {
		return nil, nil
	}

	symbols := s.buildDocumentSymbols(doc.Analysis)

	// Convert to []any for the protocol
	result := make([]any, len(symbols))
	for i, sym := range symbols {
		result[i] = sym
	}

	return result, nil
}

// buildDocumentSymbols creates a hierarchical symbol tree from the AST.
func (s *Server) buildDocumentSymbols(f *analysis.AnalyzedFile) []protocol.DocumentSymbol {
	var symbols []protocol.DocumentSymbol

	for _, stmt := range f.Program.Stmts {
		switch n := stmt.(type) {
		case *rubble.MethodDef:
			symbols = append(symbols, s.buildMethodSymbol(n))
		case *rubble.Assignment:
			symbols = append(symbols, protocol.DocumentSymbol{
				Name:           n.Name,
				Kind:           protocol.SymbolKindVariable,
				Range:          spanToRange(n.Span()),
				SelectionRange: spanToRange(n.Span()),
				Detail:         "assignment",
			})
		}
	}

	return symbols
}

// buildMethodSymbol creates a symbol for a method definition with its rescue
// clauses as children.
func (s *Server) buildMethodSymbol(def *rubble.MethodDef) protocol.DocumentSymbol {
	detail := "def"
	if len(def.Params) > 0 {
		detail = "def(" + strings.Join(def.Params, ", ") + ")"
	}

	sym := protocol.DocumentSymbol{
		Name:           def.Name,
		Kind:           protocol.SymbolKindMethod,
		Range:          spanToRange(def.Span()),
		SelectionRange: methodNameRange(def),
		Detail:         detail,
	}

	var children []protocol.DocumentSymbol

	for _, clause := range def.Rescues {
		children = append(children, rescueSymbol(clause))
	}

	if len(def.Ensure) > 0 {
		span := rubble.Span{
			Start: def.Ensure[0].Span().Start,
			End:   def.Ensure[len(def.Ensure)-1].Span().End,
		}
		children = append(children, protocol.DocumentSymbol{
			Name:           "ensure",
			Kind:           protocol.SymbolKindConstructor,
			Range:          spanToRange(span),
			SelectionRange: spanToRange(span),
			Detail:         "ensure",
		})
	}

	sym.Children = children

	return sym
}

// rescueSymbol creates a symbol for a rescue clause.
func rescueSymbol(clause *rubble.RescueClause) protocol.DocumentSymbol {
	var name string
	if clause.Bare() {
		name = "rescue StandardError"
	} else {
		names := make([]string, len(clause.Classes))
		for i, c := range clause.Classes {
			names[i] = c.Name
		}

		name = "rescue " + strings.Join(names, ", ")
	}

	detail := "rescue"
	if clause.Binding != "" {
		detail = "rescue => " + clause.Binding
	}

	return protocol.DocumentSymbol{
		Name:           name,
		Kind:           protocol.SymbolKindEvent,
		Range:          spanToRange(clause.Span()),
		SelectionRange: spanToRange(clause.Span()),
		Detail:         detail,
	}
}

// methodNameRange returns the range covering just the method name.
func methodNameRange(def *rubble.MethodDef) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{
			Line:      uint32(max(0, def.NamePos.Line-1)),   //nolint:gosec
			Character: uint32(max(0, def.NamePos.Column-1)), //nolint:gosec
		},
		End: protocol.Position{
			Line:      uint32(max(0, def.NamePos.Line-1)),                  //nolint:gosec
			Character: uint32(max(0, def.NamePos.Column-1+len(def.Name))), //nolint:gosec
		},
	}
}
