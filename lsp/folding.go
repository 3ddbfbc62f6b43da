package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"rubble"
)

// FoldingRanges handles textDocument/foldingRange requests.
// Returns folding ranges for method definitions, begin blocks, conditionals,
// and multi-line collection literals.
func (s *Server) FoldingRanges(_ context.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	s.logger.Debug("FoldingRanges",
		zap.String("uri", string(params.TextDocument.URI)))

	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok || doc.Analysis == nil || doc.Analysis.Program == nil {
		return nil, nil
	}

	var ranges []protocol.FoldingRange

	rubble.Inspect(doc.Analysis.Program, func(n rubble.Node) {
		switch node := n.(type) {
		case *rubble.MethodDef, *rubble.BeginBlock, *rubble.IfStmt:
			ranges = append(ranges, blockFoldingRange(node.Span()))
		case *rubble.RescueClause:
			if node.EndPos.Line > node.Pos.Line {
				ranges = append(ranges, blockFoldingRange(node.Span()))
			}
		case *rubble.HashLit, *rubble.ArrayLit:
			// Single-line literals have nothing to fold.
			span := node.Span()
			if span.End.Line > span.Start.Line {
				ranges = append(ranges, blockFoldingRange(span))
			}
		}
	})

	return ranges, nil
}

// blockFoldingRange creates a region folding range covering a span's lines.
func blockFoldingRange(span rubble.Span) protocol.FoldingRange {
	return protocol.FoldingRange{
		StartLine: uint32(max(0, span.Start.Line-1)), //nolint:gosec
		EndLine:   uint32(max(0, span.End.Line-1)),   //nolint:gosec
		Kind:      protocol.RegionFoldingRange,
	}
}
