package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"rubble"
	"rubble/analysis"
	"rubble/hints"
)

// Inlay hint types follow LSP 3.17, which go.lsp.dev/protocol v0.12.0
// predates, so they are defined here and served by the jsonrpc2 wrapper in
// handler.go rather than through the generated protocol.Server surface.

// InlayHintParams are the parameters of a textDocument/inlayHint request.
type InlayHintParams struct {
	TextDocument protocol.TextDocumentIdentifier `json:"textDocument"`
	Range        protocol.Range                  `json:"range"`
}

// InlayHintKind is the standard kind of an inlay hint.
type InlayHintKind int

// Inlay hint kinds.
const (
	InlayHintType InlayHintKind = iota + 1
	InlayHintParameter
)

// InlayHint is an inline annotation attached to a source position.
type InlayHint struct {
	Position     protocol.Position `json:"position"`
	Label        string            `json:"label"`
	Kind         InlayHintKind     `json:"kind,omitempty"`
	Tooltip      string            `json:"tooltip,omitempty"`
	PaddingLeft  bool              `json:"paddingLeft,omitempty"`
	PaddingRight bool              `json:"paddingRight,omitempty"`
}

// InlayHint handles textDocument/inlayHint requests. Hints are computed
// fresh per request by one collector bound to the request's range and the
// server's feature flags.
func (s *Server) InlayHint(_ context.Context, params *InlayHintParams) ([]InlayHint, error) {
	s.logger.Debug("InlayHint",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("startLine", params.Range.Start.Line),
		zap.Uint32("endLine", params.Range.End.Line))

	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	// Hints keep working from the last good parse while the document is
	// mid-edit.
	file := doc.Analysis
	if file == nil || file.Program == nil {
		file = doc.LastValidAnalysis
	}

	if file == nil || file.Program == nil {
		return nil, nil
	}

	dispatcher := rubble.NewDispatcher()
	collector := hints.New(dispatcher, lineRangeFromProtocol(params.Range), s.flags)
	dispatcher.Walk(file.Program)

	collected := collector.Hints()
	result := make([]InlayHint, 0, len(collected))

	for _, h := range collected {
		result = append(result, InlayHint{
			Position: protocol.Position{
				Line:      h.Position.Line,
				Character: h.Position.Character,
			},
			Label:       h.Label,
			Kind:        InlayHintType,
			Tooltip:     h.Tooltip,
			PaddingLeft: h.PaddingLeft,
		})
	}

	return result, nil
}

// lineRangeFromProtocol converts an LSP 0-based, end-exclusive range to the
// analyzer's 1-based inclusive line window.
func lineRangeFromProtocol(r protocol.Range) analysis.LineRange {
	start := int(r.Start.Line) + 1
	end := int(r.End.Line) + 1

	// An end position at character 0 does not include its line.
	if r.End.Character == 0 && end > start {
		end--
	}

	return analysis.LineRange{Start: start, End: end}
}
