package lsp

import (
	"net/url"
	"strings"

	"go.lsp.dev/protocol"

	"rubble"
)

// spanToRange converts a rubble.Span to an LSP protocol.Range.
// rubble uses 1-based line/column, LSP uses 0-based.
func spanToRange(span rubble.Span) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{
			Line:      uint32(max(0, span.Start.Line-1)),   //nolint:gosec // G115: values are small line numbers
			Character: uint32(max(0, span.Start.Column-1)), //nolint:gosec // G115: values are small column numbers
		},
		End: protocol.Position{
			Line:      uint32(max(0, span.End.Line-1)),   //nolint:gosec // G115: values are small line numbers
			Character: uint32(max(0, span.End.Column-1)), //nolint:gosec // G115: values are small column numbers
		},
	}
}

func rangePtr(r protocol.Range) *protocol.Range { return &r }

// URIToPath converts a document URI to a file system path.
func URIToPath(docURI protocol.DocumentURI) string {
	u, err := url.Parse(string(docURI))
	if err != nil {
		// Fallback: strip file:// prefix
		return strings.TrimPrefix(string(docURI), "file://")
	}

	if u.Scheme == "file" {
		return u.Path
	}

	return string(docURI)
}
