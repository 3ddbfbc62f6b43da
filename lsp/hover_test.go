package lsp_test

import (
	"context"
	"strings"
	"testing"

	"go.lsp.dev/protocol"
)

func hoverAt(t *testing.T, line, character uint32) *protocol.Hover {
	t.Helper()

	server, _ := newTestServer(t)

	openTestDocument(t, server, testDocument)

	result, err := server.Hover(context.Background(), &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///test.rbl"},
			Position:     protocol.Position{Line: line, Character: character},
		},
	})
	if err != nil {
		t.Fatalf("Hover() error: %v", err)
	}

	return result
}

func TestServer_Hover_BareRescue(t *testing.T) {
	t.Parallel()

	// On the rescue keyword (line 2).
	result := hoverAt(t, 2, 0)

	if result == nil {
		t.Fatal("Expected hover result")
	}

	if result.Contents.Kind != protocol.Markdown {
		t.Errorf("Expected markdown content, got %s", result.Contents.Kind)
	}

	if !strings.Contains(result.Contents.Value, "StandardError") {
		t.Errorf("hover = %q, want StandardError mention", result.Contents.Value)
	}

	if !strings.Contains(result.Contents.Value, "implied") {
		t.Errorf("hover = %q, want implied-class note", result.Contents.Value)
	}
}

func TestServer_Hover_MethodDef(t *testing.T) {
	t.Parallel()

	// On the fetch definition line, past the parameter list so the method
	// node itself is the innermost match.
	result := hoverAt(t, 0, 0)

	if result == nil {
		t.Fatal("Expected hover result")
	}

	if !strings.Contains(result.Contents.Value, "fetch") {
		t.Errorf("hover = %q, want method name", result.Contents.Value)
	}
}

func TestServer_Hover_ImplicitValue(t *testing.T) {
	t.Parallel()

	// On the name: shorthand entry (line 7, column 4).
	result := hoverAt(t, 7, 4)

	if result == nil {
		t.Fatal("Expected hover result")
	}

	if !strings.Contains(result.Contents.Value, "Local variable") {
		t.Errorf("hover = %q, want local variable note", result.Contents.Value)
	}

	if !strings.Contains(result.Contents.Value, "name") {
		t.Errorf("hover = %q, want variable name", result.Contents.Value)
	}
}

func TestServer_Hover_NoContent(t *testing.T) {
	t.Parallel()

	// Beyond the file.
	result := hoverAt(t, 100, 0)

	if result != nil {
		t.Error("Expected nil hover result for position with no content")
	}
}
