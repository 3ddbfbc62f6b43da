package lsp_test

import (
	"context"
	"testing"

	"go.lsp.dev/protocol"
)

func TestServer_DocumentSymbol(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)

	openTestDocument(t, server, testDocument)

	result, err := server.DocumentSymbol(context.Background(), &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///test.rbl"},
	})
	if err != nil {
		t.Fatalf("DocumentSymbol() error: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("symbol count = %d, want 2", len(result))
	}

	fetch, ok := result[0].(protocol.DocumentSymbol)
	if !ok {
		t.Fatalf("symbol type = %T, want protocol.DocumentSymbol", result[0])
	}

	if fetch.Name != "fetch" {
		t.Errorf("symbol name = %q, want fetch", fetch.Name)
	}

	if fetch.Kind != protocol.SymbolKindMethod {
		t.Errorf("symbol kind = %v, want method", fetch.Kind)
	}

	if fetch.Detail != "def(id)" {
		t.Errorf("detail = %q, want def(id)", fetch.Detail)
	}

	// The bare rescue appears as a child, labeled with the implied class.
	if len(fetch.Children) != 1 {
		t.Fatalf("child count = %d, want 1", len(fetch.Children))
	}

	if fetch.Children[0].Name != "rescue StandardError" {
		t.Errorf("child name = %q, want rescue StandardError", fetch.Children[0].Name)
	}

	render, ok := result[1].(protocol.DocumentSymbol)
	if !ok {
		t.Fatalf("symbol type = %T, want protocol.DocumentSymbol", result[1])
	}

	if render.Name != "render" {
		t.Errorf("symbol name = %q, want render", render.Name)
	}

	// The selection range covers just the method name.
	if render.SelectionRange.Start.Line != 6 || render.SelectionRange.Start.Character != 4 {
		t.Errorf("selection start = %d:%d, want 6:4",
			render.SelectionRange.Start.Line, render.SelectionRange.Start.Character)
	}

	if render.SelectionRange.End.Character != 10 {
		t.Errorf("selection end character = %d, want 10", render.SelectionRange.End.Character)
	}
}

func TestServer_DocumentSymbol_TopLevelAssignments(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)

	openTestDocument(t, server, `threshold = 5

def check(value)
  value > threshold
end
`)

	result, err := server.DocumentSymbol(context.Background(), &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///test.rbl"},
	})
	if err != nil {
		t.Fatalf("DocumentSymbol() error: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("symbol count = %d, want 2", len(result))
	}

	assign, ok := result[0].(protocol.DocumentSymbol)
	if !ok || assign.Name != "threshold" || assign.Kind != protocol.SymbolKindVariable {
		t.Errorf("first symbol = %+v, want threshold variable", result[0])
	}
}

func TestServer_DocumentSymbol_RescueWithClasses(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)

	openTestDocument(t, server, `def risky
  go
rescue TypeError, ArgumentError => e
  log(e)
ensure
  cleanup
end
`)

	result, err := server.DocumentSymbol(context.Background(), &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///test.rbl"},
	})
	if err != nil {
		t.Fatalf("DocumentSymbol() error: %v", err)
	}

	if len(result) != 1 {
		t.Fatalf("symbol count = %d, want 1", len(result))
	}

	def := result[0].(protocol.DocumentSymbol)

	if len(def.Children) != 2 {
		t.Fatalf("child count = %d, want rescue and ensure", len(def.Children))
	}

	rescue := def.Children[0]
	if rescue.Name != "rescue TypeError, ArgumentError" {
		t.Errorf("rescue name = %q", rescue.Name)
	}

	if rescue.Detail != "rescue => e" {
		t.Errorf("rescue detail = %q, want rescue => e", rescue.Detail)
	}

	if def.Children[1].Name != "ensure" {
		t.Errorf("second child = %q, want ensure", def.Children[1].Name)
	}
}
