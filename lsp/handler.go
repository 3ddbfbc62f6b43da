package lsp

import (
	"context"
	"encoding/json"
	"fmt"

	"go.lsp.dev/jsonrpc2"
)

// MethodTextDocumentInlayHint is the LSP 3.17 request method name.
const MethodTextDocumentInlayHint = "textDocument/inlayHint"

// Handler returns a jsonrpc2 handler that serves the requests
// go.lsp.dev/protocol v0.12.0 does not know about, delegating everything
// else to next. Install it as the fallback of protocol.ServerHandler.
func Handler(server *Server, next jsonrpc2.Handler) jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		if req.Method() != MethodTextDocumentInlayHint {
			return next(ctx, reply, req)
		}

		var params InlayHintParams

		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, fmt.Errorf("%s: %w", MethodTextDocumentInlayHint, err))
		}

		result, err := server.InlayHint(ctx, &params)

		return reply(ctx, result, err)
	}
}
