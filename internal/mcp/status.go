package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/deixis/agentd/internal/results"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type statusParams struct {
	TransactionID string `json:"transaction_id" jsonschema:"the transaction id reported by run_action"`
}

func (h *handler) statusHandler(ctx context.Context, req *mcp.CallToolRequest, params statusParams) (*mcp.CallToolResult, any, error) {
	if params.TransactionID == "" {
		return errorResult("transaction_id is required")
	}

	rec, err := h.store.Load(params.TransactionID)
	if errors.Is(err, results.ErrNotFound) {
		return errorResult(fmt.Sprintf("No transaction %s.", params.TransactionID))
	}
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to load transaction %s: %v", params.TransactionID, err))
	}

	if !rec.Done() {
		return textResult(formatStarted(rec))
	}
	return textResult(formatRecord(rec))
}
