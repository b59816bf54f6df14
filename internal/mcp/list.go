package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type listParams struct{}

func (h *handler) listHandler(ctx context.Context, req *mcp.CallToolRequest, _ listParams) (*mcp.CallToolResult, any, error) {
	list, err := h.catalog.List()
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to list actions: %v", err))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Actions (%d):\n", len(list))
	for _, a := range list {
		fmt.Fprintf(&b, "  %s\n", a.Name)
	}
	return textResult(b.String())
}
