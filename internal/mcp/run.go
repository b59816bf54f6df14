package mcp

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/deixis/agentd/internal/results"
	"github.com/deixis/agentd/internal/runner"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type runParams struct {
	Action  string   `json:"action" jsonschema:"name of the action, as returned by list_actions"`
	Args    []string `json:"args,omitempty" jsonschema:"arguments passed to the action"`
	Input   string   `json:"input,omitempty" jsonschema:"payload written to the action's standard input"`
	Timeout string   `json:"timeout,omitempty" jsonschema:"maximum run time such as 30s or 5m, or none. Defaults to the agent's configured timeout."`
	Async   bool     `json:"async,omitempty" jsonschema:"return a transaction id immediately and run the action in the background"`
}

func (h *handler) runHandler(ctx context.Context, req *mcp.CallToolRequest, params runParams) (*mcp.CallToolResult, any, error) {
	act, err := h.catalog.Resolve(params.Action)
	if err != nil {
		return errorResult(err.Error())
	}
	timeout, err := h.parseTimeout(params.Timeout)
	if err != nil {
		return errorResult(err.Error())
	}

	areq := runner.Request{
		ID:      runner.NewID(),
		Action:  act.Name,
		Path:    act.Path,
		Args:    params.Args,
		Input:   []byte(params.Input),
		Timeout: timeout,
	}
	rec := results.Start(areq, time.Now())

	if params.Async {
		if err := h.store.Save(rec); err != nil {
			return errorResult(fmt.Sprintf("Failed to record transaction: %v", err))
		}
		text := formatStarted(rec)
		h.bg.Add(1)
		go func() {
			defer h.bg.Done()
			h.execute(h.bgCtx, areq, rec)
		}()
		return textResult(text)
	}

	h.execute(ctx, areq, rec)
	if rec.Status == results.Error {
		return errorResult(formatRecord(rec))
	}
	return textResult(formatRecord(rec))
}

// execute runs areq and stores the finished record. Storage failures are
// logged rather than returned: the output is still reported to the caller.
func (h *handler) execute(ctx context.Context, areq runner.Request, rec *results.Record) {
	out, err := h.exec.Execute(ctx, areq)
	rec.Finish(out, err, time.Now())
	if err := h.store.Save(rec); err != nil {
		log.Printf("saving result %s: %v", rec.ID, err)
	}
}

func (h *handler) parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return h.timeout, nil
	case strings.EqualFold(raw, "none"):
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid timeout %q: must be positive", raw)
	}
	return d, nil
}
