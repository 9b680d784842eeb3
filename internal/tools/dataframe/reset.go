package dataframe

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/haasonsaas/chartd/internal/agent"
	"github.com/haasonsaas/chartd/internal/observability"
	"github.com/haasonsaas/chartd/internal/store"
)

// ResetTool discards all transformations and restores the working table to
// an independent copy of the originally loaded data.
type ResetTool struct{ deps }

func (t *ResetTool) Name() string { return "reset_data" }

func (t *ResetTool) Description() string {
	return "Reset the dataset to its original state. Use this to undo all filters and transformations. Call this before starting a new analysis on the full dataset."
}

func (t *ResetTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {},
		"additionalProperties": false
	}`)
}

func (t *ResetTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	sid := observability.GetSessionID(ctx)
	if sid == "" {
		return agent.Errorf("no session bound to this request"), nil
	}

	restored, err := t.store.Reset(sid)
	if err != nil {
		if errors.Is(err, store.ErrNoOriginal) {
			return agent.Errorf("No original data to reset to."), nil
		}
		return nil, err
	}

	t.log.Info(ctx, "reset to original", "rows", restored.NumRows(), "cols", restored.NumCols())
	return agent.Textf("Reset to original dataset: %d rows, %d columns",
		restored.NumRows(), restored.NumCols()), nil
}
