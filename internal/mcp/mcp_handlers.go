package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/huangsam/transcomplex/core"
	"github.com/huangsam/transcomplex/core/algo"
	"github.com/huangsam/transcomplex/internal/contract"
	"github.com/huangsam/transcomplex/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	eng     *core.Engine
}

func (h *toolHandler) handleScoreText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	source := request.GetString("source", "mcp")

	item, err := core.GetScoreResult(core.WithSuppressHeader(ctx), h.baseCfg.Clone(), h.eng, schema.TextInput{Source: source, Text: text})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err)), nil
	}
	return jsonResult(schema.EnrichItems([]schema.BatchItem{item})[0])
}

func (h *toolHandler) handleBatchScore(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	texts := request.GetStringSlice("texts", nil)
	if len(texts) == 0 {
		return mcp.NewToolResultError("texts must contain at least one text"), nil
	}
	if len(texts) > maxBatchTexts {
		return mcp.NewToolResultError(fmt.Sprintf("texts must contain at most %d texts, got %d", maxBatchTexts, len(texts))), nil
	}

	cfg := h.baseCfg.Clone()
	cfg.Sort = request.GetBool("sort", cfg.Sort)
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}

	inputs := make([]schema.TextInput, len(texts))
	for i, t := range texts {
		inputs[i] = schema.TextInput{Source: "text" + strconv.Itoa(i+1), Text: t}
	}

	items, err := core.GetBatchResults(core.WithSuppressHeader(ctx), cfg, h.eng, inputs, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("batch failed: %v", err)), nil
	}
	return jsonResult(schema.EnrichItems(items))
}

func (h *toolHandler) handleDescribeMetrics(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scoring := h.baseCfg.Scoring
	if scoring == nil {
		scoring = algo.DefaultConfiguration()
	}
	return jsonResult(core.BuildMetricsModel(scoring))
}

// jsonResult renders data as an indented JSON text result.
func jsonResult(data any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
