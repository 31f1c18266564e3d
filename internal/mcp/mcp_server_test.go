package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/huangsam/transcomplex/core"
	"github.com/huangsam/transcomplex/core/algo"
	"github.com/huangsam/transcomplex/internal/contract"
	mcp_internal "github.com/huangsam/transcomplex/internal/mcp"
	"github.com/huangsam/transcomplex/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleText = "The committee postponed its decision. Members wanted more data before voting. " +
	"A second meeting was scheduled for the following week. Everyone agreed to share notes in advance."

func newTestServer(t *testing.T) func(name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	baseCfg := &contract.Config{
		Workers:  2,
		Split:    schema.SplitFile,
		Scoring:  algo.DefaultConfiguration(),
		MaxScore: 1.0,
	}

	// A nil manager disables the result cache and analysis tracking
	eng, err := core.NewEngine(baseCfg, nil)
	require.NoError(t, err)
	s := mcp_internal.NewMCPServer(baseCfg, eng, "test")

	return func(name string, args map[string]any) *mcp.CallToolResult {
		tool := s.GetTool(name)
		require.NotNil(t, tool, "Tool %s should exist", name)

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{Name: name, Arguments: args},
		}
		res, err := tool.Handler(context.Background(), req)
		require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
		require.NotNil(t, res)
		return res
	}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	call := newTestServer(t)

	tests := []struct {
		name    string
		tool    string
		args    map[string]any
		wantErr string
	}{
		{"score_text missing text", "score_text", map[string]any{}, "text"},
		{"score_text empty text", "score_text", map[string]any{"text": "   "}, "scoring failed"},
		{"batch_score missing texts", "batch_score", map[string]any{}, "at least one text"},
		{"batch_score empty texts", "batch_score", map[string]any{"texts": []any{}}, "at least one text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(tt.tool, tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, resultText(t, res), tt.wantErr)
		})
	}
}

func TestMCPServerHandlers_ScoreText(t *testing.T) {
	call := newTestServer(t)

	res := call("score_text", map[string]any{"text": sampleText, "source": "minutes"})
	require.False(t, res.IsError, resultText(t, res))

	var item schema.EnrichedBatchItem
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &item))
	assert.Equal(t, "minutes", item.Source)
	require.NotNil(t, item.Result)
	require.NotNil(t, item.Overall)
	assert.GreaterOrEqual(t, *item.Overall, 0.0)
	assert.LessOrEqual(t, *item.Overall, 1.0)
	assert.Contains(t, item.Result.FamilyScores, schema.ReadabilityFamily)
	assert.NotEqual(t, "Error", item.Label)
}

func TestMCPServerHandlers_BatchScore(t *testing.T) {
	call := newTestServer(t)

	res := call("batch_score", map[string]any{
		"texts": []any{sampleText, "", "Short one. Another short one. And a third."},
	})
	require.False(t, res.IsError, resultText(t, res))

	var items []schema.EnrichedBatchItem
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &items))
	require.Len(t, items, 3)
	for i, it := range items {
		assert.Equal(t, i, it.Index, "items keep input order")
	}
	assert.Equal(t, "text1", items[0].Source)
	assert.NotNil(t, items[0].Result)
	assert.Equal(t, "Error", items[1].Label)
	assert.NotEmpty(t, items[1].Error)

	t.Run("sorted with limit", func(t *testing.T) {
		res := call("batch_score", map[string]any{
			"texts": []any{"", sampleText},
			"sort":  true,
			"limit": 1.0,
		})
		require.False(t, res.IsError)

		var items []schema.EnrichedBatchItem
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &items))
		require.Len(t, items, 1)
		assert.Equal(t, "text2", items[0].Source, "failures sort last")
	})
}

func TestMCPServerHandlers_DescribeMetrics(t *testing.T) {
	call := newTestServer(t)

	res := call("describe_metrics", nil)
	require.False(t, res.IsError)

	var model schema.MetricsRenderModel
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &model))
	assert.Len(t, model.Families, len(schema.AllFamilies))
	assert.Len(t, model.Metrics, len(schema.MetricFamilies))
	assert.Len(t, model.Thresholds, 4)
}
