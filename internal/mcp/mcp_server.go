// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/transcomplex/core"
	"github.com/huangsam/transcomplex/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// maxBatchTexts caps the texts accepted by a single batch_score call.
const maxBatchTexts = 1000

// NewMCPServer initializes and configures the transcomplex MCP server without starting it.
// Every tool call scores on eng. This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, eng *core.Engine, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Translation Complexity Server",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		eng:     eng,
	}

	// --- 1. Tool: score_text ---
	s.AddTool(mcp.NewTool("score_text",
		mcp.WithDescription("Score how hard a text is to translate. Returns sub-metric scores in [0,1], family means, the overall score and its tier."),
		mcp.WithString("text", mcp.Description("The text to score."), mcp.Required()),
		mcp.WithString("source", mcp.Description("Optional name for the text, echoed back in the result.")),
	), h.handleScoreText)

	// --- 2. Tool: batch_score ---
	s.AddTool(mcp.NewTool("batch_score",
		mcp.WithDescription("Score many texts at once. Returns one entry per text in input order. Texts that cannot be scored carry an error instead of a result."),
		mcp.WithArray("texts", mcp.Description("The texts to score."), mcp.WithStringItems(), mcp.Required()),
		mcp.WithBoolean("sort", mcp.Description("Rank results by overall score, highest first, failures last.")),
		mcp.WithNumber("limit", mcp.Description("Keep only the first N results after sorting.")),
	), h.handleBatchScore)

	// --- 3. Tool: describe_metrics ---
	s.AddTool(mcp.NewTool("describe_metrics",
		mcp.WithDescription("Describe every sub-metric and family with the active weights, normalization params and tier thresholds."),
	), h.handleDescribeMetrics)

	return s
}

// StartMCPServer builds one scoring engine for baseCfg and serves the MCP tools on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager, version string) error {
	eng, err := core.NewEngine(baseCfg, mgr)
	if err != nil {
		return err
	}
	s := NewMCPServer(baseCfg, eng, version)
	return server.ServeStdio(s)
}
