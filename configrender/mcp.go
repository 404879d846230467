// CLAUDE:SUMMARY Registers configuration status MCP tools: list printers, text dump, one printer as markdown.
package configrender

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/pkg/kit"

	"github.com/hazyhaar/confstatus/printer"
)

var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

// RegisterMCP registers configuration status tools on an MCP server.
func (p *Plugin) RegisterMCP(srv *mcp.Server) {
	p.registerPrintersTool(srv)
	p.registerDumpTool(srv)
	p.registerPrinterTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// --- printers ---

func (p *Plugin) registerPrintersTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "configstatus_printers",
		Description: "List the registered configuration printers with their labels, titles and output modes.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(_ context.Context, _ any) (any, error) {
		return p.ListPrinters(), nil
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: struct{}{}}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- dump ---

func (p *Plugin) registerDumpTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "configstatus_dump",
		Description: "Render the full configuration status as plain text, one section per printer.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		return p.Dump(ctx, printer.ModeText)
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: struct{}{}}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- printer ---

type printerRequest struct {
	Label string `json:"label"`
}

func (p *Plugin) registerPrinterTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "configstatus_printer",
		Description: "Render one configuration printer, selected by label, as markdown.",
		InputSchema: inputSchema(map[string]any{
			"label": map[string]any{"type": "string", "description": "Printer label as returned by configstatus_printers"},
		}, []string{"label"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		rr := req.(*printerRequest)
		page, err := p.Page(ctx, rr.Label)
		if err != nil {
			return nil, err
		}
		md, err := mdConverter.ConvertString(page.HTML)
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", rr.Label, err)
		}
		return &PrinterPage{Label: page.Label, Title: page.Title, Markdown: md}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var rr printerRequest
		if err := json.Unmarshal(req.Params.Arguments, &rr); err != nil {
			return nil, err
		}
		if rr.Label == "" {
			return nil, fmt.Errorf("label required")
		}
		return &kit.MCPDecodeResult{Request: &rr}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
