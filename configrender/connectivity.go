package configrender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/hazyhaar/pkg/connectivity"

	"github.com/hazyhaar/confstatus/printer"
)

// PrinterInfo describes one registered printer.
type PrinterInfo struct {
	Label       string   `json:"label"`
	Title       string   `json:"title"`
	Modes       []string `json:"modes,omitempty"`
	Attachments bool     `json:"attachments,omitempty"`
}

// DumpResult is a rendered document. Text is set for txt dumps, Archive
// for zip dumps.
type DumpResult struct {
	FileName string `json:"file_name"`
	Mode     string `json:"mode"`
	Text     string `json:"text,omitempty"`
	Archive  []byte `json:"archive,omitempty"`
}

// PrinterPage is one printer rendered for the web.
type PrinterPage struct {
	Label    string `json:"label"`
	Title    string `json:"title"`
	HTML     string `json:"html,omitempty"`
	Markdown string `json:"markdown,omitempty"`
}

// ListPrinters returns the printers of the current snapshot.
func (p *Plugin) ListPrinters() []PrinterInfo {
	ds := p.registry.Printers()
	out := make([]PrinterInfo, 0, len(ds))
	for _, d := range ds {
		info := PrinterInfo{Label: d.Label(), Title: d.Title()}
		for _, m := range d.Modes() {
			info.Modes = append(info.Modes, m.String())
		}
		_, info.Attachments = d.Printer().(printer.AttachmentProvider)
		out = append(out, info)
	}
	return out
}

// Dump renders the txt or zip document in memory.
func (p *Plugin) Dump(ctx context.Context, mode printer.Mode) (*DumpResult, error) {
	var buf bytes.Buffer
	if err := p.Render(ctx, &buf, mode); err != nil {
		return nil, err
	}
	res := &DumpResult{
		FileName: FileBaseName(p.now()) + "." + mode.String(),
		Mode:     mode.String(),
	}
	if mode == printer.ModeZip {
		res.Archive = buf.Bytes()
	} else {
		res.Text = buf.String()
	}
	return res, nil
}

// Page renders one printer's web section.
func (p *Plugin) Page(ctx context.Context, label string) (*PrinterPage, error) {
	d := p.lookupWeb(label)
	if d == nil {
		return nil, &ErrUnknownPrinter{Label: label}
	}
	var buf bytes.Buffer
	if err := p.RenderPrinter(ctx, &buf, label); err != nil {
		return nil, err
	}
	return &PrinterPage{Label: d.Label(), Title: d.Title(), HTML: buf.String()}, nil
}

// RegisterConnectivity registers configuration status handlers on a
// connectivity Router.
//
// Registered services:
//
//	configstatus_dump     : render the txt (default) or zip document
//	configstatus_printers : list registered printers
//	configstatus_printer  : render one printer as HTML
func (p *Plugin) RegisterConnectivity(router *connectivity.Router) {
	router.RegisterLocal("configstatus_dump", p.handleDumpService)
	router.RegisterLocal("configstatus_printers", p.handlePrintersService)
	router.RegisterLocal("configstatus_printer", p.handlePrinterService)
}

func (p *Plugin) handleDumpService(ctx context.Context, payload []byte) ([]byte, error) {
	var req struct {
		Mode string `json:"mode"`
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
	}
	mode := printer.ModeText
	if req.Mode != "" {
		m, ok := printer.ParseMode(req.Mode)
		if !ok {
			return nil, fmt.Errorf("unknown mode %q", req.Mode)
		}
		mode = m
	}
	res, err := p.Dump(ctx, mode)
	if err != nil {
		return nil, err
	}
	return json.Marshal(res)
}

func (p *Plugin) handlePrintersService(_ context.Context, _ []byte) ([]byte, error) {
	return json.Marshal(p.ListPrinters())
}

func (p *Plugin) handlePrinterService(ctx context.Context, payload []byte) ([]byte, error) {
	var req struct {
		Label string `json:"label"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if req.Label == "" {
		return nil, fmt.Errorf("label required")
	}
	page, err := p.Page(ctx, req.Label)
	if err != nil {
		return nil, err
	}
	return json.Marshal(page)
}
