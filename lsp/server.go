// Package lsp is a language server for keystroke scripts. Hovering a key
// shows the calculator screen after that key; keys the keypad would reject
// are reported as warnings.
package lsp

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf16"

	"github.com/dhamidi/keycalc/keypad"
	"github.com/dhamidi/keycalc/script"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
)

const lsName = "keycalc"

var log = commonlog.GetLogger("keycalc.lsp")

type document struct {
	uri    string
	lines  []string
	result *script.Result
}

type Server struct {
	mu      sync.RWMutex
	docs    map[string]*document
	handler protocol.Handler
	server  *server.Server
	version string
}

func NewServer(version string) *Server {
	ls := &Server{
		docs:    make(map[string]*document),
		version: version,
	}

	ls.handler = protocol.Handler{
		Initialize:             ls.initialize,
		Initialized:            ls.initialized,
		Shutdown:               ls.shutdown,
		SetTrace:               ls.setTrace,
		TextDocumentDidOpen:    ls.textDocumentDidOpen,
		TextDocumentDidChange:  ls.textDocumentDidChange,
		TextDocumentDidClose:   ls.textDocumentDidClose,
		TextDocumentDidSave:    ls.textDocumentDidSave,
		TextDocumentHover:      ls.textDocumentHover,
		TextDocumentCompletion: ls.textDocumentCompletion,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}
	capabilities.HoverProvider = true
	capabilities.CompletionProvider = &protocol.CompletionOptions{}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Infof("%s %s initialized", lsName, ls.version)
	return nil
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (ls *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			ls.update(ctx, params.TextDocument.URI, textChange.Text)
		}
	}
	return nil
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.mu.Lock()
	delete(ls.docs, params.TextDocument.URI)
	ls.mu.Unlock()
	return nil
}

func (ls *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		ls.update(ctx, params.TextDocument.URI, *params.Text)
	}
	return nil
}

// update re-runs the script and publishes its diagnostics.
func (ls *Server) update(ctx *glsp.Context, uri, text string) {
	s := script.Parse([]byte(text))
	s.Name = displayName(uri)
	doc := &document{
		uri:    uri,
		lines:  strings.Split(text, "\n"),
		result: s.Run(),
	}

	ls.mu.Lock()
	ls.docs[uri] = doc
	ls.mu.Unlock()

	log.Debugf("%s: %d keys, %d rejected", doc.uri, len(doc.result.Steps), len(doc.result.Rejected))
	if ctx != nil && ctx.Notify != nil {
		ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: doc.diagnostics(),
		})
	}
}

func (ls *Server) document(uri string) *document {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return ls.docs[uri]
}

func (d *document) diagnostics() []protocol.Diagnostic {
	diags := []protocol.Diagnostic{}
	severity := protocol.DiagnosticSeverityWarning
	source := lsName
	for _, k := range d.result.Rejected {
		diags = append(diags, protocol.Diagnostic{
			Range:    d.keyRange(k),
			Severity: &severity,
			Source:   &source,
			Message:  fmt.Sprintf("unknown key %q", k.Text),
		})
	}
	return diags
}

func (ls *Server) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc := ls.document(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}

	pos := doc.scriptPosition(params.Position)
	step, ok := doc.result.At(pos)
	if !ok || step.Key.Pos.Line != pos.Line {
		return nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s**", step.Frame.Result())
	if step.Frame.Expression != "" {
		fmt.Fprintf(&b, "\n\n`%s`", step.Frame.Expression)
	}
	fmt.Fprintf(&b, "\n\nafter key `%s` at %s", step.Key.Text, step.Key.Pos)

	r := doc.keyRange(step.Key)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: b.String(),
		},
		Range: &r,
	}, nil
}

func (ls *Server) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	kind := protocol.CompletionItemKindKeyword
	var items []protocol.CompletionItem
	for _, name := range keypad.Names() {
		if !keypad.IsNamed(name) {
			continue
		}
		tok, _ := keypad.Lookup(name)
		detail := tok.Kind.String()
		items = append(items, protocol.CompletionItem{
			Label:  name,
			Kind:   &kind,
			Detail: &detail,
		})
	}
	return items, nil
}

// scriptPosition converts a 0-based LSP position (UTF-16 columns) to a
// 1-based script position (byte columns).
func (d *document) scriptPosition(p protocol.Position) script.Position {
	line := int(p.Line)
	col := int(p.Character)
	if line < len(d.lines) {
		col = byteOffset(d.lines[line], col)
	}
	return script.Position{Line: line + 1, Column: col + 1}
}

func (d *document) protocolPosition(p script.Position) protocol.Position {
	line := p.Line - 1
	col := p.Column - 1
	if line >= 0 && line < len(d.lines) {
		col = utf16Offset(d.lines[line], col)
	}
	return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(col)}
}

func (d *document) keyRange(k script.Key) protocol.Range {
	return protocol.Range{
		Start: d.protocolPosition(k.Pos),
		End:   d.protocolPosition(k.End()),
	}
}

func byteOffset(line string, units int) int {
	n := 0
	for i, r := range line {
		if n >= units {
			return i
		}
		n += utf16.RuneLen(r)
	}
	return len(line)
}

func utf16Offset(line string, bytes int) int {
	n := 0
	for i, r := range line {
		if i >= bytes {
			break
		}
		n += utf16.RuneLen(r)
	}
	return n
}

func displayName(uri string) string {
	if strings.HasPrefix(uri, "file://") {
		if parsed, err := url.Parse(uri); err == nil {
			return filepath.Clean(parsed.Path)
		}
	}
	return uri
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
