package lsp

import (
	"strings"
	"testing"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const testURI = "file:///tmp/sum.keys"

type notification struct {
	method string
	params any
}

func openDocument(t *testing.T, ls *Server, text string) []notification {
	t.Helper()
	var sent []notification
	ctx := &glsp.Context{
		Notify: func(method string, params any) {
			sent = append(sent, notification{method, params})
		},
	}
	err := ls.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:  testURI,
			Text: text,
		},
	})
	if err != nil {
		t.Fatalf("didOpen: %v", err)
	}
	return sent
}

func hover(t *testing.T, ls *Server, line, char int) *protocol.Hover {
	t.Helper()
	h, err := ls.textDocumentHover(nil, &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
			Position:     protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(char)},
		},
	})
	if err != nil {
		t.Fatalf("hover: %v", err)
	}
	return h
}

func TestDiagnostics(t *testing.T) {
	ls := NewServer("test")
	sent := openDocument(t, ls, "12 + x\n3 =")

	if len(sent) != 1 || sent[0].method != protocol.ServerTextDocumentPublishDiagnostics {
		t.Fatalf("notifications = %+v", sent)
	}
	params := sent[0].params.(protocol.PublishDiagnosticsParams)
	if len(params.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %+v", params.Diagnostics)
	}
	d := params.Diagnostics[0]
	if d.Range.Start.Line != 0 || d.Range.Start.Character != 5 || d.Range.End.Character != 6 {
		t.Errorf("range = %+v", d.Range)
	}
	if !strings.Contains(d.Message, `"x"`) {
		t.Errorf("message = %q", d.Message)
	}

	sent = openDocument(t, ls, "1 + 1")
	params = sent[0].params.(protocol.PublishDiagnosticsParams)
	if params.Diagnostics == nil || len(params.Diagnostics) != 0 {
		t.Errorf("clean document diagnostics = %#v, want empty slice", params.Diagnostics)
	}
}

func TestHover(t *testing.T) {
	ls := NewServer("test")
	openDocument(t, ls, "12 +\n3 =\n")

	tests := []struct {
		line, char int
		want       string
	}{
		{0, 0, "**1**"},
		{0, 1, "**12**"},
		{0, 3, "`12+`"},
		{1, 0, "`12+3`"},
		{1, 2, "**= 15**"},
	}
	for _, tt := range tests {
		h := hover(t, ls, tt.line, tt.char)
		if h == nil {
			t.Errorf("hover(%d, %d) = nil", tt.line, tt.char)
			continue
		}
		content := h.Contents.(protocol.MarkupContent)
		if !strings.Contains(content.Value, tt.want) {
			t.Errorf("hover(%d, %d) = %q, want it to contain %q", tt.line, tt.char, content.Value, tt.want)
		}
	}

	if h := hover(t, ls, 2, 0); h != nil {
		t.Errorf("hover on empty line = %+v, want nil", h)
	}
}

func TestHoverUnknownDocument(t *testing.T) {
	ls := NewServer("test")
	if h := hover(t, ls, 0, 0); h != nil {
		t.Errorf("hover = %+v, want nil", h)
	}
}

func TestDidChangeAndClose(t *testing.T) {
	ls := NewServer("test")
	openDocument(t, ls, "1")

	err := ls.textDocumentDidChange(&glsp.Context{}, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: testURI},
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "9 * 9 ="}},
	})
	if err != nil {
		t.Fatalf("didChange: %v", err)
	}
	if got := ls.document(testURI).result.Final.Result(); got != "= 81" {
		t.Errorf("result after change = %q, want %q", got, "= 81")
	}

	ls.textDocumentDidClose(nil, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	})
	if ls.document(testURI) != nil {
		t.Error("document still open after close")
	}
}

func TestCompletion(t *testing.T) {
	ls := NewServer("test")
	res, err := ls.textDocumentCompletion(nil, &protocol.CompletionParams{})
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	items := res.([]protocol.CompletionItem)
	labels := map[string]bool{}
	for _, it := range items {
		labels[it.Label] = true
	}
	for _, want := range []string{"Enter", "Backspace", "+/-", "PageDown", "Escape", "Delete"} {
		if !labels[want] {
			t.Errorf("completion missing %q", want)
		}
	}
	if labels["5"] {
		t.Error("completion offers single characters")
	}
}

func TestUTF16Offsets(t *testing.T) {
	line := "± 5"
	if got := byteOffset(line, 2); got != 3 {
		t.Errorf("byteOffset = %d, want 3", got)
	}
	if got := utf16Offset(line, 3); got != 2 {
		t.Errorf("utf16Offset = %d, want 2", got)
	}
}

func TestInitialize(t *testing.T) {
	ls := NewServer("1.2.3")
	res, err := ls.initialize(nil, &protocol.InitializeParams{})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	result := res.(protocol.InitializeResult)
	if result.ServerInfo.Name != lsName || *result.ServerInfo.Version != "1.2.3" {
		t.Errorf("server info = %+v", result.ServerInfo)
	}
	if result.Capabilities.HoverProvider != true {
		t.Errorf("HoverProvider = %v", result.Capabilities.HoverProvider)
	}
}
