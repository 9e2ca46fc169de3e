// Package ui serves a browser keypad backed by session calculators.
package ui

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"

	"github.com/dhamidi/keycalc/calc"
	"github.com/dhamidi/keycalc/keypad"
	"github.com/dhamidi/keycalc/session"
	"github.com/gorilla/websocket"
	"github.com/tliron/commonlog"
)

//go:embed static templates
var embeddedFS embed.FS

var log = commonlog.GetLogger("keycalc.ui")

type Server struct {
	store      *session.Store
	staticFS   fs.FS
	templateFS fs.FS
	funcMap    template.FuncMap
	mux        *http.ServeMux
	upgrader   websocket.Upgrader
}

func NewServer() (*Server, error) {
	staticFS := overlayFS("ui/static", mustSub(embeddedFS, "static"))
	templateFS := overlayFS("ui/templates", mustSub(embeddedFS, "templates"))

	funcMap := template.FuncMap{
		"rows": func(l keypad.Layout) [][]keypad.Key {
			return l.Rows(3)
		},
		"result": func(f calc.Frame) string {
			return f.Result()
		},
	}

	// parse once up front so broken templates fail at startup
	if _, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "*.html"); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		store:      session.New(),
		staticFS:   staticFS,
		templateFS: templateFS,
		funcMap:    funcMap,
		mux:        http.NewServeMux(),
	}

	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	s.mux.HandleFunc("POST /sessions", s.handleCreate)
	s.mux.HandleFunc("GET /sessions/{id}", s.handleSession)
	s.mux.HandleFunc("POST /sessions/{id}/keys", s.handleKey)
	s.mux.HandleFunc("GET /sessions/{id}/ws", s.handleWebSocket)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close stops the session store.
func (s *Server) Close() {
	s.store.Close()
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	tmpl, err := template.New("").Funcs(s.funcMap).ParseFS(s.templateFS, "*.html")
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		log.Errorf("render %s: %v", name, err)
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

type frameResponse struct {
	calc.Frame
	Result string `json:"result"`
	Error  string `json:"error,omitempty"`
}

func newFrameResponse(f calc.Frame) frameResponse {
	return frameResponse{Frame: f, Result: f.Result()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func wantsJSON(r *http.Request) bool {
	return r.Header.Get("Accept") == "application/json"
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Sessions []session.Info
	}{
		Sessions: s.store.List(),
	}
	s.render(w, http.StatusOK, "index.html", data)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	id := s.store.Create()
	if wantsJSON(r) {
		f, _ := s.store.Frame(id)
		writeJSON(w, http.StatusCreated, struct {
			ID string `json:"id"`
			frameResponse
		}{id, newFrameResponse(f)})
		return
	}
	http.Redirect(w, r, "/sessions/"+id, http.StatusSeeOther)
}

type calculatorViewData struct {
	ID     string
	Frame  calc.Frame
	Layout keypad.Layout
	Error  string
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	f, err := s.store.Frame(id)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, newFrameResponse(f))
		return
	}

	s.render(w, http.StatusOK, "calculator.html", calculatorViewData{
		ID:     id,
		Frame:  f,
		Layout: keypad.DefaultLayout(),
	})
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		Key string `json:"key"`
	}
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form data: "+err.Error(), http.StatusBadRequest)
			return
		}
		req.Key = r.FormValue("key")
	}

	f, err := s.store.Press(r.Context(), id, req.Key)
	status := statusFor(err)
	if status == http.StatusNotFound {
		http.Error(w, "session not found", status)
		return
	}
	if status >= http.StatusInternalServerError {
		http.Error(w, err.Error(), status)
		return
	}
	if err != nil {
		// rejected keys leave the session untouched
		f, _ = s.store.Frame(id)
	}

	switch {
	case wantsJSON(r):
		resp := newFrameResponse(f)
		if err != nil {
			resp.Error = err.Error()
		}
		writeJSON(w, status, resp)
	case r.Header.Get("HX-Request") != "":
		data := calculatorViewData{ID: id, Frame: f}
		if err != nil {
			data.Error = err.Error()
		}
		s.render(w, status, "screen.html", data)
	default:
		http.Redirect(w, r, "/sessions/"+id, http.StatusSeeOther)
	}
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	f, err := s.store.Frame(id)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warningf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	if err := conn.WriteJSON(newFrameResponse(f)); err != nil {
		return
	}

	for {
		var msg struct {
			Key string `json:"key"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debugf("websocket %s: %v", id, err)
			}
			return
		}

		f, err := s.store.Press(r.Context(), id, msg.Key)
		resp := newFrameResponse(f)
		if err != nil {
			if status := statusFor(err); status != http.StatusUnprocessableEntity {
				conn.WriteJSON(frameResponse{Error: err.Error()})
				return
			}
			f, _ = s.store.Frame(id)
			resp = newFrameResponse(f)
			resp.Error = err.Error()
		}
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// overlayFSType prefers files on disk so templates can be edited without
// rebuilding.
type overlayFSType struct {
	primary   fs.FS
	secondary fs.FS
}

func overlayFS(primaryPath string, secondary fs.FS) fs.FS {
	return &overlayFSType{
		primary:   os.DirFS(primaryPath),
		secondary: secondary,
	}
}

func (o *overlayFSType) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if err == nil {
		return f, nil
	}
	return o.secondary.Open(name)
}

func (o *overlayFSType) ReadDir(name string) ([]fs.DirEntry, error) {
	entries := make(map[string]fs.DirEntry)

	if rd, ok := o.secondary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	if rd, ok := o.primary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	result := make([]fs.DirEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, e)
	}
	return result, nil
}
