// Package server provides a small local web view over the export
// directory and the stats report. Read-only: it renders what the export
// and stats commands wrote, nothing more.
package server

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// Server serves exported highlight files and the stats report.
type Server struct {
	exportDir  string
	reportPath string
	pages      map[string]*template.Template
	mux        *http.ServeMux
}

// New creates a new Server over the given export directory and report.
func New(exportDir, reportPath string) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// For each page template, clone the base and parse the page into the
	// clone so each page gets its own {{define "content"}} and {{define "title"}}.
	pageNames := []string{"index.html", "book.html", "stats.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{exportDir: exportDir, reportPath: reportPath, pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/book/", s.handleBook)
	s.mux.HandleFunc("/stats", s.handleStats)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	entries, err := os.ReadDir(s.exportDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var books []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		books = append(books, entry.Name())
	}
	sort.Strings(books)

	_, statErr := os.Stat(s.reportPath)
	s.render(w, "index.html", map[string]any{
		"Books":     books,
		"HasReport": statErr == nil,
	})
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/book/")
	if name == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	// The export dir is flat; reject anything that looks like a path.
	if name != filepath.Base(name) || !strings.HasSuffix(name, ".md") {
		http.NotFound(w, r)
		return
	}

	data, err := os.ReadFile(filepath.Join(s.exportDir, name))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	s.render(w, "book.html", map[string]any{
		"Name":    strings.TrimSuffix(name, ".md"),
		"Content": string(data),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(s.reportPath)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	s.render(w, "stats.html", map[string]any{
		"Content": string(data),
	})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(exportDir, reportPath string, port int) error {
	srv, err := New(exportDir, reportPath)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
