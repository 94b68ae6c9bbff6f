package handler

import (
	"embed"
	"net/http"
)

//go:embed static/RegisterForm.html static/SearchForm.html static/docs.html static/openapi.json
var staticFiles embed.FS

// DocsHandler serves the HTML forms and the OpenAPI document.
type DocsHandler struct{}

func NewDocsHandler() *DocsHandler {
	return &DocsHandler{}
}

// RegisterForm handles GET /RegisterForm.html
func (h *DocsHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	serveStatic(w, r, "static/RegisterForm.html", "text/html; charset=utf-8")
}

// SearchForm handles GET /SearchForm.html
func (h *DocsHandler) SearchForm(w http.ResponseWriter, r *http.Request) {
	serveStatic(w, r, "static/SearchForm.html", "text/html; charset=utf-8")
}

// Docs handles GET /docs
func (h *DocsHandler) Docs(w http.ResponseWriter, r *http.Request) {
	serveStatic(w, r, "static/docs.html", "text/html; charset=utf-8")
}

// OpenAPI handles GET /docs/openapi.json
func (h *DocsHandler) OpenAPI(w http.ResponseWriter, r *http.Request) {
	serveStatic(w, r, "static/openapi.json", "application/json")
}

func serveStatic(w http.ResponseWriter, r *http.Request, name, contentType string) {
	data, err := staticFiles.ReadFile(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
