package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/levindixon/WebMD/internal/doctree"
	"github.com/levindixon/WebMD/internal/markdown"
	"github.com/levindixon/WebMD/internal/parser"
)

// handleConvert converts an uploaded document synchronously and returns
// the rendered Markdown.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	root, _, ok := s.readDocument(w, r)
	if !ok {
		return
	}

	opts := s.requestOptions(r)
	if opts.BaseURL == "" {
		opts.BaseURL = root.Attribute(parser.BaseAttr)
	}

	md, err := s.converter.Convert(r.Context(), root, opts)
	if err != nil {
		s.convertError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	io.WriteString(w, md)
}

// handleConvertStream converts an uploaded document and writes Markdown
// fragments as they are produced.
func (s *Server) handleConvertStream(w http.ResponseWriter, r *http.Request) {
	root, _, ok := s.readDocument(w, r)
	if !ok {
		return
	}

	opts := s.requestOptions(r)
	opts.Streaming = true
	if opts.BaseURL == "" {
		opts.BaseURL = root.Attribute(parser.BaseAttr)
	}

	fragments, err := s.converter.Stream(r.Context(), root, opts)
	if err != nil {
		s.convertError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	flusher, _ := w.(http.Flusher)
	for frag := range fragments {
		if _, err := io.WriteString(w, frag); err != nil {
			// Client went away; the context cancellation stops the
			// producer goroutine.
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// readDocument extracts the document tree from the request: either a
// multipart upload in the "file" field, or a raw HTML body.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (*doctree.Node, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(ct, "multipart/") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
			return nil, "", false
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
			return nil, "", false
		}
		defer file.Close()

		filename := sanitizeFilename(header.Filename)
		p, err := parser.ForFile(filename)
		if err != nil {
			jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
			return nil, "", false
		}

		root, err := p.Parse(file, filename)
		if err != nil {
			jsonError(w, "parse failed: "+err.Error(), http.StatusUnprocessableEntity)
			return nil, "", false
		}
		return root, filename, true
	}

	// Raw body: treat as HTML.
	root, err := (&parser.HTMLParser{}).Parse(r.Body, "body.html")
	if err != nil {
		jsonError(w, "parse failed: "+err.Error(), http.StatusUnprocessableEntity)
		return nil, "", false
	}
	return root, "body.html", true
}

// requestOptions builds conversion options from the server defaults plus
// any per-request overrides in the query string or form values.
func (s *Server) requestOptions(r *http.Request) markdown.Options {
	opts := s.cfg.ConvertOptions()

	get := func(key string) string {
		if v := r.URL.Query().Get(key); v != "" {
			return v
		}
		return r.FormValue(key)
	}

	switch get("heading_style") {
	case "atx":
		opts.HeadingStyle = markdown.HeadingATX
	case "setext":
		opts.HeadingStyle = markdown.HeadingSetext
	}
	if v := get("bullet"); len(v) == 1 {
		opts.BulletMarker = v[0]
	}
	switch get("code_style") {
	case "fenced":
		opts.CodeBlockStyle = markdown.CodeFenced
	case "indented":
		opts.CodeBlockStyle = markdown.CodeIndented
	}
	switch get("link_style") {
	case "inline":
		opts.LinkStyle = markdown.LinksInline
	case "reference":
		opts.LinkStyle = markdown.LinksReference
	}
	if v := get("strong"); v != "" {
		opts.StrongDelimiter = v
	}
	if v := get("emphasis"); v != "" {
		opts.EmphasisDelimiter = v
	}
	if v := get("base_url"); v != "" {
		opts.BaseURL = v
	}
	if v := get("span_fill"); v != "" {
		opts.SpanFill = v
	}
	if v := get("preserve_whitespace"); v != "" {
		opts.PreserveWhitespace = v == "true" || v == "1"
	}
	if v := get("chunk_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.ChunkSize = n
		}
	}
	if v := get("group_budget"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.GroupBudget = n
		}
	}
	if v := get("cache_capacity"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			opts.CacheCapacity = n
		}
	}

	return opts
}

// convertError maps conversion failures to HTTP status codes.
func (s *Server) convertError(w http.ResponseWriter, err error) {
	var structural *markdown.StructuralError
	var resource *markdown.ResourceError
	switch {
	case errors.As(err, &structural):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &resource):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
