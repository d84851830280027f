package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/matzehuels/orgtree/pkg/buildinfo"
	orgerrors "github.com/matzehuels/orgtree/pkg/errors"
	"github.com/matzehuels/orgtree/pkg/graph"
	"github.com/matzehuels/orgtree/pkg/outline"
	"github.com/matzehuels/orgtree/pkg/pipeline"
)

// ContentTypes maps output formats to response content types.
var ContentTypes = map[string]string{
	pipeline.FormatHTML: "text/html; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatJSON: "application/json",
}

// ===== Responses =====

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type parseResponse struct {
	Graph    graph.Graph       `json:"graph"`
	Warnings []outline.Warning `json:"warnings"`
	Lines    int               `json:"lines"`
	Cached   bool              `json:"cached"`
}

type layoutResponse struct {
	Layout   graph.Layout      `json:"layout"`
	Warnings []outline.Warning `json:"warnings"`
	Cached   bool              `json:"cached"`
}

// ===== Handlers =====

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	opts, data, ok := s.readRequest(w, r)
	if !ok {
		return
	}
	if err := opts.ValidateForParse(); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, hit, err := s.runner.ParseWithCacheInfo(r.Context(), documentName(r), data, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, parseResponse{
		Graph:    graph.FromTree(res.Tree, res.Root),
		Warnings: nonNil(res.Warnings),
		Lines:    res.Lines,
		Cached:   hit,
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, data, ok := s.readRequest(w, r)
	if !ok {
		return
	}
	opts.Formats = []string{pipeline.FormatJSON}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, parseHit, err := s.runner.ParseWithCacheInfo(r.Context(), documentName(r), data, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l, layoutHit, err := s.runner.GenerateLayoutWithCacheInfo(r.Context(), res, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, layoutResponse{
		Layout:   l,
		Warnings: nonNil(res.Warnings),
		Cached:   parseHit && layoutHit,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, data, ok := s.readRequest(w, r)
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.DefaultFormat
	}
	opts.Formats = []string{format}

	result, err := s.runner.Execute(r.Context(), documentName(r), data, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", ContentTypes[format])
	if result.CacheInfo.RenderHit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(result.Artifacts[format])
}

// ===== Request decoding =====

// readRequest reads the body and the query options. On failure it writes
// the error response and returns ok=false.
func (s *Server) readRequest(w http.ResponseWriter, r *http.Request) (pipeline.Options, []byte, bool) {
	opts, err := s.queryOptions(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return opts, nil, false
	}

	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeStatus(w, r, http.StatusRequestEntityTooLarge, orgerrors.ErrCodeInvalidInput,
				"request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return opts, nil, false
		}
		s.writeError(w, r, orgerrors.Wrap(orgerrors.ErrCodeInvalidInput, err, "read body"))
		return opts, nil, false
	}
	opts.Logger = s.logger.With("request_id", RequestIDFromContext(r.Context()))
	return opts, data, true
}

// queryOptions overlays query parameters on the server defaults.
func (s *Server) queryOptions(q url.Values) (pipeline.Options, error) {
	d := s.defaults
	opts := pipeline.Options{
		Marker:   d.Marker,
		Encoding: d.Encoding,
		Strict:   d.Strict,
		RootID:   d.RootID,
		Width:    d.Width,
		Height:   d.Height,
		Strategy: d.Strategy,
		Scale:    d.Scale,
		Detailed: d.Detailed,
		ShowIDs:  d.ShowIDs,
		Labels:   d.Labels,
	}

	strs := map[string]*string{
		"marker":   &opts.Marker,
		"encoding": &opts.Encoding,
		"strategy": &opts.Strategy,
		"title":    &opts.Title,
		"root":     &opts.RootID,
	}
	for name, dst := range strs {
		if v := q.Get(name); v != "" {
			*dst = v
		}
	}

	floats := map[string]*float64{
		"width":  &opts.Width,
		"height": &opts.Height,
		"scale":  &opts.Scale,
	}
	for name, dst := range floats {
		if v := q.Get(name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return opts, orgerrors.New(orgerrors.ErrCodeInvalidInput, "%s: %q is not a number", name, v)
			}
			*dst = f
		}
	}

	bools := map[string]*bool{
		"strict":   &opts.Strict,
		"refresh":  &opts.Refresh,
		"detailed": &opts.Detailed,
		"ids":      &opts.ShowIDs,
		"labels":   &opts.Labels,
	}
	for name, dst := range bools {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, orgerrors.New(orgerrors.ErrCodeInvalidInput, "%s: %q is not a boolean", name, v)
			}
			*dst = b
		}
	}
	return opts, nil
}

// documentName labels a request in logs and titles; ?name= overrides it.
func documentName(r *http.Request) string {
	if name := r.URL.Query().Get("name"); name != "" {
		if orgerrors.ValidateDocumentName(name) == nil {
			return name
		}
	}
	return "document"
}

// ===== Response encoding =====

// StatusFor maps an error to an HTTP status.
func StatusFor(err error) int {
	switch orgerrors.GetCode(err) {
	case orgerrors.ErrCodeStructural, orgerrors.ErrCodePrecondition, orgerrors.ErrCodeInputFormat:
		return http.StatusUnprocessableEntity
	case orgerrors.ErrCodeInvalidInput, orgerrors.ErrCodeInvalidEncoding, orgerrors.ErrCodeInvalidFormat,
		orgerrors.ErrCodeInvalidStrategy, orgerrors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case orgerrors.ErrCodeNotFound, orgerrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case orgerrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	code := orgerrors.GetCode(err)
	if code == "" {
		code = orgerrors.ErrCodeInternal
	}
	msg := orgerrors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestIDFromContext(r.Context()), "err", err)
	}
	s.writeStatus(w, r, status, code, msg)
}

func (s *Server) writeStatus(w http.ResponseWriter, r *http.Request, status int, code orgerrors.Code, msg string) {
	writeJSON(w, status, errorResponse{
		Code:      string(code),
		Message:   msg,
		RequestID: RequestIDFromContext(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func nonNil(ws []outline.Warning) []outline.Warning {
	if ws == nil {
		return []outline.Warning{}
	}
	return ws
}
