package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/goliatone/go-composer/internal/store"
	"github.com/goliatone/go-composer/pkg/editor"
	"github.com/goliatone/go-composer/pkg/markup"
	"github.com/goliatone/go-composer/pkg/page"
	"github.com/goliatone/go-composer/pkg/schema"
	"github.com/goliatone/go-composer/pkg/tree"
)

// GenerationHeader carries the render pass generation actions must echo.
const GenerationHeader = "X-Composer-Generation"

type actionRequest struct {
	Kind       string            `json:"kind"`
	Path       string            `json:"path"`
	Generation uint64            `json:"generation"`
	Node       *schema.Node      `json:"node,omitempty"`
	Properties schema.Properties `json:"properties,omitempty"`
}

type actionResponse struct {
	Changed    bool   `json:"changed"`
	Generation uint64 `json:"generation"`
	Removed    int    `json:"removed"`
	Selected   string `json:"selected,omitempty"`
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request) {
	doc, err := s.document(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	query := r.URL.Query()
	edit, _ := strconv.ParseBool(query.Get("edit"))
	hovered, err := optionalPath(query.Get("hovered"))
	if err != nil {
		writeError(w, err)
		return
	}
	selected, err := optionalPath(query.Get("selected"))
	if err != nil {
		writeError(w, err)
		return
	}

	opts := doc.RenderOptions(edit, hovered)
	if selected != "" {
		opts.Selected = selected
	}
	root, pass, err := s.renderer.RenderDocument(doc.Page(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set(GenerationHeader, strconv.FormatUint(pass.Generation, 10))
	writeHTML(w, http.StatusOK, markup.String(root))
}

func (s *Server) getPageSchema(w http.ResponseWriter, r *http.Request) {
	doc, err := s.document(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := schema.MarshalPage(doc.Page())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set(GenerationHeader, strconv.FormatUint(doc.Generation(), 10))
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) putPageSchema(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := schema.ParsePage(data, "request body")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	p.ID = id

	doc, err := s.document(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		if err := s.store.SavePage(r.Context(), p); err != nil {
			writeError(w, err)
			return
		}
		s.forget(id)
		writeJSON(w, http.StatusCreated, actionResponse{Changed: true})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if err := doc.Replace(p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{Changed: true, Generation: doc.Generation()})
}

func (s *Server) pageAction(w http.ResponseWriter, r *http.Request) {
	doc, err := s.document(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req actionRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	kind, err := page.ParseAction(req.Kind)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	path := tree.Path(req.Path)
	if _, err := tree.Parse(path); err != nil {
		writeError(w, err)
		return
	}

	result, err := doc.Apply(editor.Action{
		Kind:       kind,
		Path:       path,
		Generation: req.Generation,
		Node:       req.Node,
		Properties: req.Properties,
	})
	if err != nil {
		w.Header().Set(GenerationHeader, strconv.FormatUint(result.Generation, 10))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{
		Changed:    result.Changed,
		Generation: result.Generation,
		Removed:    result.Removed,
		Selected:   doc.Selected().String(),
	})
}

func optionalPath(raw string) (tree.Path, error) {
	if raw == "" {
		return "", nil
	}
	path := tree.Path(raw)
	if _, err := tree.Parse(path); err != nil {
		return "", err
	}
	return path, nil
}
