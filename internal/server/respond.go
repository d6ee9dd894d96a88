package server

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-composer/internal/store"
	"github.com/goliatone/go-composer/pkg/editor"
	"github.com/goliatone/go-composer/pkg/page"
	"github.com/goliatone/go-composer/pkg/schema"
	"github.com/goliatone/go-composer/pkg/tree"
)

const maxBody = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeHTML(w http.ResponseWriter, status int, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(html))
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, tree.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, editor.ErrStaleGeneration):
		return http.StatusConflict
	case errors.Is(err, tree.ErrInvalidPath),
		errors.Is(err, schema.ErrMissingType),
		errors.Is(err, schema.ErrMissingFieldID),
		errors.Is(err, schema.ErrDuplicateFieldID),
		errors.Is(err, schema.ErrTooDeep),
		errors.Is(err, page.ErrUnboundAction):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
