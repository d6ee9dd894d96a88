package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-composer/pkg/components"
	"github.com/goliatone/go-composer/pkg/forms"
	"github.com/goliatone/go-composer/pkg/markup"
	"github.com/goliatone/go-composer/pkg/submit"
)

type validateResponse struct {
	Valid  bool                `json:"valid"`
	Errors map[string][]string `json:"errors,omitempty"`
}

type submitResponse struct {
	Status     string              `json:"status"`
	Invalid    []string            `json:"invalid,omitempty"`
	Errors     map[string][]string `json:"errors,omitempty"`
	FormErrors []string            `json:"form_errors,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// compile builds a fresh form instance for one request. Callers close it.
func (s *Server) compile(ctx context.Context, id string) (*forms.Form, error) {
	doc, err := s.store.Form(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.compiler.CompileForm(doc)
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request) {
	form, err := s.compile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer form.Close()

	el, err := form.Render(forms.RenderOptions{Locale: r.URL.Query().Get("locale")})
	if err != nil {
		writeError(w, err)
		return
	}
	writeHTML(w, http.StatusOK, markup.String(el))
}

// validateForm validates posted values. With ?field=id only that field is
// blurred, matching the per-field check a client runs on blur.
func (s *Server) validateForm(w http.ResponseWriter, r *http.Request) {
	form, ok := s.postedForm(w, r)
	if !ok {
		return
	}
	defer form.Close()

	if id := r.URL.Query().Get("field"); id != "" {
		field, found := form.Field(id)
		if !found {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown field " + id})
			return
		}
		result, err := field.Blur(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		resp := validateResponse{Valid: result.Valid}
		if !result.Valid {
			resp.Errors = map[string][]string{id: result.Errors}
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	valid, err := form.ValidateFields(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{Valid: valid, Errors: invalidErrors(form)})
}

func (s *Server) submitForm(w http.ResponseWriter, r *http.Request) {
	form, ok := s.postedForm(w, r)
	if !ok {
		return
	}
	defer form.Close()

	options := []submit.Option{
		submit.WithMetrics(s.metrics),
		submit.WithLogger(s.logger),
		submit.WithLatency(s.formLatency(form.ID())),
	}
	gate, err := submit.NewGate(form, s.handler, append(options, s.gateOptions...)...)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := gate.Submit(r.Context(), &submit.Event{Method: form.Method()})
	if err != nil {
		var rejected *submit.RejectedError
		if errors.As(err, &rejected) && len(rejected.Fields) > 0 {
			formErrors, applyErr := form.ApplyServerErrors(rejected.Fields)
			if applyErr == nil {
				writeJSON(w, http.StatusUnprocessableEntity, submitResponse{
					Status:     string(submit.StatusInvalid),
					Invalid:    form.Registry().Invalid(),
					Errors:     invalidErrors(form),
					FormErrors: formErrors,
				})
				return
			}
		}
		writeJSON(w, http.StatusBadGateway, submitResponse{Status: string(submit.StatusFailed), Error: err.Error()})
		return
	}

	if !result.Submitted() {
		writeJSON(w, http.StatusUnprocessableEntity, submitResponse{
			Status:  string(result.Status),
			Invalid: result.Invalid,
			Errors:  invalidErrors(form),
		})
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{Status: string(result.Status)})
}

// postedForm compiles the form named in the route and feeds it the posted
// values. It writes the error response itself when it fails.
func (s *Server) postedForm(w http.ResponseWriter, r *http.Request) (*forms.Form, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return nil, false
	}
	form, err := s.compile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	applyValues(form, r.PostForm)
	return form, true
}

// applyValues changes every field from its posted value. Browsers omit
// unchecked boxes, so a missing checkbox group or boolean is cleared.
func applyValues(form *forms.Form, values url.Values) {
	for _, field := range form.Fields() {
		posted, ok := values[field.Name()]
		switch field.Type() {
		case components.FieldCheckbox:
			field.Change(posted)
		case components.FieldBoolean:
			field.Change(ok && truthy(posted))
		default:
			if ok && len(posted) > 0 {
				field.Change(posted[0])
			}
		}
	}
}

func truthy(values []string) bool {
	for _, v := range values {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "on", "true", "1", "yes":
			return true
		}
	}
	return false
}

func invalidErrors(form *forms.Form) map[string][]string {
	out := make(map[string][]string)
	for id, entry := range form.Registry().Entries() {
		if !entry.Valid {
			out[id] = entry.Errors
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
