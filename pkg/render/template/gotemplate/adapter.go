package gotemplate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/goccy/go-json"

	"github.com/goliatone/go-composer/pkg/render/template"
)

const extension = ".tpl"

// Option configures the engine before construction.
type Option func(*Engine)

// WithBaseDir loads templates from a directory on disk. Files found there
// shadow templates of the same name in the WithFS source.
func WithBaseDir(dir string) Option {
	return func(e *Engine) {
		e.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from files.
func WithFS(files fs.FS) Option {
	return func(e *Engine) {
		e.files = files
	}
}

// Engine renders widget templates with pongo2. Parsed templates are cached
// by name.
type Engine struct {
	baseDir string
	files   fs.FS

	set   *pongo2.TemplateSet
	mu    sync.RWMutex
	cache map[string]*pongo2.Template
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New constructs an Engine from a base directory, an fs.FS or both.
func New(options ...Option) (*Engine, error) {
	e := &Engine{cache: make(map[string]*pongo2.Template)}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	if e.baseDir == "" && e.files == nil {
		return nil, errors.New("gotemplate: need a base dir or an fs.FS")
	}

	var loaders []pongo2.TemplateLoader
	if e.baseDir != "" {
		local, err := pongo2.NewLocalFileSystemLoader(e.baseDir)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: base dir %q: %w", e.baseDir, err)
		}
		loaders = append(loaders, local)
	}
	if e.files != nil {
		loaders = append(loaders, pongo2.NewFSLoader(e.files))
	}
	e.set = pongo2.NewSet("composer", loaders...)
	registerFilters()
	return e, nil
}

// RenderTemplate executes the template called name (".tpl" is appended when
// missing) and copies the result to every writer in out.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	if !strings.HasSuffix(name, extension) {
		name += extension
	}
	tmpl, err := e.lookup(name)
	if err != nil {
		return "", err
	}

	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: convert data for %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return "", fmt.Errorf("gotemplate: execute %q: %w", name, err)
	}

	rendered := buf.String()
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

func (e *Engine) lookup(name string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.cache[name]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.cache[name]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load %q: %w", name, err)
	}
	e.cache[name] = tmpl
	return tmpl, nil
}

// toContext turns view data into a pongo2 context. Structs go through JSON so
// templates see their json field names.
func toContext(data any) (pongo2.Context, error) {
	var m map[string]any
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		m = v
	case map[string]any:
		m = v
	default:
		decoded, err := viaJSON(v)
		if err != nil {
			return nil, err
		}
		obj, ok := decoded.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("context must be an object, got %T", data)
		}
		m = obj
	}

	ctx := make(pongo2.Context, len(m))
	for key, value := range m {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		converted, err := plain(value)
		if err != nil {
			return nil, err
		}
		ctx[key] = converted
	}
	return ctx, nil
}

// plain normalises nested values into maps, slices and scalars.
func plain(value any) (any, error) {
	switch v := value.(type) {
	case nil, string, bool, int, int64, float64:
		return v, nil
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, nil
	case map[string]string:
		out := make(map[string]any, len(v))
		for k, s := range v {
			out[k] = s
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			converted, err := plain(item)
			if err != nil {
				return nil, err
			}
			out[k] = converted
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			converted, err := plain(item)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	default:
		return viaJSON(v)
	}
}

func viaJSON(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var filtersOnce sync.Once

// registerFilters installs the filters the widget templates use. pongo2
// keeps filters in a process-wide table.
func registerFilters() {
	filtersOnce.Do(func() {
		if !pongo2.FilterExists("trim") {
			_ = pongo2.RegisterFilter("trim", filterTrim)
		}
	})
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}
