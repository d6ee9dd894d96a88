package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-composer/internal/config"
	"github.com/goliatone/go-composer/internal/logging"
	"github.com/goliatone/go-composer/pkg/testsupport"
	"github.com/goliatone/go-composer/pkg/tui"
)

func fixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testsupport.CopyFixtures(t, dir)
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderCommand(t *testing.T) {
	dir := fixtures(t)

	out, err := run(t, "render", filepath.Join(dir, "pages", "landing.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, `class="composer-page"`)
	assert.NotContains(t, out, "data-action")

	out, err = run(t, "render", "--edit", "--selected", "root[0]", filepath.Join(dir, "pages", "landing.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, `data-action="move-down"`)
	assert.Contains(t, out, "composer-node--selected")

	out, err = run(t, "render", filepath.Join(dir, "forms", "signup.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, `<form id="signup"`)

	target := filepath.Join(dir, "out.html")
	_, err = run(t, "render", "-o", target, filepath.Join(dir, "forms", "signup.yaml"))
	require.NoError(t, err)
	written, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(written), `name="email"`)
}

func writeHeadingOverride(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "page"), 0o755))
	body := `<h{{ level }} class="house">{{ text }}</h{{ level }}>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page", "heading.tpl"), []byte(body), 0o644))
	return dir
}

func TestRenderCommandTemplatesFlag(t *testing.T) {
	dir := fixtures(t)
	templates := writeHeadingOverride(t)

	out, err := run(t, "render", "--templates", templates, filepath.Join(dir, "pages", "landing.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, `class="house">Hello`)

	_, err = run(t, "render", "--templates", filepath.Join(templates, "missing"), filepath.Join(dir, "pages", "landing.yaml"))
	assert.Error(t, err)
}

func TestLintCommand(t *testing.T) {
	dir := fixtures(t)

	out, err := run(t, "lint", filepath.Join(dir, "pages", "landing.yaml"), filepath.Join(dir, "forms", "signup.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, ": ok"))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("components:\n  - component: carousel\n"), 0o644))
	out, err = run(t, "lint", bad)
	assert.True(t, errors.Is(err, errLintFailed))
	assert.Contains(t, out, "root[0]")

	out, err = run(t, "lint", "--json", bad)
	assert.Error(t, err)
	assert.Contains(t, out, `"valid": false`)
}

const petstore = `openapi: 3.0.3
info:
  title: Pets
  version: "1"
servers:
  - url: https://api.example.com
paths:
  /pets:
    post:
      operationId: createPet
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [name]
              properties:
                name:
                  type: string
                owner:
                  type: string
                  format: email
      responses:
        "201":
          description: created
`

func TestImportOpenAPICommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(petstore), 0o644))

	out, err := run(t, "import-openapi", path)
	require.NoError(t, err)
	assert.Contains(t, out, "createPet\tPOST /pets")

	out, err = run(t, "import-openapi", "--operation", "createPet", path)
	require.NoError(t, err)
	assert.Contains(t, out, "component: email")
	assert.Contains(t, out, "action: https://api.example.com/pets")

	out, err = run(t, "import-openapi", "--operation", "createPet", "--format", "json", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "createPet"`)

	_, err = run(t, "import-openapi", "--operation", "missing", path)
	assert.Error(t, err)
}

// scripted answers the signup fixture: name, email, then the plan radio.
type scripted struct {
	inputs []string
	pos    int
}

func (s *scripted) Input(context.Context, tui.InputConfig) (string, error) {
	if s.pos >= len(s.inputs) {
		return "", tui.ErrAborted
	}
	v := s.inputs[s.pos]
	s.pos++
	return v, nil
}

func (s *scripted) Password(ctx context.Context, cfg tui.InputConfig) (string, error) {
	return s.Input(ctx, cfg)
}

func (s *scripted) Confirm(context.Context, tui.ConfirmConfig) (bool, error) { return true, nil }

func (s *scripted) Select(context.Context, tui.SelectConfig) (int, error) { return 1, nil }

func (s *scripted) MultiSelect(context.Context, tui.SelectConfig) ([]int, error) { return nil, nil }

func (s *scripted) TextArea(ctx context.Context, cfg tui.TextAreaConfig) (string, error) {
	return s.Input(ctx, tui.InputConfig{Message: cfg.Message})
}

func (s *scripted) Info(context.Context, string) error { return nil }

func TestRunFillPrintsValues(t *testing.T) {
	dir := fixtures(t)
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetContext(context.Background())

	cfg := config.Default()
	cfg.Submit.TrapDelay = 0
	driver := &scripted{inputs: []string{"Ada", "ada@example.com"}}

	require.NoError(t, runFill(cmd, cfg, filepath.Join(dir, "forms", "signup.yaml"), driver))
	assert.Contains(t, out.String(), `"ada@example.com"`)
	assert.Contains(t, out.String(), `"pro"`)

	err := runFill(cmd, cfg, filepath.Join(dir, "pages", "landing.yaml"), driver)
	assert.Error(t, err)
}

func TestBuildServerSeedsSchemas(t *testing.T) {
	cfg := config.Default()
	cfg.SchemaDir = fixtures(t)

	handler, st, err := buildServer(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	defer st.Close()

	for _, target := range []string{"/healthz", "/pages/landing", "/forms/signup", "/metrics"} {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusOK, rr.Code, target)
	}

	cfg.TemplatesDir = writeHeadingOverride(t)
	themed, st3, err := buildServer(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	defer st3.Close()
	rr := httptest.NewRecorder()
	themed.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/pages/landing", nil))
	assert.Contains(t, rr.Body.String(), `class="house">Hello`)
	cfg.TemplatesDir = ""

	cfg.SchemaDir = filepath.Join(t.TempDir(), "missing")
	_, st2, err := buildServer(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	st2.Close()
}
