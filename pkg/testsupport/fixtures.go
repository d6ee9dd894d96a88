package testsupport

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-composer/pkg/schema"
)

//go:embed testdata
var fixtures embed.FS

// Fixtures exposes the shared page and form documents rooted at testdata.
func Fixtures() fs.FS {
	sub, err := fs.Sub(fixtures, "testdata")
	if err != nil {
		panic(err)
	}
	return sub
}

// Bundle loads every shared fixture document.
func Bundle(t *testing.T) schema.Bundle {
	t.Helper()

	bundle, err := schema.LoadDir(Fixtures())
	if err != nil {
		t.Fatalf("load fixtures: %v", err)
	}
	return bundle
}

// LandingPage returns the shared page fixture.
func LandingPage(t *testing.T) schema.Page {
	t.Helper()
	return MustLoadPage(t, "pages/landing.yaml")
}

// SignupForm returns the shared form fixture.
func SignupForm(t *testing.T) schema.Form {
	t.Helper()
	return MustLoadForm(t, "forms/signup.yaml")
}

// MustLoadPage parses a page fixture relative to testdata.
func MustLoadPage(t *testing.T, name string) schema.Page {
	t.Helper()

	data, err := fs.ReadFile(Fixtures(), name)
	if err != nil {
		t.Fatalf("read page fixture: %v", err)
	}
	page, err := schema.ParsePage(data, name)
	if err != nil {
		t.Fatalf("parse page fixture: %v", err)
	}
	return page
}

// MustLoadForm parses a form fixture relative to testdata.
func MustLoadForm(t *testing.T, name string) schema.Form {
	t.Helper()

	data, err := fs.ReadFile(Fixtures(), name)
	if err != nil {
		t.Fatalf("read form fixture: %v", err)
	}
	form, err := schema.ParseForm(data, name)
	if err != nil {
		t.Fatalf("parse form fixture: %v", err)
	}
	return form
}

// CopyFixtures writes the shared fixtures into dir so callers exercising
// on-disk loading can point at a real directory.
func CopyFixtures(t *testing.T, dir string) {
	t.Helper()

	err := fs.WalkDir(Fixtures(), ".", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		target := filepath.Join(dir, filepath.FromSlash(p))
		if entry.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := fs.ReadFile(Fixtures(), p)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
	if err != nil {
		t.Fatalf("copy fixtures: %v", err)
	}
}

// LoadGolden reads a golden file, returning an error for callers managing
// setup outside of *testing.T.
func LoadGolden(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("testsupport: golden path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read golden: %w", err)
	}
	return data, nil
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// AssertGolden compares got with the golden at path, rewriting it first when
// UPDATE_GOLDENS is set.
func AssertGolden(t *testing.T, path string, got []byte) {
	t.Helper()
	if WriteMaybeGolden(t, path, got) {
		return
	}
	want, err := LoadGolden(path)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if diff := cmp.Diff(string(want), string(got)); diff != "" {
		t.Fatalf("golden mismatch %s (-want +got):\n%s", path, diff)
	}
}

// Context returns a context cancelled when the test ends.
func Context(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
