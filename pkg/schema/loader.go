package schema

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ParsePage decodes a page document from JSON or YAML and validates it. The
// source label only decorates error messages.
func ParsePage(data []byte, source string) (Page, error) {
	var page Page
	if err := decode(data, source, &page); err != nil {
		return Page{}, err
	}
	if err := ValidatePage(page); err != nil {
		return Page{}, fmt.Errorf("schema: %s: %w", source, err)
	}
	return page, nil
}

// ParseForm decodes a form document from JSON or YAML and validates it.
func ParseForm(data []byte, source string) (Form, error) {
	var form Form
	if err := decode(data, source, &form); err != nil {
		return Form{}, err
	}
	if err := ValidateForm(form); err != nil {
		return Form{}, fmt.Errorf("schema: %s: %w", source, err)
	}
	return form, nil
}

// MarshalPage encodes a page as indented JSON.
func MarshalPage(page Page) ([]byte, error) {
	return json.MarshalIndent(page, "", "  ")
}

// MarshalForm encodes a form as indented JSON.
func MarshalForm(form Form) ([]byte, error) {
	return json.MarshalIndent(form, "", "  ")
}

// Bundle groups the documents discovered by LoadDir keyed by id.
type Bundle struct {
	Pages map[string]Page
	Forms map[string]Form
}

// PageIDs returns the sorted page ids.
func (b Bundle) PageIDs() []string {
	return sortedKeys(b.Pages)
}

// FormIDs returns the sorted form ids.
func (b Bundle) FormIDs() []string {
	return sortedKeys(b.Forms)
}

// LoadDir walks fsys and parses every JSON/YAML document. Files under a
// "forms" directory, or holding a top-level "fields" key, are forms; the rest
// are pages. Documents without an id use their file stem.
func LoadDir(fsys fs.FS) (Bundle, error) {
	bundle := Bundle{
		Pages: make(map[string]Page),
		Forms: make(map[string]Form),
	}
	if fsys == nil {
		return bundle, nil
	}

	err := fs.WalkDir(fsys, ".", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(p) {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("schema: read %s: %w", p, err)
		}

		stem := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if IsFormDocument(p, data) {
			form, err := ParseForm(data, p)
			if err != nil {
				return err
			}
			if form.ID == "" {
				form.ID = stem
			}
			if _, exists := bundle.Forms[form.ID]; exists {
				return fmt.Errorf("schema: duplicate form %q (file %s)", form.ID, p)
			}
			bundle.Forms[form.ID] = form
			return nil
		}

		page, err := ParsePage(data, p)
		if err != nil {
			return err
		}
		if page.ID == "" {
			page.ID = stem
		}
		if _, exists := bundle.Pages[page.ID]; exists {
			return fmt.Errorf("schema: duplicate page %q (file %s)", page.ID, p)
		}
		bundle.Pages[page.ID] = page
		return nil
	})
	if err != nil {
		return Bundle{}, err
	}
	return bundle, nil
}

func decode(data []byte, source string, dest any) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return fmt.Errorf("schema: %s is empty", source)
	}
	if err := json.Unmarshal(data, dest); err == nil {
		return nil
	}
	if err := yaml.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("schema: parse %s: invalid JSON or YAML: %w", source, err)
	}
	return nil
}

// IsFormDocument reports whether the document at p is a form: it sits under
// a "forms" directory or has a top-level "fields" key.
func IsFormDocument(p string, data []byte) bool {
	for _, segment := range strings.Split(path.Dir(filepath.ToSlash(p)), "/") {
		if segment == "forms" {
			return true
		}
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return false
		}
	}
	_, ok := doc["fields"]
	return ok
}

func isSchemaFile(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
