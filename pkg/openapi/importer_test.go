package openapi

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-composer/pkg/schema"
)

const petstore = `
openapi: 3.0.3
info:
  title: Signup
  version: "1.0"
servers:
  - url: https://api.example.com/
paths:
  /users:
    post:
      operationId: createUser
      summary: Create account
      requestBody:
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/User'
      responses:
        "201":
          description: created
  /health:
    get:
      responses:
        "200":
          description: ok
components:
  schemas:
    User:
      type: object
      required: [email, full_name]
      properties:
        id:
          type: string
          readOnly: true
        email:
          type: string
          format: email
          x-composer-order: -1
        full_name:
          type: string
          minLength: 2
          maxLength: 80
          example: Ada Lovelace
        age:
          type: integer
        role:
          type: string
          enum: [admin, member]
          default: member
        tags:
          type: array
          items:
            type: string
            enum: [go, rust]
        bio:
          type: string
          maxLength: 1000
          x-composer-widget: textarea
        address:
          type: object
          properties:
            city:
              type: string
              title: Town
`

func TestFormFromOperation(t *testing.T) {
	form, err := NewImporter(WithHoneypot("honeypot")).FormFromOperation(context.Background(), []byte(petstore), "createUser")
	if err != nil {
		t.Fatalf("form from operation: %v", err)
	}

	if form.ID != "createUser" || form.Title != "Create account" || form.Method != "POST" || form.Action != "https://api.example.com/users" {
		t.Fatalf("unexpected form header %+v", form)
	}

	var order, types []string
	byID := map[string]schema.Properties{}
	for _, field := range form.Fields {
		order = append(order, field.ID())
		types = append(types, field.Type)
		byID[field.ID()] = field.Properties
	}
	wantOrder := []string{"email", "address-city", "age", "bio", "full_name", "role", "tags", "honeypot"}
	if diff := cmp.Diff(wantOrder, order); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
	wantTypes := []string{"email", "text", "number", "textarea", "text", "select", "checkbox", "honeypot"}
	if diff := cmp.Diff(wantTypes, types); diff != "" {
		t.Fatalf("field types mismatch (-want +got):\n%s", diff)
	}

	wantName := schema.Properties{
		"id":          "full_name",
		"name":        "full_name",
		"label":       "Full name",
		"required":    true,
		"minLength":   2.0,
		"maxLength":   80.0,
		"placeholder": "Ada Lovelace",
	}
	if diff := cmp.Diff(wantName, byID["full_name"]); diff != "" {
		t.Fatalf("full_name properties mismatch (-want +got):\n%s", diff)
	}
	if byID["email"]["validate"] != "email" || byID["email"]["required"] != true {
		t.Fatalf("expected required email rule, got %v", byID["email"])
	}
	if byID["address-city"]["name"] != "address.city" || byID["address-city"]["label"] != "Town" {
		t.Fatalf("expected nested field, got %v", byID["address-city"])
	}
	if diff := cmp.Diff([]any{"admin", "member"}, byID["role"]["options"]); diff != "" {
		t.Fatalf("role options mismatch (-want +got):\n%s", diff)
	}
	if byID["role"]["value"] != "member" || byID["age"]["step"] != "1" {
		t.Fatalf("unexpected defaults %v %v", byID["role"], byID["age"])
	}
	if diff := cmp.Diff([]any{"go", "rust"}, byID["tags"]["options"]); diff != "" {
		t.Fatalf("tags options mismatch (-want +got):\n%s", diff)
	}
}

func TestOperationsFallbackIDs(t *testing.T) {
	ops, err := NewImporter().Operations(context.Background(), []byte(petstore))
	if err != nil {
		t.Fatalf("operations: %v", err)
	}
	health, ok := ops["get:/health"]
	if !ok || health.Method != "GET" || health.Request != nil {
		t.Fatalf("expected fallback id for /health, got %+v", ops)
	}
	if _, err := FormFromOperation(context.Background(), []byte(petstore), "deleteUser"); !errors.Is(err, ErrOperationNotFound) {
		t.Fatalf("expected ErrOperationNotFound, got %v", err)
	}
	if _, err := NewImporter().Operations(context.Background(), nil); err == nil {
		t.Fatalf("expected empty payload error")
	}
}

func TestLoaderSources(t *testing.T) {
	files := fstest.MapFS{"specs/api.yaml": {Data: []byte(petstore)}}
	data, err := NewLoader(WithFileSystem(files)).Load(context.Background(), "specs/api.yaml")
	if err != nil || string(data) != petstore {
		t.Fatalf("expected fs document, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "api.yaml")
	if err := os.WriteFile(path, []byte(petstore), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewLoader().Load(context.Background(), path); err != nil {
		t.Fatalf("expected os document, got %v", err)
	}

	if _, err := NewLoader().Load(context.Background(), "https://example.com/api.yaml"); err == nil {
		t.Fatalf("expected http to be disabled by default")
	}
}
