package submit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHTTPTransportPostsFormValues(t *testing.T) {
	var gotMethod, gotType string
	var gotForm url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotForm = r.PostForm
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	transport := HTTPTransport{Client: server.Client(), Headers: http.Header{"X-Request-Id": {"abc"}}}
	ev := &Event{Method: http.MethodPost, Action: server.URL, Values: url.Values{"email": {"ada@example.com"}, "tags": {"a", "b"}}}
	if err := transport.Handle(context.Background(), ev); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if gotMethod != http.MethodPost || gotType != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected request %s %s", gotMethod, gotType)
	}
	if diff := cmp.Diff(ev.Values, gotForm); diff != "" {
		t.Fatalf("form values mismatch (-want +got):\n%s", diff)
	}
}

func TestHTTPTransportRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid","errors":{"/body/email":["Already registered"]}}`))
	}))
	defer server.Close()

	err := HTTPTransport{Client: server.Client()}.Handle(context.Background(), &Event{Method: http.MethodPost, Action: server.URL})
	var rejected *RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected RejectedError, got %v", err)
	}
	if rejected.StatusCode != http.StatusUnprocessableEntity || rejected.Message != "invalid" {
		t.Fatalf("unexpected rejection %+v", rejected)
	}
	if diff := cmp.Diff(map[string][]string{"/body/email": {"Already registered"}}, rejected.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeValues(t *testing.T) {
	got := EncodeValues(map[string]any{"name": "Ada", "age": 36.0, "tags": []string{"a", "b"}, "empty": nil})
	want := url.Values{"name": {"Ada"}, "age": {"36"}, "tags": {"a", "b"}, "empty": {""}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("encoded values mismatch (-want +got):\n%s", diff)
	}
}
