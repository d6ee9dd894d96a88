package submit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// RejectedError carries a non-2xx response. Fields holds the server's error
// payload when it used the {"errors": {...}} shape, ready for
// forms.Form.ApplyServerErrors.
type RejectedError struct {
	StatusCode int
	Fields     map[string][]string
	Message    string
}

func (e *RejectedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("submit: server responded %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("submit: server responded %d", e.StatusCode)
}

// HTTPTransport sends accepted events as form-encoded requests.
type HTTPTransport struct {
	Client  *http.Client
	Headers http.Header
}

// Handle implements Handler.
func (t HTTPTransport) Handle(ctx context.Context, ev *Event) error {
	if strings.TrimSpace(ev.Action) == "" {
		return fmt.Errorf("submit: event has no action")
	}
	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}

	method := ev.Method
	if method == "" {
		method = http.MethodPost
	}
	body := ev.Values.Encode()
	target := ev.Action
	var reader io.Reader
	if method == http.MethodGet {
		target = appendQuery(target, body)
	} else {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("submit: build request: %w", err)
	}
	for key, values := range t.Headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("submit: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return rejection(resp)
}

func rejection(resp *http.Response) error {
	rejected := &RejectedError{StatusCode: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(raw) == 0 {
		return rejected
	}
	var payload struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		rejected.Message = strings.TrimSpace(string(raw))
		return rejected
	}
	rejected.Message = payload.Message
	rejected.Fields = payload.Errors
	return rejected
}

func appendQuery(target, query string) string {
	if query == "" {
		return target
	}
	if strings.Contains(target, "?") {
		return target + "&" + query
	}
	return target + "?" + query
}
