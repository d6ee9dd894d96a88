package submit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-composer/pkg/forms"
)

// Policy decides which fields are consulted on submit.
type Policy int

const (
	// EagerPolicy runs every field's rules before checking the registry, so
	// an untouched required field blocks submission.
	EagerPolicy Policy = iota
	// RegisteredOnly checks only the entries already in the registry.
	RegisteredOnly
)

func (p Policy) String() string {
	if p == RegisteredOnly {
		return "registered"
	}
	return "eager"
}

// ParsePolicy maps a config value onto a Policy.
func ParsePolicy(value string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "eager":
		return EagerPolicy, nil
	case "registered", "registered-only":
		return RegisteredOnly, nil
	default:
		return EagerPolicy, fmt.Errorf("submit: unknown validation policy %q", value)
	}
}

// Status is the outcome reported to the caller.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusInvalid   Status = "invalid"
	StatusFailed    Status = "failed"
)

// Result is what Submit returns. A trapped submission returns exactly the
// Result of a genuine success.
type Result struct {
	Status  Status
	Invalid []string
}

// Submitted reports whether the caller should show the success state.
func (r Result) Submitted() bool {
	return r.Status == StatusSubmitted
}

// Handler receives the event once the gate has accepted it.
type Handler interface {
	Handle(ctx context.Context, ev *Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev *Event) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, ev *Event) error {
	return f(ctx, ev)
}

// CompleteFunc is the caller's completion callback. It fires once for every
// accepted submission, trapped or not.
type CompleteFunc func(Result)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Option configures a Gate.
type Option func(*Gate)

// WithPolicy selects the validation policy. The default is EagerPolicy.
func WithPolicy(policy Policy) Option {
	return func(g *Gate) {
		g.policy = policy
	}
}

// WithOnComplete sets the completion callback.
func WithOnComplete(fn CompleteFunc) Option {
	return func(g *Gate) {
		g.onComplete = fn
	}
}

// WithMetrics records outcomes.
func WithMetrics(m *Metrics) Option {
	return func(g *Gate) {
		g.metrics = m
	}
}

// WithLogger sets the gate logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithDefaultMethod sets the method forced onto events that carry none.
func WithDefaultMethod(method string) Option {
	return func(g *Gate) {
		if trimmed := strings.TrimSpace(method); trimmed != "" {
			g.defaultMethod = strings.ToUpper(trimmed)
		}
	}
}

// WithTrapDelay sets the delay used for a trapped submission before any
// genuine one has been timed, and the ceiling applied afterwards.
func WithTrapDelay(initial, ceiling time.Duration) Option {
	return func(g *Gate) {
		if initial >= 0 {
			g.initialDelay = initial
		}
		if ceiling > 0 {
			g.maxDelay = ceiling
		}
	}
}

// WithSleep replaces the wait used to pad trapped submissions.
func WithSleep(fn SleepFunc) Option {
	return func(g *Gate) {
		if fn != nil {
			g.sleep = fn
		}
	}
}

// WithLatency shares a latency accumulator between gates.
func WithLatency(l *Latency) Option {
	return func(g *Gate) {
		if l != nil {
			g.latency = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// Gate guards one form's submission.
type Gate struct {
	form          *forms.Form
	handler       Handler
	policy        Policy
	onComplete    CompleteFunc
	metrics       *Metrics
	logger        *slog.Logger
	defaultMethod string
	initialDelay  time.Duration
	maxDelay      time.Duration
	sleep         SleepFunc
	now           func() time.Time
	latency       *Latency
}

// NewGate builds a gate for form that forwards accepted events to handler.
func NewGate(form *forms.Form, handler Handler, options ...Option) (*Gate, error) {
	if form == nil {
		return nil, errors.New("submit: form is required")
	}
	if handler == nil {
		return nil, errors.New("submit: handler is required")
	}
	g := &Gate{
		form:          form,
		handler:       handler,
		policy:        EagerPolicy,
		logger:        slog.New(slog.DiscardHandler),
		defaultMethod: "POST",
		initialDelay:  150 * time.Millisecond,
		maxDelay:      2 * time.Second,
		sleep:         sleepContext,
		now:           time.Now,
		latency:       &Latency{},
	}
	for _, opt := range options {
		if opt != nil {
			opt(g)
		}
	}
	return g, nil
}

// Submit runs the gate for ev. A validation failure is a normal Result, not
// an error; errors come from the handler or a cancelled ctx.
func (g *Gate) Submit(ctx context.Context, ev *Event) (Result, error) {
	if ev == nil {
		ev = &Event{}
	}
	started := g.now()
	ev.PreventDefault()
	g.prepare(ev)

	if g.trapped(ev) {
		return g.absorb(ctx, started)
	}

	valid, err := g.validate(ctx)
	if err != nil {
		return Result{Status: StatusFailed}, fmt.Errorf("submit: validate: %w", err)
	}
	if !valid {
		result := Result{Status: StatusInvalid, Invalid: g.form.Registry().Invalid()}
		g.metrics.observe(g.form.ID(), OutcomeRejected, g.now().Sub(started))
		g.logger.Debug("submission rejected", "form", g.form.ID(), "invalid", result.Invalid)
		return result, nil
	}

	if err := g.handler.Handle(ctx, ev); err != nil {
		g.metrics.observe(g.form.ID(), OutcomeFailed, g.now().Sub(started))
		g.logger.Warn("submission handler failed", "form", g.form.ID(), "err", err)
		return Result{Status: StatusFailed}, fmt.Errorf("submit: %w", err)
	}

	elapsed := g.now().Sub(started)
	g.record(elapsed)
	g.metrics.observe(g.form.ID(), OutcomeSubmitted, elapsed)
	return g.complete(), nil
}

// AverageLatency returns the mean time genuine submissions took.
func (g *Gate) AverageLatency() time.Duration {
	return g.latency.Average()
}

func (g *Gate) prepare(ev *Event) {
	ev.Method = strings.ToUpper(strings.TrimSpace(ev.Method))
	if ev.Method == "" {
		ev.Method = g.defaultMethod
	}
	if strings.TrimSpace(ev.Action) == "" {
		ev.Action = g.form.Action()
	}
	if ev.Values == nil {
		ev.Values = EncodeValues(g.form.Values())
	}
}

func (g *Gate) trapped(ev *Event) bool {
	if g.form.Trapped() {
		return true
	}
	return strings.TrimSpace(ev.Values.Get(g.form.HoneypotName())) != ""
}

func (g *Gate) validate(ctx context.Context) (bool, error) {
	if g.policy == RegisteredOnly {
		return g.form.ValidateAllFields(), nil
	}
	return g.form.ValidateFields(ctx)
}

// absorb finishes a trapped submission without calling the handler. The
// wait is padded so the completion arrives when a genuine one would.
func (g *Gate) absorb(ctx context.Context, started time.Time) (Result, error) {
	delay := g.trapDelay() - g.now().Sub(started)
	if delay > 0 {
		if err := g.sleep(ctx, delay); err != nil {
			return Result{Status: StatusFailed}, fmt.Errorf("submit: %w", err)
		}
	}
	g.metrics.observe(g.form.ID(), OutcomeTrapped, g.now().Sub(started))
	g.logger.Warn("submission trapped", "form", g.form.ID())
	return g.complete(), nil
}

func (g *Gate) trapDelay() time.Duration {
	delay := g.AverageLatency()
	if delay == 0 {
		delay = g.initialDelay
	}
	return min(delay, g.maxDelay)
}

func (g *Gate) record(elapsed time.Duration) {
	g.latency.Record(elapsed)
}

// Latency accumulates genuine handler latency. Gates built per request for
// the same form share one so the trap delay follows real traffic.
type Latency struct {
	mu      sync.Mutex
	total   time.Duration
	samples int64
}

// Record adds one sample.
func (l *Latency) Record(elapsed time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.total += elapsed
	l.samples++
}

// Average returns the mean sample, or zero before any was recorded.
func (l *Latency) Average() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.samples == 0 {
		return 0
	}
	return l.total / time.Duration(l.samples)
}

func (g *Gate) complete() Result {
	result := Result{Status: StatusSubmitted}
	if g.onComplete != nil {
		g.onComplete(result)
	}
	return result
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
