package validation

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-composer/pkg/schema"
)

// ErrUnknownRule is returned when a field names a rule that is not
// registered.
var ErrUnknownRule = errors.New("validation: unknown rule")

// Rule checks one value. It returns the user-facing messages for a failing
// value and an error only when the check itself could not run. Rules may
// block, for example on a remote lookup, and must honour ctx.
type Rule interface {
	Validate(ctx context.Context, value any, props schema.Properties) ([]string, error)
}

// RuleFunc adapts a function to Rule.
type RuleFunc func(ctx context.Context, value any, props schema.Properties) ([]string, error)

// Validate calls f.
func (f RuleFunc) Validate(ctx context.Context, value any, props schema.Properties) ([]string, error) {
	return f(ctx, value, props)
}

// Check is a compiled field validator.
type Check func(ctx context.Context, value any) ([]string, error)

// Built-in rule names.
const (
	RuleRequired = "required"
	RuleEmail    = "email"
	RuleURL      = "url"
	RuleNumeric  = "numeric"
	RuleAlpha    = "alpha"
	RuleAlphanum = "alphanum"
	RulePhone    = "phone"
	RulePostcode = "postcode"
	RuleDate     = "date"
)

var postcodePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 -]{1,8}[A-Za-z0-9]$`)

// RuleSet is the catalogue of named rules available to forms.
type RuleSet struct {
	mu       sync.RWMutex
	rules    map[string]Rule
	validate *validator.Validate
}

// NewRuleSet returns a rule set with the built-in rules registered.
func NewRuleSet() *RuleSet {
	v := validator.New()
	_ = v.RegisterValidation(RulePostcode, func(fl validator.FieldLevel) bool {
		return postcodePattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})

	set := &RuleSet{
		rules:    make(map[string]Rule),
		validate: v,
	}
	set.MustRegister(RuleRequired, RuleFunc(set.required))
	set.MustRegister(RuleEmail, set.tagRule("email", "Enter a valid email address"))
	set.MustRegister(RuleURL, set.tagRule("url", "Enter a valid URL"))
	set.MustRegister(RuleNumeric, set.tagRule("numeric", "Must be a number"))
	set.MustRegister(RuleAlpha, set.tagRule("alpha", "Use letters only"))
	set.MustRegister(RuleAlphanum, set.tagRule("alphanum", "Use letters and numbers only"))
	set.MustRegister(RulePhone, set.tagRule("e164", "Enter a phone number in international format, for example +15551234567"))
	set.MustRegister(RulePostcode, set.tagRule(RulePostcode, "Enter a valid postcode"))
	set.MustRegister(RuleDate, set.tagRule("datetime=2006-01-02", "Enter a date as YYYY-MM-DD"))
	return set
}

// Register adds or replaces the rule stored under name.
func (s *RuleSet) Register(name string, rule Rule) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("validation: rule name is required")
	}
	if rule == nil {
		return fmt.Errorf("validation: rule %q is nil", name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[name] = rule
	return nil
}

// MustRegister mirrors Register but panics on error.
func (s *RuleSet) MustRegister(name string, rule Rule) {
	if err := s.Register(name, rule); err != nil {
		panic(err)
	}
}

// Lookup returns the rule stored under name.
func (s *RuleSet) Lookup(name string) (Rule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rule, ok := s.rules[strings.TrimSpace(name)]
	return rule, ok
}

// Names returns the registered rule names, sorted.
func (s *RuleSet) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.rules))
	for name := range s.rules {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// RuleNames splits a validate property into rule names. Names may be
// separated by commas, pipes or whitespace.
func RuleNames(spec string) []string {
	return strings.FieldsFunc(spec, func(r rune) bool {
		return r == ',' || r == '|' || unicode.IsSpace(r)
	})
}

// Compile resolves the rules a field needs: the property constraints
// (required, minLength, maxLength, pattern) followed by the named rules in
// the validate property. An unknown rule name or an invalid pattern is a
// construction error. The returned Check never touches props again, so
// callers may mutate their copy.
func (s *RuleSet) Compile(props schema.Properties) (Check, error) {
	props = props.Clone()
	var rules []Rule

	if props.Bool(schema.PropRequired) {
		rules = append(rules, RuleFunc(s.required))
	}
	if n, ok := props.Int(schema.PropMinLength); ok && n > 0 {
		rules = append(rules, s.lengthRule("min", n, fmt.Sprintf("Must be at least %d characters", n)))
	}
	if n, ok := props.Int(schema.PropMaxLength); ok && n > 0 {
		rules = append(rules, s.lengthRule("max", n, fmt.Sprintf("Must be at most %d characters", n)))
	}
	if pattern := props.String(schema.PropPattern); pattern != "" {
		re, err := regexp.Compile("^(?:" + pattern + ")$")
		if err != nil {
			return nil, fmt.Errorf("validation: invalid pattern %q: %w", pattern, err)
		}
		rules = append(rules, patternRule(re))
	}

	for _, name := range RuleNames(props.String(schema.PropValidate)) {
		if name == RuleRequired && props.Bool(schema.PropRequired) {
			continue
		}
		rule, ok := s.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRule, name)
		}
		rules = append(rules, rule)
	}

	return func(ctx context.Context, value any) ([]string, error) {
		var messages []string
		for _, rule := range rules {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			msgs, err := rule.Validate(ctx, value, props)
			if err != nil {
				return nil, err
			}
			messages = append(messages, msgs...)
		}
		return normalizeMessages(messages), nil
	}, nil
}

func (s *RuleSet) required(_ context.Context, value any, _ schema.Properties) ([]string, error) {
	const message = "This field is required"
	switch v := value.(type) {
	case nil:
		return []string{message}, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return []string{message}, nil
		}
		return nil, nil
	case []string:
		if len(v) == 0 {
			return []string{message}, nil
		}
		return nil, nil
	case []any:
		if len(v) == 0 {
			return []string{message}, nil
		}
		return nil, nil
	}
	if err := s.validate.Var(value, "required"); err != nil {
		return messagesFor(err, message)
	}
	return nil, nil
}

// tagRule wraps a validator tag. Empty values pass so rules compose with
// required rather than implying it.
func (s *RuleSet) tagRule(tag, message string) Rule {
	return RuleFunc(func(_ context.Context, value any, _ schema.Properties) ([]string, error) {
		text, ok := textValue(value)
		if !ok {
			return []string{message}, nil
		}
		if strings.TrimSpace(text) == "" {
			return nil, nil
		}
		if err := s.validate.Var(strings.TrimSpace(text), tag); err != nil {
			return messagesFor(err, message)
		}
		return nil, nil
	})
}

func (s *RuleSet) lengthRule(op string, n int, message string) Rule {
	tag := "omitempty," + op + "=" + strconv.Itoa(n)
	return RuleFunc(func(_ context.Context, value any, _ schema.Properties) ([]string, error) {
		text, ok := textValue(value)
		if !ok {
			return nil, nil
		}
		if err := s.validate.Var(text, tag); err != nil {
			return messagesFor(err, message)
		}
		return nil, nil
	})
}

func patternRule(re *regexp.Regexp) Rule {
	return RuleFunc(func(_ context.Context, value any, _ schema.Properties) ([]string, error) {
		text, ok := textValue(value)
		if !ok || text == "" {
			return nil, nil
		}
		if !re.MatchString(text) {
			return []string{"Does not match the expected format"}, nil
		}
		return nil, nil
	})
}

// messagesFor turns a validator failure into message. Anything other than a
// failed tag is a programming error and is returned as such.
func messagesFor(err error, message string) ([]string, error) {
	var failures validator.ValidationErrors
	if errors.As(err, &failures) {
		return []string{message}, nil
	}
	return nil, fmt.Errorf("validation: %w", err)
}

func textValue(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return "", false
	}
}
