package page

// ClassToggler flips a document-wide class, for example to dim the page
// while the editor is active. The renderer calls it but never owns it.
type ClassToggler interface {
	Toggle(class string, on bool)
}

// EventBus receives notifications about render passes and dispatched
// actions.
type EventBus interface {
	Publish(topic string, payload any)
}

// ClassTogglerFunc adapts a function to ClassToggler.
type ClassTogglerFunc func(class string, on bool)

// Toggle calls f.
func (f ClassTogglerFunc) Toggle(class string, on bool) { f(class, on) }

// EventBusFunc adapts a function to EventBus.
type EventBusFunc func(topic string, payload any)

// Publish calls f.
func (f EventBusFunc) Publish(topic string, payload any) { f(topic, payload) }

// Event topics published on the EventBus.
const (
	TopicRendered = "page.rendered"
	TopicAction   = "page.action"
)

// EditingClass is toggled on the ClassToggler for every pass.
const EditingClass = "composer-editing"

type nopToggler struct{}

func (nopToggler) Toggle(string, bool) {}

type nopBus struct{}

func (nopBus) Publish(string, any) {}
