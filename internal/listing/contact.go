package listing

import (
	"fmt"

	"github.com/kamusis/acco/internal/directory"
)

// ContactHandler is invoked when a record's contact affordance is activated.
type ContactHandler interface {
	OnContactRequested(p directory.Profile) string
}

// ContactFunc adapts a function to ContactHandler.
type ContactFunc func(p directory.Profile) string

func (f ContactFunc) OnContactRequested(p directory.Profile) string { return f(p) }

// PlaceholderContact acknowledges the request without contacting anyone.
type PlaceholderContact struct{}

func (PlaceholderContact) OnContactRequested(p directory.Profile) string {
	return fmt.Sprintf("Contacting %s... This would open a contact form or redirect to their profile.", p.Name)
}
