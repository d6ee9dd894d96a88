package template

import (
	"io"
)

// TemplateRenderer is the seam component factories render leaf markup
// through. The default implementation lives in the gotemplate subpackage.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}
