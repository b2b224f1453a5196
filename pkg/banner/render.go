package banner

import (
	"fmt"
	"html"
	"strings"
)

// Classes are the CSS class hooks rendered into banner markup.
type Classes struct {
	Container string
	Dismiss   string
	Severity  map[Severity]string
}

// DefaultClasses returns bootstrap-flavored alert classes.
func DefaultClasses() Classes {
	return Classes{
		Container: "alert alert-dismissible",
		Dismiss:   "close",
		Severity: map[Severity]string{
			SeveritySuccess: "alert-success",
			SeverityError:   "alert-danger",
		},
	}
}

// RenderOption configures a Renderer.
type RenderOption func(*Renderer)

// WithClasses overrides the rendered CSS classes.
func WithClasses(classes Classes) RenderOption {
	return func(r *Renderer) {
		r.classes = classes
	}
}

// Renderer turns banners into dismissible alert markup.
type Renderer struct {
	classes Classes
}

// NewRenderer builds a renderer with DefaultClasses unless configured
// otherwise.
func NewRenderer(opts ...RenderOption) *Renderer {
	r := &Renderer{classes: DefaultClasses()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// HTML renders b as a dismissible alert. The message is escaped; banner text
// is plain text, never markup.
func (r *Renderer) HTML(b Banner) string {
	classes := strings.TrimSpace(r.classes.Container + " " + r.classes.Severity[b.Severity])
	var sb strings.Builder
	fmt.Fprintf(&sb, `<div class="%s" role="alert" data-banner-id="%s" data-severity="%s">`,
		classes, html.EscapeString(b.ID), b.Severity)
	sb.WriteString(html.EscapeString(b.Message))
	fmt.Fprintf(&sb, `<button type="button" class="%s" data-dismiss="alert" aria-label="Close"><span aria-hidden="true">&times;</span></button>`,
		r.classes.Dismiss)
	sb.WriteString(`</div>`)
	return sb.String()
}

// Selector returns the CSS selector matching b's rendered markup.
func Selector(b Banner) string {
	return fmt.Sprintf(`[data-banner-id=%q]`, b.ID)
}
