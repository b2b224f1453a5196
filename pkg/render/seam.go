// Package render is the template layer behind server-side pages and row
// fragments. It exposes a small renderer contract backed by a pongo2 template
// set, plus helpers that turn a theme selection into template context.
package render

import "io"

// TemplateRenderer is the contract page and fragment producers rely on.
// Render treats its first argument as inline template content when it looks
// like one, otherwise as a template name.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
