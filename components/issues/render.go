package issues

import (
	"embed"
	"fmt"
	"html"
	"io/fs"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formflow/pkg/render"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// DefaultThemeName names the built-in tracker theme.
const DefaultThemeName = "tracker"

// DefaultTheme returns the built-in theme manifest: brand and status color
// tokens plus a dark variant. The tokens surface in the page as CSS custom
// properties.
func DefaultTheme() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"color.brand":           "#1f6f8b",
			"color.surface":         "#ffffff",
			"color.text":            "#1a1a1a",
			"color.success":         "#2e7d32",
			"color.danger":          "#c62828",
			"status.open":           "#c62828",
			"status.in-progress":    "#ef6c00",
			"status.fixed":          "#2e7d32",
			"status.wont-fix":       "#616161",
			"status.not-applicable": "#90a4ae",
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"color.surface": "#14181c",
					"color.text":    "#e8eaed",
				},
			},
		},
	}
}

var textPolicy = bluemonday.StrictPolicy()

// sanitizeText strips any markup from free-text form input, keeping the plain
// text. Templates re-escape on output.
func sanitizeText(raw string) string {
	clean := textPolicy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(clean))
}

// templateSource exposes the embedded templates with the directory prefix
// stripped, so templates render by bare name.
func templateSource() fs.FS {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return templateFS
	}
	return sub
}

// PageData is everything the issues page template needs.
type PageData struct {
	Project      Project
	Violations   []Violation
	Statuses     []StatusChoice
	Token        string
	TokenField   string
	RowsHTML     string
	CreateAction string
	Script       string
}

// Renderer renders the issues page and the table row fragments through the
// configured template engine, carrying the resolved theme context.
type Renderer struct {
	engine   render.TemplateRenderer
	themeCtx map[string]any
}

// NewRenderer builds a renderer around engine with the theme resolved into
// template context. A nil theme config renders without theme tokens.
func NewRenderer(engine render.TemplateRenderer, cfg *theme.RendererConfig) (*Renderer, error) {
	if engine == nil {
		return nil, fmt.Errorf("issues: renderer requires a template engine")
	}
	r := &Renderer{engine: engine, themeCtx: map[string]any{}}
	if cfg != nil {
		r.themeCtx = render.ThemeContext(cfg)
	}
	return r, nil
}

// Rows renders the table body rows for issues. The violation catalog supplies
// display names; unknown IDs fall back to the raw code.
func (r *Renderer) Rows(issues []Issue, violations map[string]Violation) (string, error) {
	rows := make([]map[string]any, 0, len(issues))
	for _, issue := range issues {
		name := issue.ViolationID
		if v, ok := violations[issue.ViolationID]; ok && v.Name != "" {
			name = v.Name
		}
		rows = append(rows, map[string]any{
			"id":           issue.ID,
			"code":         issue.ViolationID,
			"violation":    name,
			"status":       string(issue.Status),
			"status_label": StatusLabel(issue.Status),
			"location":     issue.Location,
			"assigned_to":  issue.AssignedTo,
			"updated":      issue.UpdatedAt.Format("Jan 2, 2006 15:04"),
		})
	}

	out, err := r.engine.Render("rows", map[string]any{"rows": rows})
	if err != nil {
		return "", fmt.Errorf("issues: render rows: %w", err)
	}
	return out, nil
}

// Page renders the full issues page.
func (r *Renderer) Page(data PageData) (string, error) {
	violations := make([]map[string]any, 0, len(data.Violations))
	for _, v := range data.Violations {
		violations = append(violations, map[string]any{
			"id":          v.ID,
			"name":        v.Name,
			"standard":    v.Standard,
			"description": v.Description,
		})
	}

	statuses := make([]map[string]any, 0, len(data.Statuses))
	for _, s := range data.Statuses {
		statuses = append(statuses, map[string]any{
			"value": s.Value,
			"label": s.Label,
		})
	}

	ctx := map[string]any{
		"project": map[string]any{
			"id":           data.Project.ID,
			"name":         data.Project.Name,
			"client":       data.Project.Client,
			"standard":     data.Project.Standard,
			"has_standard": data.Project.HasStandard(),
		},
		"violations":    violations,
		"statuses":      statuses,
		"token":         data.Token,
		"token_field":   data.TokenField,
		"rows_html":     data.RowsHTML,
		"create_action": data.CreateAction,
		"script":        data.Script,
	}
	for k, v := range r.themeCtx {
		ctx[k] = v
	}

	out, err := r.engine.Render("page", ctx)
	if err != nil {
		return "", fmt.Errorf("issues: render page: %w", err)
	}
	return out, nil
}
