package render

import (
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// ResolveTheme merges a manifest with one of its variants into the renderer
// configuration templates consume: effective tokens, derived CSS custom
// properties, partial overrides, and an asset URL resolver. An empty variant
// selects the base manifest; an unknown variant is an error.
func ResolveTheme(manifest *theme.Manifest, variant string) (*theme.RendererConfig, error) {
	if manifest == nil {
		return nil, fmt.Errorf("render: nil theme manifest")
	}

	tokens := copyStrings(manifest.Tokens)
	partials := copyStrings(manifest.Templates)
	prefix := manifest.Assets.Prefix
	files := copyStrings(manifest.Assets.Files)

	if variant != "" {
		v, ok := manifest.Variants[variant]
		if !ok {
			return nil, fmt.Errorf("render: theme %q has no variant %q", manifest.Name, variant)
		}
		mergeStrings(tokens, v.Tokens)
		mergeStrings(partials, v.Templates)
		mergeStrings(files, v.Assets.Files)
		if v.Assets.Prefix != "" {
			prefix = v.Assets.Prefix
		}
	}

	cfg := &theme.RendererConfig{
		Theme:    manifest.Name,
		Variant:  variant,
		Tokens:   tokens,
		Partials: partials,
		CSSVars:  cssVars(tokens),
	}
	cfg.AssetURL = func(key string) string {
		file, ok := files[key]
		if !ok {
			return ""
		}
		if prefix == "" {
			return file
		}
		return strings.TrimSuffix(prefix, "/") + "/" + file
	}
	return cfg, nil
}

// ThemeContext flattens a renderer configuration into template context:
// theme name and variant, tokens, css_vars, a ready-to-embed css_vars_style
// block, and an asset_url function.
func ThemeContext(cfg *theme.RendererConfig) map[string]any {
	if cfg == nil {
		return map[string]any{}
	}
	return map[string]any{
		"theme": map[string]any{
			"name":           cfg.Theme,
			"variant":        cfg.Variant,
			"tokens":         cfg.Tokens,
			"css_vars":       cfg.CSSVars,
			"css_vars_style": CSSVarsStyle(cfg.CSSVars),
		},
		"asset_url": assetResolver(cfg),
	}
}

// CSSVarsStyle renders CSS custom properties as a :root block, keys sorted.
func CSSVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}

// StaticSelector serves theme selections from an in-memory set of manifests.
// It satisfies the go-theme selector contract for callers that do not run a
// full theme provider.
type StaticSelector struct {
	manifests map[string]*theme.Manifest
}

// NewStaticSelector indexes the given manifests by name.
func NewStaticSelector(manifests ...*theme.Manifest) *StaticSelector {
	s := &StaticSelector{manifests: make(map[string]*theme.Manifest, len(manifests))}
	for _, m := range manifests {
		if m != nil && m.Name != "" {
			s.manifests[m.Name] = m
		}
	}
	return s
}

// Select resolves a theme and variant pair.
func (s *StaticSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	m, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("render: unknown theme %q", name)
	}
	if variant != "" {
		if _, ok := m.Variants[variant]; !ok {
			return nil, fmt.Errorf("render: theme %q has no variant %q", name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: m}, nil
}

var _ theme.ThemeSelector = (*StaticSelector)(nil)

func assetResolver(cfg *theme.RendererConfig) func(string) string {
	if cfg == nil || cfg.AssetURL == nil {
		return func(string) string { return "" }
	}
	return cfg.AssetURL
}

func cssVars(tokens map[string]string) map[string]string {
	if len(tokens) == 0 {
		return nil
	}
	out := make(map[string]string, len(tokens))
	for key, value := range tokens {
		name := strings.TrimPrefix(key, "--")
		out["--"+strings.ReplaceAll(name, ".", "-")] = value
	}
	return out
}

func copyStrings(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func mergeStrings(dst map[string]string, src map[string]string) {
	for key, value := range src {
		dst[key] = value
	}
}
