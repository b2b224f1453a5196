package issues

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/render"
)

// Component wires the issue tracker together: store, CSRF token registry,
// contract validation rules, and the themed page renderer.
type Component struct {
	opts     Options
	log      *zap.Logger
	store    Store
	rules    *contract
	tokens   *TokenRegistry
	renderer *Renderer
}

// New constructs a component with default options plus any overrides. The
// embedded OpenAPI contract is parsed eagerly so a malformed contract fails
// construction rather than the first request.
func New(fns ...OptionFn) (*Component, error) {
	opts := NewOptions(fns...)

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	rules, err := loadContract(context.Background())
	if err != nil {
		return nil, err
	}

	store := opts.Store
	if store == nil {
		mem := NewMemoryStore()
		cat := Catalog{}
		if opts.Catalog != nil {
			cat = *opts.Catalog
		} else {
			cat, err = DefaultCatalog()
			if err != nil {
				return nil, err
			}
		}
		if err := mem.Seed(context.Background(), cat); err != nil {
			return nil, err
		}
		store = mem
	}

	selector := opts.ThemeSelector
	if selector == nil {
		selector = render.NewStaticSelector(DefaultTheme())
	}
	sel, err := selector.Select(opts.Theme, opts.ThemeVariant)
	if err != nil {
		return nil, fmt.Errorf("issues: select theme: %w", err)
	}
	themeCfg, err := render.ResolveTheme(sel.Manifest, sel.Variant)
	if err != nil {
		return nil, fmt.Errorf("issues: resolve theme: %w", err)
	}

	engine := opts.Engine
	if engine == nil {
		engine, err = render.NewEngine(
			render.WithFS(templateSource()),
			render.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("issues: build template engine: %w", err)
		}
	}
	renderer, err := NewRenderer(engine, themeCfg)
	if err != nil {
		return nil, err
	}

	return &Component{
		opts:     opts,
		log:      log,
		store:    store,
		rules:    rules,
		tokens:   NewTokenRegistry(opts.TokenTTL),
		renderer: renderer,
	}, nil
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Store returns the backing store, for callers that seed or inspect data
// outside the HTTP surface.
func (c *Component) Store() Store {
	if c == nil {
		return nil
	}
	return c.store
}

// Handler returns the net/http handler covering all component routes. It
// expects request paths to include the configured base path.
func (c *Component) Handler() http.Handler {
	return http.HandlerFunc(c.route)
}

// MountPaths returns the subtree patterns the component must be mounted on.
func (c *Component) MountPaths() []string {
	base := ""
	if c != nil {
		base = c.opts.BasePath
	}
	return MountPaths(base)
}

// RegisterRoutes mounts the component under basePath on mux and returns the
// registered patterns. The base path also feeds the form actions rendered
// into the page, so it replaces any base path set at construction.
func (c *Component) RegisterRoutes(mux Mux, basePath string) ([]string, error) {
	if c == nil {
		return nil, fmt.Errorf("issues: nil component")
	}
	if mux == nil {
		return nil, fmt.Errorf("issues: missing mux")
	}
	c.opts.BasePath = normalizeBasePath(basePath)
	patterns := c.MountPaths()
	handler := c.Handler()
	for _, pattern := range patterns {
		mux.Handle(pattern, handler)
	}
	return patterns, nil
}
