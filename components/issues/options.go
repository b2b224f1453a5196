package issues

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formflow/pkg/render"
)

// GuardFunc runs before the write endpoints. Returning an error rejects the
// request; wrap a StatusError to control the response code.
type GuardFunc func(r *http.Request) error

type Options struct {
	// BasePath is the URL prefix the component is mounted under. It feeds
	// both route parsing and the form actions rendered into the page.
	BasePath string

	// TokenField is the name of the hidden input carrying the CSRF token.
	TokenField string

	// TokenTTL bounds how long minted CSRF tokens stay valid.
	TokenTTL time.Duration

	// RuntimeScript is the src of the script tag appended to the page.
	// Empty disables the tag.
	RuntimeScript string

	// Theme and ThemeVariant select a manifest from the ThemeSelector.
	Theme        string
	ThemeVariant string

	Store         Store
	Logger        *zap.Logger
	Engine        render.TemplateRenderer
	ThemeSelector theme.ThemeSelector
	Guard         GuardFunc

	// Catalog seeds the default memory store. Ignored when Store is set.
	Catalog *Catalog
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		TokenField:    "csrf_token",
		TokenTTL:      DefaultTokenTTL,
		RuntimeScript: "/assets/formflow.js",
		Theme:         DefaultThemeName,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.TokenField == "" {
		opts.TokenField = "csrf_token"
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = DefaultTokenTTL
	}
	if opts.Theme == "" {
		opts.Theme = DefaultThemeName
	}
	opts.BasePath = normalizeBasePath(opts.BasePath)
	return opts
}

func WithBasePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.BasePath = path
	}
}

func WithTokenField(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.TokenField = name
	}
}

func WithTokenTTL(ttl time.Duration) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.TokenTTL = ttl
	}
}

func WithRuntimeScript(src string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RuntimeScript = src
	}
}

func WithTheme(name, variant string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Theme = name
		o.ThemeVariant = variant
	}
}

func WithStore(store Store) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Store = store
	}
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

func WithEngine(engine render.TemplateRenderer) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Engine = engine
	}
}

func WithThemeSelector(selector theme.ThemeSelector) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.ThemeSelector = selector
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithCatalog(cat Catalog) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		copied := Catalog{
			Projects:   append([]Project{}, cat.Projects...),
			Violations: append([]Violation{}, cat.Violations...),
		}
		o.Catalog = &copied
	}
}

// normalizeBasePath trims trailing slashes and guarantees a leading slash so
// mounted routes and rendered form actions agree. An empty or root path
// normalizes to "".
func normalizeBasePath(base string) string {
	base = strings.TrimSpace(base)
	base = strings.TrimRight(base, "/")
	if base == "" {
		return ""
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return base
}
