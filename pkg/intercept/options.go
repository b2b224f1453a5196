package intercept

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/banner"
	"github.com/goliatone/go-formflow/pkg/submit"
)

type config struct {
	client    *submit.Client
	logger    *zap.Logger
	results   string
	stackOpts []banner.StackOption
	renderer  *banner.Renderer
}

// Option configures Bind.
type Option func(*config)

// WithClient injects the submission client. Without it Bind builds one that
// shares the interceptor's logger.
func WithClient(c *submit.Client) Option {
	return func(cfg *config) {
		if c != nil {
			cfg.client = c
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithResultsSelector overrides the CSS selector of the container refreshed
// from response fragments.
func WithResultsSelector(selector string) Option {
	return func(cfg *config) {
		if selector != "" {
			cfg.results = selector
		}
	}
}

// WithStackOptions configures the banner stack attached to each bound form.
func WithStackOptions(opts ...banner.StackOption) Option {
	return func(cfg *config) {
		cfg.stackOpts = append(cfg.stackOpts, opts...)
	}
}

// WithBannerRenderer overrides how banners render into markup.
func WithBannerRenderer(r *banner.Renderer) Option {
	return func(cfg *config) {
		if r != nil {
			cfg.renderer = r
		}
	}
}
