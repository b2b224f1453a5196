package formflow

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/goliatone/go-formflow/pkg/banner"
	"github.com/goliatone/go-formflow/pkg/intercept"
	"github.com/goliatone/go-formflow/pkg/page"
	"github.com/goliatone/go-formflow/pkg/submit"
)

// Page is a parsed HTML document; alias exported via the root package for
// convenience.
type Page = page.Page

// Form is a single form element within a Page.
type Form = page.Form

// Interceptor owns a bound page and its forms.
type Interceptor = intercept.Interceptor

// BoundForm is a form with interception attached: submissions go through the
// JSON envelope client and feed banners back into the document.
type BoundForm = intercept.BoundForm

// Submission reports what a BoundForm submission did to the page.
type Submission = intercept.Submission

// Client posts form submissions and decodes envelope responses.
type Client = submit.Client

// Result is the transport-level outcome of a single POST.
type Result = submit.Result

// Response is the decoded submission envelope.
type Response = submit.Response

// Outcome classifies a submission as applied, rejected, or failed.
type Outcome = submit.Outcome

// Banner is a dismissible message inserted above a form.
type Banner = banner.Banner

const (
	OutcomeApplied  = submit.OutcomeApplied
	OutcomeRejected = submit.OutcomeRejected
	OutcomeFailed   = submit.OutcomeFailed
)

// GenericErrorMessage is shown when a submission fails before a server
// message is available.
const GenericErrorMessage = intercept.GenericErrorMessage

// Parse reads an HTML document from r.
func Parse(r io.Reader, opts ...page.Option) (*page.Page, error) {
	return page.Parse(r, opts...)
}

// ParseFile reads an HTML document from disk.
func ParseFile(path string, opts ...page.Option) (*page.Page, error) {
	return page.ParseFile(path, opts...)
}

// Bind attaches interception to every form on the page. It is the simplest
// entry point for callers that already hold a parsed Page.
func Bind(p *page.Page, opts ...intercept.Option) (*intercept.Interceptor, error) {
	return intercept.Bind(p, opts...)
}

// Fetch retrieves a page over HTTP and parses it with the response URL as the
// base for resolving form actions. Redirects are honored, so the base is the
// final URL served. A nil client falls back to http.DefaultClient.
func Fetch(ctx context.Context, client *http.Client, pageURL string, opts ...page.Option) (*page.Page, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("formflow: build page request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("formflow: fetch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("formflow: fetch page: unexpected status %s", resp.Status)
	}

	base := req.URL
	if resp.Request != nil && resp.Request.URL != nil {
		base = resp.Request.URL
	}
	all := append([]page.Option{page.WithBaseURL(base)}, opts...)
	return page.Parse(resp.Body, all...)
}
