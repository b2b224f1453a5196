// Package intercept binds a submission client to every form of a parsed page
// and reflects each submission's outcome back into the document: a status
// banner before the form, and a refreshed results container when the server
// sends updated rows.
//
// A page and its interceptor are single-writer: nothing here locks the
// document, and overlapping submissions against the same page are the
// caller's responsibility, exactly as they are in a browser.
package intercept

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/banner"
	"github.com/goliatone/go-formflow/pkg/page"
	"github.com/goliatone/go-formflow/pkg/submit"
)

// ErrTokenMissing is returned by Bind when the document carries no usable
// authenticity token. The token is a required input: binding fails up front
// instead of letting every submission fail later.
var ErrTokenMissing = errors.New("intercept: authenticity token missing from document")

// GenericErrorMessage is the user-facing text shown when a submission fails
// at the transport or decode level. Details go to the diagnostic logger only.
const GenericErrorMessage = "An error occurred. Please try again."

// DefaultResultsSelector locates the container refreshed from response
// fragments.
const DefaultResultsSelector = "#issuesTable tbody"

// Interceptor owns the bound forms of one page.
type Interceptor struct {
	page     *page.Page
	client   *submit.Client
	logger   *zap.Logger
	renderer *banner.Renderer
	token    string
	results  string
	forms    []*BoundForm
}

// Bind validates the page's authenticity token and attaches a submission
// handle to every form. A document with zero forms binds successfully and
// simply has nothing attached.
func Bind(p *page.Page, opts ...Option) (*Interceptor, error) {
	if p == nil {
		return nil, errors.New("intercept: nil page")
	}

	cfg := config{
		logger:  zap.NewNop(),
		results: DefaultResultsSelector,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.client == nil {
		cfg.client = submit.New(submit.WithLogger(cfg.logger))
	}
	if cfg.renderer == nil {
		cfg.renderer = banner.NewRenderer()
	}

	token, ok := p.Token()
	if !ok || token == "" {
		return nil, fmt.Errorf("intercept: no hidden input named %s holds a value: %w",
			strings.Join(p.TokenFields(), ", "), ErrTokenMissing)
	}

	ic := &Interceptor{
		page:     p,
		client:   cfg.client,
		logger:   cfg.logger,
		renderer: cfg.renderer,
		token:    token,
		results:  cfg.results,
	}
	for _, f := range p.Forms() {
		ic.forms = append(ic.forms, &BoundForm{
			ic:    ic,
			form:  f,
			stack: banner.NewStack(cfg.stackOpts...),
		})
	}

	ic.logger.Debug("page bound",
		zap.Int("forms", len(ic.forms)),
		zap.String("results_selector", ic.results))
	return ic, nil
}

// Page returns the bound page.
func (ic *Interceptor) Page() *page.Page {
	return ic.page
}

// Token returns the authenticity token submissions will carry.
func (ic *Interceptor) Token() string {
	return ic.token
}

// Forms returns every bound form in document order.
func (ic *Interceptor) Forms() []*BoundForm {
	return ic.forms
}

// Form returns the i-th bound form.
func (ic *Interceptor) Form(i int) (*BoundForm, error) {
	if i < 0 || i >= len(ic.forms) {
		return nil, fmt.Errorf("intercept: form index %d of %d: %w", i, len(ic.forms), page.ErrNoForm)
	}
	return ic.forms[i], nil
}

// FormNamed returns the bound form whose name or id equals name.
func (ic *Interceptor) FormNamed(name string) (*BoundForm, error) {
	for _, bf := range ic.forms {
		if bf.form.Name() == name {
			return bf, nil
		}
	}
	return nil, fmt.Errorf("intercept: form %q: %w", name, page.ErrNoForm)
}

// BoundForm is one form with its banner stack.
type BoundForm struct {
	ic    *Interceptor
	form  *page.Form
	stack *banner.Stack
}

// Form exposes the underlying page form.
func (bf *BoundForm) Form() *page.Form {
	return bf.form
}

// Banners lists the banners currently attached to the form, oldest first.
func (bf *BoundForm) Banners() []banner.Banner {
	return bf.stack.Items()
}

// Dismiss removes the banner with the given id from the form and the
// document.
func (bf *BoundForm) Dismiss(id string) bool {
	b, ok := bf.stack.Remove(id)
	if !ok {
		return false
	}
	bf.ic.page.RemoveAll(banner.Selector(b))
	return true
}

// Submission is what one Submit call produced.
type Submission struct {
	Outcome         submit.Outcome
	Message         string
	Banner          banner.Banner
	ResultsReplaced bool
	Result          submit.Result
}

// Submit gathers the form's current values, posts them, and applies the
// outcome to the document. Every submission terminates in a banner; failures
// never escape as errors, they surface as the generic error banner with the
// cause on the diagnostic logger.
func (bf *BoundForm) Submit(ctx context.Context) *Submission {
	ic := bf.ic

	action, err := bf.form.ActionURL()
	if err != nil {
		ic.logger.Error("form action is unusable",
			zap.Int("form", bf.form.Index()),
			zap.Error(err))
		sub := bf.show(banner.SeverityError, GenericErrorMessage)
		sub.Outcome = submit.OutcomeFailed
		sub.Result = submit.Result{Outcome: submit.OutcomeFailed, Err: err}
		return sub
	}

	values := bf.form.Values()
	res := ic.client.Post(ctx, action.String(), ic.token, values)

	var sub *Submission
	switch res.Outcome {
	case submit.OutcomeApplied:
		sub = bf.show(banner.SeveritySuccess, res.Response.Message)
		if res.Response.IssuesHTML != "" {
			sub.ResultsReplaced = ic.page.ReplaceContents(ic.results, res.Response.IssuesHTML)
			if !sub.ResultsReplaced {
				ic.logger.Debug("response carried rows but the page has no results container",
					zap.String("results_selector", ic.results))
			}
		}
	case submit.OutcomeRejected:
		sub = bf.show(banner.SeverityError, res.Response.Message)
	default:
		ic.logger.Warn("submission failed, showing generic banner",
			zap.Int("form", bf.form.Index()),
			zap.String("action", action.String()),
			zap.Error(res.Err))
		sub = bf.show(banner.SeverityError, GenericErrorMessage)
	}

	sub.Outcome = res.Outcome
	sub.Result = res
	return sub
}

func (bf *BoundForm) show(severity banner.Severity, message string) *Submission {
	b := banner.New(severity, message)
	evicted := bf.stack.Push(b)
	bf.form.InsertBefore(bf.ic.renderer.HTML(b))
	for _, old := range evicted {
		bf.ic.page.RemoveAll(banner.Selector(old))
	}
	return &Submission{Message: message, Banner: b}
}
