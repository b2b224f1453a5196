// Package page wraps a parsed HTML document with the affordances a headless
// form client needs: form discovery, authenticity-token lookup, and the small
// set of tree mutations used to reflect submission results back into the page.
package page

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoForm is returned when a requested form does not exist in the document.
var ErrNoForm = errors.New("page: form not found")

// DefaultTokenFields are the hidden input names recognized as authenticity
// tokens, in lookup order.
var DefaultTokenFields = []string{"csrf_token", "csrfmiddlewaretoken", "_csrf"}

type config struct {
	base        *url.URL
	tokenFields []string
}

// Option configures document parsing.
type Option func(*config)

// WithBaseURL sets the URL the document was loaded from. Relative form actions
// resolve against it. It takes precedence over a <base href> element.
func WithBaseURL(u *url.URL) Option {
	return func(c *config) {
		if u != nil {
			c.base = u
		}
	}
}

// WithTokenFields overrides the hidden input names recognized as authenticity
// tokens.
func WithTokenFields(names ...string) Option {
	return func(c *config) {
		if len(names) > 0 {
			c.tokenFields = names
		}
	}
}

// Page is a parsed HTML document.
type Page struct {
	doc         *goquery.Document
	base        *url.URL
	tokenFields []string
}

// Parse reads an HTML document from r.
func Parse(r io.Reader, opts ...Option) (*Page, error) {
	cfg := config{tokenFields: DefaultTokenFields}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("page: parse document: %w", err)
	}

	p := &Page{doc: doc, base: cfg.base, tokenFields: cfg.tokenFields}
	if p.base == nil {
		p.base = declaredBase(doc)
	}
	return p, nil
}

// ParseString parses an HTML document held in a string.
func ParseString(markup string, opts ...Option) (*Page, error) {
	return Parse(strings.NewReader(markup), opts...)
}

// ParseFile parses the HTML document at path.
func ParseFile(path string, opts ...Option) (*Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("page: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f, opts...)
}

func declaredBase(doc *goquery.Document) *url.URL {
	href, ok := doc.Find("base").First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return nil
	}
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil
	}
	return u
}

// Document exposes the underlying goquery document for callers that need
// selections beyond the page API.
func (p *Page) Document() *goquery.Document {
	return p.doc
}

// Base returns the URL relative form actions resolve against, or nil.
func (p *Page) Base() *url.URL {
	return p.base
}

// Forms returns every form element in the document, in document order.
func (p *Page) Forms() []*Form {
	var forms []*Form
	p.doc.Find("form").Each(func(i int, sel *goquery.Selection) {
		forms = append(forms, &Form{page: p, sel: sel, index: i})
	})
	return forms
}

// Form returns the i-th form in document order.
func (p *Page) Form(i int) (*Form, error) {
	forms := p.Forms()
	if i < 0 || i >= len(forms) {
		return nil, fmt.Errorf("page: form index %d of %d: %w", i, len(forms), ErrNoForm)
	}
	return forms[i], nil
}

// FormNamed returns the form whose name or id attribute equals name.
func (p *Page) FormNamed(name string) (*Form, error) {
	for _, f := range p.Forms() {
		if f.Name() == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("page: form %q: %w", name, ErrNoForm)
}

// Token returns the value of the first hidden authenticity-token input found
// anywhere in the document, searching in document order.
func (p *Page) Token() (string, bool) {
	var token string
	found := false
	p.doc.Find("input").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		typ, _ := sel.Attr("type")
		if !strings.EqualFold(strings.TrimSpace(typ), "hidden") {
			return true
		}
		name, _ := sel.Attr("name")
		for _, want := range p.tokenFields {
			if name == want {
				token, _ = sel.Attr("value")
				found = true
				return false
			}
		}
		return true
	})
	return token, found
}

// TokenFields returns the hidden input names recognized as tokens.
func (p *Page) TokenFields() []string {
	return p.tokenFields
}

// ReplaceContents replaces the children of the first node matching selector
// with the given fragment, verbatim. It reports whether a node matched; a
// document without the target is left untouched.
func (p *Page) ReplaceContents(selector, fragment string) bool {
	sel := p.doc.Find(selector)
	if sel.Length() == 0 {
		return false
	}
	sel.First().SetHtml(fragment)
	return true
}

// RemoveAll removes every node matching selector and returns how many were
// removed.
func (p *Page) RemoveAll(selector string) int {
	sel := p.doc.Find(selector)
	n := sel.Length()
	if n > 0 {
		sel.Remove()
	}
	return n
}

// HTML serializes the full document.
func (p *Page) HTML() (string, error) {
	markup, err := p.doc.Html()
	if err != nil {
		return "", fmt.Errorf("page: serialize document: %w", err)
	}
	return markup, nil
}

// Write serializes the full document to w.
func (p *Page) Write(w io.Writer) error {
	if err := goquery.Render(w, p.doc.Selection); err != nil {
		return fmt.Errorf("page: render document: %w", err)
	}
	return nil
}
