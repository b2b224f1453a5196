package page

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/goliatone/go-formflow/internal/controls"
)

// ErrFieldMissing is returned when a form mutation names a field the form does
// not contain.
var ErrFieldMissing = errors.New("page: field not found")

// Form is a handle on one form element of a page.
type Form struct {
	page  *Page
	sel   *goquery.Selection
	index int
}

// Index is the form's position in document order, starting at zero.
func (f *Form) Index() int {
	return f.index
}

// Name returns the form's name attribute, falling back to its id.
func (f *Form) Name() string {
	if name, ok := f.sel.Attr("name"); ok && name != "" {
		return name
	}
	id, _ := f.sel.Attr("id")
	return id
}

// Action returns the raw action attribute.
func (f *Form) Action() string {
	action, _ := f.sel.Attr("action")
	return strings.TrimSpace(action)
}

// ActionURL resolves the form's action against the page base URL. An empty
// action targets the page itself, as a browser would.
func (f *Form) ActionURL() (*url.URL, error) {
	raw := f.Action()
	if raw == "" {
		if f.page.base == nil {
			return nil, fmt.Errorf("page: form %d has an empty action and the page has no base URL", f.index)
		}
		u := *f.page.base
		return &u, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("page: form %d action %q: %w", f.index, raw, err)
	}
	if f.page.base != nil {
		return f.page.base.ResolveReference(u), nil
	}
	return u, nil
}

// Method returns the form's method attribute, uppercased, defaulting to GET.
func (f *Form) Method() string {
	method, _ := f.sel.Attr("method")
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return "GET"
	}
	return method
}

// Selection exposes the underlying goquery selection.
func (f *Form) Selection() *goquery.Selection {
	return f.sel
}

// Values captures the form's current submittable state as an ordered
// multi-value mapping. Repeated names keep their document order.
func (f *Form) Values() url.Values {
	vals := url.Values{}
	f.sel.Find("input, select, textarea").Each(func(_ int, sel *goquery.Selection) {
		c, ok := controls.Classify(sel.Nodes[0])
		if !ok || !c.Submittable() {
			return
		}
		for _, v := range c.SubmitValues() {
			vals.Add(c.Name, v)
		}
	})
	return vals
}

// FieldOption is one selectable option of a field.
type FieldOption struct {
	Value    string
	Label    string
	Selected bool
}

// Field describes one form control in document order.
type Field struct {
	Name     string
	Type     string
	Value    string
	Checked  bool
	Multiple bool
	Required bool
	Hidden   bool
	Options  []FieldOption
}

// Fields lists the form's named, enabled controls in document order, one entry
// per control node. Button-like inputs and file pickers are omitted.
func (f *Form) Fields() []Field {
	var fields []Field
	f.sel.Find("input, select, textarea").Each(func(_ int, sel *goquery.Selection) {
		c, ok := controls.Classify(sel.Nodes[0])
		if !ok || c.Name == "" || c.Disabled {
			return
		}
		if c.Kind == controls.KindButton || c.Kind == controls.KindFile {
			return
		}
		field := Field{
			Name:     c.Name,
			Type:     c.Kind.String(),
			Value:    c.Value,
			Checked:  c.Checked,
			Multiple: c.Multiple,
			Required: controls.HasAttr(c.Node, "required"),
			Hidden:   c.Type == "hidden",
		}
		for _, ch := range c.Choices {
			if ch.Disabled {
				continue
			}
			field.Options = append(field.Options, FieldOption{Value: ch.Value, Label: ch.Label, Selected: ch.Selected})
		}
		fields = append(fields, field)
	})
	return fields
}

// Set updates the state of the named field so a later Values call reflects the
// given values. Text-like inputs are assigned positionally, checkbox and radio
// groups are checked by value, and selects mark the matching options.
func (f *Form) Set(name string, values ...string) error {
	matched := 0
	textIndex := 0
	var setErr error

	f.sel.Find("input, select, textarea").Each(func(_ int, sel *goquery.Selection) {
		if setErr != nil {
			return
		}
		c, ok := controls.Classify(sel.Nodes[0])
		if !ok || c.Name != name {
			return
		}
		matched++

		switch c.Kind {
		case controls.KindCheckbox, controls.KindRadio:
			own := c.Value
			if own == "" {
				own = "on"
			}
			if containsValue(values, own) {
				sel.SetAttr("checked", "checked")
			} else {
				sel.RemoveAttr("checked")
			}
		case controls.KindSelect:
			setErr = setSelect(sel, c, values)
		case controls.KindTextarea:
			if textIndex < len(values) {
				sel.SetHtml(escapeText(values[textIndex]))
				textIndex++
			}
		case controls.KindButton, controls.KindFile:
			// Not settable through form state.
		default:
			if textIndex < len(values) {
				sel.SetAttr("value", values[textIndex])
				textIndex++
			}
		}
	})

	if setErr != nil {
		return setErr
	}
	if matched == 0 {
		return fmt.Errorf("page: form %d field %q: %w", f.index, name, ErrFieldMissing)
	}
	return nil
}

// Fill applies every entry of values through Set.
func (f *Form) Fill(values url.Values) error {
	for name, vals := range values {
		if err := f.Set(name, vals...); err != nil {
			return err
		}
	}
	return nil
}

// InsertBefore inserts the given fragment as a sibling immediately before the
// form element.
func (f *Form) InsertBefore(fragment string) {
	f.sel.BeforeHtml(fragment)
}

func setSelect(sel *goquery.Selection, c controls.Control, values []string) error {
	for _, want := range values {
		found := false
		for _, ch := range c.Choices {
			if ch.Value == want {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("page: select %q has no option %q", c.Name, want)
		}
	}
	sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
		value, ok := opt.Attr("value")
		if !ok {
			value = strings.TrimSpace(opt.Text())
		}
		if containsValue(values, value) {
			opt.SetAttr("selected", "selected")
		} else {
			opt.RemoveAttr("selected")
		}
	})
	return nil
}

func containsValue(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
