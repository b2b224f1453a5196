// Package controls interprets HTML form controls: which controls take part in a
// submission and what values they contribute. The rules follow what browsers do
// when serializing a form: named, enabled controls only, checkboxes and radios
// only when checked, button-like inputs and file pickers never.
package controls

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Kind identifies the behavioral class of a form control.
type Kind int

const (
	KindText Kind = iota
	KindPassword
	KindCheckbox
	KindRadio
	KindSelect
	KindTextarea
	KindButton
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindPassword:
		return "password"
	case KindCheckbox:
		return "checkbox"
	case KindRadio:
		return "radio"
	case KindSelect:
		return "select"
	case KindTextarea:
		return "textarea"
	case KindButton:
		return "button"
	case KindFile:
		return "file"
	}
	return "unknown"
}

// Choice is one option of a select control.
type Choice struct {
	Value    string
	Label    string
	Selected bool
	Disabled bool
}

// Control is the interpreted state of a single input, select or textarea node.
type Control struct {
	Name     string
	Kind     Kind
	Type     string
	Value    string
	Checked  bool
	Disabled bool
	Multiple bool
	Choices  []Choice
	Node     *html.Node
}

// Attr returns the value of the named attribute on n.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether n carries the named attribute, regardless of value.
func HasAttr(n *html.Node, key string) bool {
	_, ok := Attr(n, key)
	return ok
}

// Classify interprets n as a form control. It returns false for nodes that are
// not input, select or textarea elements.
func Classify(n *html.Node) (Control, bool) {
	if n == nil || n.Type != html.ElementNode {
		return Control{}, false
	}

	c := Control{Node: n}
	c.Name, _ = Attr(n, "name")
	c.Disabled = HasAttr(n, "disabled")

	switch n.DataAtom {
	case atom.Input:
		typ, _ := Attr(n, "type")
		c.Type = strings.ToLower(typ)
		c.Value, _ = Attr(n, "value")
		switch c.Type {
		case "checkbox":
			c.Kind = KindCheckbox
			c.Checked = HasAttr(n, "checked")
		case "radio":
			c.Kind = KindRadio
			c.Checked = HasAttr(n, "checked")
		case "password":
			c.Kind = KindPassword
		case "file":
			c.Kind = KindFile
		case "submit", "button", "image", "reset":
			c.Kind = KindButton
		default:
			c.Kind = KindText
		}
	case atom.Select:
		c.Kind = KindSelect
		c.Multiple = HasAttr(n, "multiple")
		c.Choices = selectChoices(n)
	case atom.Textarea:
		c.Kind = KindTextarea
		c.Value = nodeText(n)
	default:
		return Control{}, false
	}

	return c, true
}

// Submittable reports whether the control contributes values to a submission.
func (c Control) Submittable() bool {
	if c.Name == "" || c.Disabled {
		return false
	}
	switch c.Kind {
	case KindButton, KindFile:
		return false
	case KindCheckbox, KindRadio:
		return c.Checked
	}
	return true
}

// SubmitValues returns the values the control contributes, in document order.
// Callers should check Submittable first; a non-submittable control returns nil.
func (c Control) SubmitValues() []string {
	if !c.Submittable() {
		return nil
	}
	switch c.Kind {
	case KindCheckbox, KindRadio:
		if c.Value == "" {
			return []string{"on"}
		}
		return []string{c.Value}
	case KindSelect:
		return selectValues(c)
	default:
		return []string{c.Value}
	}
}

func selectValues(c Control) []string {
	if c.Multiple {
		var vals []string
		for _, ch := range c.Choices {
			if ch.Selected && !ch.Disabled {
				vals = append(vals, ch.Value)
			}
		}
		return vals
	}
	for _, ch := range c.Choices {
		if ch.Selected && !ch.Disabled {
			return []string{ch.Value}
		}
	}
	// No explicit selection: browsers submit the first enabled option.
	for _, ch := range c.Choices {
		if !ch.Disabled {
			return []string{ch.Value}
		}
	}
	return nil
}

func selectChoices(sel *html.Node) []Choice {
	var out []Choice
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != html.ElementNode {
				continue
			}
			switch child.DataAtom {
			case atom.Option:
				ch := Choice{
					Label:    strings.TrimSpace(nodeText(child)),
					Selected: HasAttr(child, "selected"),
					Disabled: HasAttr(child, "disabled"),
				}
				if v, ok := Attr(child, "value"); ok {
					ch.Value = v
				} else {
					ch.Value = ch.Label
				}
				out = append(out, ch)
			case atom.Optgroup:
				walk(child)
			}
		}
	}
	walk(sel)
	return out
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.TextNode {
				b.WriteString(child.Data)
			} else {
				walk(child)
			}
		}
	}
	walk(n)
	return b.String()
}
