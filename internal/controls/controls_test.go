package controls

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"
)

func parseControl(t *testing.T, fragment string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader("<html><body><form>" + fragment + "</form></body></html>"))
	if err != nil {
		t.Fatalf("parse fragment: %v", err)
	}
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "input", "select", "textarea":
				found = n
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if found == nil {
		t.Fatalf("no control found in %q", fragment)
	}
	return found
}

func TestClassifyTextInput(t *testing.T) {
	c, ok := Classify(parseControl(t, `<input type="text" name="location" value="Header nav">`))
	if !ok {
		t.Fatal("expected a control")
	}
	if c.Kind != KindText {
		t.Fatalf("expected KindText, got %s", c.Kind)
	}
	if got := c.SubmitValues(); !cmp.Equal(got, []string{"Header nav"}) {
		t.Fatalf("expected [Header nav], got %v", got)
	}
}

func TestClassifyRejectsNonControls(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(`<p>hello</p>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var p *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "p" {
			p = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if _, ok := Classify(p); ok {
		t.Fatal("expected p element to be rejected")
	}
}

func TestCheckboxOnlyWhenChecked(t *testing.T) {
	unchecked, _ := Classify(parseControl(t, `<input type="checkbox" name="notify" value="yes">`))
	if unchecked.Submittable() {
		t.Fatal("unchecked checkbox must not submit")
	}
	checked, _ := Classify(parseControl(t, `<input type="checkbox" name="notify" value="yes" checked>`))
	if got := checked.SubmitValues(); !cmp.Equal(got, []string{"yes"}) {
		t.Fatalf("expected [yes], got %v", got)
	}
}

func TestCheckboxDefaultValue(t *testing.T) {
	c, _ := Classify(parseControl(t, `<input type="checkbox" name="flag" checked>`))
	if got := c.SubmitValues(); !cmp.Equal(got, []string{"on"}) {
		t.Fatalf("expected [on], got %v", got)
	}
}

func TestDisabledAndButtonsExcluded(t *testing.T) {
	cases := []string{
		`<input type="text" name="notes" value="x" disabled>`,
		`<input type="submit" name="save" value="Save">`,
		`<input type="button" name="b" value="Click">`,
		`<input type="file" name="upload">`,
		`<input type="text" value="anonymous">`,
	}
	for _, markup := range cases {
		c, ok := Classify(parseControl(t, markup))
		if !ok {
			t.Fatalf("expected a control for %q", markup)
		}
		if c.Submittable() {
			t.Fatalf("expected %q to be excluded from submission", markup)
		}
	}
}

func TestSelectSingleDefaultsToFirstEnabled(t *testing.T) {
	c, _ := Classify(parseControl(t, `<select name="status">
		<option value="" disabled>Choose</option>
		<option value="open">Open</option>
		<option value="fixed">Fixed</option>
	</select>`))
	if got := c.SubmitValues(); !cmp.Equal(got, []string{"open"}) {
		t.Fatalf("expected [open], got %v", got)
	}
}

func TestSelectSingleHonorsSelected(t *testing.T) {
	c, _ := Classify(parseControl(t, `<select name="status">
		<option value="open">Open</option>
		<option value="fixed" selected>Fixed</option>
	</select>`))
	if got := c.SubmitValues(); !cmp.Equal(got, []string{"fixed"}) {
		t.Fatalf("expected [fixed], got %v", got)
	}
}

func TestSelectMultipleKeepsDocumentOrder(t *testing.T) {
	c, _ := Classify(parseControl(t, `<select name="assignees" multiple>
		<option value="ana" selected>Ana</option>
		<option value="bo">Bo</option>
		<option value="cam" selected>Cam</option>
	</select>`))
	if !c.Multiple {
		t.Fatal("expected multiple select")
	}
	if got := c.SubmitValues(); !cmp.Equal(got, []string{"ana", "cam"}) {
		t.Fatalf("expected [ana cam], got %v", got)
	}
}

func TestSelectOptionWithoutValueUsesLabel(t *testing.T) {
	c, _ := Classify(parseControl(t, `<select name="severity">
		<option selected>High</option>
	</select>`))
	if got := c.SubmitValues(); !cmp.Equal(got, []string{"High"}) {
		t.Fatalf("expected [High], got %v", got)
	}
}

func TestOptgroupChoicesFlattened(t *testing.T) {
	c, _ := Classify(parseControl(t, `<select name="violation">
		<optgroup label="Perceivable">
			<option value="1.1.1">Non-text Content</option>
		</optgroup>
		<optgroup label="Operable">
			<option value="2.1.1">Keyboard</option>
		</optgroup>
	</select>`))
	want := []Choice{
		{Value: "1.1.1", Label: "Non-text Content"},
		{Value: "2.1.1", Label: "Keyboard"},
	}
	if diff := cmp.Diff(want, c.Choices); diff != "" {
		t.Fatalf("choices mismatch (-want +got):\n%s", diff)
	}
}

func TestTextareaValueIsTextContent(t *testing.T) {
	c, _ := Classify(parseControl(t, `<textarea name="notes">line one
line two</textarea>`))
	if c.Kind != KindTextarea {
		t.Fatalf("expected KindTextarea, got %s", c.Kind)
	}
	if got := c.SubmitValues(); !cmp.Equal(got, []string{"line one\nline two"}) {
		t.Fatalf("unexpected textarea value: %q", got)
	}
}
