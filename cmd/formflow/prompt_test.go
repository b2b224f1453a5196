package main

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/page"
)

// scriptDriver answers prompts from canned slices and records what each
// prompt asked for.
type scriptDriver struct {
	t        *testing.T
	inputs   []string
	selects  []int
	multis   [][]int
	confirms []bool
	texts    []string
	err      error

	order       []string
	inputCfgs   []inputConfig
	selectCfgs  []selectConfig
	multiCfgs   []selectConfig
	confirmCfgs []confirmConfig
	textCfgs    []textConfig
}

func (d *scriptDriver) Input(_ context.Context, cfg inputConfig) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	d.order = append(d.order, cfg.Message)
	d.inputCfgs = append(d.inputCfgs, cfg)
	if len(d.inputs) == 0 {
		d.t.Fatalf("no scripted answer for input %q", cfg.Message)
	}
	out := d.inputs[0]
	d.inputs = d.inputs[1:]
	return out, nil
}

func (d *scriptDriver) Password(_ context.Context, cfg inputConfig) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	d.order = append(d.order, cfg.Message)
	if len(d.inputs) == 0 {
		d.t.Fatalf("no scripted answer for password %q", cfg.Message)
	}
	out := d.inputs[0]
	d.inputs = d.inputs[1:]
	return out, nil
}

func (d *scriptDriver) Confirm(_ context.Context, cfg confirmConfig) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	d.order = append(d.order, cfg.Message)
	d.confirmCfgs = append(d.confirmCfgs, cfg)
	if len(d.confirms) == 0 {
		d.t.Fatalf("no scripted answer for confirm %q", cfg.Message)
	}
	out := d.confirms[0]
	d.confirms = d.confirms[1:]
	return out, nil
}

func (d *scriptDriver) Select(_ context.Context, cfg selectConfig) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	d.order = append(d.order, cfg.Message)
	d.selectCfgs = append(d.selectCfgs, cfg)
	if len(d.selects) == 0 {
		d.t.Fatalf("no scripted answer for select %q", cfg.Message)
	}
	out := d.selects[0]
	d.selects = d.selects[1:]
	return out, nil
}

func (d *scriptDriver) MultiSelect(_ context.Context, cfg selectConfig) ([]int, error) {
	if d.err != nil {
		return nil, d.err
	}
	d.order = append(d.order, cfg.Message)
	d.multiCfgs = append(d.multiCfgs, cfg)
	if len(d.multis) == 0 {
		d.t.Fatalf("no scripted answer for multi-select %q", cfg.Message)
	}
	out := d.multis[0]
	d.multis = d.multis[1:]
	return out, nil
}

func (d *scriptDriver) TextArea(_ context.Context, cfg textConfig) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	d.order = append(d.order, cfg.Message)
	d.textCfgs = append(d.textCfgs, cfg)
	if len(d.texts) == 0 {
		d.t.Fatalf("no scripted answer for text area %q", cfg.Message)
	}
	out := d.texts[0]
	d.texts = d.texts[1:]
	return out, nil
}

func fixtureForm(t *testing.T) *page.Form {
	t.Helper()
	p, err := page.ParseString(fixturePage)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	f, err := p.FormNamed("createIssue")
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	return f
}

func TestFillFormWalksVisibleControls(t *testing.T) {
	f := fixtureForm(t)
	d := &scriptDriver{
		t:        t,
		selects:  []int{1, 1}, // violation -> 1.1.1, priority -> high
		inputs:   []string{"Header nav"},
		texts:    []string{"Missing alt text"},
		confirms: []bool{true},
		multis:   [][]int{{0, 2}}, // tags -> blocker, triaged
	}

	if err := fillForm(context.Background(), d, f); err != nil {
		t.Fatalf("fill form: %v", err)
	}

	wantOrder := []string{"Violation", "Location", "Notes", "Priority", "Notify", "Tags"}
	if diff := cmp.Diff(wantOrder, d.order); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}

	want := url.Values{
		"origin":    {"cli"},
		"violation": {"1.1.1"},
		"location":  {"Header nav"},
		"notes":     {"Missing alt text"},
		"priority":  {"high"},
		"notify":    {"yes"},
		"tags":      {"blocker", "triaged"},
	}
	if diff := cmp.Diff(want, f.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestFillFormPromptDetails(t *testing.T) {
	f := fixtureForm(t)
	d := &scriptDriver{
		t:        t,
		selects:  []int{2, 0},
		inputs:   []string{"Footer"},
		texts:    []string{""},
		confirms: []bool{false},
		multis:   [][]int{nil},
	}

	if err := fillForm(context.Background(), d, f); err != nil {
		t.Fatalf("fill form: %v", err)
	}

	// The violation select shows labels and defaults to the marked option.
	violation := d.selectCfgs[0]
	wantOptions := []string{"---------", "Non-text Content", "Contrast (Minimum)"}
	if diff := cmp.Diff(wantOptions, violation.Options); diff != "" {
		t.Fatalf("violation options mismatch (-want +got):\n%s", diff)
	}
	if violation.DefaultIndex != 2 {
		t.Fatalf("expected default index 2, got %d", violation.DefaultIndex)
	}

	// The radio group prompts once with its values, defaulting to the
	// checked node.
	priority := d.selectCfgs[1]
	if diff := cmp.Diff([]string{"low", "high"}, priority.Options); diff != "" {
		t.Fatalf("priority options mismatch (-want +got):\n%s", diff)
	}
	if priority.DefaultIndex != 0 {
		t.Fatalf("expected default index 0, got %d", priority.DefaultIndex)
	}

	// Required text inputs carry a validator; it rejects blank answers.
	location := d.inputCfgs[0]
	if location.Validator == nil {
		t.Fatal("expected a validator on the required location input")
	}
	if err := location.Validator("  "); err == nil {
		t.Fatal("expected the validator to reject whitespace")
	}
	if err := location.Validator("Footer"); err != nil {
		t.Fatalf("validator rejected a real value: %v", err)
	}

	// Declining the checkbox and clearing the multi-select removes both
	// from the submission.
	got := f.Values()
	if got.Has("notify") {
		t.Fatalf("notify should be cleared: %v", got)
	}
	if got.Has("tags") {
		t.Fatalf("tags should be cleared: %v", got)
	}
	if got.Get("violation") != "1.4.3" {
		t.Fatalf("expected violation 1.4.3, got %q", got.Get("violation"))
	}
}

func TestFillFormAbortPropagates(t *testing.T) {
	f := fixtureForm(t)
	d := &scriptDriver{t: t, err: errAborted}
	if err := fillForm(context.Background(), d, f); !errors.Is(err, errAborted) {
		t.Fatalf("expected errAborted, got %v", err)
	}
}

func TestGroupFields(t *testing.T) {
	fields := []page.Field{
		{Name: "priority", Type: "radio"},
		{Name: "token", Type: "text", Hidden: true},
		{Name: "priority", Type: "radio"},
		{Name: "location", Type: "text"},
	}
	groups := groupFields(fields)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].name != "priority" || len(groups[0].fields) != 2 {
		t.Fatalf("unexpected first group: %+v", groups[0])
	}
	if groups[1].name != "location" || len(groups[1].fields) != 1 {
		t.Fatalf("unexpected second group: %+v", groups[1])
	}
}

func TestPromptLabel(t *testing.T) {
	cases := map[string]string{
		"assigned_to": "Assigned to",
		"location":    "Location",
		"q":           "Q",
	}
	for name, want := range cases {
		if got := promptLabel(name); got != want {
			t.Fatalf("promptLabel(%q) = %q, want %q", name, got, want)
		}
	}
}
