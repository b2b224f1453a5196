package render

import (
	"strings"
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"rows.tmpl": &fstest.MapFile{Data: []byte(`{% for issue in issues %}<tr><td>{{ issue.code }}</td></tr>{% endfor %}`)},
		"page.tmpl": &fstest.MapFile{Data: []byte(`<h1>{{ title|trim }}</h1>`)},
	}
}

func TestNewEngineRequiresSource(t *testing.T) {
	if _, err := NewEngine(); err == nil {
		t.Fatal("expected an error without a template source")
	}
}

func TestRenderTemplateAppendsExtension(t *testing.T) {
	e, err := NewEngine(WithFS(testFS()))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	out, err := e.RenderTemplate("page", map[string]any{"title": "  Issues  "})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "<h1>Issues</h1>" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRenderTemplateRows(t *testing.T) {
	e, err := NewEngine(WithFS(testFS()))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	data := map[string]any{
		"issues": []any{
			map[string]any{"code": "1.1.1"},
			map[string]any{"code": "2.1.1"},
		},
	}
	out, err := e.RenderTemplate("rows", data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "<tr><td>1.1.1</td></tr><tr><td>2.1.1</td></tr>" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRenderDispatchesInlineContent(t *testing.T) {
	e, err := NewEngine(WithFS(testFS()))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	out, err := e.Render(`{{ name }}`, map[string]any{"name": "Ana"})
	if err != nil {
		t.Fatalf("render inline: %v", err)
	}
	if out != "Ana" {
		t.Fatalf("unexpected output: %q", out)
	}

	out, err = e.Render("page", map[string]any{"title": "T"})
	if err != nil {
		t.Fatalf("render named: %v", err)
	}
	if out != "<h1>T</h1>" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	e, _ := NewEngine(WithFS(testFS()))
	if _, err := e.RenderTemplate("ghost", nil); err == nil {
		t.Fatal("expected an error for a missing template")
	}
}

func TestYesNoFilter(t *testing.T) {
	e, _ := NewEngine(WithFS(testFS()))
	out, err := e.RenderString(`{{ fixed|yesno:"Fixed,Open" }}`, map[string]any{"fixed": true})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "Fixed" {
		t.Fatalf("expected Fixed, got %q", out)
	}
	out, err = e.RenderString(`{{ fixed|yesno:"Fixed,Open" }}`, map[string]any{"fixed": false})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "Open" {
		t.Fatalf("expected Open, got %q", out)
	}
	out, err = e.RenderString(`{{ flag|yesno }}`, map[string]any{"flag": true})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "yes" {
		t.Fatalf("expected yes, got %q", out)
	}
}

func TestGlobalContext(t *testing.T) {
	e, err := NewEngine(WithFS(testFS()), WithGlobalData(map[string]any{"site": "Compliance Tracker"}))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	out, err := e.RenderString(`{{ site }}`, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "Compliance Tracker" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRegisterFilterRejectsDuplicates(t *testing.T) {
	e, _ := NewEngine(WithFS(testFS()))
	fn := func(in any, _ any) (any, error) { return in, nil }
	if err := e.RegisterFilter("identity_render_test", fn); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := e.RegisterFilter("identity_render_test", fn); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestRenderToWriter(t *testing.T) {
	e, _ := NewEngine(WithFS(testFS()))
	var sb strings.Builder
	out, err := e.RenderString(`{{ v }}`, map[string]any{"v": "x"}, &sb)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "x" || sb.String() != "x" {
		t.Fatalf("expected writer to receive output, got %q / %q", out, sb.String())
	}
}

func TestStructDataConverted(t *testing.T) {
	e, _ := NewEngine(WithFS(testFS()))
	payload := struct {
		Title string `json:"title"`
	}{Title: "Audit"}
	out, err := e.RenderString(`{{ title }}`, payload)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "Audit" {
		t.Fatalf("unexpected output: %q", out)
	}
}
