package issues

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/goliatone/go-formflow/pkg/submit"
)

func testCatalog() Catalog {
	return Catalog{
		Projects: []Project{
			{ID: "portal", Name: "Customer Portal", Client: "Acme Corp", Standard: "WCAG 2.1 AA", RequiresStandards: true},
			{ID: "bare", Name: "Bare Project", Client: "Initech", RequiresStandards: true},
		},
		Violations: []Violation{
			{ID: "1.1.1", Name: "Non-text Content", Standard: "WCAG 2.1"},
			{ID: "2.1.1", Name: "Keyboard", Standard: "WCAG 2.1"},
		},
	}
}

func newTestComponent(t *testing.T, fns ...OptionFn) *Component {
	t.Helper()
	all := append([]OptionFn{WithCatalog(testCatalog())}, fns...)
	c, err := New(all...)
	if err != nil {
		t.Fatalf("expected component, got error: %v", err)
	}
	return c
}

func getPage(t *testing.T, c *Component, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)
	return rec
}

func mintToken(t *testing.T, c *Component) string {
	t.Helper()
	token, err := c.tokens.Issue()
	if err != nil {
		t.Fatalf("expected token, got error: %v", err)
	}
	return token
}

func postEnvelope(t *testing.T, c *Component, path, token string, form url.Values) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(submit.HeaderRequestedWith, submit.RequestedWithValue)
	if token != "" {
		req.Header.Set(submit.HeaderCSRFToken, token)
	}
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	var env envelope
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("expected envelope JSON, got error: %v (body %q)", err, rec.Body.String())
		}
	}
	return rec, env
}

func validForm() url.Values {
	return url.Values{
		"violation":   {"1.1.1"},
		"status":      {"open"},
		"location":    {"/checkout"},
		"notes":       {"Image button has no accessible name."},
		"assigned_to": {"sam"},
	}
}

func TestPageRenders(t *testing.T) {
	c := newTestComponent(t)
	rec := getPage(t, c, "/projects/portal/issues")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected HTML content type, got %q", ct)
	}

	body := rec.Body.String()
	for _, want := range []string{
		"Customer Portal",
		`id="createIssue"`,
		`action="/projects/portal/issues"`,
		`name="csrf_token"`,
		`id="issuesTable"`,
		`value="1.1.1"`,
		"No issues recorded yet.",
		"--status-open",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected page to contain %q", want)
		}
	}
}

func TestPageUnknownProject(t *testing.T) {
	c := newTestComponent(t)
	rec := getPage(t, c, "/projects/ghost/issues")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestPageHead(t *testing.T) {
	c := newTestComponent(t)
	req := httptest.NewRequest(http.MethodHead, "/projects/portal/issues", nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body for HEAD, got %d bytes", rec.Body.Len())
	}
}

func TestCreateIssue(t *testing.T) {
	c := newTestComponent(t)
	token := mintToken(t, c)

	rec, env := postEnvelope(t, c, "/projects/portal/issues", token, validForm())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !env.Success {
		t.Fatalf("expected success envelope, got message %q", env.Message)
	}
	if env.Message != MsgIssueCreated {
		t.Fatalf("expected message %q, got %q", MsgIssueCreated, env.Message)
	}
	if !strings.Contains(env.IssuesHTML, "data-issue-id=") {
		t.Fatalf("expected refreshed rows, got %q", env.IssuesHTML)
	}
	if !strings.Contains(rec.Body.String(), "<tr") {
		t.Fatalf("expected unescaped row markup in response body")
	}

	list, err := c.store.IssuesByProject(context.Background(), "portal")
	if err != nil {
		t.Fatalf("expected issues, got error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 stored issue, got %d", len(list))
	}
	if list[0].Status != StatusOpen || list[0].ViolationID != "1.1.1" {
		t.Fatalf("unexpected stored issue: %+v", list[0])
	}
}

func TestCreateWithoutMarkerForbidden(t *testing.T) {
	c := newTestComponent(t)
	token := mintToken(t, c)

	req := httptest.NewRequest(http.MethodPost, "/projects/portal/issues", strings.NewReader(validForm().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(submit.HeaderCSRFToken, token)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}

func TestCreateWithBadTokenForbidden(t *testing.T) {
	c := newTestComponent(t)
	rec, _ := postEnvelope(t, c, "/projects/portal/issues", "bogus", validForm())
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}

func TestCreateMissingViolation(t *testing.T) {
	c := newTestComponent(t)
	token := mintToken(t, c)

	form := validForm()
	form.Set("violation", "")
	_, env := postEnvelope(t, c, "/projects/portal/issues", token, form)

	if env.Success {
		t.Fatalf("expected rejection")
	}
	if env.Message != "Violation: This field is required." {
		t.Fatalf("unexpected message %q", env.Message)
	}
	if env.IssuesHTML != "" {
		t.Fatalf("expected no rows on rejection, got %q", env.IssuesHTML)
	}
}

func TestCreateBadStatus(t *testing.T) {
	c := newTestComponent(t)
	token := mintToken(t, c)

	form := validForm()
	form.Set("status", "resolved")
	_, env := postEnvelope(t, c, "/projects/portal/issues", token, form)

	if env.Success {
		t.Fatalf("expected rejection")
	}
	want := "Status: Select a valid choice. resolved is not one of the available choices."
	if env.Message != want {
		t.Fatalf("expected message %q, got %q", want, env.Message)
	}
}

func TestCreateUnknownViolation(t *testing.T) {
	c := newTestComponent(t)
	token := mintToken(t, c)

	form := validForm()
	form.Set("violation", "9.9.9")
	_, env := postEnvelope(t, c, "/projects/portal/issues", token, form)

	if env.Success {
		t.Fatalf("expected rejection")
	}
	if !strings.Contains(env.Message, "9.9.9 is not one of the available choices.") {
		t.Fatalf("unexpected message %q", env.Message)
	}
}

func TestCreateRequiresStandard(t *testing.T) {
	c := newTestComponent(t)
	token := mintToken(t, c)

	_, env := postEnvelope(t, c, "/projects/bare/issues", token, validForm())
	if env.Success {
		t.Fatalf("expected rejection")
	}
	if env.Message != MsgStandardsRequired {
		t.Fatalf("expected message %q, got %q", MsgStandardsRequired, env.Message)
	}
}

func TestCreateStripsMarkup(t *testing.T) {
	c := newTestComponent(t)
	token := mintToken(t, c)

	form := validForm()
	form.Set("notes", "<script>alert(1)</script><b>Broken</b> alt text")
	form.Set("location", "<em>/checkout</em>")
	_, env := postEnvelope(t, c, "/projects/portal/issues", token, form)
	if !env.Success {
		t.Fatalf("expected success, got message %q", env.Message)
	}

	list, err := c.store.IssuesByProject(context.Background(), "portal")
	if err != nil || len(list) != 1 {
		t.Fatalf("expected 1 stored issue, got %d (err %v)", len(list), err)
	}
	if list[0].Notes != "Broken alt text" {
		t.Fatalf("expected markup stripped from notes, got %q", list[0].Notes)
	}
	if list[0].Location != "/checkout" {
		t.Fatalf("expected markup stripped from location, got %q", list[0].Location)
	}
}

func TestUpdateIssue(t *testing.T) {
	c := newTestComponent(t)
	token := mintToken(t, c)

	created, err := c.store.CreateIssue(context.Background(), Issue{
		ProjectID:   "portal",
		ViolationID: "1.1.1",
		Status:      StatusOpen,
		Location:    "/checkout",
	})
	if err != nil {
		t.Fatalf("expected seeded issue, got error: %v", err)
	}

	form := url.Values{"status": {"fixed"}, "assigned_to": {"lee"}}
	_, env := postEnvelope(t, c, "/issues/"+created.ID, token, form)

	if !env.Success {
		t.Fatalf("expected success, got message %q", env.Message)
	}
	if env.Message != MsgIssueUpdated {
		t.Fatalf("expected message %q, got %q", MsgIssueUpdated, env.Message)
	}
	if !strings.Contains(env.IssuesHTML, "badge-fixed") {
		t.Fatalf("expected refreshed rows with new status, got %q", env.IssuesHTML)
	}

	stored, err := c.store.Issue(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("expected stored issue, got error: %v", err)
	}
	if stored.Status != StatusFixed || stored.AssignedTo != "lee" {
		t.Fatalf("unexpected stored issue: %+v", stored)
	}
	if stored.Location != "/checkout" {
		t.Fatalf("expected untouched location, got %q", stored.Location)
	}
}

func TestUpdateUnknownIssue(t *testing.T) {
	c := newTestComponent(t)
	token := mintToken(t, c)

	_, env := postEnvelope(t, c, "/issues/ghost", token, url.Values{"status": {"fixed"}})
	if env.Success {
		t.Fatalf("expected rejection")
	}
	if env.Message != MsgIssueNotFound {
		t.Fatalf("expected message %q, got %q", MsgIssueNotFound, env.Message)
	}
}

func TestUpdateMissingStatus(t *testing.T) {
	c := newTestComponent(t)
	token := mintToken(t, c)

	created, err := c.store.CreateIssue(context.Background(), Issue{
		ProjectID:   "portal",
		ViolationID: "1.1.1",
		Status:      StatusOpen,
	})
	if err != nil {
		t.Fatalf("expected seeded issue, got error: %v", err)
	}

	_, env := postEnvelope(t, c, "/issues/"+created.ID, token, url.Values{"notes": {"left open"}})
	if env.Success {
		t.Fatalf("expected rejection")
	}
	if env.Message != "Status: This field is required." {
		t.Fatalf("unexpected message %q", env.Message)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	c := newTestComponent(t)

	req := httptest.NewRequest(http.MethodDelete, "/projects/portal/issues", nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); !strings.Contains(allow, http.MethodPost) {
		t.Fatalf("expected Allow header, got %q", allow)
	}

	req = httptest.NewRequest(http.MethodGet, "/issues/some-id", nil)
	rec = httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
}

func TestGuardRejects(t *testing.T) {
	guard := func(r *http.Request) error {
		return StatusError{Code: http.StatusUnauthorized, Err: errors.New("not signed in")}
	}
	c := newTestComponent(t, WithGuard(guard))

	rec := getPage(t, c, "/projects/portal/issues")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestRegisterRoutesUnderBasePath(t *testing.T) {
	c := newTestComponent(t)
	mux := http.NewServeMux()

	patterns, err := c.RegisterRoutes(mux, "/app")
	if err != nil {
		t.Fatalf("expected routes, got error: %v", err)
	}
	want := []string{"/app/projects/", "/app/issues/"}
	for i, p := range want {
		if patterns[i] != p {
			t.Fatalf("expected pattern %q, got %q", p, patterns[i])
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/app/projects/portal/issues", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `action="/app/projects/portal/issues"`) {
		t.Fatalf("expected base path in form action")
	}
}

func TestRoutesOutsideMountNotFound(t *testing.T) {
	c := newTestComponent(t, WithBasePath("/app"))
	rec := getPage(t, c, "/projects/portal/issues")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 outside mount, got %d", rec.Code)
	}
}
