package issues

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/submit"
)

// Flash messages returned in submission envelopes.
const (
	MsgIssueCreated      = "Issue created successfully."
	MsgIssueUpdated      = "Issue updated successfully."
	MsgIssueNotFound     = "Issue not found."
	MsgStandardsRequired = "You must add standards to the project before creating issues."
)

// envelope is the submission response consumed by pkg/intercept.
type envelope struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	IssuesHTML string `json:"issues_html,omitempty"`
}

func (c *Component) route(w http.ResponseWriter, r *http.Request) {
	if r == nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	rel, ok := c.relativePath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	segs := splitSegments(rel)

	switch {
	case len(segs) == 3 && segs[0] == "projects" && segs[2] == "issues":
		projectID := unescapeSegment(segs[1])
		switch r.Method {
		case http.MethodGet, http.MethodHead:
			c.handlePage(w, r, projectID)
		case http.MethodPost:
			c.handleCreate(w, r, projectID)
		default:
			w.Header().Set("Allow", "GET, HEAD, POST")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		}
	case len(segs) == 2 && segs[0] == "issues":
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		c.handleUpdate(w, r, unescapeSegment(segs[1]))
	default:
		http.NotFound(w, r)
	}
}

func (c *Component) handlePage(w http.ResponseWriter, r *http.Request, projectID string) {
	if c.opts.Guard != nil {
		if err := c.opts.Guard(r); err != nil {
			writeGuardError(w, err)
			return
		}
	}

	ctx := r.Context()
	project, err := c.store.Project(ctx, projectID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		c.log.Error("project lookup failed", zap.String("project", projectID), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	token, err := c.tokens.Issue()
	if err != nil {
		c.log.Error("token mint failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	violations, err := c.store.Violations(ctx)
	if err != nil {
		c.log.Error("violation catalog load failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rowsHTML, err := c.rowsHTML(r, project.ID)
	if err != nil {
		c.log.Error("row render failed", zap.String("project", project.ID), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	page, err := c.renderer.Page(PageData{
		Project:      project,
		Violations:   violations,
		Statuses:     StatusChoices(),
		Token:        token,
		TokenField:   c.opts.TokenField,
		RowsHTML:     rowsHTML,
		CreateAction: c.opts.BasePath + "/projects/" + url.PathEscape(project.ID) + "/issues",
		Script:       c.opts.RuntimeScript,
	})
	if err != nil {
		c.log.Error("page render failed", zap.String("project", project.ID), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write([]byte(page))
}

func (c *Component) handleCreate(w http.ResponseWriter, r *http.Request, projectID string) {
	if !c.admitWrite(w, r) {
		return
	}

	ctx := r.Context()
	project, err := c.store.Project(ctx, projectID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		c.log.Error("project lookup failed", zap.String("project", projectID), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if project.RequiresStandards && !project.HasStandard() {
		c.writeEnvelope(w, envelope{Success: false, Message: MsgStandardsRequired})
		return
	}

	form := r.PostForm
	if err := c.rules.create.validate(form); err != nil {
		c.writeEnvelope(w, envelope{Success: false, Message: err.Error()})
		return
	}

	violationID := form.Get("violation")
	if _, err := c.store.Violation(ctx, violationID); err != nil {
		if errors.Is(err, ErrNotFound) {
			message := fmt.Sprintf("%s: Select a valid choice. %s is not one of the available choices.",
				fieldLabel("violation"), violationID)
			c.writeEnvelope(w, envelope{Success: false, Message: message})
			return
		}
		c.log.Error("violation lookup failed", zap.String("violation", violationID), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	issue := Issue{
		ProjectID:   project.ID,
		ViolationID: violationID,
		Status:      Status(form.Get("status")),
		Location:    sanitizeText(form.Get("location")),
		Notes:       sanitizeText(form.Get("notes")),
		AssignedTo:  sanitizeText(form.Get("assigned_to")),
	}
	created, err := c.store.CreateIssue(ctx, issue)
	if err != nil {
		c.log.Error("issue create failed", zap.String("project", project.ID), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	c.log.Debug("issue created",
		zap.String("issue", created.ID),
		zap.String("project", created.ProjectID),
		zap.String("violation", created.ViolationID))

	rowsHTML, err := c.rowsHTML(r, project.ID)
	if err != nil {
		c.log.Error("row render failed", zap.String("project", project.ID), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	c.writeEnvelope(w, envelope{Success: true, Message: MsgIssueCreated, IssuesHTML: rowsHTML})
}

func (c *Component) handleUpdate(w http.ResponseWriter, r *http.Request, issueID string) {
	if !c.admitWrite(w, r) {
		return
	}

	ctx := r.Context()
	issue, err := c.store.Issue(ctx, issueID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.writeEnvelope(w, envelope{Success: false, Message: MsgIssueNotFound})
			return
		}
		c.log.Error("issue lookup failed", zap.String("issue", issueID), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	form := r.PostForm
	if err := c.rules.update.validate(form); err != nil {
		c.writeEnvelope(w, envelope{Success: false, Message: err.Error()})
		return
	}

	issue.Status = Status(form.Get("status"))
	if form.Has("location") {
		issue.Location = sanitizeText(form.Get("location"))
	}
	if form.Has("notes") {
		issue.Notes = sanitizeText(form.Get("notes"))
	}
	if form.Has("assigned_to") {
		issue.AssignedTo = sanitizeText(form.Get("assigned_to"))
	}

	updated, err := c.store.UpdateIssue(ctx, issue)
	if err != nil {
		c.log.Error("issue update failed", zap.String("issue", issueID), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	c.log.Debug("issue updated",
		zap.String("issue", updated.ID),
		zap.String("status", string(updated.Status)))

	rowsHTML, err := c.rowsHTML(r, updated.ProjectID)
	if err != nil {
		c.log.Error("row render failed", zap.String("project", updated.ProjectID), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	c.writeEnvelope(w, envelope{Success: true, Message: MsgIssueUpdated, IssuesHTML: rowsHTML})
}

// admitWrite applies the guard, the AJAX marker requirement, the CSRF token
// check, and form parsing. It writes the rejection itself and reports whether
// the request may proceed.
func (c *Component) admitWrite(w http.ResponseWriter, r *http.Request) bool {
	if c.opts.Guard != nil {
		if err := c.opts.Guard(r); err != nil {
			writeGuardError(w, err)
			return false
		}
	}

	if r.Header.Get(submit.HeaderRequestedWith) != submit.RequestedWithValue {
		c.log.Debug("missing request marker", zap.String("path", r.URL.Path))
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return false
	}

	token := r.Header.Get(submit.HeaderCSRFToken)
	if !c.tokens.Valid(token) {
		c.log.Debug("invalid csrf token", zap.String("path", r.URL.Path))
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return false
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return false
	}
	return true
}

// rowsHTML renders the current table rows for a project.
func (c *Component) rowsHTML(r *http.Request, projectID string) (string, error) {
	ctx := r.Context()
	list, err := c.store.IssuesByProject(ctx, projectID)
	if err != nil {
		return "", err
	}
	catalog, err := c.store.Violations(ctx)
	if err != nil {
		return "", err
	}
	byID := make(map[string]Violation, len(catalog))
	for _, v := range catalog {
		byID[v.ID] = v
	}
	return c.renderer.Rows(list, byID)
}

func (c *Component) writeEnvelope(w http.ResponseWriter, env envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(env); err != nil {
		c.log.Error("envelope encode failed", zap.Error(err))
	}
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}

func unescapeSegment(seg string) string {
	if unescaped, err := url.PathUnescape(seg); err == nil {
		return unescaped
	}
	return seg
}
