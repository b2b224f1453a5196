package issues

import "time"

// Status is the lifecycle state of a tracked issue.
type Status string

const (
	StatusOpen          Status = "open"
	StatusInProgress    Status = "in_progress"
	StatusFixed         Status = "fixed"
	StatusWontFix       Status = "wont_fix"
	StatusNotApplicable Status = "not_applicable"
)

// Statuses returns the known statuses in display order.
func Statuses() []Status {
	return []Status{
		StatusOpen,
		StatusInProgress,
		StatusFixed,
		StatusWontFix,
		StatusNotApplicable,
	}
}

// StatusLabel returns the human readable label for a status value.
func StatusLabel(s Status) string {
	switch s {
	case StatusOpen:
		return "Open"
	case StatusInProgress:
		return "In Progress"
	case StatusFixed:
		return "Fixed"
	case StatusWontFix:
		return "Won't Fix"
	case StatusNotApplicable:
		return "Not Applicable"
	}
	return string(s)
}

// ValidStatus reports whether raw names a known status.
func ValidStatus(raw string) bool {
	for _, s := range Statuses() {
		if string(s) == raw {
			return true
		}
	}
	return false
}

// StatusChoice pairs a status value with its label for select inputs.
type StatusChoice struct {
	Value string
	Label string
}

// StatusChoices returns the status set as value/label pairs.
func StatusChoices() []StatusChoice {
	statuses := Statuses()
	choices := make([]StatusChoice, 0, len(statuses))
	for _, s := range statuses {
		choices = append(choices, StatusChoice{Value: string(s), Label: StatusLabel(s)})
	}
	return choices
}

// Project is an audited site or application that issues are recorded against.
// Standard names the accessibility standard the project is audited under; a
// project with RequiresStandards set rejects new issues until one is attached.
type Project struct {
	ID                string `yaml:"id"`
	Name              string `yaml:"name"`
	Client            string `yaml:"client"`
	Standard          string `yaml:"standard"`
	RequiresStandards bool   `yaml:"requires_standards"`
}

// HasStandard reports whether the project has an accessibility standard attached.
func (p Project) HasStandard() bool {
	return p.Standard != ""
}

// Violation is a catalog entry describing a success criterion that can be
// violated, such as WCAG 1.1.1 Non-text Content.
type Violation struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Standard    string `yaml:"standard"`
	Description string `yaml:"description"`
}

// Issue is a single recorded accessibility problem on a project.
type Issue struct {
	ID          string
	ProjectID   string
	ViolationID string
	Status      Status
	Location    string
	Notes       string
	AssignedTo  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Catalog is the seed data set for a store: the projects under audit and the
// violation catalog issues can reference.
type Catalog struct {
	Projects   []Project   `yaml:"projects"`
	Violations []Violation `yaml:"violations"`
}
