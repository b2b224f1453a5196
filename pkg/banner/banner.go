// Package banner models the transient status messages a submission leaves on
// the page. Banners live in an explicit bounded stack per form, with a
// replacement policy instead of unbounded append, and render as dismissible
// alert markup.
package banner

import (
	"time"

	"github.com/google/uuid"
)

// Severity classifies a banner.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Banner is one status message.
type Banner struct {
	ID        string
	Severity  Severity
	Message   string
	CreatedAt time.Time
}

// New builds a banner with a fresh id.
func New(severity Severity, message string) Banner {
	return Banner{
		ID:        uuid.NewString(),
		Severity:  severity,
		Message:   message,
		CreatedAt: time.Now(),
	}
}
