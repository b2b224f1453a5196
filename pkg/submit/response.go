package submit

// Response is the envelope the server answers submissions with.
type Response struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	IssuesHTML string `json:"issues_html,omitempty"`
}

// Outcome is the terminal state of one submission attempt.
type Outcome int

const (
	// OutcomeApplied means the server accepted the submission.
	OutcomeApplied Outcome = iota
	// OutcomeRejected means the server answered with a well-formed refusal.
	OutcomeRejected
	// OutcomeFailed means the request or the response decode failed.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Result carries everything one submission attempt produced.
type Result struct {
	Outcome    Outcome
	Response   *Response
	StatusCode int
	Err        error
}
