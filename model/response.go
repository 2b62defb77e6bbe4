package model

// JobStatus is the provider-independent status every response parser
// reduces its protocol's native status vocabulary to (spec.md §4.7).
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusFinished   JobStatus = "finished"
	StatusFailed     JobStatus = "failed"
	StatusTimeout    JobStatus = "timeout"
	StatusCancelled  JobStatus = "cancelled"
	StatusUnknown    JobStatus = "unknown"
)

// IsTerminal reports whether a status ends the poll loop.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case StatusFinished, StatusFailed, StatusTimeout, StatusCancelled:
		return true
	default:
		return false
	}
}

// BaseJobResponse is the unified shape every provider's raw response is
// parsed into. Provider-specific fields needed only to resume polling
// (e.g. Runpod's job id, Replicate's prediction id) live in Extra,
// keyed by the owning provider so the request layer can read them back
// without the response package importing model's provider constants.
type BaseJobResponse struct {
	Status     JobStatus
	JobID      string // provider-assigned id, used to build the next poll request
	RefreshURL string // where PollStatus sends its next request
	Message    string
	Progress   *float64
	Output     any
	Error      string
	Extra      map[string]any
}

// Succeeded reports whether the job finished with a usable Output.
func (r BaseJobResponse) Succeeded() bool {
	return r.Status == StatusFinished && r.Err() == nil
}

// Err turns a terminal-but-unsuccessful response into an error, nil otherwise.
func (r BaseJobResponse) Err() error {
	switch r.Status {
	case StatusFailed:
		return &ResponseError{Status: r.Status, Message: r.Error}
	case StatusTimeout:
		return &ResponseError{Status: r.Status, Message: "polling timed out"}
	case StatusCancelled:
		return &ResponseError{Status: r.Status, Message: "job cancelled"}
	default:
		return nil
	}
}

// ResponseError reports a terminal, unsuccessful job outcome observed
// from a provider response.
type ResponseError struct {
	Status  JobStatus
	Message string
}

func (e *ResponseError) Error() string {
	if e.Message == "" {
		return "job ended with status " + string(e.Status)
	}
	return e.Message
}
