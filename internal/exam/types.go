package exam

import "errors"

type State string

const (
	StateActive     State = "active"
	StateSubmitting State = "submitting"
	StateFinished   State = "finished"
)

// CompletionType records how a session reached StateFinished.
type CompletionType string

const (
	CompletionNone    CompletionType = ""
	CompletionManual  CompletionType = "manual_submit"
	CompletionTimeout CompletionType = "time_expired"
)

// DefaultDurationSeconds is the single global deadline of a test (30 minutes).
const DefaultDurationSeconds = 30 * 60

var (
	ErrInvalidState = errors.New("invalid state transition")
	ErrInvalidInput = errors.New("invalid input")
)

// Progress is a read-only summary used for the question map.
type Progress struct {
	Total      int `json:"total"`
	Answered   int `json:"answered"`
	Bookmarked int `json:"bookmarked"`
	Current    int `json:"current"`
}
