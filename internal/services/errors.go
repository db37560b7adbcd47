package services

import (
	"errors"
	"fmt"
)

// ValidationError blocks a submission before any network call is made
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// UploadError aborts a submission; the draft is preserved for retry
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string { return fmt.Sprintf("media upload failed: %v", e.Err) }
func (e *UploadError) Unwrap() error { return e.Err }

// ErrMalformedTimestamp marks an end time that could not be parsed
// from its date and time components. The pipeline degrades to the
// current timestamp instead of failing on it.
var ErrMalformedTimestamp = errors.New("malformed end time components")

// ErrSubmissionInFlight is returned while a previous submission is
// still awaiting its confirmation or rejection.
var ErrSubmissionInFlight = errors.New("a submission is already awaiting confirmation")

// ErrTokenExpired is returned when the auth token attached to the
// submission is already past its expiry.
var ErrTokenExpired = errors.New("auth token expired")
