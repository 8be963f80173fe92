package jobdata

import (
	"errors"
	"fmt"
)

// ErrItemCapReached is returned when a numbered item list is full.
var ErrItemCapReached = errors.New("item list is full")

// BlobError reports a document that could not be encoded or decoded
type BlobError struct {
	Message string
	Cause   error
}

func (e *BlobError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("job document error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("job document error: %s", e.Message)
}

func (e *BlobError) Unwrap() error {
	return e.Cause
}

// JobNotFoundError indicates the job does not exist in the job store
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job not found: %s", e.JobID)
}
