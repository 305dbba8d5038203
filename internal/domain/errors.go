package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRequestNotFound = errors.New("request not found")
	ErrTestNotFound    = errors.New("test not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrTestInactive    = errors.New("test is inactive and cannot accept new requests")

	ErrDuplicateCode           = errors.New("test code already exists")
	ErrDuplicateUsername       = errors.New("username already exists")
	ErrDuplicateEmail          = errors.New("email already exists")
	ErrDuplicateEmployeeNumber = errors.New("employee number already exists")

	ErrInvalidDateRange = errors.New("invalid date range")
)

// IllegalTransitionError reports a status change that is not an edge in the
// transition table. Retrying with the same arguments cannot succeed.
type IllegalTransitionError struct {
	From RequestStatus
	To   RequestStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}

// DuplicateRequestError reports a live request for the same patient and test
// inside the lookback window. The caller may resubmit with the duplicate
// override flag set.
type DuplicateRequestError struct {
	ExistingID string
}

func (e *DuplicateRequestError) Error() string {
	return fmt.Sprintf("a recent request for this patient and test already exists: %s", e.ExistingID)
}

// MissingMetadataError reports a transition invoked without its mandatory
// metadata fields. It is raised before any mutation occurs.
type MissingMetadataError struct {
	Target RequestStatus
	Fields []string
}

func (e *MissingMetadataError) Error() string {
	return fmt.Sprintf("transition to %s requires metadata: %s", e.Target, strings.Join(e.Fields, ", "))
}
