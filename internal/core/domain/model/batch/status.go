package batch

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status is the lifecycle state of a batch as stored in the Job Store.
type Status string

const (
	Queued        Status = "QUEUED"
	Processing    Status = "PROCESSING"
	Completed     Status = "COMPLETED"
	Partial       Status = "PARTIAL"
	Failed        Status = "FAILED"
	Confirming    Status = "CONFIRMING"
	Confirmed     Status = "CONFIRMED"
	AuthError     Status = "AUTH_ERROR"
	ConfirmFailed Status = "CONFIRM_FAILED"
)

var validStatuses = map[Status]struct{}{
	Queued:        {},
	Processing:    {},
	Completed:     {},
	Partial:       {},
	Failed:        {},
	Confirming:    {},
	Confirmed:     {},
	AuthError:     {},
	ConfirmFailed: {},
}

// ParseStatus converts a stored value into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if err := status.Validate(); err != nil {
		return "", err
	}
	return status, nil
}

func (s Status) Validate() error {
	if _, ok := validStatuses[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", string(s)))
	}
	return nil
}

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no worker or confirmation run owns the batch.
func (s Status) IsTerminal() bool {
	switch s {
	case Queued, Processing, Confirming:
		return false
	default:
		return s.Validate() == nil
	}
}

// CanConfirm reports whether a confirmation run may start from s.
func (s Status) CanConfirm() bool {
	switch s {
	case Completed, Partial, Confirmed, AuthError, ConfirmFailed:
		return true
	default:
		return false
	}
}

// Claim moves a queued batch to Processing.
func (s Status) Claim() (Status, error) {
	if s != Queued {
		return "", transitionError(s, "claim")
	}
	return Processing, nil
}

// Finalize returns the terminal status for successCount of requested rows.
func (s Status) Finalize(successCount, requested int) (Status, error) {
	if s != Processing {
		return "", transitionError(s, "finalize")
	}
	switch {
	case successCount <= 0:
		return Failed, nil
	case successCount < requested:
		return Partial, nil
	default:
		return Completed, nil
	}
}

func (s Status) BeginConfirmation() (Status, error) {
	if !s.CanConfirm() {
		return "", transitionError(s, "start confirmation")
	}
	return Confirming, nil
}

// FinishConfirmation returns Confirmed, or AuthError when the run was aborted
// because the marketplace session is unusable.
func (s Status) FinishConfirmation(authAborted bool) (Status, error) {
	if s != Confirming {
		return "", transitionError(s, "finish confirmation")
	}
	if authAborted {
		return AuthError, nil
	}
	return Confirmed, nil
}

func (s Status) FailConfirmation() (Status, error) {
	if s != Confirming {
		return "", transitionError(s, "fail confirmation")
	}
	return ConfirmFailed, nil
}

func transitionError(s Status, action string) error {
	return errs.NewValueIsInvalidErrorWithCause(
		"status is invalid",
		fmt.Errorf("%s is not a valid status to %s", s, action),
	)
}
