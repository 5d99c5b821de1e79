package service

import "fmt"

// FailKind classifies a submission failure. The gate handler maps kinds to
// HTTP statuses; validation and verification failures blame the client,
// the Down kinds blame an unreachable dependency.
type FailKind int

const (
	// FailValidation covers malformed fields, the honeypot and terms.
	FailValidation FailKind = iota
	// FailVerification means the challenge provider rejected the token.
	FailVerification
	// FailVerifierDown means the challenge provider could not be consulted.
	FailVerifierDown
	// FailSaveRejected means the inbox refused the payload.
	FailSaveRejected
	// FailSaveDown means the inbox could not be reached.
	FailSaveDown
)

// SubmitError is a classified failure of the submission pipeline.
// Detail is safe to show to the client.
type SubmitError struct {
	Kind   FailKind
	Detail string
	Err    error
}

func (e *SubmitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return e.Detail
}

func (e *SubmitError) Unwrap() error { return e.Err }

func validationErr(detail string) *SubmitError {
	return &SubmitError{Kind: FailValidation, Detail: detail}
}
