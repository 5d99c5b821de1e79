package service

import "context"

// SubmissionRequest is one contact-form submission as received by the gate.
// It lives only for the duration of the request and is never persisted.
type SubmissionRequest struct {
	// Honeypot must stay empty; hidden form field that only bots fill in.
	Honeypot string
	Name     string
	Email    string
	Phone    string
	Subject  string
	Message  string
	// Terms is the raw checkbox value ("on", "true", ...).
	Terms string
	// CaptchaToken is the opaque widget response to verify.
	CaptchaToken string
	// RemoteIP is the submitter's address, forwarded to the verifier.
	RemoteIP string
}

// GateService runs the submission pipeline: local validation, challenge
// verification, then relay to the inbox. Failures are *SubmitError values.
type GateService interface {
	Submit(ctx context.Context, req SubmissionRequest) error
}
