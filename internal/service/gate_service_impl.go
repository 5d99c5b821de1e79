package service

import (
	"context"
	"strings"

	"github.com/contacto/backend/internal/model"
	"github.com/contacto/backend/pkg/recaptcha"
)

// gateServiceImpl is the production implementation of GateService.
type gateServiceImpl struct {
	verifier recaptcha.Verifier
	inbox    InboxSender
}

// NewGateService creates a GateService using the given verifier and sender.
func NewGateService(verifier recaptcha.Verifier, inbox InboxSender) GateService {
	return &gateServiceImpl{verifier: verifier, inbox: inbox}
}

// Submit runs the pipeline in fail-fast order. No downstream service is
// contacted until every local check has passed.
func (s *gateServiceImpl) Submit(ctx context.Context, req SubmissionRequest) error {
	if strings.TrimSpace(req.Honeypot) != "" {
		return validationErr("automated submission detected")
	}
	if err := validateFields(req); err != nil {
		return err
	}
	if !strings.Contains(req.Email, "@") || !strings.Contains(req.Email, ".") {
		return validationErr("invalid email")
	}
	if !termsAccepted(req.Terms) {
		return validationErr("terms not accepted")
	}

	ok, err := s.verifier.Verify(ctx, req.CaptchaToken, req.RemoteIP)
	if err != nil {
		return &SubmitError{Kind: FailVerifierDown, Detail: "verification service unavailable", Err: err}
	}
	if !ok {
		return &SubmitError{Kind: FailVerification, Detail: "challenge verification failed"}
	}

	return s.inbox.Send(ctx, ForwardPayload{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
		Terms:   req.Terms,
	})
}

// validateFields checks the length bounds on the text fields.
// Lengths count runes so multibyte input is not over-rejected.
func validateFields(req SubmissionRequest) *SubmitError {
	if n := len([]rune(req.Name)); n < model.NameMin || n > model.NameMax {
		return validationErr("invalid name")
	}
	if n := len([]rune(req.Email)); n == 0 || n > model.EmailMax {
		return validationErr("invalid email")
	}
	if n := len([]rune(req.Phone)); n > model.PhoneMax {
		return validationErr("invalid phone")
	}
	if n := len([]rune(req.Subject)); n < model.SubjectMin || n > model.SubjectMax {
		return validationErr("invalid subject")
	}
	if n := len([]rune(req.Message)); n < model.MessageMin || n > model.MessageMax {
		return validationErr("invalid message")
	}
	return nil
}

// termsAccepted normalizes the raw checkbox value against the accepted
// token set. The inbox applies the same rule independently.
func termsAccepted(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "true", "1", "yes", "si", "sí":
		return true
	}
	return false
}
