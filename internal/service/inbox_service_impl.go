package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/contacto/backend/internal/model"
	"github.com/contacto/backend/internal/repository"
)

// tagPattern matches markup tags stripped from name and subject before
// persistence, as a defense against stored injection.
var tagPattern = regexp.MustCompile(`<[^>]*>`)

// inboxServiceImpl is the production implementation of InboxService.
type inboxServiceImpl struct {
	repo repository.ContactRepository
}

// NewInboxService creates an InboxService backed by the given repository.
func NewInboxService(repo repository.ContactRepository) InboxService {
	return &inboxServiceImpl{repo: repo}
}

// Ingest sanitizes and validates the payload independently of the gate,
// then persists a new ContactMessage. created_at is assigned by the store.
func (s *inboxServiceImpl) Ingest(ctx context.Context, p InboxPayload, meta RequestMeta) (*model.ContactMessage, error) {
	msg := &model.ContactMessage{
		Name:      stripTags(strings.TrimSpace(p.Name)),
		Email:     strings.TrimSpace(p.Email),
		Phone:     strings.TrimSpace(p.Phone),
		Subject:   stripTags(strings.TrimSpace(p.Subject)),
		Message:   strings.TrimSpace(p.Message),
		Terms:     truthyTerms(p.Terms),
		IP:        meta.RemoteIP,
		UserAgent: truncateRunes(meta.UserAgent, model.UserAgentMax),
	}

	if len([]rune(msg.Name)) < model.NameMin ||
		len([]rune(msg.Subject)) < model.SubjectMin ||
		len([]rune(msg.Message)) < model.MessageMin ||
		msg.Email == "" ||
		!msg.Terms {
		return nil, ErrInvalidData
	}

	if err := s.repo.Save(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// List returns stored messages according to the given pagination options.
func (s *inboxServiceImpl) List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error) {
	return s.repo.List(ctx, opts)
}

func stripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// truthyTerms is the inbox's own copy of the terms normalization. The gate
// applies the same rule; the duplication is intentional, each boundary
// validates for itself.
func truthyTerms(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "true", "1", "yes", "si", "sí":
		return true
	}
	return false
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
