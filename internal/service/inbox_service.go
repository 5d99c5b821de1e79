package service

import (
	"context"
	"errors"

	"github.com/contacto/backend/internal/model"
)

// ErrInvalidData is returned for any payload failing the inbox's own checks.
// It is deliberately generic: the inbox never tells its caller which field
// was wrong.
var ErrInvalidData = errors.New("invalid data")

// InboxPayload is the raw field set the ingestion endpoint accepts, before
// sanitization. Values come from a form body or a JSON body.
type InboxPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	Terms   string `json:"terms"`
}

// RequestMeta carries transport-level metadata recorded with the message.
type RequestMeta struct {
	RemoteIP  string
	UserAgent string
}

// InboxService ingests a relayed submission: sanitize, re-validate, persist.
// It re-validates everything even though the gate already did; the inbox
// never trusts its caller.
type InboxService interface {
	Ingest(ctx context.Context, p InboxPayload, meta RequestMeta) (*model.ContactMessage, error)

	// List returns stored messages newest first.
	List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error)
}
