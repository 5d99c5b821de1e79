package service

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// ForwardPayload is the normalized submission relayed from the gate to the
// inbox. Terms is forwarded as the raw string; the inbox normalizes it again.
type ForwardPayload struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
	Terms   string
}

// InboxSender forwards a validated submission to the ingestion endpoint.
type InboxSender interface {
	Send(ctx context.Context, p ForwardPayload) error
}

// InboxClient posts submissions to the inbox over HTTP, proving its identity
// with the shared X-Contact-Token header. No retries: a failed save is
// reported once and requires a fresh client submission.
type InboxClient struct {
	token      string
	httpClient *resty.Client
}

// Ensure InboxClient implements InboxSender at compile time.
var _ InboxSender = (*InboxClient)(nil)

// NewInboxClient creates an InboxClient posting to url.
func NewInboxClient(url, token string) *InboxClient {
	httpClient := resty.New().
		SetBaseURL(url).
		SetTimeout(10 * time.Second)
	return &InboxClient{token: token, httpClient: httpClient}
}

// Send posts the payload form-encoded. A transport failure surfaces as
// FailSaveDown; a 4xx/5xx from the inbox surfaces as FailSaveRejected with
// the upstream body as detail.
func (c *InboxClient) Send(ctx context.Context, p ForwardPayload) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("X-Contact-Token", c.token).
		SetFormData(map[string]string{
			"name":    p.Name,
			"email":   p.Email,
			"phone":   p.Phone,
			"subject": p.Subject,
			"message": p.Message,
			"terms":   p.Terms,
		}).
		Post("")
	if err != nil {
		return &SubmitError{Kind: FailSaveDown, Detail: "message store unreachable", Err: err}
	}
	if resp.IsError() {
		return &SubmitError{Kind: FailSaveRejected, Detail: "saving message failed: " + string(resp.Body())}
	}
	return nil
}
