// Package recaptcha provides a thin client for the Google reCAPTCHA v2
// siteverify API. A negative verdict and an unreachable verifier are
// distinct outcomes: the boolean carries the verdict, the error carries
// transport/timeout/decode failures.
package recaptcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultURL is the Google siteverify endpoint.
const DefaultURL = "https://www.google.com/recaptcha/api/siteverify"

// ErrNotConfigured is returned when no secret key is set.
var ErrNotConfigured = errors.New("recaptcha: not configured")

// Verifier verifies a client-side challenge token.
type Verifier interface {
	// Verify returns the provider's verdict for token. remoteIP may be empty.
	// A non-nil error means the verifier could not be consulted; it never
	// encodes a negative verdict.
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// siteverifyResponse mirrors the provider's JSON body.
type siteverifyResponse struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// Client is the production Verifier backed by the siteverify API.
type Client struct {
	secret     string
	httpClient *resty.Client
}

// Ensure Client implements Verifier at compile time.
var _ Verifier = (*Client)(nil)

// NewClient creates a Client for the given secret key. url overrides the
// provider endpoint; pass "" for the real one.
func NewClient(secret, url string) *Client {
	if url == "" {
		url = DefaultURL
	}
	httpClient := resty.New().
		SetBaseURL(url).
		SetTimeout(10 * time.Second)
	return &Client{secret: secret, httpClient: httpClient}
}

// Verify posts the token (and requester IP, if known) to the provider.
func (c *Client) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if c.secret == "" {
		return false, ErrNotConfigured
	}

	form := map[string]string{
		"secret":   c.secret,
		"response": token,
	}
	if remoteIP != "" {
		form["remoteip"] = remoteIP
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFormData(form).
		Post("")
	if err != nil {
		return false, fmt.Errorf("recaptcha: request failed: %w", err)
	}
	if resp.IsError() {
		return false, fmt.Errorf("recaptcha: provider returned %s", resp.Status())
	}

	// Decode the body ourselves regardless of the response content type.
	// An undecodable body is a verifier failure, never a negative verdict.
	var body siteverifyResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return false, fmt.Errorf("recaptcha: malformed provider response: %w", err)
	}
	return body.Success, nil
}
