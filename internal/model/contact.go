package model

import "time"

// Field limits shared by the gate and the inbox. Both sides validate
// independently, but the bounds themselves are a single contract.
const (
	NameMin    = 2
	NameMax    = 80
	EmailMax   = 120
	PhoneMax   = 20
	SubjectMin = 3
	SubjectMax = 120
	MessageMin = 10
	MessageMax = 2000

	// UserAgentMax bounds the stored User-Agent header, in runes.
	UserAgentMax = 1000
)

// ContactMessage is a validated contact-form submission as persisted by the
// inbox. Created once on a successful POST, never updated.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Terms     bool      `json:"terms"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ContactListOptions carries pagination parameters for listing stored messages.
type ContactListOptions struct {
	Limit  int
	Offset int
}
