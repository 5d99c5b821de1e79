package handler

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/contacto/backend/internal/model"
	"github.com/contacto/backend/internal/service"
)

// Pinger is the storage health probe the inbox handler needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// InboxHandler handles the authenticated server-to-server ingestion endpoint.
// Possession of the shared token is the whole auth model; there are no
// identities or sessions behind it.
type InboxHandler struct {
	inboxService service.InboxService
	token        string
	db           Pinger
}

// NewInboxHandler creates an InboxHandler. An empty token means no request
// is ever authorized; the endpoint fails closed when unconfigured.
func NewInboxHandler(inboxService service.InboxService, token string, db Pinger) *InboxHandler {
	return &InboxHandler{inboxService: inboxService, token: token, db: db}
}

// authorized compares X-Contact-Token against the configured secret in
// constant time.
func (h *InboxHandler) authorized(r *http.Request) bool {
	if h.token == "" {
		return false
	}
	got := r.Header.Get("X-Contact-Token")
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) == 1
}

// Receive handles POST /contact/inbox. The body may be form-encoded or JSON.
// Rejections carry no field-level detail on purpose.
func (h *InboxHandler) Receive(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "unauthorized"})
		return
	}

	payload, ok := parsePayload(r)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "invalid payload"})
		return
	}

	meta := service.RequestMeta{
		RemoteIP:  clientIP(r),
		UserAgent: r.Header.Get("User-Agent"),
	}

	if _, err := h.inboxService.Ingest(r.Context(), payload, meta); err != nil {
		if errors.Is(err, service.ErrInvalidData) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "invalid data"})
			return
		}
		slog.Error("saving contact message failed", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "could not save message"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "saved": true})
}

// jsonPayload mirrors service.InboxPayload but keeps terms raw, so JSON
// callers may send the flag as a string or as a native boolean.
type jsonPayload struct {
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Phone   string          `json:"phone"`
	Subject string          `json:"subject"`
	Message string          `json:"message"`
	Terms   json.RawMessage `json:"terms"`
}

// termsString flattens the raw terms value to its string form: quoted
// strings are unquoted, booleans and numbers keep their literal text
// ("true", "1"), which the truthy-token normalization already accepts.
func termsString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

// parsePayload reads the six message fields from a form body, falling back
// to a JSON body when no form fields are present.
func parsePayload(r *http.Request) (service.InboxPayload, bool) {
	if err := r.ParseForm(); err == nil && len(r.PostForm) > 0 {
		return service.InboxPayload{
			Name:    r.PostFormValue("name"),
			Email:   r.PostFormValue("email"),
			Phone:   r.PostFormValue("phone"),
			Subject: r.PostFormValue("subject"),
			Message: r.PostFormValue("message"),
			Terms:   r.PostFormValue("terms"),
		}, true
	}

	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 {
		return service.InboxPayload{}, false
	}
	var payload jsonPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return service.InboxPayload{}, false
	}
	return service.InboxPayload{
		Name:    payload.Name,
		Email:   payload.Email,
		Phone:   payload.Phone,
		Subject: payload.Subject,
		Message: payload.Message,
		Terms:   termsString(payload.Terms),
	}, true
}

// listResponse is the JSON response for GET /contact/inbox.
type listResponse struct {
	Messages []*model.ContactMessage `json:"messages"`
}

// List handles GET /contact/inbox, guarded by the same shared token.
// Supports query params: limit, offset. Newest messages come first.
func (h *InboxHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "unauthorized"})
		return
	}

	opts := model.ContactListOptions{Limit: 20, Offset: 0}
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 100 {
			opts.Limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			opts.Offset = n
		}
	}

	messages, err := h.inboxService.List(r.Context(), opts)
	if err != nil {
		slog.Error("listing contact messages failed", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "list failed"})
		return
	}

	// Return [] not null for empty lists
	if messages == nil {
		messages = []*model.ContactMessage{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(listResponse{Messages: messages})
}

// Health handles GET /healthz for the inbox, including a storage ping.
func (h *InboxHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy", "message": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
