package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/contacto/backend/internal/model"
	"github.com/contacto/backend/internal/service"
)

// ---------------------------------------------------------------------------
// Mocks — inbox service and storage pinger
// ---------------------------------------------------------------------------

type mockInboxService struct {
	ingestCalls int
	captured    service.InboxPayload
	meta        service.RequestMeta
	ingestFunc  func(ctx context.Context, p service.InboxPayload, meta service.RequestMeta) (*model.ContactMessage, error)
	listFunc    func(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error)
}

func (m *mockInboxService) Ingest(ctx context.Context, p service.InboxPayload, meta service.RequestMeta) (*model.ContactMessage, error) {
	m.ingestCalls++
	m.captured = p
	m.meta = meta
	if m.ingestFunc != nil {
		return m.ingestFunc(ctx, p, meta)
	}
	return &model.ContactMessage{}, nil
}

func (m *mockInboxService) List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, opts)
	}
	return nil, nil
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error { return m.err }

const testToken = "inbox-secret"

func inboxForm() url.Values {
	form := url.Values{}
	form.Set("name", "Alice Example")
	form.Set("email", "alice@example.com")
	form.Set("phone", "")
	form.Set("subject", "Hello there")
	form.Set("message", "This is a long enough message.")
	form.Set("terms", "on")
	return form
}

func postInbox(h *InboxHandler, body, contentType, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/contact/inbox", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("X-Contact-Token", token)
	}
	req.RemoteAddr = "198.51.100.7:40000"
	req.Header.Set("User-Agent", "relay/1.0")
	rec := httptest.NewRecorder()
	h.Receive(rec, req)
	return rec
}

// ---------------------------------------------------------------------------
// Authentication tests
// ---------------------------------------------------------------------------

func TestInboxHandler_Receive_MissingToken(t *testing.T) {
	mock := &mockInboxService{}
	h := NewInboxHandler(mock, testToken, &mockPinger{})

	rec := postInbox(h, inboxForm().Encode(), "application/x-www-form-urlencoded", "")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if mock.ingestCalls != 0 {
		t.Error("payload must not be processed without a valid token")
	}
}

func TestInboxHandler_Receive_WrongToken(t *testing.T) {
	mock := &mockInboxService{}
	h := NewInboxHandler(mock, testToken, &mockPinger{})

	rec := postInbox(h, inboxForm().Encode(), "application/x-www-form-urlencoded", "wrong")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if mock.ingestCalls != 0 {
		t.Error("payload must not be processed with a wrong token")
	}
}

// An unset token closes the endpoint entirely; even an empty header must
// not match it.
func TestInboxHandler_Receive_NoConfiguredTokenFailsClosed(t *testing.T) {
	mock := &mockInboxService{}
	h := NewInboxHandler(mock, "", &mockPinger{})

	rec := postInbox(h, inboxForm().Encode(), "application/x-www-form-urlencoded", "")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if mock.ingestCalls != 0 {
		t.Error("an unconfigured inbox must reject everything")
	}
}

// ---------------------------------------------------------------------------
// Payload handling tests
// ---------------------------------------------------------------------------

func TestInboxHandler_Receive_FormBody(t *testing.T) {
	mock := &mockInboxService{}
	h := NewInboxHandler(mock, testToken, &mockPinger{})

	rec := postInbox(h, inboxForm().Encode(), "application/x-www-form-urlencoded", testToken)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d — body: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if resp["ok"] != true || resp["saved"] != true {
		t.Errorf("expected {ok:true, saved:true}, got %v", resp)
	}
	if mock.captured.Name != "Alice Example" {
		t.Errorf("expected form fields mapped, got %+v", mock.captured)
	}
	if mock.meta.RemoteIP != "198.51.100.7" {
		t.Errorf("expected remote IP recorded, got %q", mock.meta.RemoteIP)
	}
	if mock.meta.UserAgent != "relay/1.0" {
		t.Errorf("expected user agent recorded, got %q", mock.meta.UserAgent)
	}
}

func TestInboxHandler_Receive_JSONBody(t *testing.T) {
	mock := &mockInboxService{}
	h := NewInboxHandler(mock, testToken, &mockPinger{})

	body := `{"name":"Alice","email":"a@b.c","subject":"Hi!","message":"long enough msg","terms":"true"}`
	rec := postInbox(h, body, "application/json", testToken)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d — body: %s", rec.Code, rec.Body.String())
	}
	if mock.captured.Name != "Alice" || mock.captured.Terms != "true" {
		t.Errorf("expected JSON fields mapped, got %+v", mock.captured)
	}
}

// JSON callers naturally encode the accepted-terms flag as a boolean;
// both the boolean and the string form must ingest.
func TestInboxHandler_Receive_JSONBooleanTerms(t *testing.T) {
	mock := &mockInboxService{}
	h := NewInboxHandler(mock, testToken, &mockPinger{})

	body := `{"name":"Alice","email":"a@b.c","subject":"Hi!","message":"long enough msg","terms":true}`
	rec := postInbox(h, body, "application/json", testToken)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d — body: %s", rec.Code, rec.Body.String())
	}
	if mock.captured.Terms != "true" {
		t.Errorf("expected boolean terms flattened to %q, got %q", "true", mock.captured.Terms)
	}
}

func TestInboxHandler_Receive_JSONNumericTerms(t *testing.T) {
	mock := &mockInboxService{}
	h := NewInboxHandler(mock, testToken, &mockPinger{})

	body := `{"name":"Alice","email":"a@b.c","subject":"Hi!","message":"long enough msg","terms":1}`
	rec := postInbox(h, body, "application/json", testToken)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d — body: %s", rec.Code, rec.Body.String())
	}
	if mock.captured.Terms != "1" {
		t.Errorf("expected numeric terms flattened to %q, got %q", "1", mock.captured.Terms)
	}
}

func TestInboxHandler_Receive_UnparseablePayload(t *testing.T) {
	mock := &mockInboxService{}
	h := NewInboxHandler(mock, testToken, &mockPinger{})

	rec := postInbox(h, "{not json", "application/json", testToken)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	var resp map[string]string
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if resp["detail"] != "invalid payload" {
		t.Errorf("expected invalid payload detail, got %q", resp["detail"])
	}
	if mock.ingestCalls != 0 {
		t.Error("unparseable payload must not reach the service")
	}
}

func TestInboxHandler_Receive_InvalidData(t *testing.T) {
	mock := &mockInboxService{
		ingestFunc: func(ctx context.Context, p service.InboxPayload, meta service.RequestMeta) (*model.ContactMessage, error) {
			return nil, service.ErrInvalidData
		},
	}
	h := NewInboxHandler(mock, testToken, &mockPinger{})

	rec := postInbox(h, inboxForm().Encode(), "application/x-www-form-urlencoded", testToken)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	var resp map[string]string
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if resp["detail"] != "invalid data" {
		t.Errorf("expected the generic detail, got %q", resp["detail"])
	}
}

func TestInboxHandler_Receive_PersistenceFailure(t *testing.T) {
	mock := &mockInboxService{
		ingestFunc: func(ctx context.Context, p service.InboxPayload, meta service.RequestMeta) (*model.ContactMessage, error) {
			return nil, errors.New("db write failed")
		},
	}
	h := NewInboxHandler(mock, testToken, &mockPinger{})

	rec := postInbox(h, inboxForm().Encode(), "application/x-www-form-urlencoded", testToken)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 for a storage failure, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// GET /contact/inbox tests
// ---------------------------------------------------------------------------

func TestInboxHandler_List_RequiresToken(t *testing.T) {
	mock := &mockInboxService{}
	h := NewInboxHandler(mock, testToken, &mockPinger{})

	req := httptest.NewRequest(http.MethodGet, "/contact/inbox", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestInboxHandler_List_ReturnsMessages(t *testing.T) {
	var captured model.ContactListOptions
	mock := &mockInboxService{
		listFunc: func(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error) {
			captured = opts
			return []*model.ContactMessage{
				{ID: "1", Name: "Alice", Email: "a@b.c", Subject: "Hi!", CreatedAt: time.Now()},
			}, nil
		},
	}
	h := NewInboxHandler(mock, testToken, &mockPinger{})

	req := httptest.NewRequest(http.MethodGet, "/contact/inbox?limit=5&offset=10", nil)
	req.Header.Set("X-Contact-Token", testToken)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.Limit != 5 || captured.Offset != 10 {
		t.Errorf("expected limit=5 offset=10, got %+v", captured)
	}
	var resp listResponse
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if len(resp.Messages) != 1 || resp.Messages[0].Name != "Alice" {
		t.Errorf("unexpected list response: %+v", resp)
	}
}

func TestInboxHandler_List_EmptyIsArrayNotNull(t *testing.T) {
	mock := &mockInboxService{}
	h := NewInboxHandler(mock, testToken, &mockPinger{})

	req := httptest.NewRequest(http.MethodGet, "/contact/inbox", nil)
	req.Header.Set("X-Contact-Token", testToken)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if !strings.Contains(rec.Body.String(), `"messages":[]`) {
		t.Errorf("expected empty array, got %s", rec.Body.String())
	}
}

// ---------------------------------------------------------------------------
// Health tests
// ---------------------------------------------------------------------------

func TestInboxHandler_Health(t *testing.T) {
	h := NewInboxHandler(&mockInboxService{}, testToken, &mockPinger{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestInboxHandler_Health_StorageDown(t *testing.T) {
	h := NewInboxHandler(&mockInboxService{}, testToken, &mockPinger{err: errors.New("no connection")})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}
