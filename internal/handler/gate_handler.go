package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/contacto/backend/internal/service"
)

// GateHandler handles the public contact-form submission endpoint.
type GateHandler struct {
	gateService    service.GateService
	allowedOrigins []string
	enforceOrigin  bool
}

// NewGateHandler creates a GateHandler. When enforceOrigin is false a
// mismatched Origin/Referer is only logged, which is the default policy.
func NewGateHandler(gateService service.GateService, allowedOrigins []string, enforceOrigin bool) *GateHandler {
	return &GateHandler{
		gateService:    gateService,
		allowedOrigins: allowedOrigins,
		enforceOrigin:  enforceOrigin,
	}
}

// Submit handles POST /submit-contact. The body is form-encoded; the
// honeypot field is named "empresa" to match the public form.
func (h *GateHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "invalid payload"})
		return
	}

	// Origin check. Requests without an Origin or Referer header pass
	// either way; browsers on old setups may omit them.
	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = r.Header.Get("Referer")
	}
	if origin != "" && len(h.allowedOrigins) > 0 && !originAllowed(origin, h.allowedOrigins) {
		if h.enforceOrigin {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "origin not allowed"})
			return
		}
		slog.Warn("submission from unlisted origin", "origin", origin)
	}

	req := service.SubmissionRequest{
		Honeypot:     r.PostFormValue("empresa"),
		Name:         r.PostFormValue("name"),
		Email:        r.PostFormValue("email"),
		Phone:        r.PostFormValue("phone"),
		Subject:      r.PostFormValue("subject"),
		Message:      r.PostFormValue("message"),
		Terms:        r.PostFormValue("terms"),
		CaptchaToken: r.PostFormValue("g-recaptcha-response"),
		RemoteIP:     clientIP(r),
	}

	if err := h.gateService.Submit(r.Context(), req); err != nil {
		status, detail := submitErrorStatus(err)
		if status >= http.StatusInternalServerError {
			slog.Error("submission pipeline failed", "error", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "message": "message received and saved"})
}

// submitErrorStatus maps a pipeline failure to an HTTP status and a
// client-facing detail string.
func submitErrorStatus(err error) (int, string) {
	var se *service.SubmitError
	if !errors.As(err, &se) {
		return http.StatusInternalServerError, "internal error"
	}
	switch se.Kind {
	case service.FailValidation, service.FailVerification:
		return http.StatusBadRequest, se.Detail
	case service.FailVerifierDown:
		return http.StatusServiceUnavailable, se.Detail
	case service.FailSaveRejected, service.FailSaveDown:
		return http.StatusBadGateway, se.Detail
	}
	return http.StatusInternalServerError, "internal error"
}

// clientIP extracts the remote host without the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
