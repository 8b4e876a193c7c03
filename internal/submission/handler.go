// internal/submission/handler.go
package submission

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"maginhawa-directory/internal/common/errors"
	"maginhawa-directory/internal/common/logger"
)

// Handler exposes the submission pipeline over HTTP.
type Handler struct {
	service    *Service
	cookieName string
	headerName string
	logger     logger.Logger
}

func NewHandler(service *Service, cookieName, headerName string, log logger.Logger) *Handler {
	return &Handler{
		service:    service,
		cookieName: cookieName,
		headerName: headerName,
		logger:     log,
	}
}

// submitRequest is the envelope for create and update submissions.
type submitRequest struct {
	Submitter Submitter       `json:"submitter"`
	Record    json.RawMessage `json:"record"`
}

// deleteRequest carries only the submitter identity.
type deleteRequest struct {
	Submitter Submitter `json:"submitter"`
}

// Routes builds the submission API router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealth)
	r.Get("/api/csrf", h.handleCSRFToken)

	r.Group(func(r chi.Router) {
		r.Use(h.requireCSRF)
		r.Post("/api/places", h.handleCreate)
		r.Put("/api/places/{slug}", h.handleUpdate)
		r.Delete("/api/places/{slug}", h.handleDelete)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCSRFToken issues a fresh token as both a cookie and a response field.
// Mutating requests must echo the cookie value in the CSRF header.
func (h *Handler) handleCSRFToken(w http.ResponseWriter, _ *http.Request) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "token generation failed"})
		return
	}
	token := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: false,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// requireCSRF enforces the double-submit check: the header must match the
// cookie, and both must be present.
func (h *Handler) requireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(h.cookieName)
		header := r.Header.Get(h.headerName)
		if err != nil || cookie.Value == "" || header == "" || cookie.Value != header {
			h.logger.Warn("CSRF check failed", map[string]interface{}{
				"path":   r.URL.Path,
				"remote": r.RemoteAddr,
			})
			h.writeError(w, errors.NewCSRFRejectedError())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeSubmit(w, r)
	if !ok {
		return
	}

	proposal, rejection, err := h.service.Create(r.Context(), h.identity(r, req.Submitter), req.Submitter, req.Record)
	h.respond(w, proposal, rejection, err)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeSubmit(w, r)
	if !ok {
		return
	}

	slug := chi.URLParam(r, "slug")
	proposal, rejection, err := h.service.Update(r.Context(), h.identity(r, req.Submitter), req.Submitter, slug, req.Record)
	h.respond(w, proposal, rejection, err)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	slug := chi.URLParam(r, "slug")
	proposal, err := h.service.Delete(r.Context(), h.identity(r, req.Submitter), req.Submitter, slug)
	h.respond(w, proposal, nil, err)
}

func (h *Handler) decodeSubmit(w http.ResponseWriter, r *http.Request) (*submitRequest, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read request body"})
		return nil, false
	}

	var req submitRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return nil, false
	}
	if len(req.Record) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "record is required"})
		return nil, false
	}
	return &req, true
}

// identity keys the rate limiter: the submitter email when present,
// otherwise the remote IP.
func (h *Handler) identity(r *http.Request, sub Submitter) string {
	if sub.Email != "" {
		return sub.Email
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func (h *Handler) respond(w http.ResponseWriter, proposal *Proposal, rejection *Rejection, err error) {
	if err != nil {
		h.writeError(w, err)
		return
	}
	if rejection != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":       "validation_failed",
			"shapeErrors": rejection.Shape,
			"fieldErrors": rejection.Fields,
		})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"proposalId":  proposal.ID,
		"action":      proposal.Action,
		"slug":        proposal.Slug,
		"submittedAt": proposal.SubmittedAt,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	code, _ := errors.CodeOf(err)

	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeCSRFRejected:
		status = http.StatusForbidden
	case errors.ErrCodeRateLimitExceeded:
		status = http.StatusTooManyRequests
	case errors.ErrCodeRecordNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeDuplicateSlug:
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.logger.WithError(err).Error("Submission request failed", map[string]interface{}{})
	}

	writeJSON(w, status, map[string]interface{}{
		"error": string(code),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
