package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"answerhub-service/internal/app"
	"answerhub-service/internal/auth"
	"answerhub-service/internal/domain"
)

// Handler exposes the engine over REST. Handlers are thin adapters: they
// translate requests into coordinator calls and map sentinel errors to
// status codes; no business logic lives here.
type Handler struct {
	service  *app.Service
	verifier auth.Verifier
}

func NewHandler(service *app.Service, verifier auth.Verifier) *Handler {
	return &Handler{service: service, verifier: verifier}
}

// Register wires all routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /api/prompts/next", h.nextPrompt)
	mux.HandleFunc("POST /api/answers", h.requireUser(h.submitAnswer))
	mux.HandleFunc("GET /api/users/me", h.requireUser(h.standing))
	mux.HandleFunc("POST /api/admin/answers/{id}/validate", h.requireAdmin(h.validateAnswer))
	mux.HandleFunc("GET /api/admin/answers", h.requireAdmin(h.listAnswers))
	mux.HandleFunc("GET /api/admin/users", h.requireAdmin(h.listUsers))
	mux.HandleFunc("POST /api/admin/users/{id}/demote", h.requireAdmin(h.demoteUser))
	mux.HandleFunc("GET /api/admin/datasets/export", h.requireAdmin(h.exportDataset))
}

type identityHandler func(identity auth.Identity, w http.ResponseWriter, r *http.Request)

func (h *Handler) requireUser(next identityHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := h.identify(r)
		if err != nil {
			writeError(w, err)
			return
		}
		next(identity, w, r)
	}
}

func (h *Handler) requireAdmin(next identityHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := h.identify(r)
		if err != nil {
			writeError(w, err)
			return
		}
		if !identity.IsAdmin {
			writeError(w, domain.ErrForbidden)
			return
		}
		next(identity, w, r)
	}
}

func (h *Handler) identify(r *http.Request) (auth.Identity, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return auth.Identity{}, domain.ErrUnauthorized
	}
	return h.verifier.Verify(strings.TrimPrefix(header, "Bearer "))
}

type submitRequest struct {
	PromptID   string `json:"promptId"`
	AnswerText string `json:"answerText"`
}

func (h *Handler) submitAnswer(identity auth.Identity, w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PromptID == "" {
		writeError(w, domain.ErrInvalidInput)
		return
	}

	answer, err := h.service.SubmitAnswer(r.Context(), identity.UserID, req.PromptID, req.AnswerText)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, answer)
}

func (h *Handler) nextPrompt(w http.ResponseWriter, r *http.Request) {
	prompt, err := h.service.NextOpenPrompt(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prompt)
}

func (h *Handler) standing(identity auth.Identity, w http.ResponseWriter, r *http.Request) {
	standing, err := h.service.UserStanding(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, standing)
}

func (h *Handler) validateAnswer(_ auth.Identity, w http.ResponseWriter, r *http.Request) {
	if err := h.service.ValidateAnswer(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Answer validated and points awarded."})
}

func (h *Handler) listAnswers(_ auth.Identity, w http.ResponseWriter, r *http.Request) {
	answers, err := h.service.ListAnswers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if answers == nil {
		answers = []domain.SubmittedAnswer{}
	}
	writeJSON(w, http.StatusOK, answers)
}

func (h *Handler) listUsers(_ auth.Identity, w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) demoteUser(_ auth.Identity, w http.ResponseWriter, r *http.Request) {
	if err := h.service.DemoteUser(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User demoted"})
}

func (h *Handler) exportDataset(_ auth.Identity, w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ExportDataset(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.DatasetEntry{}
	}
	w.Header().Set("Content-Disposition", "attachment; filename=dataset.json")
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"message": err.Error()})
}

// statusFor maps the engine's error taxonomy to HTTP. Duplicate submissions
// get 409 while the quota keeps the original 403; StoreUnavailable is the
// only retryable kind and maps to 503.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrQuotaExceeded):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicateAnswer), errors.Is(err, domain.ErrPromptClosed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrPromptNotFound),
		errors.Is(err, domain.ErrAnswerNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
