package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/storefrontlabs/catalog-backend/internal/httpx"
	"github.com/storefrontlabs/catalog-backend/internal/validate"
)

// Handler exposes the login/logout endpoints.
type Handler struct {
	service Service
	log     *logrus.Logger
}

func NewHandler(service Service, log *logrus.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) RegisterRoutes(router *chi.Mux) {
	router.Post("/login", h.login)
	router.Group(func(r chi.Router) {
		r.Use(RequireAuth(h.service))
		r.Delete("/logout", h.logout)
	})
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,min=6,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSON(w, http.StatusUnprocessableEntity, validate.NewError("body", "The request body must be valid JSON."))
		return
	}
	if err := validate.Struct(req); err != nil {
		var verr *validate.Error
		if errors.As(err, &verr) {
			httpx.JSON(w, http.StatusUnprocessableEntity, verr)
			return
		}
		h.log.WithError(err).Error("login validation failed")
		httpx.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
		return
	}

	creds, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var verr *validate.Error
		switch {
		case errors.As(err, &verr):
			httpx.JSON(w, http.StatusUnprocessableEntity, verr)
		case errors.Is(err, ErrInvalidCredentials):
			httpx.JSON(w, http.StatusUnauthorized, map[string]string{"status": "unauthorized"})
		default:
			h.log.WithError(err).Error("login failed")
			httpx.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
		}
		return
	}

	httpx.JSON(w, http.StatusOK, creds)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusUnauthorized, map[string]string{"status": "unauthorized"})
		return
	}

	if err := h.service.Logout(r.Context(), p.TokenID); err != nil {
		h.log.WithError(err).Error("logout failed")
		httpx.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
		return
	}

	httpx.Status(w, http.StatusNoContent)
}
