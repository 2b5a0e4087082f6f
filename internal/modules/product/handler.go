package product

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/storefrontlabs/catalog-backend/internal/httpx"
	"github.com/storefrontlabs/catalog-backend/internal/modules/auth"
	"github.com/storefrontlabs/catalog-backend/internal/validate"
)

const maxUploadMemory = 32 << 20

// Handler exposes product HTTP endpoints. Reads are public; writes sit
// behind the bearer-token middleware.
type Handler struct {
	service Service
	log     *logrus.Logger
}

func NewHandler(service Service, log *logrus.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) RegisterRoutes(router *chi.Mux, authService auth.Service) {
	router.Route("/products", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/{slug}", h.show)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(authService))
			r.Post("/", h.create)
			r.Put("/{slug}", h.update)
			r.Delete("/{id}", h.delete)
		})
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	resources, err := h.service.List(r.Context(), r.URL.Query().Get("slug"))
	if err != nil {
		h.log.WithError(err).Error("listing products failed")
		httpx.Status(w, http.StatusInternalServerError)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{"data": resources})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	resource, err := h.service.Show(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, err, "showing product failed")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{"data": resource})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusUnauthorized, map[string]string{"status": "unauthorized"})
		return
	}

	req, err := parseWriteRequest(r)
	if err != nil {
		h.writeError(w, err, "creating product failed")
		return
	}
	if err := h.service.Create(r.Context(), principal, req); err != nil {
		h.writeError(w, err, "creating product failed")
		return
	}
	httpx.Status(w, http.StatusCreated)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusUnauthorized, map[string]string{"status": "unauthorized"})
		return
	}

	req, err := parseWriteRequest(r)
	if err != nil {
		h.writeError(w, err, "updating product failed")
		return
	}
	if err := h.service.Update(r.Context(), principal, chi.URLParam(r, "slug"), req); err != nil {
		h.writeError(w, err, "updating product failed")
		return
	}
	httpx.Status(w, http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusUnauthorized, map[string]string{"status": "unauthorized"})
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Status(w, http.StatusNotFound)
		return
	}
	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		h.writeError(w, err, "deleting product failed")
		return
	}
	httpx.Status(w, http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error, msg string) {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr):
		httpx.JSON(w, http.StatusUnprocessableEntity, verr)
	case errors.Is(err, ErrNotFound):
		httpx.Status(w, http.StatusNotFound)
	default:
		h.log.WithError(err).Error(msg)
		httpx.Status(w, http.StatusInternalServerError)
	}
}

// parseWriteRequest shapes the multipart payload into the typed write
// request: JSON documents in the header/details/footer text fields, image
// files under header.logo, footer.logo and details.images[].
func parseWriteRequest(r *http.Request) (WriteRequest, error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return WriteRequest{}, validate.NewError("body", "The request must be a multipart form.")
	}

	var req WriteRequest
	var err error
	if req.Header, err = parseDocument(r, "header"); err != nil {
		return WriteRequest{}, err
	}
	if req.Details, err = parseDocument(r, "details"); err != nil {
		return WriteRequest{}, err
	}
	if req.Footer, err = parseDocument(r, "footer"); err != nil {
		return WriteRequest{}, err
	}

	req.Images.HeaderLogo = singleUpload(r, "header.logo")
	req.Images.FooterLogo = singleUpload(r, "footer.logo")
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["details.images[]"] {
			req.Images.Details = append(req.Images.Details, fileUpload(fh))
		}
	}
	return req, nil
}

func parseDocument(r *http.Request, field string) (Document, error) {
	raw := r.FormValue(field)
	if strings.TrimSpace(raw) == "" {
		return Document{}, nil
	}
	var d Document
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, validate.NewError(field, "The "+field+" field must be a valid JSON document.")
	}
	return d, nil
}

// singleUpload resolves one header/footer logo slot. A file part carries a
// new upload; a present-but-empty value field clears the slot; an absent
// field leaves the slot untouched.
func singleUpload(r *http.Request, field string) *Upload {
	if r.MultipartForm == nil {
		return nil
	}
	if fhs := r.MultipartForm.File[field]; len(fhs) > 0 {
		return fileUpload(fhs[0])
	}
	if vals, ok := r.MultipartForm.Value[field]; ok && (len(vals) == 0 || vals[0] == "") {
		return &Upload{Clear: true}
	}
	return nil
}

func fileUpload(fh *multipart.FileHeader) *Upload {
	return &Upload{
		Filename: fh.Filename,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
