package inquiry

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Purav2003/epimech-admin/internal/models"
	"github.com/Purav2003/epimech-admin/internal/respond"
)

// Handler holds inquiry HTTP handlers.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /api/inquiries?type=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	typ, err := ParseType(r.URL.Query().Get("type"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	items, err := h.svc.List(r.Context(), typ)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, items)
}

// Create is the public storefront submission endpoint.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.InquiryRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	inq, err := h.svc.Create(r.Context(), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, inq)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Message(w, "inquiry deleted")
}
