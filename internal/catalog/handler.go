package catalog

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Purav2003/epimech-admin/internal/models"
	"github.com/Purav2003/epimech-admin/internal/respond"
)

// Handler holds product HTTP handlers.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Routes registers the per-category routes under /{category}.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/reorder", h.Reorder)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Put("/{id}/visibility", h.SetVisibility)
}

// category reads {category} from the path, falling back to ?category=.
func category(r *http.Request) (Category, error) {
	raw := chi.URLParam(r, "category")
	if raw == "" {
		raw = r.URL.Query().Get("category")
	}
	return ParseCategory(raw)
}

// List returns products ordered by rank. Supports ?search= and ?visible=true.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	cat, err := category(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	q := r.URL.Query()
	visibleOnly, _ := strconv.ParseBool(q.Get("visible"))
	products, err := h.svc.List(r.Context(), cat, models.ProductFilter{Search: q.Get("search"), VisibleOnly: visibleOnly})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, products)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	cat, err := category(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.svc.Get(r.Context(), cat, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, p)
}

// Create adds a product at the end of the category.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	cat, err := category(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var in models.ProductInput
	if err := respond.Decode(r, &in); err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.svc.Create(r.Context(), cat, in)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, p)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	cat, err := category(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var patch models.ProductPatch
	if err := respond.Decode(r, &patch); err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.svc.Update(r.Context(), cat, chi.URLParam(r, "id"), patch)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, p)
}

// SetVisibility shows or hides a product on the storefront.
func (h *Handler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	cat, err := category(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req models.VisibilityRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.svc.SetHidden(r.Context(), cat, chi.URLParam(r, "id"), *req.IsHide)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, p)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	cat, err := category(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), cat, chi.URLParam(r, "id")); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Message(w, "product deleted")
}

// Reorder takes {"items": [{id, rank}, ...]} in display order.
func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	cat, err := category(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req models.ReorderRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Reorder(r.Context(), cat, req.Items); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "updated": len(req.Items)})
}
