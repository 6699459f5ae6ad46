package media

import (
	"net/http"

	"github.com/Purav2003/epimech-admin/internal/catalog"
	"github.com/Purav2003/epimech-admin/internal/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// category defaults to water pumps, whose images sit at the bucket root.
func category(r *http.Request) (catalog.Category, error) {
	raw := r.URL.Query().Get("category")
	if raw == "" {
		return catalog.Waterpump, nil
	}
	return catalog.ParseCategory(raw)
}

// UploadURL handles GET /api/upload-url?filename=&filetype=&category=.
func (h *Handler) UploadURL(w http.ResponseWriter, r *http.Request) {
	cat, err := category(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	q := r.URL.Query()
	up, err := h.svc.UploadURL(r.Context(), cat, q.Get("filename"), q.Get("filetype"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, up)
}

func (h *Handler) ListImages(w http.ResponseWriter, r *http.Request) {
	cat, err := category(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	images, err := h.svc.ListImages(r.Context(), cat)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"images": images})
}

type deleteRequest struct {
	Key string `json:"key" validate:"required"`
}

// DeleteImage takes the key from ?key= or a {"key": ...} body.
func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		var req deleteRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, err)
			return
		}
		key = req.Key
	}

	if err := h.svc.DeleteImage(r.Context(), key); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Message(w, "image deleted")
}
