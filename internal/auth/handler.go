package auth

import (
	"net/http"
	"time"

	"github.com/Purav2003/epimech-admin/internal/apperr"
	"github.com/Purav2003/epimech-admin/internal/models"
	"github.com/Purav2003/epimech-admin/internal/respond"
)

// Handler holds auth-related HTTP handlers.
type Handler struct {
	svc          *Service
	cookieSecure bool
}

func NewHandler(svc *Service, cookieSecure bool) *Handler {
	return &Handler{svc: svc, cookieSecure: cookieSecure}
}

// Login checks credentials and mails an OTP.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Login(r.Context(), req.Username, req.Password); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "otp_sent": true})
}

// VerifyOTP exchanges a valid OTP for a session token.
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyOTPRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	sess, err := h.svc.VerifyOTP(r.Context(), req.Username, req.OTP)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	setSessionCookie(w, sess.Token, h.svc.Tokens().TTL(), h.cookieSecure)
	respond.JSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"token":      sess.Token,
		"expires_at": sess.ExpiresAt.UTC().Format(time.RFC3339),
		"user":       sess.User,
	})
}

// Logout expires the session cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, h.cookieSecure)
	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Signup lets a signed-in admin create another admin.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	user, err := h.svc.Signup(r.Context(), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, map[string]any{"success": true, "user": user})
}

// Profile returns the current admin.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	if claims == nil {
		respond.Error(w, r, apperr.Auth("not authenticated"))
		return
	}

	user, err := h.svc.Profile(r.Context(), claims.UserID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"user": user})
}

// UpdateProfile changes username, email or password of the current admin.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	if claims == nil {
		respond.Error(w, r, apperr.Auth("not authenticated"))
		return
	}

	var req models.ProfileUpdate
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), claims.UserID, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"user": user})
}
