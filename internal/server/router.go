// Package server assembles the HTTP surface.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Purav2003/epimech-admin/internal/auth"
	"github.com/Purav2003/epimech-admin/internal/catalog"
	"github.com/Purav2003/epimech-admin/internal/inquiry"
	"github.com/Purav2003/epimech-admin/internal/media"
	"github.com/Purav2003/epimech-admin/internal/middleware"
	"github.com/Purav2003/epimech-admin/internal/respond"
)

// RateLimit is one fixed-window rule.
type RateLimit struct {
	Limit  int
	Window time.Duration
}

// Options carries everything the router needs. Media may be nil when no
// object storage is configured.
type Options struct {
	Auth    *auth.Handler
	Tokens  middleware.TokenParser
	Catalog *catalog.Handler
	Media   *media.Handler
	Inquiry *inquiry.Handler

	Limiter    *middleware.RateLimiter
	LoginLimit RateLimit
	OTPLimit   RateLimit

	AllowedOrigins []string
}

// NewRouter builds the chi router with every route mounted.
func NewRouter(o Options) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   o.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	requireAuth := middleware.RequireAuth(o.Tokens)

	r.Route("/api", func(r chi.Router) {
		// Auth routes (public, rate limited)
		r.Route("/auth", func(r chi.Router) {
			r.With(o.Limiter.Limit("auth_login", o.LoginLimit.Limit, o.LoginLimit.Window)).
				Post("/login", o.Auth.Login)
			r.With(o.Limiter.Limit("auth_verify_otp", o.OTPLimit.Limit, o.OTPLimit.Window)).
				Post("/verify-otp", o.Auth.VerifyOTP)
			r.Post("/logout", o.Auth.Logout)
			r.With(requireAuth).Post("/signup", o.Auth.Signup)
		})

		// Storefront submissions are public; reading the inbox is not.
		r.Route("/inquiries", func(r chi.Router) {
			r.Post("/", o.Inquiry.Create)
			r.With(requireAuth).Get("/", o.Inquiry.List)
			r.With(requireAuth).Delete("/{id}", o.Inquiry.Delete)
		})

		// Admin routes (protected)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/profile", o.Auth.Profile)
			r.Put("/profile", o.Auth.UpdateProfile)

			if o.Media != nil {
				r.Get("/upload-url", o.Media.UploadURL)
				r.Get("/images", o.Media.ListImages)
				r.Delete("/images", o.Media.DeleteImage)
			}

			r.Get("/products", o.Catalog.List)
			r.Post("/products", o.Catalog.Create)
			r.Route("/{category}", o.Catalog.Routes)
		})
	})

	return r
}
