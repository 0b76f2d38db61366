package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
)

// Routes builds the router. writeRL limits the endpoints that allocate
// work: uploads, mask edits and stateless transforms.
func (h *Handler) Routes(writeRL *RateLimiter) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	csrfProtect := csrf.Protect(
		[]byte(h.Cfg.SessionSecret),
		csrf.Secure(strings.HasPrefix(h.Cfg.BaseURL, "https")),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			renderJSONError(w, http.StatusForbidden, "CSRF_FAILED", "missing or invalid CSRF token")
		})),
	)
	r.Use(func(next http.Handler) http.Handler {
		protected := csrfProtect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Scripted clients skip the token.
			if strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			protected.ServeHTTP(w, r)
		})
	})

	r.Get("/", h.Index)
	r.Get("/samples/{name}.png", h.SamplePNG)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(writeRL.Middleware)
			r.Post("/sessions", h.SessionCreate)
			r.Post("/sessions/{id}/edits", h.EditCreate)
			r.Post("/transform/1d", h.Transform1D)
		})

		r.Get("/sessions/{id}", h.SessionGet)
		r.Get("/sessions/{id}/edits", h.EditList)
		r.Get("/sessions/{id}/subbands/{level}/{band}.png", h.SubbandPNG)
		r.Get("/sessions/{id}/recomposed.png", h.RecomposedPNG)
		r.Get("/sessions/{id}/events", h.SessionSSE)
	})

	return r
}
