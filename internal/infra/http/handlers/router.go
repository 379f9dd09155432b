package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xavierca1/ecold-outreach/internal/infra/http/middleware"
)

// Router collects the mounted handlers. Nil handlers are left unmounted.
type Router struct {
	Templates   *TemplateHandler
	Recruiters  *RecruiterHandler
	Assignments *AssignmentHandler
	Emails      *EmailHandler
	Inbox       *InboxHandler
	Auth        *AuthHandler
	Health      *HealthHandler

	Tokens         middleware.TokenVerifier
	AuthLimiter    *middleware.LimiterStore
	AllowedOrigins []string
	Logger         *zap.Logger
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(rt.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if rt.Health != nil {
		r.Get("/health", rt.Health.Handle)
	}
	r.Handle("/metrics", promhttp.Handler())

	if rt.Auth != nil {
		r.Route("/auth", func(r chi.Router) {
			if rt.AuthLimiter != nil {
				r.Use(middleware.RateLimit(rt.AuthLimiter))
			}
			rt.Auth.Routes(r)
		})
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(rt.Tokens))
		if rt.Templates != nil {
			r.Route("/email-templates", rt.Templates.Routes)
		}
		if rt.Recruiters != nil {
			r.Route("/recruiters", rt.Recruiters.Routes)
		}
		if rt.Assignments != nil {
			r.Route("/template-assignments", rt.Assignments.Routes)
		}
		if rt.Emails != nil {
			r.Route("/emails", rt.Emails.Routes)
		}
		if rt.Inbox != nil {
			r.Route("/incoming-emails", rt.Inbox.Routes)
		}
	})

	return r
}
