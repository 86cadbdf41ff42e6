// Package router assembles the chi router from the controllers and the
// middleware chain.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httpx "github.com/dropDatabas3/gatekeeper/internal/http"
	"github.com/dropDatabas3/gatekeeper/internal/http/controllers"
	"github.com/dropDatabas3/gatekeeper/internal/http/middlewares"
	"github.com/dropDatabas3/gatekeeper/internal/rate"
)

// Deps carries everything the router mounts.
type Deps struct {
	Resources *controllers.ResourcesController
	Roles     *controllers.RolesController
	Groups    *controllers.GroupsController
	Users     *controllers.UsersController
	OAuth     *controllers.OAuthController
	Health    *controllers.HealthController

	Tokens      middlewares.TokenResolver
	RateLimiter rate.Limiter
	Metrics     http.Handler
}

// New builds the full handler: request id, logging and recovery around
// everything; bearer auth around the authorization-model endpoints; rate
// limiting on the credential endpoints.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	d.Health.Register(r)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		// public
		d.Users.RegisterPublic(r)

		// credential exchange, rate limited
		r.Group(func(r chi.Router) {
			r.Use(func(next http.Handler) http.Handler {
				return middlewares.WithRateLimit(d.RateLimiter, "token")(next)
			})
			d.OAuth.Register(r)
		})

		// authenticated surface
		r.Group(func(r chi.Router) {
			r.Use(func(next http.Handler) http.Handler {
				return middlewares.WithAuth(d.Tokens)(next)
			})
			d.Users.Register(r)
			d.Resources.Register(r)
			d.Roles.Register(r)
			d.Groups.Register(r)
		})
	})

	return middlewares.Chain(r,
		middlewares.WithRequestID(),
		middlewares.WithLogging(),
		httpx.WithMetrics,
		middlewares.WithRecover(),
	)
}
