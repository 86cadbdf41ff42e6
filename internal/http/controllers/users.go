package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httpx "github.com/dropDatabas3/gatekeeper/internal/http"
	"github.com/dropDatabas3/gatekeeper/internal/http/middlewares"
	"github.com/dropDatabas3/gatekeeper/internal/users"
)

// UsersController serves registration and the authenticated profile.
type UsersController struct {
	svc users.Service
}

func NewUsersController(svc users.Service) *UsersController {
	return &UsersController{svc: svc}
}

// RegisterPublic binds the unauthenticated endpoints.
func (c *UsersController) RegisterPublic(r chi.Router) {
	r.Post("/users/register", c.register)
}

// Register binds the authenticated endpoints.
func (c *UsersController) Register(r chi.Router) {
	r.Get("/users/me", c.me)
}

func (c *UsersController) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	u, err := c.svc.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, u)
}

func (c *UsersController) me(w http.ResponseWriter, r *http.Request) {
	user := middlewares.GetUser(r.Context())
	httpx.WriteJSON(w, http.StatusOK, user)
}
