package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httpx "github.com/dropDatabas3/gatekeeper/internal/http"
	"github.com/dropDatabas3/gatekeeper/internal/http/middlewares"
	"github.com/dropDatabas3/gatekeeper/internal/roles"
)

// RolesController serves the role endpoints.
type RolesController struct {
	svc roles.Service
}

func NewRolesController(svc roles.Service) *RolesController {
	return &RolesController{svc: svc}
}

func (c *RolesController) Register(r chi.Router) {
	r.Get("/roles", c.userRoles)
	r.Post("/roles", c.create)
	r.Post("/roles/{roleID}/assign/{resourceID}/{userID}", c.assign)
	r.Delete("/roles/{roleID}/assign/{resourceID}/{userID}", c.unassign)
}

func (c *RolesController) userRoles(w http.ResponseWriter, r *http.Request) {
	user := middlewares.GetUser(r.Context())
	rr, err := c.svc.UserRoles(r.Context(), user)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rr)
}

func (c *RolesController) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string   `json:"role_name"`
		Privileges []string `json:"privileges"`
	}
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	user := middlewares.GetUser(r.Context())
	role, err := c.svc.CreateRole(r.Context(), user, req.Name, req.Privileges)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, role)
}

func (c *RolesController) assign(w http.ResponseWriter, r *http.Request) {
	roleID, ok := pathUUID(w, r, "roleID")
	if !ok {
		return
	}
	resourceID, ok := pathUUID(w, r, "resourceID")
	if !ok {
		return
	}
	target, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}
	user := middlewares.GetUser(r.Context())
	if err := c.svc.AssignResourceUser(r.Context(), user, roleID, resourceID, target); err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *RolesController) unassign(w http.ResponseWriter, r *http.Request) {
	roleID, ok := pathUUID(w, r, "roleID")
	if !ok {
		return
	}
	resourceID, ok := pathUUID(w, r, "resourceID")
	if !ok {
		return
	}
	target, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}
	user := middlewares.GetUser(r.Context())
	if err := c.svc.UnassignResourceUser(r.Context(), user, roleID, resourceID, target); err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
