package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/gatekeeper/internal/groups"
	httpx "github.com/dropDatabas3/gatekeeper/internal/http"
	"github.com/dropDatabas3/gatekeeper/internal/http/middlewares"
)

// GroupsController serves the group endpoints.
type GroupsController struct {
	svc groups.Service
}

func NewGroupsController(svc groups.Service) *GroupsController {
	return &GroupsController{svc: svc}
}

func (c *GroupsController) Register(r chi.Router) {
	r.Get("/groups/mine", c.mine)
	r.Post("/groups", c.create)
	r.Get("/groups/{id}/members", c.members)
}

func (c *GroupsController) mine(w http.ResponseWriter, r *http.Request) {
	user := middlewares.GetUser(r.Context())
	g, err := c.svc.UserGroup(r.Context(), user)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, g)
}

func (c *GroupsController) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"group_name"`
	}
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	user := middlewares.GetUser(r.Context())
	g, err := c.svc.CreateGroup(r.Context(), user, req.Name)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, g)
}

func (c *GroupsController) members(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	user := middlewares.GetUser(r.Context())
	us, err := c.svc.GroupUsers(r.Context(), user, id)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, us)
}
