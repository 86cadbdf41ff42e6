// Package controllers holds the HTTP controllers, one per service area. Each
// controller binds its routes onto a chi router and translates between JSON
// and the service layer.
package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	httpx "github.com/dropDatabas3/gatekeeper/internal/http"
	"github.com/dropDatabas3/gatekeeper/internal/http/middlewares"
	"github.com/dropDatabas3/gatekeeper/internal/resources"
)

// ResourcesController serves the resource endpoints.
type ResourcesController struct {
	svc resources.Service
}

func NewResourcesController(svc resources.Service) *ResourcesController {
	return &ResourcesController{svc: svc}
}

func (c *ResourcesController) Register(r chi.Router) {
	r.Get("/resources/categories", c.categories)
	r.Get("/resources/public", c.public)
	r.Get("/resources", c.list)
	r.Post("/resources", c.create)
	r.Get("/resources/{id}", c.get)
	r.Put("/resources/{id}", c.save)
	r.Post("/resources/{id}/toggle-public", c.togglePublic)
	r.Get("/resources/{id}/data", c.data)
	r.Post("/resources/{id}/data/{linkID}", c.linkData)
	r.Delete("/resources/{id}/data/{linkID}", c.unlinkData)
}

func (c *ResourcesController) categories(w http.ResponseWriter, r *http.Request) {
	cats, err := c.svc.Categories(r.Context())
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cats)
}

func (c *ResourcesController) public(w http.ResponseWriter, r *http.Request) {
	rs, err := c.svc.PublicResources(r.Context())
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rs)
}

func (c *ResourcesController) list(w http.ResponseWriter, r *http.Request) {
	user := middlewares.GetUser(r.Context())
	rs, err := c.svc.UserResources(r.Context(), user)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rs)
}

func (c *ResourcesController) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"resource_name"`
		Category string `json:"resource_category"`
		Public   bool   `json:"public"`
	}
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	user := middlewares.GetUser(r.Context())
	res, err := c.svc.CreateResource(r.Context(), user, req.Name, req.Category, req.Public)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, res)
}

func (c *ResourcesController) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	user := middlewares.GetUser(r.Context())
	res, err := c.svc.ResourceByID(r.Context(), user, id)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (c *ResourcesController) save(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Name   string `json:"resource_name"`
		Public bool   `json:"public"`
	}
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	user := middlewares.GetUser(r.Context())
	res, err := c.svc.ResourceByID(r.Context(), user, id)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	res.Name = req.Name
	res.Public = req.Public
	if err := c.svc.SaveResource(r.Context(), user, res); err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (c *ResourcesController) togglePublic(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	user := middlewares.GetUser(r.Context())
	res, err := c.svc.TogglePublic(r.Context(), user, id)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (c *ResourcesController) data(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	user := middlewares.GetUser(r.Context())
	rows, err := c.svc.ResourceData(r.Context(), user, id, offset, limit)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rows)
}

func (c *ResourcesController) linkData(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	linkID, ok := pathUUID(w, r, "linkID")
	if !ok {
		return
	}
	user := middlewares.GetUser(r.Context())
	if err := c.svc.LinkData(r.Context(), user, id, linkID); err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *ResourcesController) unlinkData(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	linkID, ok := pathUUID(w, r, "linkID")
	if !ok {
		return
	}
	user := middlewares.GetUser(r.Context())
	if err := c.svc.UnlinkData(r.Context(), user, id, linkID); err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathUUID parses a uuid path parameter, writing a 400 on failure.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed "+name)
		return uuid.Nil, false
	}
	return id, true
}
