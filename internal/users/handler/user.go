package handler

import (
	"net/http"

	"github.com/Lala-Rental/lala-rental-backend/internal/users/service"
	"github.com/Lala-Rental/lala-rental-backend/pkg/auth"
	httputil "github.com/Lala-Rental/lala-rental-backend/pkg/http"
	"github.com/Lala-Rental/lala-rental-backend/pkg/logger"
	"github.com/Lala-Rental/lala-rental-backend/pkg/middleware"
	"github.com/Lala-Rental/lala-rental-backend/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type UserHandler struct {
	service service.UserService
	log     *logger.Logger
}

func NewUserHandler(service service.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log,
	}
}

func (h *UserHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, _ := auth.ActorFromContext(r.Context())

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	users, total, err := h.service.List(r.Context(), actor, limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, users, total, limit, int(offset)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, _ := auth.ActorFromContext(r.Context())

	user, err := h.service.GetByID(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, user); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, _ := auth.ActorFromContext(r.Context())

	var update model.RoleUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "UpdateRole", err)
		return
	}

	user, err := h.service.UpdateRole(r.Context(), actor, ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "UpdateRole", err)
		return
	}

	if err := httputil.WriteSuccess(w, user); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateRole", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, _ := auth.ActorFromContext(r.Context())

	if err := h.service.Delete(r.Context(), actor, ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := httputil.WriteMessage(w, "User deleted successfully"); err != nil {
		h.log.Error("failed to write message response", "handler", "Delete", "operation", "WriteMessage", "error", err)
	}
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/users", middleware.RequireRoles(h.List, model.RoleAdmin))
	router.GET("/api/v1/users/id/:id", middleware.RequireAuth(h.GetByID))
	router.PATCH("/api/v1/users/id/:id/role", middleware.RequireRoles(h.UpdateRole, model.RoleAdmin))
	router.DELETE("/api/v1/users/id/:id", middleware.RequireRoles(h.Delete, model.RoleAdmin))
}
