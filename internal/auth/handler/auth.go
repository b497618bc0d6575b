package handler

import (
	"net/http"

	"github.com/Lala-Rental/lala-rental-backend/internal/auth/service"
	"github.com/Lala-Rental/lala-rental-backend/pkg/auth"
	httputil "github.com/Lala-Rental/lala-rental-backend/pkg/http"
	"github.com/Lala-Rental/lala-rental-backend/pkg/logger"
	"github.com/Lala-Rental/lala-rental-backend/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

type googleSignInRequest struct {
	Token string `json:"token"`
}

type AuthHandler struct {
	service service.AuthService
	log     *logger.Logger
}

func NewAuthHandler(service service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log,
	}
}

func (h *AuthHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req googleSignInRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Google", err)
		return
	}

	resp, err := h.service.SignInWithGoogle(r.Context(), req.Token)
	if err != nil {
		h.writeError(w, "Google", err)
		return
	}

	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Google", "operation", "WriteSuccess", "error", err)
	}
}

// Logout acknowledges the request. Tokens are stateless and expire on their own.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteMessage(w, "Logged out successfully"); err != nil {
		h.log.Error("failed to write message response", "handler", "Logout", "operation", "WriteMessage", "error", err)
	}
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, _ := auth.ActorFromContext(r.Context())

	user, err := h.service.Me(r.Context(), actor)
	if err != nil {
		h.writeError(w, "Me", err)
		return
	}

	if err := httputil.WriteSuccess(w, user); err != nil {
		h.log.Error("failed to write success response", "handler", "Me", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AuthHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/auth/google", h.Google)
	router.POST("/api/v1/auth/logout", middleware.RequireAuth(h.Logout))
	router.GET("/api/v1/auth/me", middleware.RequireAuth(h.Me))
}
