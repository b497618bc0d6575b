package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/Lala-Rental/lala-rental-backend/internal/properties/service"
	"github.com/Lala-Rental/lala-rental-backend/pkg/auth"
	apperrors "github.com/Lala-Rental/lala-rental-backend/pkg/errors"
	httputil "github.com/Lala-Rental/lala-rental-backend/pkg/http"
	"github.com/Lala-Rental/lala-rental-backend/pkg/logger"
	"github.com/Lala-Rental/lala-rental-backend/pkg/middleware"
	"github.com/Lala-Rental/lala-rental-backend/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const imagesField = "images"

type propertyPayload struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Location    string  `json:"location"`
}

type PropertyHandler struct {
	service       service.PropertyService
	log           *logger.Logger
	maxUploadSize int64
}

func NewPropertyHandler(service service.PropertyService, log *logger.Logger, maxUploadSize int64) *PropertyHandler {
	return &PropertyHandler{
		service:       service,
		log:           log,
		maxUploadSize: maxUploadSize,
	}
}

func (h *PropertyHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, _ := auth.ActorFromContext(r.Context())

	var payload propertyPayload
	if err := httputil.DecodeJSON(r, &payload); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	property := model.Property{
		Title:       payload.Title,
		Description: payload.Description,
		Price:       payload.Price,
		Location:    payload.Location,
	}
	if err := h.service.Create(r.Context(), actor, &property); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, &property); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *PropertyHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	property, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, property); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	properties, total, err := h.service.List(r.Context(), r.URL.Query().Get("host_id"), limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, properties, total, limit, int(offset)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, _ := auth.ActorFromContext(r.Context())

	var update model.PropertyUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	property, err := h.service.Update(r.Context(), actor, ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, property); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, _ := auth.ActorFromContext(r.Context())

	if err := h.service.Delete(r.Context(), actor, ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := httputil.WriteMessage(w, "Property deleted successfully"); err != nil {
		h.log.Error("failed to write message response", "handler", "Delete", "operation", "WriteMessage", "error", err)
	}
}

func (h *PropertyHandler) UploadImages(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, _ := auth.ActorFromContext(r.Context())

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		h.writeError(w, "UploadImages", apperrors.InvalidInput("invalid multipart form: "+err.Error()))
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.log.Warn("failed to remove multipart temp files", "handler", "UploadImages", "error", err)
		}
	}()

	headers := r.MultipartForm.File[imagesField]
	uploads := make([]service.Upload, 0, len(headers))
	for _, header := range headers {
		uploads = append(uploads, toUpload(header))
	}

	property, err := h.service.UploadImages(r.Context(), actor, ps.ByName("id"), uploads)
	if err != nil {
		h.writeError(w, "UploadImages", err)
		return
	}

	if err := httputil.WriteSuccess(w, property); err != nil {
		h.log.Error("failed to write success response", "handler", "UploadImages", "operation", "WriteSuccess", "error", err)
	}
}

func toUpload(header *multipart.FileHeader) service.Upload {
	return service.Upload{
		Filename: header.Filename,
		Size:     header.Size,
		Open: func() (io.ReadCloser, error) {
			return header.Open()
		},
	}
}

func (h *PropertyHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/properties", h.List)
	router.GET("/api/v1/properties/id/:id", h.GetByID)
	router.POST("/api/v1/properties", middleware.RequireRoles(h.Create, model.RoleHost, model.RoleAdmin))
	router.PATCH("/api/v1/properties/id/:id", middleware.RequireAuth(h.Update))
	router.PUT("/api/v1/properties/id/:id", middleware.RequireAuth(h.Update))
	router.DELETE("/api/v1/properties/id/:id", middleware.RequireAuth(h.Delete))
	router.POST("/api/v1/properties/id/:id/images", middleware.RequireAuth(h.UploadImages))
}
