package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	propertieserrors "github.com/Lala-Rental/lala-rental-backend/internal/properties/errors"
	"github.com/Lala-Rental/lala-rental-backend/internal/properties/repository"
	"github.com/Lala-Rental/lala-rental-backend/internal/properties/validator"
	"github.com/Lala-Rental/lala-rental-backend/pkg/auth"
	"github.com/Lala-Rental/lala-rental-backend/pkg/config"
	apperrors "github.com/Lala-Rental/lala-rental-backend/pkg/errors"
	"github.com/Lala-Rental/lala-rental-backend/pkg/model"
	"github.com/Lala-Rental/lala-rental-backend/pkg/sanitizer"
	"github.com/Lala-Rental/lala-rental-backend/pkg/storage"
)

const imageFolder = "properties"

// Upload is one image file of a multipart request.
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

type PropertyService interface {
	Create(ctx context.Context, actor *auth.Actor, property *model.Property) error
	GetByID(ctx context.Context, id string) (*model.Property, error)
	List(ctx context.Context, hostID string, limit int, offset int64) ([]*model.Property, int64, error)
	Update(ctx context.Context, actor *auth.Actor, id string, update *model.PropertyUpdate) (*model.Property, error)
	Delete(ctx context.Context, actor *auth.Actor, id string) error
	UploadImages(ctx context.Context, actor *auth.Actor, id string, uploads []Upload) (*model.Property, error)
}

type propertyService struct {
	repo      repository.PropertyRepository
	store     storage.Store
	validator *validator.PropertyValidator
	cfg       *config.Config
}

func NewPropertyService(
	repo repository.PropertyRepository,
	store storage.Store,
	validator *validator.PropertyValidator,
	cfg *config.Config,
) PropertyService {
	return &propertyService{
		repo:      repo,
		store:     store,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *propertyService) Create(ctx context.Context, actor *auth.Actor, property *model.Property) error {
	if !actor.HasRole(model.RoleHost, model.RoleAdmin) {
		return apperrors.Forbidden("You don't have right to this resources")
	}

	property.ID = ""
	property.HostID = actor.ID
	property.Images = []string{}
	s.sanitize(property)
	if err := s.validator.Validate(property); err != nil {
		s.cfg.Log.Warn("Property validation failed", "host_id", actor.ID, "error", err)
		return apperrors.Validation("Property validation failed", map[string]any{"errors": err})
	}

	if err := s.repo.Create(ctx, property); err != nil {
		s.cfg.Log.Error("Failed to create property", "host_id", actor.ID, "error", err)
		return apperrors.Internal("Failed to create property", err)
	}

	s.cfg.Log.Info("Property created successfully", "id", property.ID, "host_id", property.HostID)
	return nil
}

func (s *propertyService) GetByID(ctx context.Context, id string) (*model.Property, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Property ID cannot be empty")
	}

	property, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, "Failed to retrieve property")
	}
	return property, nil
}

func (s *propertyService) List(ctx context.Context, hostID string, limit int, offset int64) ([]*model.Property, int64, error) {
	var count int64
	var properties []*model.Property
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, hostID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count properties", "host_id", hostID, "error", errCount)
			errCount = apperrors.Internal("Failed to count properties", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		properties, errFind = s.repo.FindAll(ctx, hostID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list properties", "host_id", hostID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve properties", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return properties, count, nil
}

func (s *propertyService) Update(ctx context.Context, actor *auth.Actor, id string, update *model.PropertyUpdate) (*model.Property, error) {
	existing, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateUpdate(update); err != nil {
		return nil, apperrors.Validation("Invalid update input", map[string]any{"errors": err})
	}

	merged := mergePropertyUpdate(existing, update)
	s.sanitize(merged)
	if err := s.validator.Validate(merged); err != nil {
		return nil, apperrors.Validation("Property validation failed", map[string]any{"errors": err})
	}

	updated, err := s.repo.Update(ctx, id, merged)
	if err != nil {
		s.cfg.Log.Error("Failed to update property", "id", id, "error", err)
		return nil, s.translate(err, "Failed to update property")
	}

	s.cfg.Log.Info("Property updated successfully", "id", id)
	return updated, nil
}

func (s *propertyService) Delete(ctx context.Context, actor *auth.Actor, id string) error {
	existing, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate(err, "Failed to delete property")
	}

	for _, url := range existing.Images {
		key, ok := s.store.KeyFromURL(url)
		if !ok {
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil {
			s.cfg.Log.Warn("Failed to delete property image", "id", id, "key", key, "error", err)
		}
	}

	s.cfg.Log.Info("Property deleted successfully", "id", id, "actor_id", actor.ID)
	return nil
}

func (s *propertyService) UploadImages(ctx context.Context, actor *auth.Actor, id string, uploads []Upload) (*model.Property, error) {
	if len(uploads) == 0 {
		return nil, apperrors.InvalidInput("at least one image is required in the 'images' field")
	}
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(uploads))
	for _, upload := range uploads {
		url, err := s.storeImage(ctx, id, upload)
		if err != nil {
			s.cleanup(ctx, urls)
			return nil, err
		}
		urls = append(urls, url)
	}

	updated, err := s.repo.AppendImages(ctx, id, urls)
	if err != nil {
		s.cleanup(ctx, urls)
		return nil, s.translate(err, "Failed to save property images")
	}

	s.cfg.Log.Info("Property images uploaded", "id", id, "count", len(urls))
	return updated, nil
}

// --- Helpers ---

// owned loads the property and checks that actor is its host or an admin.
func (s *propertyService) owned(ctx context.Context, actor *auth.Actor, id string) (*model.Property, error) {
	if actor == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	property, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !property.OwnedBy(actor.ID) {
		return nil, apperrors.Forbidden("You don't have right to this resources")
	}
	return property, nil
}

func (s *propertyService) storeImage(ctx context.Context, propertyID string, upload Upload) (string, error) {
	file, err := upload.Open()
	if err != nil {
		return "", apperrors.InvalidInput(fmt.Sprintf("cannot read upload %q", upload.Filename))
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", apperrors.InvalidInput(fmt.Sprintf("cannot read upload %q", upload.Filename))
	}
	head = head[:n]

	contentType, err := s.validator.ValidateImage(upload.Filename, http.DetectContentType(head), upload.Size)
	if err != nil {
		return "", apperrors.Validation("Invalid image", map[string]any{"file": upload.Filename, "error": err.Error()})
	}

	key := storage.ObjectKey(imageFolder+"/"+propertyID, upload.Filename)
	url, err := s.store.Put(ctx, key, io.MultiReader(bytes.NewReader(head), file), contentType)
	if err != nil {
		s.cfg.Log.Error("Failed to store property image", "id", propertyID, "key", key, "error", err)
		return "", apperrors.Internal("Failed to store image", err)
	}
	return url, nil
}

func (s *propertyService) cleanup(ctx context.Context, urls []string) {
	for _, url := range urls {
		if key, ok := s.store.KeyFromURL(url); ok {
			if err := s.store.Delete(ctx, key); err != nil {
				s.cfg.Log.Warn("Failed to remove orphaned image", "key", key, "error", err)
			}
		}
	}
}

func (s *propertyService) sanitize(p *model.Property) {
	p.Title = sanitizer.NormalizeTitle(p.Title)
	p.Description = sanitizer.NormalizeDescription(p.Description)
	p.Location = sanitizer.NormalizeLocation(p.Location)
	p.Images = sanitizer.NormalizeImageURLs(p.Images)
}

func mergePropertyUpdate(existing *model.Property, update *model.PropertyUpdate) *model.Property {
	merged := *existing
	if update.Title != nil {
		merged.Title = *update.Title
	}
	if update.Description != nil {
		merged.Description = *update.Description
	}
	if update.Price != nil {
		merged.Price = *update.Price
	}
	if update.Location != nil {
		merged.Location = *update.Location
	}
	return &merged
}

func (s *propertyService) translate(err error, fallback string) error {
	switch {
	case errors.Is(err, propertieserrors.ErrNotFound):
		return apperrors.NotFound("Property not found")
	case errors.Is(err, propertieserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid property ID format")
	default:
		return apperrors.Internal(fallback, err)
	}
}
