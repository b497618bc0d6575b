package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	propertieserrors "github.com/Lala-Rental/lala-rental-backend/internal/properties/errors"
	"github.com/Lala-Rental/lala-rental-backend/internal/properties/validator"
	"github.com/Lala-Rental/lala-rental-backend/pkg/auth"
	"github.com/Lala-Rental/lala-rental-backend/pkg/config"
	apperrors "github.com/Lala-Rental/lala-rental-backend/pkg/errors"
	"github.com/Lala-Rental/lala-rental-backend/pkg/logger"
	"github.com/Lala-Rental/lala-rental-backend/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const propertyID = "65f1c0ffee0ddba11ad0be01"

var (
	owner   = &auth.Actor{ID: "host-1", Role: model.RoleHost}
	other   = &auth.Actor{ID: "host-2", Role: model.RoleHost}
	renter  = &auth.Actor{ID: "renter-1", Role: model.RoleRenter}
	admin   = &auth.Actor{ID: "admin-1", Role: model.RoleAdmin}
	pngHead = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
)

type mockPropertyRepo struct {
	mu         sync.Mutex
	property   *model.Property
	createErr  error
	appendErr  error
	created    *model.Property
	appended   []string
	deletedIDs []string
}

func (m *mockPropertyRepo) Create(_ context.Context, property *model.Property) error {
	if m.createErr != nil {
		return m.createErr
	}
	property.ID = propertyID
	m.created = property
	return nil
}

func (m *mockPropertyRepo) FindByID(_ context.Context, id string) (*model.Property, error) {
	if m.property == nil || m.property.ID != id {
		return nil, propertieserrors.ErrNotFound
	}
	clone := *m.property
	return &clone, nil
}

func (m *mockPropertyRepo) FindAll(_ context.Context, hostID string, _ int, _ int64) ([]*model.Property, error) {
	if m.property != nil && (hostID == "" || m.property.HostID == hostID) {
		return []*model.Property{m.property}, nil
	}
	return []*model.Property{}, nil
}

func (m *mockPropertyRepo) Count(_ context.Context, hostID string) (int64, error) {
	if m.property != nil && (hostID == "" || m.property.HostID == hostID) {
		return 1, nil
	}
	return 0, nil
}

func (m *mockPropertyRepo) Update(_ context.Context, _ string, property *model.Property) (*model.Property, error) {
	m.property = property
	return property, nil
}

func (m *mockPropertyRepo) AppendImages(_ context.Context, _ string, urls []string) (*model.Property, error) {
	if m.appendErr != nil {
		return nil, m.appendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appended = append(m.appended, urls...)
	m.property.Images = append(m.property.Images, urls...)
	return m.property, nil
}

func (m *mockPropertyRepo) Delete(_ context.Context, id string) error {
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

type memoryStore struct {
	objects map[string][]byte
	types   map[string]string
	deleted []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *memoryStore) Put(_ context.Context, key string, body io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.objects[key] = data
	s.types[key] = contentType
	return "https://cdn.test/" + key, nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	delete(s.objects, key)
	return nil
}

func (s *memoryStore) KeyFromURL(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, "https://cdn.test/")
	return key, ok
}

func newTestService(repo *mockPropertyRepo, store *memoryStore) *propertyService {
	log := logger.Nop()
	cfg := &config.Config{Log: log}
	return NewPropertyService(repo, store, validator.NewPropertyValidator(log, 1024), cfg).(*propertyService)
}

func existingProperty() *model.Property {
	return &model.Property{
		ID:          propertyID,
		HostID:      owner.ID,
		Title:       "Lake Kivu cabin",
		Description: "A quiet cabin right on the lake shore.",
		Price:       80,
		Location:    "Gisenyi",
		Images:      []string{},
	}
}

func upload(name string, data []byte) Upload {
	return Upload{
		Filename: name,
		Size:     int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func appCode(t *testing.T, err error) int {
	t.Helper()
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr, "expected AppError, got %v", err)
	return appErr.StatusCode()
}

func TestCreate_SetsHostAndSanitizes(t *testing.T) {
	repo := &mockPropertyRepo{}
	svc := newTestService(repo, newMemoryStore())

	property := &model.Property{
		ID:          "client-chosen",
		HostID:      "someone-else",
		Title:       "  Lake   Kivu cabin ",
		Description: "A quiet cabin right on the lake shore.",
		Price:       80,
		Location:    " Gisenyi ",
		Images:      []string{"https://evil.test/x.png"},
	}
	require.NoError(t, svc.Create(context.Background(), owner, property))

	assert.Equal(t, propertyID, property.ID)
	assert.Equal(t, owner.ID, property.HostID)
	assert.Equal(t, "Lake Kivu cabin", property.Title)
	assert.Equal(t, "Gisenyi", property.Location)
	assert.Empty(t, property.Images)
}

func TestCreate_RenterForbidden(t *testing.T) {
	svc := newTestService(&mockPropertyRepo{}, newMemoryStore())

	err := svc.Create(context.Background(), renter, existingProperty())
	assert.Equal(t, http.StatusForbidden, appCode(t, err))
}

func TestCreate_ValidationFailure(t *testing.T) {
	svc := newTestService(&mockPropertyRepo{}, newMemoryStore())

	property := existingProperty()
	property.Price = 0
	err := svc.Create(context.Background(), owner, property)
	assert.Equal(t, http.StatusUnprocessableEntity, appCode(t, err))
}

func TestCreate_RepositoryFailureIsInternal(t *testing.T) {
	svc := newTestService(&mockPropertyRepo{createErr: errors.New("mongo down")}, newMemoryStore())

	err := svc.Create(context.Background(), admin, existingProperty())
	assert.Equal(t, http.StatusInternalServerError, appCode(t, err))
}

func TestGetByID(t *testing.T) {
	svc := newTestService(&mockPropertyRepo{property: existingProperty()}, newMemoryStore())

	property, err := svc.GetByID(context.Background(), propertyID)
	require.NoError(t, err)
	assert.Equal(t, "Lake Kivu cabin", property.Title)

	_, err = svc.GetByID(context.Background(), "65f1c0ffee0ddba11ad0beff")
	assert.Equal(t, http.StatusNotFound, appCode(t, err))

	_, err = svc.GetByID(context.Background(), "")
	assert.Equal(t, http.StatusBadRequest, appCode(t, err))
}

func TestList_FiltersByHost(t *testing.T) {
	svc := newTestService(&mockPropertyRepo{property: existingProperty()}, newMemoryStore())

	properties, total, err := svc.List(context.Background(), owner.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, properties, 1)
	assert.Equal(t, int64(1), total)

	properties, total, err = svc.List(context.Background(), other.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, properties)
	assert.Zero(t, total)
}

func TestUpdate_AccessRules(t *testing.T) {
	price := 120.0
	tests := []struct {
		name   string
		actor  *auth.Actor
		status int
	}{
		{"owner", owner, http.StatusOK},
		{"admin", admin, http.StatusOK},
		{"other host", other, http.StatusForbidden},
		{"renter", renter, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&mockPropertyRepo{property: existingProperty()}, newMemoryStore())

			updated, err := svc.Update(context.Background(), tt.actor, propertyID, &model.PropertyUpdate{Price: &price})
			if tt.status == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, price, updated.Price)
				assert.Equal(t, "Lake Kivu cabin", updated.Title)
				return
			}
			assert.Equal(t, tt.status, appCode(t, err))
		})
	}
}

func TestUpdate_EmptyBodyRejected(t *testing.T) {
	svc := newTestService(&mockPropertyRepo{property: existingProperty()}, newMemoryStore())

	_, err := svc.Update(context.Background(), owner, propertyID, &model.PropertyUpdate{})
	assert.Equal(t, http.StatusUnprocessableEntity, appCode(t, err))
}

func TestDelete_RemovesStoredImages(t *testing.T) {
	property := existingProperty()
	property.Images = []string{"https://cdn.test/properties/a.png", "https://elsewhere.test/b.png"}
	repo := &mockPropertyRepo{property: property}
	store := newMemoryStore()
	svc := newTestService(repo, store)

	require.NoError(t, svc.Delete(context.Background(), owner, propertyID))
	assert.Equal(t, []string{propertyID}, repo.deletedIDs)
	assert.Equal(t, []string{"properties/a.png"}, store.deleted)
}

func TestDelete_NotOwnerForbidden(t *testing.T) {
	repo := &mockPropertyRepo{property: existingProperty()}
	svc := newTestService(repo, newMemoryStore())

	err := svc.Delete(context.Background(), other, propertyID)
	assert.Equal(t, http.StatusForbidden, appCode(t, err))
	assert.Empty(t, repo.deletedIDs)
}

func TestUploadImages_StoresAndAppends(t *testing.T) {
	repo := &mockPropertyRepo{property: existingProperty()}
	store := newMemoryStore()
	svc := newTestService(repo, store)

	updated, err := svc.UploadImages(context.Background(), owner, propertyID, []Upload{
		upload("front.png", pngHead),
		upload("logo.svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`)),
	})
	require.NoError(t, err)
	require.Len(t, updated.Images, 2)
	assert.Len(t, store.objects, 2)

	for key, data := range store.objects {
		assert.True(t, strings.HasPrefix(key, "properties/"+propertyID+"/"), key)
		if strings.HasSuffix(key, ".png") {
			assert.Equal(t, pngHead, data)
			assert.Equal(t, "image/png", store.types[key])
		} else {
			assert.Equal(t, "image/svg+xml", store.types[key])
		}
	}
}

func TestUploadImages_RejectsDisguisedFile(t *testing.T) {
	repo := &mockPropertyRepo{property: existingProperty()}
	store := newMemoryStore()
	svc := newTestService(repo, store)

	_, err := svc.UploadImages(context.Background(), owner, propertyID, []Upload{
		upload("front.png", pngHead),
		upload("script.png", []byte("#!/bin/sh\necho hi\n")),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, appCode(t, err))
	assert.Empty(t, store.objects, "earlier uploads should be cleaned up")
	assert.Empty(t, repo.appended)
}

func TestUploadImages_TooLarge(t *testing.T) {
	svc := newTestService(&mockPropertyRepo{property: existingProperty()}, newMemoryStore())

	big := append(append([]byte{}, pngHead...), make([]byte, 2048)...)
	_, err := svc.UploadImages(context.Background(), owner, propertyID, []Upload{upload("big.png", big)})
	assert.Equal(t, http.StatusUnprocessableEntity, appCode(t, err))
}

func TestUploadImages_AppendFailureCleansUp(t *testing.T) {
	repo := &mockPropertyRepo{property: existingProperty(), appendErr: errors.New("write failed")}
	store := newMemoryStore()
	svc := newTestService(repo, store)

	_, err := svc.UploadImages(context.Background(), admin, propertyID, []Upload{upload("front.png", pngHead)})
	assert.Equal(t, http.StatusInternalServerError, appCode(t, err))
	assert.Empty(t, store.objects)
	assert.Len(t, store.deleted, 1)
}

func TestUploadImages_NoFiles(t *testing.T) {
	svc := newTestService(&mockPropertyRepo{property: existingProperty()}, newMemoryStore())

	_, err := svc.UploadImages(context.Background(), owner, propertyID, nil)
	assert.Equal(t, http.StatusBadRequest, appCode(t, err))
}
