package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pxtester/showcase/internal/api/middleware"
	"github.com/pxtester/showcase/internal/domain"
	"github.com/pxtester/showcase/internal/pagination"
	"github.com/pxtester/showcase/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockSiteService struct {
	mock.Mock
}

func (m *MockSiteService) Create(ctx context.Context, input service.CreateSiteInput) (*domain.Site, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Site), args.Error(1)
}

func (m *MockSiteService) Get(ctx context.Context, id string) (*service.SiteDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SiteDetail), args.Error(1)
}

func (m *MockSiteService) List(ctx context.Context, input service.ListSitesInput) (*pagination.PageResult[*domain.Site], error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pagination.PageResult[*domain.Site]), args.Error(1)
}

func (m *MockSiteService) ListMine(ctx context.Context, userID string) ([]*domain.Site, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Site), args.Error(1)
}

func (m *MockSiteService) Update(ctx context.Context, actor domain.Actor, input service.UpdateSiteInput) (*domain.Site, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Site), args.Error(1)
}

func (m *MockSiteService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockSiteService) Like(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSiteService) ListPending(ctx context.Context, actor domain.Actor) ([]*domain.Site, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Site), args.Error(1)
}

func (m *MockSiteService) Approve(ctx context.Context, actor domain.Actor, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockSiteService) Reject(ctx context.Context, actor domain.Actor, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, query string, limit int) ([]service.SearchHit, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.SearchHit), args.Error(1)
}

func (m *MockSearchService) Similar(ctx context.Context, siteID string, limit int) ([]service.SemanticHit, error) {
	args := m.Called(ctx, siteID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.SemanticHit), args.Error(1)
}

type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) List(ctx context.Context) ([]*domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Category), args.Error(1)
}

func (m *MockCategoryService) Create(ctx context.Context, actor domain.Actor, name, description string) (*domain.Category, error) {
	args := m.Called(ctx, actor, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) Upload(ctx context.Context, actor domain.Actor, input service.UploadImageInput) (string, error) {
	args := m.Called(ctx, actor, input)
	return args.String(0), args.Error(1)
}

func (m *MockImageService) DownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

type MockSessionRevoker struct {
	mock.Mock
}

func (m *MockSessionRevoker) Delete(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

var (
	member = domain.Actor{UserID: "user-1", Email: "member@example.test", Name: "Member", Role: domain.RoleUser}
	admin  = domain.Actor{UserID: "admin-1", Email: "admin@example.test", Role: domain.RoleAdmin}
)

func withActor(req *http.Request, actor domain.Actor) *http.Request {
	return req.WithContext(middleware.WithActor(req.Context(), actor))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func testSite(id, name string) *domain.Site {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Site{
		ID:               id,
		Name:             name,
		URL:              "https://" + id + ".example",
		ShortDescription: name + " in short",
		Category:         "fintech",
		Tags:             []string{"payments"},
		UserID:           member.UserID,
		Status:           domain.SiteStatusApproved,
		SubmittedAt:      now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
