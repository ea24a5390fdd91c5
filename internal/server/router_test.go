package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pxtester/showcase/internal/api/handlers"
	"github.com/pxtester/showcase/internal/domain"
	"github.com/pxtester/showcase/internal/pagination"
	"github.com/pxtester/showcase/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSessions struct {
	mock.Mock
}

func (m *MockSessions) Get(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessions) Delete(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
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
	return m.Called(ctx, actor, id).Error(0)
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

type stubCategories struct{}

func (stubCategories) List(ctx context.Context) ([]*domain.Category, error) {
	return []*domain.Category{}, nil
}

func (stubCategories) Create(ctx context.Context, actor domain.Actor, name, description string) (*domain.Category, error) {
	return domain.NewCategory("c1", name, description, time.Now().UTC()), nil
}

type stubImages struct{}

func (stubImages) Upload(ctx context.Context, actor domain.Actor, input service.UploadImageInput) (string, error) {
	return "/screenshots/site-1.png", nil
}

func (stubImages) DownloadURL(ctx context.Context, key string) (string, error) {
	return "https://bucket.example/" + key, nil
}

type testRouter struct {
	handler  http.Handler
	sessions *MockSessions
	search   *MockSearchService
	sites    *MockSiteService
}

func newTestRouter() *testRouter {
	sessions := new(MockSessions)
	search := new(MockSearchService)
	sites := new(MockSiteService)

	sessions.On("Get", mock.Anything, "user-token").Return(&domain.Session{
		Token: "user-token",
		Actor: domain.Actor{UserID: "u1", Role: domain.RoleUser},
	}, nil).Maybe()
	sessions.On("Get", mock.Anything, "admin-token").Return(&domain.Session{
		Token: "admin-token",
		Actor: domain.Actor{UserID: "a1", Role: domain.RoleAdmin},
	}, nil).Maybe()

	cfg := RouterConfig{
		Logger:          zerolog.Nop(),
		Sessions:        sessions,
		AllowedOrigins:  []string{"https://showcase.example"},
		SearchHandler:   handlers.NewSearchHandler(search, zerolog.Nop()),
		SiteHandler:     handlers.NewSiteHandler(sites),
		AdminHandler:    handlers.NewAdminHandler(sites),
		CategoryHandler: handlers.NewCategoryHandler(stubCategories{}),
		ImageHandler:    handlers.NewImageHandler(stubImages{}),
		AuthHandler:     handlers.NewAuthHandler(sessions, zerolog.Nop()),
	}

	return &testRouter{handler: NewRouter(cfg), sessions: sessions, search: search, sites: sites}
}

func (tr *testRouter) do(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader("{}"))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	tr.handler.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthEndpoint(t *testing.T) {
	tr := newTestRouter()

	w := tr.do(http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_SearchIsPublic(t *testing.T) {
	tr := newTestRouter()
	tr.search.On("Search", mock.Anything, "payments", 0).Return([]service.SearchHit{}, nil)

	w := tr.do(http.MethodGet, "/api/search?q=payments", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sites":[],"query":"payments","count":0}`, w.Body.String())
	tr.search.AssertExpectations(t)
}

func TestRouter_SimilarRoute(t *testing.T) {
	tr := newTestRouter()
	tr.search.On("Similar", mock.Anything, "s1", 0).Return([]service.SemanticHit{}, nil)

	w := tr.do(http.MethodGet, "/api/sites/s1/similar", "")

	assert.Equal(t, http.StatusOK, w.Code)
	tr.search.AssertExpectations(t)
}

func TestRouter_ProtectedRoutes_RequireSession(t *testing.T) {
	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/sites"},
		{http.MethodGet, "/api/sites/my"},
		{http.MethodPut, "/api/sites/s1"},
		{http.MethodDelete, "/api/sites/s1"},
		{http.MethodPost, "/api/categories"},
		{http.MethodGet, "/api/admin/pending"},
		{http.MethodPost, "/api/admin/sites/s1/approve"},
		{http.MethodPost, "/api/admin/sites/s1/reject"},
		{http.MethodPost, "/api/upload/image"},
	}

	tr := newTestRouter()
	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			w := tr.do(route.method, route.path, "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRouter_AdminRoutes_ForbiddenForUsers(t *testing.T) {
	tr := newTestRouter()

	for _, path := range []string{"/api/admin/pending", "/api/admin/sites/s1/approve"} {
		method := http.MethodGet
		if strings.HasSuffix(path, "approve") {
			method = http.MethodPost
		}
		w := tr.do(method, path, "user-token")
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}

	w := tr.do(http.MethodPost, "/api/categories", "admin-token")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_AdminRoutes_WithAdminSession(t *testing.T) {
	tr := newTestRouter()
	tr.sites.On("ListPending", mock.Anything, domain.Actor{UserID: "a1", Role: domain.RoleAdmin}).Return([]*domain.Site{}, nil)

	w := tr.do(http.MethodGet, "/api/admin/pending", "admin-token")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sites":[]}`, w.Body.String())
	tr.sites.AssertExpectations(t)
}

func TestRouter_MySitesNotShadowedByID(t *testing.T) {
	tr := newTestRouter()
	tr.sites.On("ListMine", mock.Anything, "u1").Return([]*domain.Site{}, nil)

	w := tr.do(http.MethodGet, "/api/sites/my", "user-token")

	assert.Equal(t, http.StatusOK, w.Code)
	tr.sites.AssertExpectations(t)
	tr.sites.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestRouter_ScreenshotRedirect(t *testing.T) {
	tr := newTestRouter()

	w := tr.do(http.MethodGet, "/screenshots/site-1.png", "")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://bucket.example/site-1.png", w.Header().Get("Location"))
}

func TestRouter_AuthMe_Anonymous(t *testing.T) {
	tr := newTestRouter()

	w := tr.do(http.MethodGet, "/api/auth/me", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":null}`, w.Body.String())
}
