package service

import (
	"context"
	"io"

	"github.com/pxtester/showcase/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockEmbeddingClient mocks the embedding provider
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockVectorIndex mocks the vector index
type MockVectorIndex struct {
	mock.Mock
}

func (m *MockVectorIndex) Query(ctx context.Context, embedding []float32, topK int) ([]domain.VectorMatch, error) {
	args := m.Called(ctx, embedding, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VectorMatch), args.Error(1)
}

func (m *MockVectorIndex) Upsert(ctx context.Context, siteID string, embedding []float32, metadata map[string]string) error {
	args := m.Called(ctx, siteID, embedding, metadata)
	return args.Error(0)
}

func (m *MockVectorIndex) Delete(ctx context.Context, siteID string) error {
	args := m.Called(ctx, siteID)
	return args.Error(0)
}

// MockSiteRepo mocks the site repository for every service that reads sites
type MockSiteRepo struct {
	mock.Mock
}

func (m *MockSiteRepo) Create(ctx context.Context, s *domain.Site) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSiteRepo) GetByID(ctx context.Context, id string) (*domain.Site, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Site), args.Error(1)
}

func (m *MockSiteRepo) GetByURL(ctx context.Context, url string) (*domain.Site, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Site), args.Error(1)
}

func (m *MockSiteRepo) GetApprovedByIDs(ctx context.Context, ids []string) ([]*domain.Site, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Site), args.Error(1)
}

func (m *MockSiteRepo) SearchText(ctx context.Context, query string, limit int) ([]*domain.Site, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Site), args.Error(1)
}

func (m *MockSiteRepo) ListApproved(ctx context.Context, f domain.SiteFilter) ([]*domain.Site, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Site), args.Get(1).(int64), args.Error(2)
}

func (m *MockSiteRepo) ListApprovedIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSiteRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Site, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Site), args.Error(1)
}

func (m *MockSiteRepo) ListByStatus(ctx context.Context, status domain.SiteStatus) ([]*domain.Site, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Site), args.Error(1)
}

func (m *MockSiteRepo) RandomInCategory(ctx context.Context, category, excludeID string, limit int) ([]*domain.Site, error) {
	args := m.Called(ctx, category, excludeID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Site), args.Error(1)
}

func (m *MockSiteRepo) Update(ctx context.Context, s *domain.Site) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSiteRepo) UpdateStatus(ctx context.Context, id string, status domain.SiteStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockSiteRepo) IncrementViews(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSiteRepo) IncrementLikes(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSiteRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockEmbeddingJobRepo mocks the embedding job queue
type MockEmbeddingJobRepo struct {
	mock.Mock
}

func (m *MockEmbeddingJobRepo) Create(ctx context.Context, job *domain.EmbeddingJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// MockCategoryRepo mocks the category repository
type MockCategoryRepo struct {
	mock.Mock
}

func (m *MockCategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCategoryRepo) ExistsByNameOrSlug(ctx context.Context, name, slug string) (bool, error) {
	args := m.Called(ctx, name, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepo) List(ctx context.Context) ([]*domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Category), args.Error(1)
}

// MockStorageClient mocks the blob store
type MockStorageClient struct {
	mock.Mock
}

func (m *MockStorageClient) PutObject(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	args := m.Called(ctx, key, contentType, body, size)
	return args.Error(0)
}

func (m *MockStorageClient) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockStorageClient) HeadObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// sequenceUUIDGen hands out ids in order
type sequenceUUIDGen struct {
	ids []string
	i   int
}

func (g *sequenceUUIDGen) NewString() string {
	id := g.ids[g.i%len(g.ids)]
	g.i++
	return id
}

func approvedSite(id, name string) *domain.Site {
	return &domain.Site{ID: id, Name: name, URL: "https://" + id + ".example", Category: "fintech", Status: domain.SiteStatusApproved}
}
