package service

import (
	"context"
	"errors"
	"testing"

	"github.com/pxtester/showcase/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var superAdmin = domain.Actor{UserID: "root", Role: domain.RoleSuperAdmin}

func TestCategoryService_Create(t *testing.T) {
	repo := new(MockCategoryRepo)
	svc := NewCategoryServiceWithUUIDGen(repo, &sequenceUUIDGen{ids: []string{"cat-1"}})
	ctx := context.Background()

	repo.On("ExistsByNameOrSlug", mock.Anything, "Developer Tools", "developer-tools").Return(false, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Category) bool {
		return c.ID == "cat-1" && c.Slug == "developer-tools" && c.Description == "CLIs and IDEs"
	})).Return(nil)

	c, err := svc.Create(ctx, superAdmin, "Developer Tools", "CLIs and IDEs")

	require.NoError(t, err)
	assert.Equal(t, "developer-tools", c.Slug)
	repo.AssertExpectations(t)
}

func TestCategoryService_Create_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("admin is not enough", func(t *testing.T) {
		repo := new(MockCategoryRepo)
		_, err := NewCategoryService(repo).Create(ctx, domain.Actor{UserID: "a", Role: domain.RoleAdmin}, "Art", "")
		assert.ErrorIs(t, err, domain.ErrForbidden)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := NewCategoryService(new(MockCategoryRepo)).Create(ctx, superAdmin, "  ", "")
		assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
	})

	t.Run("name without slug characters", func(t *testing.T) {
		_, err := NewCategoryService(new(MockCategoryRepo)).Create(ctx, superAdmin, "!!!", "")
		assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
	})

	t.Run("duplicate", func(t *testing.T) {
		repo := new(MockCategoryRepo)
		repo.On("ExistsByNameOrSlug", mock.Anything, "Art", "art").Return(true, nil)
		_, err := NewCategoryService(repo).Create(ctx, superAdmin, "Art", "")
		assert.ErrorIs(t, err, domain.ErrCategoryExists)
	})

	t.Run("lookup error", func(t *testing.T) {
		repo := new(MockCategoryRepo)
		boom := errors.New("db gone")
		repo.On("ExistsByNameOrSlug", mock.Anything, "Art", "art").Return(false, boom)
		_, err := NewCategoryService(repo).Create(ctx, superAdmin, "Art", "")
		assert.ErrorIs(t, err, boom)
	})
}

func TestCategoryService_List(t *testing.T) {
	repo := new(MockCategoryRepo)
	ctx := context.Background()
	cats := []*domain.Category{{ID: "1", Name: "Art", Slug: "art", SiteCount: 4}}
	repo.On("List", ctx).Return(cats, nil)

	got, err := NewCategoryService(repo).List(ctx)

	require.NoError(t, err)
	assert.Equal(t, cats, got)
}
