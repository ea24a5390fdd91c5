package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pxtester/showcase/internal/domain"
)

type CategoryRepository struct {
	db dbtx
}

func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{db: pool}
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO categories (id, name, slug, description, created_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.Slug, nullableString(c.Description), c.CreatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrCategoryExists
	}
	return err
}

func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	var c domain.Category
	var description *string
	err := r.db.QueryRow(ctx,
		`SELECT id, name, slug, description, created_at FROM categories WHERE slug = $1`,
		slug,
	).Scan(&c.ID, &c.Name, &c.Slug, &description, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	c.Description = derefString(description)
	return &c, nil
}

// ExistsByNameOrSlug reports whether a category with the same name
// (case-insensitive) or slug is already present.
func (r *CategoryRepository) ExistsByNameOrSlug(ctx context.Context, name, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE lower(name) = lower($1) OR slug = $2)`,
		name, slug,
	).Scan(&exists)
	return exists, err
}

// List returns every category by name with its number of approved sites.
func (r *CategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	rows, err := r.db.Query(ctx,
		`SELECT c.id, c.name, c.slug, c.description, c.created_at,
		        COUNT(s.id) FILTER (WHERE s.status = $1) AS site_count
		 FROM categories c
		 LEFT JOIN sites s ON s.category = c.slug
		 GROUP BY c.id
		 ORDER BY c.name`,
		domain.SiteStatusApproved,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		var description *string
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &description, &c.CreatedAt, &c.SiteCount); err != nil {
			return nil, err
		}
		c.Description = derefString(description)
		results = append(results, &c)
	}
	return results, rows.Err()
}
