package domain

import (
	"regexp"
	"strings"
	"time"
)

// Category groups sites in the catalog
type Category struct {
	ID          string
	Name        string
	Slug        string
	Description string
	SiteCount   int64
	CreatedAt   time.Time
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases name and collapses every run of non-alphanumerics into a dash.
func Slugify(name string) string {
	s := slugInvalid.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

// NewCategory creates a Category with a slug derived from its name
func NewCategory(id, name, description string, createdAt time.Time) *Category {
	name = strings.TrimSpace(name)
	return &Category{
		ID:          id,
		Name:        name,
		Slug:        Slugify(name),
		Description: strings.TrimSpace(description),
		CreatedAt:   createdAt,
	}
}
