package domain

import (
	"fmt"
	"strings"
	"time"
)

// SiteStatus is the moderation status of a catalog entry
type SiteStatus string

const (
	SiteStatusPending  SiteStatus = "pending"
	SiteStatusApproved SiteStatus = "approved"
	SiteStatusRejected SiteStatus = "rejected"
)

// Site is a submitted website in the showcase catalog
type Site struct {
	ID               string
	Name             string
	URL              string
	Description      string
	ShortDescription string
	Category         string
	Tags             []string
	ThumbnailURL     string
	UserID           string
	Status           SiteStatus
	Views            int64
	Likes            int64
	IsFeatured       bool
	SubmittedAt      time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewSite creates a pending Site
func NewSite(
	id, userID, name, url, category string,
	description, shortDescription, thumbnailURL string,
	tags []string,
	now time.Time,
) *Site {
	return &Site{
		ID:               id,
		Name:             name,
		URL:              url,
		Description:      description,
		ShortDescription: shortDescription,
		Category:         category,
		Tags:             NormalizeTags(tags),
		ThumbnailURL:     thumbnailURL,
		UserID:           userID,
		Status:           SiteStatusPending,
		SubmittedAt:      now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// ValidateSite validates a Site instance
func ValidateSite(s *Site) error {
	if s == nil {
		return fmt.Errorf("site cannot be nil")
	}

	if s.ID == "" {
		return fmt.Errorf("site ID is required")
	}

	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("site Name is required")
	}

	if strings.TrimSpace(s.URL) == "" {
		return fmt.Errorf("site URL is required")
	}

	if strings.TrimSpace(s.Category) == "" {
		return fmt.Errorf("site Category is required")
	}

	if !IsValidSiteStatus(s.Status) {
		return fmt.Errorf("site Status is invalid: %s", s.Status)
	}

	return nil
}

// IsValidSiteStatus checks if a SiteStatus is valid
func IsValidSiteStatus(s SiteStatus) bool {
	switch s {
	case SiteStatusPending, SiteStatusApproved, SiteStatusRejected:
		return true
	}
	return false
}

// IsSearchable reports whether the site may appear in search results.
func (s *Site) IsSearchable() bool {
	return s != nil && s.Status == SiteStatusApproved
}

// EmbeddingText is the text indexed for semantic search.
func (s *Site) EmbeddingText() string {
	return fmt.Sprintf("%s. %s. %s. Category: %s. Tags: %s",
		s.Name,
		s.ShortDescription,
		s.Description,
		s.Category,
		strings.Join(s.Tags, ", "),
	)
}

// SimilarityText is the shorter text used to look up neighbours of a site.
func (s *Site) SimilarityText() string {
	return strings.Join([]string{s.Name, s.ShortDescription, s.Category}, " ")
}

// NormalizeTags trims tags and drops empty ones, keeping order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SiteSort selects the ordering for catalog listings
type SiteSort string

const (
	SiteSortNewest  SiteSort = "newest"
	SiteSortPopular SiteSort = "popular"
	SiteSortLikes   SiteSort = "likes"
	SiteSortViews   SiteSort = "views"
)

// SiteFilter narrows a catalog listing of approved sites.
type SiteFilter struct {
	Category     string
	FeaturedOnly bool
	Sort         SiteSort
	Limit        int
	Offset       int
}

// ParseSiteSort maps a query value to a SiteSort, defaulting to newest.
func ParseSiteSort(v string) SiteSort {
	switch SiteSort(v) {
	case SiteSortPopular, SiteSortLikes, SiteSortViews:
		return SiteSort(v)
	}
	return SiteSortNewest
}
