package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pxtester/showcase/internal/domain"
)

const siteColumns = `id, name, url, description, short_description, category, tags, thumbnail_url,
	user_id, status, views, likes, is_featured, submitted_at, created_at, updated_at`

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

type SiteRepository struct {
	db dbtx
}

func NewSiteRepository(pool *pgxpool.Pool) *SiteRepository {
	return &SiteRepository{db: pool}
}

func NewSiteRepositoryWithTx(tx pgx.Tx) *SiteRepository {
	return &SiteRepository{db: tx}
}

func (r *SiteRepository) Create(ctx context.Context, s *domain.Site) error {
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO sites (id, name, url, description, short_description, category, tags, thumbnail_url,
		                    user_id, status, views, likes, is_featured, submitted_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		s.ID, s.Name, s.URL, s.Description, s.ShortDescription, s.Category, tags, nullableString(s.ThumbnailURL),
		s.UserID, s.Status, s.Views, s.Likes, s.IsFeatured, s.SubmittedAt, s.CreatedAt, s.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrSiteURLExists
	}
	return err
}

func (r *SiteRepository) GetByID(ctx context.Context, id string) (*domain.Site, error) {
	if !isUUID(id) {
		return nil, domain.ErrSiteNotFound
	}
	s, err := scanSite(r.db.QueryRow(ctx,
		`SELECT `+siteColumns+` FROM sites WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSiteNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *SiteRepository) GetByURL(ctx context.Context, url string) (*domain.Site, error) {
	s, err := scanSite(r.db.QueryRow(ctx,
		`SELECT `+siteColumns+` FROM sites WHERE url = $1`,
		url,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSiteNotFound
		}
		return nil, err
	}
	return s, nil
}

// GetApprovedByIDs returns the approved sites among ids in no particular order.
// Ids that do not resolve are omitted.
func (r *SiteRepository) GetApprovedByIDs(ctx context.Context, ids []string) ([]*domain.Site, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if isUUID(id) {
			valid = append(valid, id)
		}
	}
	ids = valid
	if len(ids) == 0 {
		return []*domain.Site{}, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+siteColumns+` FROM sites WHERE id = ANY($1::uuid[]) AND status = $2`,
		ids, domain.SiteStatusApproved,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSiteRows(rows)
}

// SearchText returns approved sites whose name, descriptions or tags contain
// query as a case-insensitive substring, newest first, at most limit rows.
func (r *SiteRepository) SearchText(ctx context.Context, query string, limit int) ([]*domain.Site, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + escapeLike(query) + "%"

	rows, err := r.db.Query(ctx,
		`SELECT `+siteColumns+`
		 FROM sites
		 WHERE status = $1
		   AND (name ILIKE $2
		        OR description ILIKE $2
		        OR short_description ILIKE $2
		        OR array_to_string(tags, ' ') ILIKE $2)
		 ORDER BY created_at DESC, id
		 LIMIT $3`,
		domain.SiteStatusApproved, pattern, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSiteRows(rows)
}

// ListApproved returns one page of approved sites and the total matching count.
func (r *SiteRepository) ListApproved(ctx context.Context, f domain.SiteFilter) ([]*domain.Site, int64, error) {
	where := []string{"status = $1"}
	args := []any{domain.SiteStatusApproved}

	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.FeaturedOnly {
		where = append(where, "is_featured = TRUE")
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sites WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.Offset)
	rows, err := r.db.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM sites WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
			siteColumns, cond, orderBy(f.Sort), len(args)-1, len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	sites, err := scanSiteRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return sites, total, nil
}

func (r *SiteRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Site, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+siteColumns+` FROM sites WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSiteRows(rows)
}

func (r *SiteRepository) ListByStatus(ctx context.Context, status domain.SiteStatus) ([]*domain.Site, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+siteColumns+` FROM sites WHERE status = $1 ORDER BY submitted_at ASC`,
		status,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSiteRows(rows)
}

// RandomInCategory picks up to limit approved sites in category, excluding excludeID.
func (r *SiteRepository) RandomInCategory(ctx context.Context, category, excludeID string, limit int) ([]*domain.Site, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+siteColumns+`
		 FROM sites
		 WHERE category = $1 AND id <> $2 AND status = $3
		 ORDER BY random()
		 LIMIT $4`,
		category, excludeID, domain.SiteStatusApproved, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSiteRows(rows)
}

func (r *SiteRepository) Update(ctx context.Context, s *domain.Site) error {
	s.UpdatedAt = time.Now().UTC()
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE sites
		 SET name = $1, url = $2, description = $3, short_description = $4, category = $5,
		     tags = $6, thumbnail_url = $7, is_featured = $8, updated_at = $9
		 WHERE id = $10`,
		s.Name, s.URL, s.Description, s.ShortDescription, s.Category,
		tags, nullableString(s.ThumbnailURL), s.IsFeatured, s.UpdatedAt, s.ID,
	)
	if isUniqueViolation(err) {
		return domain.ErrSiteURLExists
	}
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrSiteNotFound
	}
	return nil
}

func (r *SiteRepository) UpdateStatus(ctx context.Context, id string, status domain.SiteStatus) error {
	if !isUUID(id) {
		return domain.ErrSiteNotFound
	}
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE sites SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrSiteNotFound
	}
	return nil
}

func (r *SiteRepository) IncrementViews(ctx context.Context, id string) error {
	if !isUUID(id) {
		return nil
	}
	_, err := r.db.Exec(ctx, `UPDATE sites SET views = views + 1 WHERE id = $1`, id)
	return err
}

// IncrementLikes bumps the like counter and returns the new value.
func (r *SiteRepository) IncrementLikes(ctx context.Context, id string) (int64, error) {
	if !isUUID(id) {
		return 0, domain.ErrSiteNotFound
	}
	var likes int64
	err := r.db.QueryRow(ctx,
		`UPDATE sites SET likes = likes + 1 WHERE id = $1 RETURNING likes`,
		id,
	).Scan(&likes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrSiteNotFound
		}
		return 0, err
	}
	return likes, nil
}

func (r *SiteRepository) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return domain.ErrSiteNotFound
	}
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM sites WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrSiteNotFound
	}
	return nil
}

// ListApprovedIDs returns every approved site id in id order, for reindexing.
func (r *SiteRepository) ListApprovedIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id FROM sites WHERE status = $1 ORDER BY id`,
		domain.SiteStatusApproved,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func orderBy(sort domain.SiteSort) string {
	switch sort {
	case domain.SiteSortPopular:
		return "(views * 0.3 + likes * 0.7) DESC, created_at DESC"
	case domain.SiteSortLikes:
		return "likes DESC, created_at DESC"
	case domain.SiteSortViews:
		return "views DESC, created_at DESC"
	default:
		return "created_at DESC, id"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes query match literally inside an ILIKE pattern.
func escapeLike(query string) string {
	return likeEscaper.Replace(query)
}

// isUUID guards id columns; a malformed id can only ever be "not found".
func isUUID(id string) bool {
	return uuid.Validate(id) == nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func scanSite(row pgx.Row) (*domain.Site, error) {
	var s domain.Site
	var thumbnail *string
	if err := row.Scan(&s.ID, &s.Name, &s.URL, &s.Description, &s.ShortDescription, &s.Category, &s.Tags, &thumbnail,
		&s.UserID, &s.Status, &s.Views, &s.Likes, &s.IsFeatured, &s.SubmittedAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.ThumbnailURL = derefString(thumbnail)
	return &s, nil
}

func scanSiteRows(rows pgx.Rows) ([]*domain.Site, error) {
	results := make([]*domain.Site, 0)
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, s)
	}
	return results, rows.Err()
}
