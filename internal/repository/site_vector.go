package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/pxtester/showcase/internal/domain"
)

// SiteVectorRepository is a vector index kept in Postgres with pgvector.
// One row per site; scores are cosine similarity in [-1, 1].
type SiteVectorRepository struct {
	db dbtx
}

func NewSiteVectorRepository(pool *pgxpool.Pool) *SiteVectorRepository {
	return &SiteVectorRepository{db: pool}
}

func (r *SiteVectorRepository) Upsert(ctx context.Context, siteID string, embedding []float32, metadata map[string]string) error {
	meta, err := json.Marshal(metadata)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO site_embeddings (site_id, embedding, metadata, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (site_id) DO UPDATE
		 SET embedding = EXCLUDED.embedding, metadata = EXCLUDED.metadata, updated_at = EXCLUDED.updated_at`,
		siteID, pgvector.NewVector(embedding), meta, time.Now().UTC(),
	)
	return err
}

// Query returns the topK nearest sites to embedding, best first.
func (r *SiteVectorRepository) Query(ctx context.Context, embedding []float32, topK int) ([]domain.VectorMatch, error) {
	if topK <= 0 {
		topK = 20
	}

	rows, err := r.db.Query(ctx,
		`SELECT site_id, 1 - (embedding <=> $1) AS score, metadata
		 FROM site_embeddings
		 ORDER BY embedding <=> $1, site_id
		 LIMIT $2`,
		pgvector.NewVector(embedding), topK,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]domain.VectorMatch, 0, topK)
	for rows.Next() {
		var m domain.VectorMatch
		var score float64
		var meta []byte
		if err := rows.Scan(&m.ID, &score, &meta); err != nil {
			return nil, err
		}
		m.Score = float32(score)
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &m.Metadata); err != nil {
				return nil, err
			}
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// Delete removes the vector for siteID. Deleting a missing vector is not an error.
func (r *SiteVectorRepository) Delete(ctx context.Context, siteID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM site_embeddings WHERE site_id = $1`, siteID)
	return err
}
