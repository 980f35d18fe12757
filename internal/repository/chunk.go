package repository

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/sanikajhanwar/rag-based-financial-agent/internal/domain"
)

// ChunkRepository handles persistence and similarity search of filing chunks.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx pgx.Tx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// InsertChunks stores a batch of embedded filing chunks.
func (r *ChunkRepository) InsertChunks(ctx context.Context, chunks []domain.FilingChunk) error {
	for _, c := range chunks {
		_, err := r.db.Exec(ctx,
			`INSERT INTO filing_chunks (id, company, year, source, content, excerpt, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			c.ID, c.Company, c.Year, c.Source, c.Content, nullableString(c.Excerpt), pgvector.NewVector(c.Embedding),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// DeleteByCompanyYear removes all chunks for one filing, used before re-indexing.
func (r *ChunkRepository) DeleteByCompanyYear(ctx context.Context, company string, year int) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM filing_chunks WHERE company = $1 AND year = $2`,
		company, year,
	)
	return err
}

// SearchSimilar returns the chunks most similar to the query embedding, best
// match first. An empty companyFilter matches all companies; otherwise only
// chunks whose company equals the filter are returned. The score is derived
// from the cosine distance and lands in (0, 1].
func (r *ChunkRepository) SearchSimilar(ctx context.Context, embedding []float32, limit int, companyFilter string) ([]domain.Chunk, error) {
	if limit <= 0 {
		limit = 3
	}

	vec := pgvector.NewVector(embedding)

	query := `
		SELECT content, company, year, source, excerpt,
		       1.0 / (1.0 + (embedding <=> $1)) AS score
		FROM filing_chunks`
	args := []interface{}{vec}

	if companyFilter != "" {
		query += " WHERE company = $2"
		args = append(args, companyFilter)
	}

	query += " ORDER BY embedding <=> $1 LIMIT $" + strconv.Itoa(len(args)+1)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chunks := make([]domain.Chunk, 0, limit)
	for rows.Next() {
		var c domain.Chunk
		var year int
		var excerpt *string
		if err := rows.Scan(&c.Text, &c.Company, &year, &c.Source, &excerpt, &c.Score); err != nil {
			return nil, err
		}
		c.Year = strconv.Itoa(year)
		if excerpt != nil {
			c.Excerpt = *excerpt
		}
		chunks = append(chunks, c)
	}

	return chunks, rows.Err()
}

// CountByCompanyYear returns the number of stored chunks for one filing.
func (r *ChunkRepository) CountByCompanyYear(ctx context.Context, company string, year int) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM filing_chunks WHERE company = $1 AND year = $2`,
		company, year,
	).Scan(&count)
	return count, err
}
