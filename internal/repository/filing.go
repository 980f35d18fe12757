package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sanikajhanwar/rag-based-financial-agent/internal/domain"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/pagination"
)

// FilingPageResult is one page of indexed filings.
type FilingPageResult struct {
	Items      []*domain.Filing
	NextCursor string
	HasMore    bool
}

// FilingRepository tracks which (ticker, year) filings have been indexed so
// re-running an ingest does not duplicate chunks.
type FilingRepository struct {
	db dbtx
}

func NewFilingRepository(pool *pgxpool.Pool) *FilingRepository {
	return &FilingRepository{db: pool}
}

func NewFilingRepositoryWithTx(tx pgx.Tx) *FilingRepository {
	return &FilingRepository{db: tx}
}

func (r *FilingRepository) Create(ctx context.Context, f *domain.Filing) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO filings (id, ticker, cik, company_name, year, accession, primary_doc, chunk_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		f.ID, f.Ticker, f.CIK, f.CompanyName, f.Year, f.Accession, f.PrimaryDoc, f.ChunkCount, f.CreatedAt,
	)
	return err
}

func (r *FilingRepository) GetByTickerYear(ctx context.Context, ticker string, year int) (*domain.Filing, error) {
	var f domain.Filing
	err := r.db.QueryRow(ctx,
		`SELECT id, ticker, cik, company_name, year, accession, primary_doc, chunk_count, created_at
		 FROM filings WHERE ticker = $1 AND year = $2`,
		ticker, year,
	).Scan(&f.ID, &f.Ticker, &f.CIK, &f.CompanyName, &f.Year, &f.Accession, &f.PrimaryDoc, &f.ChunkCount, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFilingNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *FilingRepository) ListByTicker(ctx context.Context, ticker string) ([]*domain.Filing, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, ticker, cik, company_name, year, accession, primary_doc, chunk_count, created_at
		 FROM filings WHERE ticker = $1 ORDER BY year DESC`,
		ticker,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.Filing
	for rows.Next() {
		var f domain.Filing
		if err := rows.Scan(&f.ID, &f.Ticker, &f.CIK, &f.CompanyName, &f.Year, &f.Accession, &f.PrimaryDoc, &f.ChunkCount, &f.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, &f)
	}
	return results, rows.Err()
}

func (r *FilingRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*FilingPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, ticker, cik, company_name, year, accession, primary_doc, chunk_count, created_at
			 FROM filings
			 WHERE (created_at, id) < ($1, $2)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, ticker, cik, company_name, year, accession, primary_doc, chunk_count, created_at
			 FROM filings
			 ORDER BY created_at DESC, id DESC
			 LIMIT $1`,
			limit+1,
		)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.Filing
	for rows.Next() {
		var f domain.Filing
		if err := rows.Scan(&f.ID, &f.Ticker, &f.CIK, &f.CompanyName, &f.Year, &f.Accession, &f.PrimaryDoc, &f.ChunkCount, &f.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		lastItem := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(lastItem.ID, lastItem.CreatedAt)
	}

	return &FilingPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func (r *FilingRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM filings WHERE id = $1`, id)
	return err
}
