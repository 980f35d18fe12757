package admin

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/config"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/database"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/domain"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/repository"
	"github.com/spf13/cobra"
)

// EnqueueCmd returns the enqueue command for queueing background ingestions.
func EnqueueCmd() *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "enqueue <ticker> [ticker...]",
		Short: "Queue tickers for background ingestion",
		Long: `Creates ingest jobs for the given tickers. The background worker in the
running server picks them up, so this is useful for bulk backfills where
the streaming endpoint would be awkward.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnqueue(args, depth)
		},
	}

	cmd.Flags().IntVar(&depth, "depth", 1, "How many years of filings to index per ticker")

	return cmd
}

func runEnqueue(tickers []string, depth int) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPool(ctx, database.Config{DSN: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	repo := repository.NewIngestJobRepository(pool)

	for _, raw := range tickers {
		job := &domain.IngestJob{
			ID:        uuid.NewString(),
			Ticker:    strings.ToUpper(strings.TrimSpace(raw)),
			Depth:     depth,
			Status:    domain.IngestJobStatusPending,
			CreatedAt: time.Now().UTC(),
		}
		if err := domain.ValidateIngestJob(job); err != nil {
			return fmt.Errorf("invalid job for %q: %w", raw, err)
		}
		if err := repo.Create(ctx, job); err != nil {
			return fmt.Errorf("failed to enqueue %s: %w", job.Ticker, err)
		}
		log.Printf("enqueued %s (depth %d) as job %s", job.Ticker, depth, job.ID)
	}

	return nil
}
