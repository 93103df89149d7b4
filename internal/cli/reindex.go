package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"sharerapy/internal/indexer"
)

var reindexForce bool

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the report vector index",
	Long: `Chunk, embed and upsert every report into Qdrant.

Reports whose content hash is unchanged are skipped unless --force is set,
in which case all indexed data is cleared first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := reindex(cmd.Context(), application.Indexer, reindexForce)
		if err != nil {
			return err
		}
		printIndexStats(cmd.OutOrStdout(), stats)
		if info, err := application.VectorStore.GetCollectionInfo(cmd.Context(), cfg.QdrantCollection); err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Collection %s: %d points, %d dimensions, status %s\n",
				cfg.QdrantCollection, info.PointsCount, info.VectorSize, info.Status)
		}
		if stats.Failed > 0 {
			return fmt.Errorf("%d of %d reports failed to index", stats.Failed, stats.Total)
		}
		return nil
	},
}

func init() {
	reindexCmd.Flags().BoolVarP(&reindexForce, "force", "f", false, "clear the index and re-embed every report")
}

type reindexer interface {
	IndexAll(ctx context.Context, force bool) (*indexer.IndexStats, error)
	ClearAll(ctx context.Context) error
}

func reindex(ctx context.Context, ix reindexer, force bool) (*indexer.IndexStats, error) {
	if force {
		if err := ix.ClearAll(ctx); err != nil {
			return nil, fmt.Errorf("clear index: %w", err)
		}
	}
	stats, err := ix.IndexAll(ctx, force)
	if err != nil {
		return nil, fmt.Errorf("index reports: %w", err)
	}
	return stats, nil
}

func printIndexStats(w io.Writer, s *indexer.IndexStats) {
	fmt.Fprintf(w, "Indexed %d of %d reports (%d skipped, %d failed) in %s\n",
		s.Indexed, s.Total, s.Skipped, s.Failed, s.Duration.Round(time.Millisecond))
	if s.Chunks > 0 {
		fmt.Fprintf(w, "Chunks: %d (tokens min %d, max %d, mean %.1f, p95 %d)\n",
			s.Chunks, s.ChunkTokens.Min, s.ChunkTokens.Max, s.ChunkTokens.Mean, s.ChunkTokens.P95)
	}
	for _, f := range s.Failures {
		fmt.Fprintf(w, "  failed %s: %s\n", f.ReportID, f.Error)
	}
}
