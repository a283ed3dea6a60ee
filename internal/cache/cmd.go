package cache

import (
	"fmt"
	"log/slog"

	"github.com/lepinkainen/kindlecovers/internal/config"
)

// Cmd groups the cache maintenance subcommands.
type Cmd struct {
	Clear ClearCmd `cmd:"" help:"Remove every cached page"`
	Prune PruneCmd `cmd:"" help:"Remove cached pages older than the cache TTL"`
}

// ClearCmd empties the page cache.
type ClearCmd struct{}

func (c *ClearCmd) Run(cfg *config.Config) error {
	db, err := Open(cfg.CacheDBFile)
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.ClearAll(PageTable)
	if err != nil {
		return err
	}

	slog.Info("Cache cleared", "database", cfg.CacheDBFile, "rows_deleted", rows)
	return nil
}

// PruneCmd deletes expired page cache entries.
type PruneCmd struct{}

func (p *PruneCmd) Run(cfg *config.Config) error {
	db, err := Open(cfg.CacheDBFile)
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.ClearExpired(PageTable, cfg.CacheTTL)
	if err != nil {
		return err
	}

	slog.Info("Cache pruned", "database", cfg.CacheDBFile, "rows_deleted", rows, "ttl", cfg.CacheTTL)
	return nil
}
