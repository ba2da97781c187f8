package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fiberpulse/fiberpulse/internal/model"
)

// PageRepository resolves content page titles and URLs for the
// leaderboard. It satisfies the aggregator's PageResolver interface.
type PageRepository struct {
	repo   *Repository
	logger *slog.Logger
}

// NewPageRepository creates a new PageRepository.
func NewPageRepository(repo *Repository, logger *slog.Logger) *PageRepository {
	return &PageRepository{
		repo:   repo,
		logger: logger.With("component", "repository.pages"),
	}
}

// EnsureSchema creates the pages table if it does not exist.
func (r *PageRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.repo.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS pages (
			id    bigint PRIMARY KEY,
			title text NOT NULL DEFAULT '',
			url   text NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return fmt.Errorf("create pages: %w", err)
	}
	return nil
}

// ResolvePage looks up a page by id. A lookup failure degrades to "not
// found" so a database hiccup cannot break summary rendering.
func (r *PageRepository) ResolvePage(ctx context.Context, id int64) (model.Page, bool) {
	var p model.Page
	err := r.repo.pool.QueryRow(ctx,
		`SELECT id, title, url FROM pages WHERE id = $1`, id,
	).Scan(&p.ID, &p.Title, &p.URL)
	if err != nil {
		return model.Page{}, false
	}
	return p, true
}

// UpsertPage inserts or updates a page row.
func (r *PageRepository) UpsertPage(ctx context.Context, p model.Page) error {
	_, err := r.repo.pool.Exec(ctx, `
		INSERT INTO pages (id, title, url)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET title = $2, url = $3
	`, p.ID, p.Title, p.URL)
	if err != nil {
		return fmt.Errorf("upsert page %d: %w", p.ID, err)
	}
	return nil
}
