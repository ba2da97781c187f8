package aggregate

import (
	"context"

	"github.com/fiberpulse/fiberpulse/internal/model"
)

// PageResolver maps an internal page id to its title and URL for the
// leaderboard. Implementations must be safe for concurrent use.
type PageResolver interface {
	ResolvePage(ctx context.Context, id int64) (model.Page, bool)
}

// StaticPages is a fixed in-memory PageResolver, used in development
// and tests.
type StaticPages map[int64]model.Page

// ResolvePage looks up a page in the map.
func (s StaticPages) ResolvePage(ctx context.Context, id int64) (model.Page, bool) {
	p, ok := s[id]
	return p, ok
}
