package news

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/pcarrot/internal/cache"
	"github.com/mcoot/pcarrot/internal/dependencies/clock"
	"github.com/mcoot/pcarrot/internal/markup"
	"github.com/mcoot/pcarrot/internal/model"
	"github.com/mcoot/pcarrot/internal/storage"
)

// Service serves the latest news with Markdown bodies rendered to HTML.
// Results are memoized; new posts show up once the cached entry expires.
type Service struct {
	store    storage.NewsStore
	renderer *markup.Renderer
	memo     *cache.Memoizer
	clock    clock.Clock
	logger   *slog.Logger
}

// New creates a news Service
func New(store storage.NewsStore, renderer *markup.Renderer, memo *cache.Memoizer, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		renderer: renderer,
		memo:     memo,
		clock:    clock,
		logger:   logger,
	}
}

func latestKey(n int) string {
	return fmt.Sprintf("news:latest:%d", n)
}

// Latest returns at most n items, most recent first
func (s *Service) Latest(ctx context.Context, n int) ([]model.NewsItem, error) {
	if n <= 0 {
		return []model.NewsItem{}, nil
	}
	return cache.Memoize(ctx, s.memo, latestKey(n), func(ctx context.Context) ([]model.NewsItem, error) {
		return s.load(ctx, n)
	})
}

func (s *Service) load(ctx context.Context, n int) ([]model.NewsItem, error) {
	items, err := s.store.LatestNews(ctx, n)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load news", slog.String("error", err.Error()))
		return nil, err
	}

	for i := range items {
		html, err := s.renderer.Render(items[i].Body)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to render news body",
				slog.Int64("news_id", items[i].ID),
				slog.String("error", err.Error()),
			)
			return nil, err
		}
		items[i].BodyHTML = html
	}

	s.logger.DebugContext(ctx, "news loaded", slog.Int("count", len(items)))
	return items, nil
}

// Post stores a news item dated now and returns its id.
// Cached listings are not invalidated.
func (s *Service) Post(ctx context.Context, title, author, body string) (int64, error) {
	id, err := s.store.InsertNews(ctx, model.NewsItem{
		Date:   clock.Unix(s.clock),
		Title:  title,
		Author: author,
		Body:   body,
	})
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "news posted", slog.Int64("news_id", id), slog.String("title", title))
	return id, nil
}
