package feedsvc

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/mkrupp/newsletterhub/internal/domain"
	"github.com/mkrupp/newsletterhub/internal/infra/logging"
	"github.com/mkrupp/newsletterhub/internal/svc/entitysvc"
)

// FeedService provides the owner-scoped operations on sources and feeds.
// Every method acts on behalf of userID and never exposes another user's data.
type FeedService struct {
	Entities    *entitysvc.EntityService
	Articles    ArticleGenerator
	Suggestions SuggestionSource
	Log         logging.Logger
}

// NewFeedService creates a new FeedService with the given entity service and configuration.
// Returns ErrInvalidArticleCount if cfg asks for fewer than one article.
func NewFeedService(entities *entitysvc.EntityService, cfg FeedConfig) (*FeedService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate feed config: %w", err)
	}

	return &FeedService{
		Entities:    entities,
		Articles:    ArticleGenerator{LinkBase: cfg.ArticleLinkBase, Count: cfg.ArticleCount},
		Suggestions: DefaultSuggestions,
		Log:         logging.GetLogger("svc.feedsvc.feed_service"),
	}, nil
}

// ListSources returns the caller's sources in creation order.
func (s *FeedService) ListSources(ctx context.Context, userID string) (sources []domain.Source, err error) {
	err = s.Entities.View(ctx, func(doc *domain.Document) error {
		sources = doc.SourcesOwnedBy(userID)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	return sources, nil
}

// CreateSource registers a newsletter sender for the caller.
func (s *FeedService) CreateSource(ctx context.Context, userID, name, emailAddress string) (source domain.Source, err error) {
	defer func() {
		if err != nil {
			s.Log.ErrorContext(ctx, "create source failed", "error", err)
		} else {
			s.Log.DebugContext(ctx, "source created", logging.Group("source", "id", source.ID))
		}
	}()

	if name == "" || emailAddress == "" {
		return domain.Source{}, domain.ErrSourceFieldsMissing
	}

	source = domain.Source{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         name,
		EmailAddress: emailAddress,
	}

	if err := s.Entities.Update(ctx, func(doc *domain.Document) error {
		doc.Sources = append(doc.Sources, source)

		return nil
	}); err != nil {
		return domain.Source{}, fmt.Errorf("create source: %w", err)
	}

	return source, nil
}

// ListFeeds returns the caller's feeds in creation order.
func (s *FeedService) ListFeeds(ctx context.Context, userID string) (feeds []domain.Feed, err error) {
	err = s.Entities.View(ctx, func(doc *domain.Document) error {
		feeds = doc.FeedsOwnedBy(userID)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}

	return feeds, nil
}

// CreateFeed groups sources owned by the caller under a keyword filter.
// Returns ErrFeedSourcesInvalid if any source is unknown or foreign.
func (s *FeedService) CreateFeed(
	ctx context.Context,
	userID, name, keywords string,
	sourceIDs []string,
) (feed domain.Feed, err error) {
	defer func() {
		if err != nil {
			s.Log.ErrorContext(ctx, "create feed failed", "error", err)
		} else {
			s.Log.DebugContext(ctx, "feed created", logging.Group("feed", "id", feed.ID))
		}
	}()

	if name == "" || keywords == "" || len(sourceIDs) == 0 {
		return domain.Feed{}, domain.ErrFeedFieldsMissing
	}

	feed = domain.Feed{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Keywords:  keywords,
		SourceIDs: uniqueIDs(sourceIDs),
	}

	if err := s.Entities.Update(ctx, func(doc *domain.Document) error {
		if err := AuthorizeSources(doc, userID, feed.SourceIDs); err != nil {
			return err
		}

		doc.Feeds = append(doc.Feeds, feed)

		return nil
	}); err != nil {
		return domain.Feed{}, fmt.Errorf("create feed: %w", err)
	}

	return feed, nil
}

// UpdateFeed applies patch to a feed of the caller. Empty patch fields keep
// their current value.
func (s *FeedService) UpdateFeed(
	ctx context.Context,
	userID, feedID string,
	patch domain.FeedPatch,
) (feed domain.Feed, err error) {
	log := s.Log.With(logging.Group("feed", "id", feedID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "update feed failed", "error", err)
		} else {
			log.DebugContext(ctx, "feed updated")
		}
	}()

	patch.SourceIDs = uniqueIDs(patch.SourceIDs)

	if err := s.Entities.Update(ctx, func(doc *domain.Document) error {
		if err := Authorize(doc, userID, ResourceFeed, feedID); err != nil {
			return err
		}

		if err := AuthorizeSources(doc, userID, patch.SourceIDs); err != nil {
			return err
		}

		i := doc.FeedIndex(feedID)
		patch.Apply(&doc.Feeds[i])
		feed = doc.Feeds[i]
		feed.SourceIDs = slices.Clone(feed.SourceIDs)

		return nil
	}); err != nil {
		return domain.Feed{}, fmt.Errorf("update feed: %w", err)
	}

	return feed, nil
}

// DeleteFeed removes a feed of the caller. Its sources are kept.
func (s *FeedService) DeleteFeed(ctx context.Context, userID, feedID string) (err error) {
	log := s.Log.With(logging.Group("feed", "id", feedID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "delete feed failed", "error", err)
		} else {
			log.DebugContext(ctx, "feed deleted")
		}
	}()

	if err := s.Entities.Update(ctx, func(doc *domain.Document) error {
		if err := Authorize(doc, userID, ResourceFeed, feedID); err != nil {
			return err
		}

		doc.Feeds = slices.Delete(doc.Feeds, doc.FeedIndex(feedID), doc.FeedIndex(feedID)+1)

		return nil
	}); err != nil {
		return fmt.Errorf("delete feed: %w", err)
	}

	return nil
}

// FeedArticles generates the placeholder articles of a feed of the caller.
// Source names follow the order the sources were created in.
func (s *FeedService) FeedArticles(ctx context.Context, userID, feedID string) (articles []domain.Article, err error) {
	err = s.Entities.View(ctx, func(doc *domain.Document) error {
		if err := Authorize(doc, userID, ResourceFeed, feedID); err != nil {
			return err
		}

		feed := doc.Feeds[doc.FeedIndex(feedID)]

		var names []string

		for _, source := range doc.Sources {
			if slices.Contains(feed.SourceIDs, source.ID) {
				names = append(names, source.Name)
			}
		}

		articles = s.Articles.Generate(feed, names)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("feed articles: %w", err)
	}

	return articles, nil
}

// ScanSuggestions returns senders the caller may want to register.
func (s *FeedService) ScanSuggestions(ctx context.Context, userID string) ([]domain.Suggestion, error) {
	suggestions, err := s.Suggestions.Suggestions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("suggestions: %w", err)
	}

	return suggestions, nil
}

// uniqueIDs drops repeated ids, keeping the first occurrence.
func uniqueIDs(ids []string) []string {
	if ids == nil {
		return nil
	}

	unique := make([]string, 0, len(ids))

	for _, id := range ids {
		if !slices.Contains(unique, id) {
			unique = append(unique, id)
		}
	}

	return unique
}
