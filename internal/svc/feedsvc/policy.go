package feedsvc

import (
	"github.com/mkrupp/newsletterhub/internal/domain"
)

// Resource names an owned entity type checked by Authorize.
type Resource int

const (
	ResourceSource Resource = iota
	ResourceFeed
)

// Authorize checks that userID owns the entity of the given kind and id.
// Feeds that are absent or owned by someone else are reported as not found,
// so their existence is not disclosed. Foreign or unknown sources are
// forbidden.
func Authorize(doc *domain.Document, userID string, kind Resource, id string) error {
	switch kind {
	case ResourceFeed:
		i := doc.FeedIndex(id)
		if i < 0 || doc.Feeds[i].UserID != userID {
			return domain.ErrFeedNotFound
		}
	case ResourceSource:
		source, ok := doc.SourceByID(id)
		if !ok || source.UserID != userID {
			return domain.ErrFeedSourcesInvalid
		}
	}

	return nil
}

// AuthorizeSources checks every id with Authorize.
func AuthorizeSources(doc *domain.Document, userID string, ids []string) error {
	for _, id := range ids {
		if err := Authorize(doc, userID, ResourceSource, id); err != nil {
			return err
		}
	}

	return nil
}
