package domain

import "strings"

var (
	// ErrFeedFieldsMissing is returned when a feed is created without name, keywords or sources.
	ErrFeedFieldsMissing = NewError(ErrInvalidInput, "Name, keywords, and at least one source are required.")
	// ErrFeedSourcesInvalid is returned when a feed references sources the caller does not own.
	ErrFeedSourcesInvalid = NewError(ErrForbidden, "One or more sources are invalid.")
	// ErrFeedNotFound is returned when a feed does not exist or belongs to someone else.
	ErrFeedNotFound = NewError(ErrNotFound, "Feed not found.")
)

// Feed groups a user's sources under a keyword filter.
type Feed struct {
	ID        string   `json:"id"`
	UserID    string   `json:"userId"`
	Name      string   `json:"name"`
	Keywords  string   `json:"keywords"` // free text, comma separated
	SourceIDs []string `json:"sourceIds"`
}

// Topics returns the non-empty, trimmed comma separated keywords of the feed.
func (f Feed) Topics() []string {
	var topics []string

	for _, keyword := range strings.Split(f.Keywords, ",") {
		if keyword = strings.TrimSpace(keyword); keyword != "" {
			topics = append(topics, keyword)
		}
	}

	return topics
}

// FeedPatch is a partial update of a Feed. Empty fields are left unchanged.
type FeedPatch struct {
	Name      string
	Keywords  string
	SourceIDs []string
}

// Apply writes the non-empty fields of the patch to feed.
func (p FeedPatch) Apply(feed *Feed) {
	if p.Name != "" {
		feed.Name = p.Name
	}

	if p.Keywords != "" {
		feed.Keywords = p.Keywords
	}

	if len(p.SourceIDs) > 0 {
		feed.SourceIDs = append([]string(nil), p.SourceIDs...)
	}
}

// Article is a generated summary shown for a feed.
type Article struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Link    string `json:"link"`
	Source  string `json:"source"`
}
