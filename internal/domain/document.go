package domain

import "slices"

// Document is the single consolidated state persisted by the entity store.
type Document struct {
	Users    []User             `json:"users"`
	Sources  []Source           `json:"sources"`
	Feeds    []Feed             `json:"feeds"`
	Sessions map[string]Session `json:"sessions"`
}

// NewDocument returns a document with empty collections.
func NewDocument() *Document {
	return &Document{
		Users:    []User{},
		Sources:  []Source{},
		Feeds:    []Feed{},
		Sessions: map[string]Session{},
	}
}

// Normalize replaces nil collections with empty ones, so that a decoded
// document always serializes with all four top-level keys.
func (d *Document) Normalize() {
	if d.Users == nil {
		d.Users = []User{}
	}

	if d.Sources == nil {
		d.Sources = []Source{}
	}

	if d.Feeds == nil {
		d.Feeds = []Feed{}
	}

	if d.Sessions == nil {
		d.Sessions = map[string]Session{}
	}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	clone := &Document{
		Users:    slices.Clone(d.Users),
		Sources:  slices.Clone(d.Sources),
		Feeds:    make([]Feed, len(d.Feeds)),
		Sessions: make(map[string]Session, len(d.Sessions)),
	}

	for i, feed := range d.Feeds {
		feed.SourceIDs = slices.Clone(feed.SourceIDs)
		clone.Feeds[i] = feed
	}

	for token, session := range d.Sessions {
		clone.Sessions[token] = session
	}

	clone.Normalize()

	return clone
}

// UserByID returns the user with the given id.
func (d *Document) UserByID(id string) (User, bool) {
	i := slices.IndexFunc(d.Users, func(u User) bool { return u.ID == id })
	if i < 0 {
		return User{}, false
	}

	return d.Users[i], true
}

// UserByEmail returns the user registered with the given email.
func (d *Document) UserByEmail(email string) (User, bool) {
	i := slices.IndexFunc(d.Users, func(u User) bool { return u.Email == email })
	if i < 0 {
		return User{}, false
	}

	return d.Users[i], true
}

// SourceByID returns the source with the given id regardless of its owner.
func (d *Document) SourceByID(id string) (Source, bool) {
	i := slices.IndexFunc(d.Sources, func(s Source) bool { return s.ID == id })
	if i < 0 {
		return Source{}, false
	}

	return d.Sources[i], true
}

// SourcesOwnedBy returns the sources of a user in insertion order.
func (d *Document) SourcesOwnedBy(userID string) []Source {
	sources := []Source{}

	for _, source := range d.Sources {
		if source.UserID == userID {
			sources = append(sources, source)
		}
	}

	return sources
}

// FeedIndex returns the position of the feed with the given id, or -1.
func (d *Document) FeedIndex(id string) int {
	return slices.IndexFunc(d.Feeds, func(f Feed) bool { return f.ID == id })
}

// FeedsOwnedBy returns the feeds of a user in insertion order.
func (d *Document) FeedsOwnedBy(userID string) []Feed {
	feeds := []Feed{}

	for _, feed := range d.Feeds {
		if feed.UserID == userID {
			feed.SourceIDs = slices.Clone(feed.SourceIDs)
			feeds = append(feeds, feed)
		}
	}

	return feeds
}
