package domain

// ErrSourceFieldsMissing is returned when a source is created without name or email address.
var ErrSourceFieldsMissing = NewError(ErrInvalidInput, "Name and email address are required.")

// Source is a newsletter sender registered by a user.
type Source struct {
	ID           string `json:"id"`
	UserID       string `json:"userId"`
	Name         string `json:"name"`
	EmailAddress string `json:"emailAddress"`
}

// Suggestion is a newsletter sender proposed to the user for registration as a Source.
type Suggestion struct {
	Name         string `json:"name"`
	EmailAddress string `json:"emailAddress"`
}
