package feedsvc

import (
	"context"
	"slices"

	"github.com/mkrupp/newsletterhub/internal/domain"
)

// SuggestionSource proposes newsletter senders to register as sources.
type SuggestionSource interface {
	Suggestions(ctx context.Context, userID string) ([]domain.Suggestion, error)
}

// StaticSuggestionSource always proposes the same senders.
type StaticSuggestionSource []domain.Suggestion

var _ SuggestionSource = StaticSuggestionSource(nil)

// DefaultSuggestions is the list offered when scanning an inbox.
//
//nolint:gochecknoglobals
var DefaultSuggestions = StaticSuggestionSource{
	{Name: "AI Weekly", EmailAddress: "updates@aiweekly.co"},
	{Name: "Startup Digest", EmailAddress: "digest@startup.com"},
	{Name: "Morning Finance", EmailAddress: "newsletter@finance.io"},
}

// Suggestions implements SuggestionSource.
func (s StaticSuggestionSource) Suggestions(context.Context, string) ([]domain.Suggestion, error) {
	return slices.Clone([]domain.Suggestion(s)), nil
}
