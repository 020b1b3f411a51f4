package feedsvc

import (
	"fmt"
	"strings"

	"github.com/mkrupp/newsletterhub/internal/domain"
)

const (
	fallbackTopic  = "innovation"
	fallbackSource = "Independent Research"
)

// ArticleGenerator produces placeholder articles from a feed's keywords and
// the names of its sources.
type ArticleGenerator struct {
	LinkBase string
	Count    int
}

// Generate returns Count articles, none when Count is not positive. Topics and source names are used round
// robin, falling back to a single default when the feed has none.
func (g ArticleGenerator) Generate(feed domain.Feed, sourceNames []string) []domain.Article {
	topics := feed.Topics()
	if len(topics) == 0 {
		topics = []string{fallbackTopic}
	}

	if len(sourceNames) == 0 {
		sourceNames = []string{fallbackSource}
	}

	count := max(g.Count, 0)
	linkBase := strings.TrimSuffix(g.LinkBase, "/")
	articles := make([]domain.Article, 0, count)

	for i := range count {
		topic := topics[i%len(topics)]
		source := sourceNames[i%len(sourceNames)]

		articles = append(articles, domain.Article{
			Title: fmt.Sprintf("%s: %s insight #%d", feed.Name, topic, i+1),
			Summary: fmt.Sprintf(
				"A concise overview of how %s is shaping the %s landscape with key takeaways sourced from %s.",
				topic, feed.Name, source,
			),
			Link:   fmt.Sprintf("%s/%s/%d", linkBase, feed.ID, i+1),
			Source: source,
		})
	}

	return articles
}
