package feedsvc

import (
	"errors"
	"fmt"
)

// ErrInvalidArticleCount is returned when the configured article count is not positive.
var ErrInvalidArticleCount = errors.New("article count must be at least 1")

// FeedConfig contains configuration parameters for the feed service.
type FeedConfig struct {
	// ArticleLinkBase prefixes the links of generated articles
	ArticleLinkBase string `env:"ARTICLE_LINK_BASE" default:"https://example.com"`
	// ArticleCount is the number of articles generated per feed
	ArticleCount int `env:"ARTICLE_COUNT" default:"5"`
}

// Validate checks the configuration for values the service cannot run with.
func (cfg FeedConfig) Validate() error {
	if cfg.ArticleCount < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidArticleCount, cfg.ArticleCount)
	}

	return nil
}
