package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mkrupp/newsletterhub/internal/infra/config"
	"github.com/mkrupp/newsletterhub/internal/infra/logging"
	http_ "github.com/mkrupp/newsletterhub/internal/infra/transport/http"
	"github.com/mkrupp/newsletterhub/internal/repo/document"
	"github.com/mkrupp/newsletterhub/internal/svc/authsvc"
	"github.com/mkrupp/newsletterhub/internal/svc/avatarsvc"
	"github.com/mkrupp/newsletterhub/internal/svc/entitysvc"
	"github.com/mkrupp/newsletterhub/internal/svc/feedsvc"
)

const (
	appName = "newsletterhub"
	svcName = "hubsvc"
)

type Config struct {
	config.EnvConfig

	Log    logging.LoggerConfig      `envPrefix:"LOG_"`
	Store  document.RepositoryConfig `envPrefix:"STORE_"`
	Auth   authsvc.AuthConfig        `envPrefix:"AUTH_"`
	Feed   feedsvc.FeedConfig        `envPrefix:"FEED_"`
	Avatar avatarsvc.AvatarConfig    `envPrefix:"AVATAR_"`
	HTTP   http_.HTTPTransportConfig `envPrefix:"HTTP_"`
}

func main() {
	var (
		cfg Config

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		fmt.Fprintln(os.Stderr, "parse config:", err)
		os.Exit(1)
	}

	if err := logging.Configure(ctx, cfg.Log, loggerName); err != nil {
		fmt.Fprintln(os.Stderr, "configure logging:", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg); err != nil {
		stop()
		os.Exit(1) //nolint:gocritic
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	log := logging.GetLogger("cmd.hubsvc")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)
		} else {
			log.InfoContext(ctx, "shutdown")
		}
	}()

	repoFactory, err := document.NewRepositoryFactory(cfg.Store)
	if err != nil {
		return fmt.Errorf("new repository factory: %w", err)
	}

	entities, err := entitysvc.NewEntityService(ctx, repoFactory)
	if err != nil {
		return fmt.Errorf("new entity service: %w", err)
	}
	defer func() {
		if closeErr := entities.Close(); closeErr != nil {
			log.WarnContext(ctx, "close entity store", "err", closeErr)
		}
	}()

	authSvc := authsvc.NewAuthService(entities, cfg.Auth)
	feedSvc, err := feedsvc.NewFeedService(entities, cfg.Feed)
	if err != nil {
		return fmt.Errorf("new feed service: %w", err)
	}

	avatarSvc, err := avatarsvc.NewAvatarService(cfg.Avatar)
	if err != nil {
		return fmt.Errorf("new avatar service: %w", err)
	}

	mux := http_.NewServeMux(cfg.HTTP,
		authsvc.NewHTTPTransport(authSvc),
		feedsvc.NewHTTPTransport(feedSvc, authSvc),
		avatarsvc.NewHTTPTransport(avatarSvc),
	)

	log.InfoContext(ctx, "starting",
		"addr", cfg.HTTP.ServerAddr,
		"store.driver", cfg.Store.Driver,
		"store.path", cfg.Store.Path,
	)

	if err := http_.ListenAndServe(ctx, mux, cfg.HTTP); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
