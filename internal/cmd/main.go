package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/weekdump/weekdump/internal/game"
	"github.com/weekdump/weekdump/internal/game/reconciler"
	"github.com/weekdump/weekdump/internal/groups"
	"github.com/weekdump/weekdump/internal/models"
	"github.com/weekdump/weekdump/internal/notify"
	"github.com/weekdump/weekdump/internal/photos"
	"github.com/weekdump/weekdump/internal/store"
	"github.com/weekdump/weekdump/internal/store/appwrite"
	"github.com/weekdump/weekdump/internal/store/postgres"
	"github.com/weekdump/weekdump/internal/users"
)

// The process is the host shell for one reconciliation session: it owns the
// poller for one group/user pair, logs phase transitions, and prints results
// once they are visible. Screen rendering belongs to the mobile app; this
// binary covers headless and development use.
func main() {
	configPath := flag.String("config", "", "path to yaml config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	config, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if config.Session.GroupID == "" || config.Session.UserID == "" {
		log.Fatal().Msg("group id and user id are required (WEEKDUMP_GROUP_ID, WEEKDUMP_USER_ID)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("session failed")
	}
}

func run(ctx context.Context, config *Config) error {
	docs, files, realtime, cleanup, err := buildStores(ctx, config)
	if err != nil {
		return err
	}
	defer cleanup()

	usersApp := users.NewApp(users.NewRepository(docs))
	groupsApp := groups.NewApp(groups.NewRepository(docs), usersApp)
	photosApp := photos.NewApp(photos.NewRepository(docs), groupsApp, files)
	assigner := game.NewAssigner(groupsApp)

	var publisher reconciler.Publisher = notify.NoopPublisher{}
	if config.NATS.URL != "" {
		natsPublisher, err := notify.NewNATSPublisher(config.NATS.URL)
		if err != nil {
			log.Warn().Err(err).Msg("running without phase events")
		} else {
			defer natsPublisher.Close()
			publisher = natsPublisher
		}
	}

	opts := []reconciler.Option{}
	if config.PollInterval() > 0 {
		opts = append(opts, reconciler.WithInterval(config.PollInterval()))
	}
	rec := reconciler.New(groupsApp, assigner, publisher, opts...)

	// A realtime document-change subscription turns store writes from other
	// clients into immediate passes instead of waiting out the poll tick.
	if realtime != nil {
		channel := realtime.DocumentChannel(store.CollectionGroupData, config.Session.GroupID)
		events, err := realtime.Subscribe(ctx, channel)
		if err != nil {
			log.Warn().Err(err).Msg("realtime unavailable, relying on polling")
		} else {
			go func() {
				for range events {
					rec.Nudge()
				}
			}()
		}
	}

	gameType := models.GameType(config.Session.GameType)
	return rec.Run(ctx, config.Session.GroupID, config.Session.UserID, gameType, func(u reconciler.Update) {
		if u.Phase != models.PhaseResultsVisible {
			return
		}
		todayPhotos := photosApp.TodayPhotos(u.Group)
		switch gameType {
		case models.GameTypeVoting:
			for i, tally := range game.VoteResults(u.Group, todayPhotos) {
				log.Info().
					Int("rank", i+1).
					Str("photo_id", tally.Photo.ID).
					Str("author", tally.Photo.UserID).
					Int("votes", tally.Votes).
					Msg("vote result")
			}
		case models.GameTypeCaption:
			for _, reveal := range game.CaptionResults(u.Group, todayPhotos) {
				log.Info().
					Str("photo_id", reveal.Photo.ID).
					Str("author", reveal.Photo.UserID).
					Str("captioner", reveal.CaptionerID).
					Str("caption", reveal.Caption).
					Msg("caption result")
			}
		}
	})
}

func buildStores(ctx context.Context, config *Config) (store.DocumentStore, store.FileStore, *appwrite.Realtime, func(), error) {
	switch config.Store.Backend {
	case "appwrite":
		client := appwrite.NewClient(config.Store.Appwrite)
		return appwrite.NewDatabases(client), appwrite.NewStorage(client), appwrite.NewRealtime(client), func() {}, nil
	case "postgres":
		pg, err := postgres.New(ctx, config.Store.Postgres.URL)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		// Self-hosted deployments still serve photo blobs from the hosted
		// bucket; only documents move to Postgres.
		client := appwrite.NewClient(config.Store.Appwrite)
		return pg, appwrite.NewStorage(client), nil, pg.Close, nil
	}
	log.Fatal().Str("backend", config.Store.Backend).Msg("unknown store backend")
	return nil, nil, nil, nil, nil
}
