// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/obrien-tchaleu/ludo-universe/internal/client/announce"
	"github.com/obrien-tchaleu/ludo-universe/internal/config"
	"github.com/obrien-tchaleu/ludo-universe/internal/server/api"
	"github.com/obrien-tchaleu/ludo-universe/internal/server/room"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/logging"
	"github.com/obrien-tchaleu/ludo-universe/pkg/database"
)

func main() {
	configPath := flag.String("config", "configs/server.yaml", "path to the YAML configuration")
	flag.Parse()

	// Charger la configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Pretty)

	gameCfg, err := cfg.GameConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid game defaults")
	}

	announcer, err := announce.New(cfg.Game.Language)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load translations")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Base de statistiques optionnelle
	var (
		store room.StatsStore
		stats api.StatsReader
	)
	if cfg.Database.Driver != "" {
		db, err := database.Open(cfg.Database.Driver, cfg.DatabaseDSN())
		if err != nil {
			log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to connect to database")
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
		store, stats = db, db
		log.Info().Str("driver", db.Driver()).Msg("connected to database")
	} else {
		log.Warn().Msg("no database driver configured, statistics disabled")
	}

	rooms := room.NewManager(announcer, store)
	go rooms.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.New(rooms, stats, gameCfg).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("language", announcer.Language()).Msg("ludo server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	// ferme les sessions avant la base pour que les statistiques soient enregistrées
	rooms.CloseAll()
}
