package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/robfig/cron/v3"

	pkg "github.com/meridiem-chat/meridiem-client/pkg/internal"
	"github.com/meridiem-chat/meridiem-client/pkg/internal/bridge"
	"github.com/meridiem-chat/meridiem-client/pkg/internal/cache"
	"github.com/meridiem-chat/meridiem-client/pkg/internal/database"
	"github.com/meridiem-chat/meridiem-client/pkg/internal/gateway"
	"github.com/meridiem-chat/meridiem-client/pkg/internal/keyring"
	"github.com/meridiem-chat/meridiem-client/pkg/internal/services"
	"github.com/meridiem-chat/meridiem-client/pkg/internal/session"
	engine "github.com/meridiem-chat/meridiem-client/pkg/internal/sync"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	// Configure settings
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("settings")
	viper.SetConfigType("toml")

	// Load settings
	if err := viper.ReadInConfig(); err != nil {
		log.Panic().Err(err).Msg("An error occurred when loading settings.")
	}

	// Connect to the local database
	if err := database.NewSource(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connect to database.")
	} else if err := database.RunMigration(database.C); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when running database auto migration.")
	}

	// Gateway and collaborators
	gw := gateway.New()
	keys := keyring.New(gw)

	var loop *engine.Engine
	windows := bridge.New(bridge.LoopFunc(func(fn func(*engine.Reducer)) {
		loop.Post(fn)
	}))

	deps := engine.Deps{
		Transport: gw,
		Fetcher:   gateway.NewFetcher(gw),
		Keys:      keys,
		Notifier:  services.DesktopNotifier{},
		Store:     services.LocalStore{},
	}
	primary := viper.GetBool("bridge.primary")
	if primary {
		deps.Publisher = windows
	}

	reducer := engine.NewReducer(session.LocalIdentity(), deps,
		cache.NewChannelSnapshotCache(), cache.NewServerSnapshotCache(), cache.NewDecryptedContentCache())
	loop = engine.NewEngine(reducer)

	sequencer := session.NewSequencer(gw, loop, session.NewProcessScanDetector())
	sequencer.Start()

	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	go gw.Run(ctx)

	if primary {
		windows.NewServer()
		go windows.Listen()
	}

	// Configure timed tasks
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	quartz.AddFunc("@every 15s", sequencer.PollActivity)
	quartz.AddFunc("@every 60m", services.DoAutoArchiveCleanup)
	quartz.Start()

	color.New(color.FgHiCyan, color.Bold).Printf("Meridiem Client v%s\n", pkg.AppVersion)
	log.Info().Msgf("Meridiem Client v%s is started...", pkg.AppVersion)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msgf("Meridiem Client v%s is quitting...", pkg.AppVersion)

	cancel()
	quartz.Stop()
}
