package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tyen-customs-a3/modsync/internal/config"
	"github.com/tyen-customs-a3/modsync/internal/engine"
	"github.com/tyen-customs-a3/modsync/internal/sync"
	"github.com/tyen-customs-a3/modsync/pkg/version"
)

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var (
	cfgFile string
	debug   bool

	rootCmd = &cobra.Command{
		Use:   "modsync",
		Short: "ModSync keeps a local mod directory in sync with a remote torrent",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Initialize a new config file",
		RunE:  runInit,
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the sync service continuously",
		RunE:  runService,
		Example: `  # Run the sync service with the configured interval
  modsync run

  # SIGHUP triggers a manual refresh, SIGUSR1 a local-file verify
  kill -HUP $(pidof modsync)`,
	}

	syncCmd = &cobra.Command{
		Use:   "sync",
		Short: "Check the remote torrent once and update the local folder",
		RunE:  runOnce(false),
	}

	verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Re-register the remote torrent to force a recheck of local files",
		RunE:  runOnce(true),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Show version information and check for updates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return version.CheckForUpdates("tyen-customs-a3", "modsync")
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	setupGroup := &cobra.Group{
		ID:    "setup",
		Title: "Configuration Commands:",
	}
	operationGroup := &cobra.Group{
		ID:    "operation",
		Title: "Sync Commands:",
	}
	rootCmd.AddGroup(setupGroup, operationGroup)

	initCmd.GroupID = "setup"
	runCmd.GroupID = "operation"
	syncCmd.GroupID = "operation"
	verifyCmd.GroupID = "operation"

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(versionCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := cfgFile
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Error().Err(err).Msg("could not determine home directory")
			return fmt.Errorf("could not determine home directory: %w", err)
		}
		configPath = filepath.Join(home, ".config", "modsync", "config.yaml")
	}

	if err := config.WriteDefault(configPath); err != nil {
		return err
	}
	log.Info().Msg("remember to edit the config file and set torrentUrl and downloadPath")
	return nil
}

func setup() (*config.Config, *sync.Scheduler, *sync.Feed, error) {
	configPath, err := config.Find(cfgFile)
	if err != nil {
		return nil, nil, nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	eng, err := engine.New(cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to create transfer engine")
		return nil, nil, nil, fmt.Errorf("failed to create transfer engine: %w", err)
	}

	feed := sync.NewFeed()
	syncer := sync.NewSyncer(eng, feed, log.With().Str("component", "syncer").Logger())
	fetcher := sync.NewFetcher(log.With().Str("component", "fetcher").Logger())
	sched := sync.NewScheduler(cfg, syncer, fetcher, log.With().Str("component", "scheduler").Logger())

	return cfg, sched, feed, nil
}

// logNotifications is the headless observer of the status channel.
func logNotifications(feed *sync.Feed, done chan<- struct{}) {
	defer close(done)
	for n := range feed.C() {
		switch {
		case n.Event != nil && n.Event.Type == sync.EventTorrentAdded:
			log.Info().Uint64("id", n.Event.ID).Msg("torrent registered with engine")
		case n.Event != nil:
			log.Warn().Str("detail", n.Event.Message).Msg("sync problem reported")
		case n.Status != nil && n.Status.State == sync.StateError:
			log.Warn().Str("status", n.Status.State.String()).Str("detail", n.Status.Message).Msg("sync status")
		case n.Status != nil:
			log.Info().Str("status", n.Status.State.String()).Msg("sync status")
		}
	}
}

func runService(cmd *cobra.Command, args []string) error {
	_, sched, feed, err := setup()
	if err != nil {
		return err
	}

	done := make(chan struct{})
	go logNotifications(feed, done)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Manual triggers from the outside world: SIGHUP refreshes, SIGUSR1
	// verifies local files.
	refreshCh := make(chan os.Signal, 1)
	verifyCh := make(chan os.Signal, 1)
	signal.Notify(refreshCh, syscall.SIGHUP)
	signal.Notify(verifyCh, syscall.SIGUSR1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-refreshCh:
				sched.TriggerRefresh()
			case <-verifyCh:
				sched.TriggerVerify()
			}
		}
	}()

	err = sched.Run(ctx)
	feed.Close()
	<-done

	if err != nil && ctx.Err() != nil {
		// Normal shutdown.
		return nil
	}
	return err
}

// runOnce builds a single-shot command: one refresh, or one verify (which
// without a prior transfer in this process amounts to a fresh register that
// rechecks local files).
func runOnce(verify bool) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		_, sched, feed, err := setup()
		if err != nil {
			return err
		}

		done := make(chan struct{})
		go logNotifications(feed, done)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		if verify {
			sched.TriggerVerify()
		} else {
			sched.TriggerRefresh()
		}
		err = sched.RunPending(ctx)

		feed.Close()
		<-done
		return err
	}
}
