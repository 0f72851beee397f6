package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/oceanwatch/oceanwatch/internal/bluesky"
	"github.com/oceanwatch/oceanwatch/internal/chat"
	"github.com/oceanwatch/oceanwatch/internal/db"
	"github.com/oceanwatch/oceanwatch/internal/geocode"
	"github.com/oceanwatch/oceanwatch/internal/notify"
	"github.com/oceanwatch/oceanwatch/internal/registry"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		noPoster   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the SMS webhook server and the batch poster",
		Long: `Migrates the database, then runs the Twilio webhook server and the
scheduled Bluesky batch poster until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, noPoster)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "oceanwatch.yaml", "path to config file")
	cmd.Flags().BoolVar(&noPoster, "no-poster", false, "disable the scheduled Bluesky poster")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, noPoster bool) error {
	out := cmd.OutOrStdout()

	cfg, store, err := openStore(configPath)
	if err != nil {
		return err
	}

	if err := db.AutoMigrate(store.DB()); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	handler, err := chat.NewHandler(chat.HandlerOpts{
		Store:              store,
		Sessions:           chat.NewSessionStore(store.DB()),
		Registry:           registry.New(store.DB()),
		Downloader:         chat.NewTwilioDownloader(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken),
		Geocoder:           geocode.New(cfg.Geocoder),
		Notifier:           notify.NewMulti(cfg.Notify),
		ImagesDir:          cfg.Storage.ImagesDir,
		SimilarThreshold:   cfg.Chat.SimilarThreshold,
		AdminContributorID: cfg.Chat.AdminContributorID,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !noPoster {
		if cfg.Bluesky.Handle == "" || cfg.Bluesky.AppPassword == "" {
			fmt.Fprintln(out, "Bluesky credentials not configured, poster disabled")
		} else {
			publisher, err := bluesky.NewPublisher(bluesky.PublisherOpts{
				Store:  store,
				Poster: bluesky.New(cfg.Bluesky),
				Limit:  cfg.Posting.BatchLimit,
			})
			if err != nil {
				return err
			}

			c := cron.New()
			_, err = c.AddFunc(cfg.Posting.Schedule, func() {
				n, err := publisher.PublishBatch(ctx)
				if err != nil {
					log.Printf("serve: batch post failed: %v", err)
					return
				}
				if n > 0 {
					log.Printf("serve: posted batch of %d sighting(s)", n)
				}
			})
			if err != nil {
				return fmt.Errorf("serve: invalid posting schedule %q: %w", cfg.Posting.Schedule, err)
			}
			c.Start()
			defer c.Stop()
			fmt.Fprintf(out, "Batch poster scheduled: %s\n", cfg.Posting.Schedule)
		}
	}

	fmt.Fprintf(out, "Webhook server listening on :%d\n", cfg.Twilio.Port)
	return chat.StartServer(ctx, chat.ServerOpts{
		Handler: handler,
		Port:    cfg.Twilio.Port,
		Out:     out,
	})
}
