package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/btcsuite/btclog"
	"github.com/spf13/cobra"

	"lifestuff/internal/app"
	"lifestuff/internal/relay"
	"lifestuff/internal/store"
)

var log = btclog.Disabled

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		addr     string
		dbPath   string
		logLevel string
	)
	cmd := &cobra.Command{
		Use:          "relay",
		Short:        "Network store and message relay backed by a bolt database",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := app.SetupLogging(os.Stderr, logLevel, "RLAY")
			if err != nil {
				return err
			}
			log = logger
			return serve(addr, dbPath)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&dbPath, "db", "relay.db", "bolt database file")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: trace, debug, info, warn, error, critical, off")
	return cmd
}

func serve(addr, dbPath string) error {
	db, err := store.OpenBolt(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if packets, messages, err := db.Stats(); err == nil {
		log.Infof("loaded %d packets, %d queued messages from %s", packets, messages, dbPath)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           relay.NewHandler(db),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	log.Infof("relay listening on %s", addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Infof("relay stopped")
	return nil
}
