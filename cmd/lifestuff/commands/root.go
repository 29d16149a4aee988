package commands

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/spf13/cobra"

	"lifestuff/internal/app"
	"lifestuff/internal/client"
	"lifestuff/internal/network"
)

var (
	cfg      app.Config
	logLevel string
	wire     *app.Wire
	log      = btclog.Disabled

	keyword  string
	pin      string
	password string
)

func Execute() error {
	root := &cobra.Command{
		Use:          "lifestuff",
		Short:        "Self-authenticating client for a distributed storage network",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := app.SetupLogging(os.Stderr, logLevel, "CMD")
			if err != nil {
				return err
			}
			log = logger

			if cfg.Home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				cfg.Home = filepath.Join(dir, ".lifestuff")
			}
			if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
				return err
			}

			wire, err = app.NewWire(cfg, func(a client.Action, p client.ProgressCode) {
				log.Debugf("%v: %v", a, p)
			})
			return err
		},
	}
	defer func() {
		if wire != nil {
			if err := wire.Close(); err != nil {
				log.Warnf("close: %v", err)
			}
		}
	}()

	pf := root.PersistentFlags()
	pf.StringVar(&cfg.Home, "home", "", "data dir (default ~/.lifestuff)")
	pf.StringVar(&cfg.RelayURL, "relay", "", "relay base URL (e.g. http://127.0.0.1:8080); empty uses a local network file")
	pf.StringVar(&cfg.Backend, "backend", app.DefaultBackend, "vault backend: network or local")
	pf.IntVar(&cfg.Workers, "workers", app.DefaultWorkers, "network worker pool size")
	pf.IntVar(&cfg.ReadRetries, "read-retries", network.DefaultReadRetries, "retries for network reads")
	pf.StringVar(&cfg.KDF, "kdf", app.DefaultKDF, "key derivation profile: default or interactive")
	pf.StringVar(&logLevel, "log-level", "info", "log level: trace, debug, info, warn, error, critical, off")
	pf.StringVarP(&keyword, "keyword", "k", "", "account keyword")
	pf.StringVarP(&pin, "pin", "n", "", "account pin (digits)")
	pf.StringVarP(&password, "password", "p", "", "account password")

	root.AddCommand(
		createCmd(),
		loginCmd(),
		existsCmd(),
		changeKeywordCmd(),
		changePinCmd(),
		changePasswordCmd(),
		removeCmd(),
		mountCmd(),
		contactCmd(),
		shareCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return root.ExecuteContext(ctx)
}
