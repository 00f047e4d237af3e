// Command lix collects the people LinkedIn recommends next to a profile who
// work at a given company, and exports or syncs them.
//
// Usage:
//
//	lix extract --company "Acme Inc" https://www.linkedin.com/in/johndoe
//	lix list
//	lix export --format xlsx
//	lix sync --notion-token secret_... --notion-database 0123...
//	lix clear
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Ethan4582/linkedin-extractor/pkg/config"
	"github.com/Ethan4582/linkedin-extractor/pkg/persistence"
	"github.com/Ethan4582/linkedin-extractor/pkg/session"
)

var (
	configFile string
	debug      bool

	cfg    *config.Config
	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "lix",
	Short: "Collect LinkedIn recommendations for a company",
	Long: `lix opens a profile's "People also viewed" overlay and keeps the people
who mention a company, deduplicated across runs.

Cookies come from --cookie flags, LINKEDIN_* environment variables, or your
browser's cookie store. Settings may also be given as LIX_* environment
variables, in a .env file, or in config.yaml.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default ./config.yaml or <user config>/lix/config.yaml)")
	pf.BoolVarP(&debug, "debug", "v", false, "enable debug logging")
	pf.String("log-file", "", "also write logs to this file, rotated")
	pf.String("db", "", "session database path")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1) //nolint:gocritic // exitAfterDefer is acceptable in main
	}
}

// setup resolves configuration for the command being run and builds the logger.
func setup(cmd *cobra.Command, _ []string) error {
	v, err := config.New(configFile)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd); err != nil {
		return err
	}
	cfg, err = config.Decode(v)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	var w io.Writer = os.Stderr
	if cfg.LogFile != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// flagKeys maps flags whose name differs from their config key.
var flagKeys = map[string]string{
	"notion-token":    "notion.token",
	"notion-database": "notion.database",
	"notion-delay":    "notion.delay",
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// openSession opens the session database; the caller closes the store.
func openSession(ctx context.Context) (*session.Session, *persistence.Store, error) {
	store, err := persistence.NewStore(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	s, err := session.Load(ctx, store, logger)
	if err != nil {
		store.Close() //nolint:errcheck,gosec // already failing
		return nil, nil, err
	}
	return s, store, nil
}

func closeStore(store *persistence.Store) {
	if err := store.Close(); err != nil {
		logger.Warn("failed to close session database", "error", err)
	}
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
