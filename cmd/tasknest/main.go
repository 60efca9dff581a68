// tasknest is the maintenance tool for the local task database: it owns the
// single storage handle and exposes schema setup, backup and restore.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/tgienger/tasknest/internal/config"
	"github.com/tgienger/tasknest/internal/db"
	"github.com/tgienger/tasknest/internal/logging"
	"github.com/tgienger/tasknest/internal/messages"
	"github.com/tgienger/tasknest/internal/models"
	"github.com/tgienger/tasknest/internal/ui/styles"
	"go.uber.org/zap"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfgFile string

	cfg      *config.Config
	store    *db.DB
	catalog  *messages.Catalog
	language string
	theme    = models.ThemeSystem
)

func main() {
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		reportError(os.Stderr, err)
	}
	closeStore()
	if err != nil {
		os.Exit(1)
	}
}

// reportError prints the localized message once the catalog is loaded; the
// raw error then only goes to the debug log.
func reportError(w io.Writer, err error) {
	if catalog == nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	zap.L().Debug("command failed", zap.Error(err))
	fmt.Fprintln(w, catalog.Localize(err, language))
}

var rootCmd = &cobra.Command{
	Use:           "tasknest",
	Short:         "Maintain the local task database",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tasknest %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

var initCmd = &cobra.Command{
	Use:     "init",
	Short:   "Create or migrate the database and show the settings",
	PreRunE: openStore,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := db.NewSettingsRepo(store).Get(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(styles.New(styles.PaletteFor(theme)).Settings(*settings))
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:     "export [file]",
	Short:   "Write a backup of every table to a JSON file",
	Args:    cobra.MaximumNArgs(1),
	PreRunE: openStore,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := filepath.Join(cfg.Backup.Dir, "tasknest-backup-"+time.Now().Format("20060102-150405")+".json")
		if len(args) > 0 {
			path = args[0]
		}

		backup, err := db.NewBackupCodec(store).Export(cmd.Context())
		if err != nil {
			return err
		}

		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create backup file: %w", err)
		}
		if err := backup.Encode(f); err != nil {
			f.Close()
			return fmt.Errorf("failed to write backup: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write backup: %w", err)
		}

		fmt.Println(catalog.Message(messages.MsgBackupExported, language, map[string]any{"Path": path}))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:     "import <file>",
	Short:   "Replace the database contents with a backup",
	Args:    cobra.ExactArgs(1),
	PreRunE: openStore,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read backup: %w", err)
		}
		if err := db.NewBackupCodec(store).Import(cmd.Context(), data); err != nil {
			return err
		}

		refreshSettings(cmd.Context())
		fmt.Println(catalog.Message(messages.MsgBackupImported, language, nil))
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:     "stats",
	Short:   "Show task counts",
	PreRunE: openStore,
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := db.NewTaskRepo(store).Stats(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(styles.New(styles.PaletteFor(theme)).Stats(stats))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (yaml)")
	rootCmd.AddCommand(versionCmd, initCmd, exportCmd, importCmd, statsCmd)
}

// openStore loads configuration, sets up logging and messages, and opens the
// database. It runs before every command that touches storage.
func openStore(cmd *cobra.Command, args []string) error {
	var err error
	if cfg, err = config.Load(cfgFile); err != nil {
		return err
	}
	language = cfg.Messages.DefaultLanguage

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)

	if catalog, err = messages.New(); err != nil {
		return err
	}

	path := cfg.Database.Path
	if path == "" {
		if path, err = db.DefaultPath(); err != nil {
			return err
		}
	}

	if store, err = db.Open(cmd.Context(), path, logger); err != nil {
		return err
	}
	refreshSettings(cmd.Context())
	return nil
}

// refreshSettings picks up the language and theme stored in settings
func refreshSettings(ctx context.Context) {
	settings, err := db.NewSettingsRepo(store).Get(ctx)
	if err != nil {
		zap.L().Warn("could not read settings", zap.Error(err))
		return
	}
	language = string(settings.Language)
	theme = settings.Theme
}

func closeStore() {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		zap.L().Warn("failed to close database", zap.Error(err))
	}
	_ = zap.L().Sync()
}
