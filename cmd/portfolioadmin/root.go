package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/adampresley/photoportfolio/pkg/migrations"
	"github.com/adampresley/photoportfolio/pkg/services"
	_ "github.com/glebarez/sqlite"
	"github.com/rfberaldo/sqlz"
	"github.com/rfberaldo/sqlz/binds"
	"github.com/spf13/cobra"
)

var (
	dsn     string
	verbose bool
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "portfolioadmin",
		Short:   "Operator tasks for the photo portfolio",
		Version: Version,
		Long: `portfolioadmin runs maintenance tasks against the portfolio database:
granting and revoking the admin role, and recomputing cached photo counts.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo

			if verbose {
				level = slog.LevelDebug
			}

			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", envOrDefault("DSN", "file:./data/photoportfolio.db"), "Data source name (env DSN)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")

	rootCmd.AddCommand(newGrantAdminCmd())
	rootCmd.AddCommand(newRevokeAdminCmd())
	rootCmd.AddCommand(newRecountPhotosCmd())

	return rootCmd
}

func envOrDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}

	return defaultValue
}

/*
app holds the services a command works with. The database is migrated
before any command runs.
*/
type app struct {
	db             *sqlz.DB
	albumService   services.AlbumService
	photoService   services.PhotoService
	userService    services.UserService
	libraryService services.LibraryService
}

func openApp() (*app, error) {
	var (
		err error
		db  *sqlz.DB
	)

	binds.Register("sqlite", binds.BindByDriver("sqlite3"))

	if db, err = sqlz.Connect("sqlite", dsn); err != nil {
		return nil, fmt.Errorf("error connecting to '%s': %w", dsn, err)
	}

	if err = migrations.Migrate(db); err != nil {
		return nil, err
	}

	result := &app{
		db:           db,
		albumService: services.NewAlbumService(services.AlbumServiceConfig{DB: db}),
		photoService: services.NewPhotoService(services.PhotoServiceConfig{DB: db}),
		userService:  services.NewUserService(services.UserServiceConfig{DB: db}),
	}

	result.libraryService = services.NewLibraryService(services.LibraryServiceConfig{
		AlbumService:   result.albumService,
		PhotoService:   result.photoService,
		StorageService: services.NewStorageService(services.StorageServiceConfig{}),
	})

	return result, nil
}
