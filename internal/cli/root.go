// Package cli implements the pickset command tree: the HTTP server plus
// operator commands that drive the same services directly against the
// configured database and blob store.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbourn/go-pickset-backend/internal/blob"
	"github.com/tbourn/go-pickset-backend/internal/config"
	"github.com/tbourn/go-pickset-backend/internal/repo"
	"github.com/tbourn/go-pickset-backend/internal/sysutil"
)

// app carries what every subcommand needs once the root pre-run is done.
type app struct {
	version string
	envFile string
	cfg     config.Config
}

// NewRootCmd builds the command tree. version is reported by serve and
// stamped on traces.
func NewRootCmd(version string) *cobra.Command {
	a := &app{version: version}

	root := &cobra.Command{
		Use:           "pickset",
		Short:         "Side-by-side image review backend",
		Long:          "Ingest folders of images into review queues, serve the review API and report progress.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(
		a.serveCmd(),
		a.migrateCmd(),
		a.queueCmd(),
		a.userCmd(),
		a.ingestCmd(),
		a.progressCmd(),
	)
	return root
}

// Execute runs the command tree and reports a failure on stderr.
func Execute(ctx context.Context, version string, args []string) int {
	cmd := NewRootCmd(version)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
		return 1
	}
	return 0
}

func (a *app) init(logOut io.Writer) error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return fmt.Errorf("load %s: %w", a.envFile, err)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	sysutil.ConfigureLogging(logOut, cfg.LogLevel, cfg.LogPretty, sysutil.IsTruthy(os.Getenv("NO_COLOR")))
	return nil
}

// openDB opens the configured database and brings the schema up to date.
func (a *app) openDB() (*gorm.DB, func(), error) {
	db, err := repo.Open(a.cfg.DB.Driver, a.cfg.DBTarget())
	if err != nil {
		return nil, nil, fmt.Errorf("open %s database: %w", a.cfg.DB.Driver, err)
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return db, closeFn, nil
}

func (a *app) openBlobs(ctx context.Context) (blob.Store, error) {
	switch a.cfg.Blob.Backend {
	case config.BlobMinio:
		m := a.cfg.Blob.Minio
		return blob.NewMinioStore(ctx, blob.MinioConfig{
			Endpoint:  m.Endpoint,
			AccessKey: m.AccessKey,
			SecretKey: m.SecretKey,
			Bucket:    m.Bucket,
			UseSSL:    m.UseSSL,
		})
	default:
		return blob.NewOSStore(a.cfg.Blob.Dir)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func logStorage(cfg config.Config) {
	log.Debug().
		Str("db_driver", cfg.DB.Driver).
		Str("blob_backend", cfg.Blob.Backend).
		Msg("storage configured")
}
