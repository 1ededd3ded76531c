package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-pickset-backend/internal/services"
)

func (a *app) ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <queue-id> <folder>...",
		Short: "Upload folders of images into a queue as one batch",
		Long: "Each folder's base name becomes the folder name of its images. " +
			"Files are read from the top level of each folder in name order; " +
			"hidden files and subdirectories are ignored.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			folders, n, err := readFolders(args[1:])
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("no files found in %s", strings.Join(args[1:], ", "))
			}

			db, closeDB, err := a.openDB()
			if err != nil {
				return err
			}
			defer closeDB()
			ctx := cmd.Context()
			blobs, err := a.openBlobs(ctx)
			if err != nil {
				return err
			}

			svc := services.NewIngestService(db, blobs, services.NewLockRegistry())
			svc.MaxBatchFiles = a.cfg.Ingest.MaxBatchFiles
			svc.MaxReportedErrors = a.cfg.Ingest.MaxReportedErrors

			res, err := svc.UploadBatch(ctx, args[0], folders)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if res.Partial() {
				return fmt.Errorf("%d of %d files failed", res.FailureCount, n)
			}
			log.Info().
				Str("queue_id", args[0]).
				Int("stored", res.SuccessCount).
				Int("skipped", res.SkippedCount).
				Msg("ingest done")
			return nil
		},
	}
}

// readFolders loads the regular, non-hidden files at the top level of each
// directory. It returns the folders in argument order and the file count.
func readFolders(dirs []string) ([]services.FolderFiles, int, error) {
	out := make([]services.FolderFiles, 0, len(dirs))
	total := 0
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, 0, err
		}
		ff := services.FolderFiles{Folder: filepath.Base(filepath.Clean(dir))}
		for _, e := range entries {
			if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
				continue
			}
			data, err := os.ReadFile(filepath.Join(dir, e.Name()))
			if err != nil {
				return nil, 0, err
			}
			ff.Files = append(ff.Files, services.File{Name: e.Name(), Data: data})
		}
		total += len(ff.Files)
		out = append(out, ff)
	}
	return out, total, nil
}
