package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-pickset-backend/internal/services"
	"github.com/tbourn/go-pickset-backend/internal/sysutil"
)

func (a *app) progressCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "progress <queue-id>",
		Short: "Print review progress for a queue",
		Long:  "Without --user (or PICKSET_USER) every reviewer of the queue is listed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := a.openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			svc := &services.ProgressService{DB: db}
			if uid := sysutil.FirstNonEmpty(user, os.Getenv("PICKSET_USER")); uid != "" {
				v, err := svc.Get(cmd.Context(), args[0], uid)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), v)
			}
			views, err := svc.All(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if views == nil {
				views = []services.ProgressView{}
			}
			return printJSON(cmd.OutOrStdout(), views)
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "reviewer user ID")
	return cmd
}
