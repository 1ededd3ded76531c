package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-pickset-backend/internal/domain"
	"github.com/tbourn/go-pickset-backend/internal/services"
)

func (a *app) queueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Manage review queues",
	}

	var project, name string
	var comparisons int
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a queue, creating its project if needed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, closeDB, err := a.openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			ctx := cmd.Context()
			p, err := (&services.AccountService{DB: db}).EnsureProject(ctx, project)
			if err != nil {
				return fmt.Errorf("project %q: %w", project, err)
			}
			q, err := (&services.QueueService{DB: db}).Create(ctx, p.ID, name, comparisons)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), q)
		},
	}
	create.Flags().StringVar(&project, "project", "", "project name")
	create.Flags().StringVar(&name, "name", "", "queue name")
	create.Flags().IntVar(&comparisons, "comparisons", 2, "folders compared per group (2..10)")
	_ = create.MarkFlagRequired("project")
	_ = create.MarkFlagRequired("name")

	var listProject string
	list := &cobra.Command{
		Use:   "list",
		Short: "List the queues of a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, closeDB, err := a.openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			ctx := cmd.Context()
			p, err := (&services.AccountService{DB: db}).EnsureProject(ctx, listProject)
			if err != nil {
				return fmt.Errorf("project %q: %w", listProject, err)
			}
			qs, err := (&services.QueueService{DB: db}).List(ctx, p.ID)
			if err != nil {
				return err
			}
			if qs == nil {
				qs = []domain.Queue{}
			}
			return printJSON(cmd.OutOrStdout(), qs)
		},
	}
	list.Flags().StringVar(&listProject, "project", "", "project name")
	_ = list.MarkFlagRequired("project")

	status := &cobra.Command{
		Use:   "status <queue-id> <draft|active|completed|archived>",
		Short: "Move a queue to another lifecycle state",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := a.openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			ctx := cmd.Context()
			qs := &services.QueueService{DB: db}
			if err := qs.SetStatus(ctx, args[0], domain.QueueStatus(strings.ToLower(args[1]))); err != nil {
				return err
			}
			q, err := qs.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), q)
		},
	}

	imports := &cobra.Command{
		Use:   "imports <queue-id>",
		Short: "List the batch imports of a queue, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := a.openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			runs, err := (&services.QueueService{DB: db}).Imports(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if runs == nil {
				runs = []domain.ImportRun{}
			}
			return printJSON(cmd.OutOrStdout(), runs)
		},
	}

	cmd.AddCommand(create, list, status, imports)
	return cmd
}

func (a *app) userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage reviewers",
	}

	var role string
	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a user (an existing user keeps its role) and print its ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := a.openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			u, err := (&services.AccountService{DB: db}).EnsureUser(cmd.Context(), args[0], role)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), u)
		},
	}
	add.Flags().StringVar(&role, "role", domain.RoleAnnotator, "admin, annotator or observer")

	cmd.AddCommand(add)
	return cmd
}
