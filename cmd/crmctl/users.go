package main

import (
	"fmt"
	"strings"
	"time"

	"leadcrm/internal/domain"
	"leadcrm/internal/domain/auth"
	"leadcrm/internal/pkg/dberr"

	"github.com/spf13/cobra"
)

func newMigrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// opening the app runs AutoMigrate
			_, done, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer done()
			fmt.Fprintln(cmd.OutOrStdout(), "database migrated")
			return nil
		},
	}
}

type userOptions struct {
	username  string
	email     string
	password  string
	firstName string
	lastName  string
	staff     bool
}

func newCreateUserCmd(open opener) *cobra.Command {
	var opts userOptions

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user; --staff allows lead imports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(opts.username) == "" || opts.password == "" {
				return fmt.Errorf("--username and --password are required")
			}

			a, done, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			hash, err := auth.HashPassword(opts.password)
			if err != nil {
				return err
			}
			u := &domain.User{
				Username:     strings.TrimSpace(opts.username),
				Email:        opts.email,
				FirstName:    opts.firstName,
				LastName:     opts.lastName,
				PasswordHash: hash,
				IsStaff:      opts.staff,
			}
			if err := a.Users.Create(cmd.Context(), u); err != nil {
				return fmt.Errorf("create user %q: %w", u.Username, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id=%d, role=%s)\n", u.Username, u.ID, u.Role())
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&opts.email, "email", "", "Email address")
	cmd.Flags().StringVar(&opts.password, "password", "", "Password (required)")
	cmd.Flags().StringVar(&opts.firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&opts.lastName, "last-name", "", "Last name")
	cmd.Flags().BoolVar(&opts.staff, "staff", false, "Grant staff role")

	return cmd
}

func newDeleteUserCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-user <username>",
		Short: "Delete a user; their leads and comments are kept unassigned",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			u, err := a.Users.GetByUsername(cmd.Context(), args[0])
			if err != nil {
				if dberr.IsNotFound(err) {
					return fmt.Errorf("user %q not found", args[0])
				}
				return err
			}
			if err := a.Users.Delete(cmd.Context(), u.ID); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted user %s\n", u.Username)
			return nil
		},
	}
}

func newPruneImportsCmd(open opener) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune-imports",
		Short: "Delete import history older than --older-than",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			n, err := a.Import.Prune(cmd.Context(), olderThan)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d import records\n", n)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 90*24*time.Hour, "Age threshold")
	return cmd
}
