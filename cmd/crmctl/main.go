// Command crmctl runs administrative tasks against the CRM database.
package main

import (
	"context"
	"fmt"
	"os"
	_ "time/tzdata"

	"leadcrm/internal/app"
	"leadcrm/internal/config"
	"leadcrm/internal/pkg/logger"

	"github.com/spf13/cobra"
)

// opener builds the application and returns a cleanup func.
type opener func(ctx context.Context) (*app.App, func(), error)

func openFromEnv(ctx context.Context) (*app.App, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, nil, err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return a, a.Close, nil
}

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "crmctl",
		Short:         "Lead CRM administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(open),
		newCreateUserCmd(open),
		newDeleteUserCmd(open),
		newImportCmd(open),
		newPruneImportsCmd(open),
	)
	return root
}

func main() {
	if err := newRootCmd(openFromEnv).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
