package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/campus-hq/venue-portal/modules"
	"github.com/campus-hq/venue-portal/pkg/application"
	"github.com/campus-hq/venue-portal/pkg/configuration"
	"github.com/campus-hq/venue-portal/pkg/eventbus"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf := configuration.Use()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			pool, err := pgxpool.New(ctx, conf.Database.ConnectionString())
			if err != nil {
				return err
			}
			defer pool.Close()

			app := application.New(&application.ApplicationOptions{
				Pool:     pool,
				EventBus: eventbus.NewEventPublisher(conf.Logger()),
			})
			if err := application.Load(app, modules.BuiltInModules...); err != nil {
				return err
			}
			return app.Migrations().Run(ctx)
		},
	}
}
