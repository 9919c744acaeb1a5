package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/campus-hq/venue-portal/modules"
	approvalservices "github.com/campus-hq/venue-portal/modules/approval/services"
	"github.com/campus-hq/venue-portal/pkg/application"
	"github.com/campus-hq/venue-portal/pkg/composables"
	"github.com/campus-hq/venue-portal/pkg/configuration"
	"github.com/campus-hq/venue-portal/pkg/eventbus"
)

type seedOptions struct {
	TenantID string
	UserID   string
}

// newSeedCmd creates a submitted demo plan so a fresh environment has
// something to approve.
func newSeedCmd() *cobra.Command {
	var opts seedOptions

	cmd := &cobra.Command{
		Use:   "seed --tenant <uuid> --user <uuid>",
		Short: "Insert a demo event plan for the given tenant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(opts.TenantID) == "" {
				return errors.New("--tenant is required")
			}
			if strings.TrimSpace(opts.UserID) == "" {
				return errors.New("--user is required")
			}
			tenantID, err := uuid.Parse(opts.TenantID)
			if err != nil {
				return err
			}
			userID, err := uuid.Parse(opts.UserID)
			if err != nil {
				return err
			}

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
			if err := app.Migrations().Run(ctx); err != nil {
				return err
			}

			seedCtx := composables.WithPool(ctx, pool)
			seedCtx = composables.WithTenantID(seedCtx, tenantID)
			seedCtx = composables.WithUserID(seedCtx, userID)

			plans := app.Service(approvalservices.PlanService{}).(*approvalservices.PlanService)
			created, err := plans.Create(seedCtx, &approvalservices.CreatePlanDTO{
				Title:             "Freshers' Welcome Concert",
				Organizer:         "Cultural Committee",
				StartsAt:          time.Now().AddDate(0, 1, 0),
				EndsAt:            time.Now().AddDate(0, 1, 0).Add(4 * time.Hour),
				ExpectedAttendees: 400,
				Facilities:        []string{"main-auditorium", "sound-system", "stage-lighting"},
				Remarks:           "Seeded demo plan",
			})
			if err != nil {
				return err
			}
			if _, err := plans.Submit(seedCtx, created.ID); err != nil {
				return err
			}
			cmd.Printf("seeded plan %s\n", created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.TenantID, "tenant", "", "tenant uuid")
	cmd.Flags().StringVar(&opts.UserID, "user", "", "requester uuid")
	return cmd
}
