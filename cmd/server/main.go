package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-hq/venue-portal/modules"
	"github.com/campus-hq/venue-portal/pkg/application"
	"github.com/campus-hq/venue-portal/pkg/configuration"
	"github.com/campus-hq/venue-portal/pkg/eventbus"
	"github.com/campus-hq/venue-portal/pkg/logging"
	"github.com/campus-hq/venue-portal/pkg/metrics"
	"github.com/campus-hq/venue-portal/pkg/middleware"
	"github.com/campus-hq/venue-portal/pkg/server"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	if conf.OpenTelemetry.Enabled {
		tracingCleanup := logging.SetupTracing(
			context.Background(),
			conf.OpenTelemetry.ServiceName,
			conf.OpenTelemetry.Endpoint,
		)
		defer tracingCleanup()
		logger.Info("OpenTelemetry tracing enabled, exporting to " + conf.OpenTelemetry.Endpoint)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.ConnectionString())
	if err != nil {
		panic(err)
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
	})
	if err := application.Load(app, modules.BuiltInModules...); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}
	if err := app.Migrations().Run(ctx); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	app.RegisterMiddleware(
		middleware.WithPool(pool),
		middleware.RequestLogger(conf, logger),
		middleware.RequireIdentity(conf),
	)
	if conf.Prometheus.Enabled {
		app.RegisterMiddleware(metrics.Middleware())
	}
	if conf.RateLimit.Enabled {
		limit, err := middleware.RateLimit(conf, logger)
		if err != nil {
			log.Fatalf("failed to configure rate limiting: %v", err)
		}
		app.RegisterMiddleware(limit)
	}

	serverInstance := server.NewHTTPServer(app)
	if conf.Prometheus.Enabled {
		serverInstance.Controllers = append(
			serverInstance.Controllers,
			metricsController{path: conf.Prometheus.Path},
		)
	}

	log.Printf("Listening on: %s\n", conf.SocketAddress)
	if err := serverInstance.Start(conf.SocketAddress); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

type metricsController struct {
	path string
}

func (c metricsController) Key() string {
	return c.path
}

func (c metricsController) Register(r *mux.Router) {
	r.Handle(c.path, metrics.Handler()).Methods(http.MethodGet)
}
