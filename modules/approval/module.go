package approval

import (
	"embed"
	"time"

	"github.com/campus-hq/venue-portal/modules/approval/infrastructure/persistence"
	"github.com/campus-hq/venue-portal/modules/approval/presentation/controllers"
	"github.com/campus-hq/venue-portal/modules/approval/services"
	"github.com/campus-hq/venue-portal/pkg/application"
	"github.com/campus-hq/venue-portal/pkg/configuration"
)

//go:embed infrastructure/persistence/schema/*.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&migrationFiles, "infrastructure/persistence/schema")

	conf := configuration.Use()
	planRepo := persistence.NewPlanRepository()
	letterRepo := persistence.NewLetterRepository()
	releaseRepo := persistence.NewReleaseRepository()

	planService := services.NewPlanService(planRepo, letterRepo, app.EventPublisher())
	letterService := services.NewLetterService(letterRepo, planRepo, app.EventPublisher())
	releaseService := services.NewReleaseService(
		releaseRepo,
		planRepo,
		app.EventPublisher(),
		time.Duration(conf.ReleaseStagingTTLMinutes)*time.Minute,
	)
	providerService := services.NewProviderService(planService, letterService)

	app.RegisterServices(
		planService,
		letterService,
		releaseService,
		providerService,
	)

	app.RegisterControllers(
		controllers.NewApprovalAPIController(app),
	)

	return nil
}

func (m *Module) Name() string {
	return "approval"
}
