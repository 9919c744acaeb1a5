package notification

import (
	"embed"

	"github.com/campus-hq/venue-portal/modules/notification/handlers"
	"github.com/campus-hq/venue-portal/modules/notification/infrastructure/persistence"
	"github.com/campus-hq/venue-portal/modules/notification/presentation/controllers"
	"github.com/campus-hq/venue-portal/modules/notification/services"
	"github.com/campus-hq/venue-portal/pkg/application"
)

//go:embed infrastructure/persistence/schema/*.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&migrationFiles, "infrastructure/persistence/schema")

	app.RegisterServices(
		services.NewNotificationService(persistence.NewNotificationRepository()),
	)

	app.RegisterControllers(
		controllers.NewNotificationAPIController(app),
	)

	handlers.RegisterApprovalEventHandlers(app)

	return nil
}

func (m *Module) Name() string {
	return "notification"
}
