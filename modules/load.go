package modules

import (
	"github.com/campus-hq/venue-portal/modules/approval"
	"github.com/campus-hq/venue-portal/modules/notification"
	"github.com/campus-hq/venue-portal/pkg/application"
)

var BuiltInModules = []application.Module{
	approval.NewModule(),
	notification.NewModule(),
}
