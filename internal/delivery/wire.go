package delivery

import (
	"go.uber.org/zap"

	"github.com/mezu1107/moiz-backend-backend-sub001/internal/delivery/controller"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/delivery/service"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/delivery/usecase"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/state"
)

type Module struct {
	Controller *controller.DeliveryController
	Checker    *usecase.Checker
}

func NewModule(client service.RemoteClient, repo state.Repository, logger *zap.Logger) *Module {
	svc := service.NewDeliveryService(client)
	checker := usecase.NewChecker(svc, repo, logger)

	return &Module{
		Controller: controller.NewDeliveryController(checker, logger),
		Checker:    checker,
	}
}
