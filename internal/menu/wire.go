package menu

import (
	"go.uber.org/zap"

	"github.com/mezu1107/moiz-backend-backend-sub001/internal/menu/controller"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/menu/repository"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/menu/service"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/menu/usecase"
)

type Module struct {
	Controller *controller.Controller
	Service    *service.MenuService
}

func NewModule(client repository.RemoteClient, logger *zap.Logger) *Module {
	repo := repository.NewRemoteRepository(client)
	svc := service.NewService(repo)
	uc := usecase.NewSearchUseCase(svc)

	return &Module{
		Controller: controller.NewController(uc, logger),
		Service:    svc,
	}
}
