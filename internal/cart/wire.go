package cart

import (
	"go.uber.org/zap"

	"github.com/mezu1107/moiz-backend-backend-sub001/internal/cart/cache"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/cart/controller"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/cart/service"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/cart/usecase"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/config"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/state"
)

type Module struct {
	Controller   *controller.CartController
	Synchronizer *usecase.Synchronizer
	Cache        *cache.Cache
}

func NewModule(client service.RemoteClient, repo state.Repository, menu usecase.MenuLookup, cfg config.CartConfig, logger *zap.Logger) *Module {
	localCache := cache.New(repo, cfg.SchemaVersion, logger)
	cartSvc := service.NewCartService(client)

	synchronizer := usecase.NewSynchronizer(cartSvc, localCache, menu, usecase.Settings{
		StaleTime:     cfg.StaleTime,
		RetryAttempts: cfg.RetryAttempts,
		RetryBackoff:  cfg.RetryBackoff,
	}, logger)

	return &Module{
		Controller:   controller.NewCartController(synchronizer, localCache, logger),
		Synchronizer: synchronizer,
		Cache:        localCache,
	}
}
