package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	cartcontroller "github.com/mezu1107/moiz-backend-backend-sub001/internal/cart/controller"
	deliverycontroller "github.com/mezu1107/moiz-backend-backend-sub001/internal/delivery/controller"
	menucontroller "github.com/mezu1107/moiz-backend-backend-sub001/internal/menu/controller"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/session"
)

type Controllers struct {
	Cart     *cartcontroller.CartController
	Delivery *deliverycontroller.DeliveryController
	Menu     *menucontroller.Controller
	Session  *session.Controller
}

func NewRouter(c Controllers, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", c.Cart.GetCart)
		r.Post("/", c.Cart.AddItem)
		r.Post("/focus", c.Cart.Focus)
		r.Patch("/item/{itemId}", c.Cart.UpdateItem)
		r.Delete("/item/{itemId}", c.Cart.RemoveItem)
		r.Delete("/clear", c.Cart.ClearCart)
	})

	r.Post("/delivery/check", c.Delivery.Check)
	r.Get("/delivery/state", c.Delivery.GetState)
	r.Get("/areas", c.Delivery.ListAreas)
	r.Get("/areas/check", c.Delivery.CheckArea)

	r.Get("/menu/search", c.Menu.HandleSearchMenuItems)

	r.Route("/session", func(r chi.Router) {
		r.Get("/", c.Session.GetSession)
		r.Put("/token", c.Session.SetToken)
		r.Post("/logout", c.Session.Logout)
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("request",
				zap.String("requestId", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
