package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/buytoro/internal/interface/http"
	"github.com/oksasatya/buytoro/internal/interface/middleware"
)

// OrderModule registers /orders. Every route needs a login; listing,
// payment, delivery and deletion need an admin.
type OrderModule struct {
	Handler *handlers.OrderHandler
	Guard   Guard
}

func NewOrderModule(h *handlers.OrderHandler, guard Guard) *OrderModule {
	return &OrderModule{Handler: h, Guard: guard}
}

func (m *OrderModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/orders", m.Guard.Authenticated()...)
	{
		g.POST("", m.Handler.Create)
		g.GET("/myorders", m.Handler.Mine)
		g.GET("/:id", m.Handler.Get)
		g.PUT("/:id/cancel", m.Handler.Cancel)
	}

	admin := g.Group("", middleware.AdminOnly())
	{
		admin.GET("", m.Handler.List)
		admin.PUT("/:id/pay", m.Handler.Pay)
		admin.PUT("/:id/deliver", m.Handler.Deliver)
		admin.DELETE("/:id", m.Handler.Delete)
	}
}
