package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/buytoro/internal/interface/http"
)

// ProductModule: public catalog reads, admin writes.
type ProductModule struct {
	Handler *handlers.ProductHandler
	Guard   Guard
}

func NewProductModule(h *handlers.ProductHandler, guard Guard) *ProductModule {
	return &ProductModule{Handler: h, Guard: guard}
}

func (m *ProductModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/products")
	g.GET("", m.Handler.List)
	g.GET("/brands", m.Handler.Brands)
	g.GET("/:id", m.Handler.Get)

	g.POST("", chain(m.Guard.Admin(), m.Handler.Create)...)
	g.POST("/reindex", chain(m.Guard.Admin(), m.Handler.Reindex)...)
	g.PUT("/:id", chain(m.Guard.Admin(), m.Handler.Update)...)
	g.DELETE("/:id", chain(m.Guard.Admin(), m.Handler.Delete)...)
}
