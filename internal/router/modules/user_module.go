package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/buytoro/internal/interface/http"
	"github.com/oksasatya/buytoro/internal/interface/middleware"
)

// UserModule registers account, wishlist, password reset and user
// administration routes under /users.
type UserModule struct {
	Users    *handlers.UserHandler
	Password *handlers.AuthHandler
	Guard    Guard
}

func NewUserModule(users *handlers.UserHandler, password *handlers.AuthHandler, guard Guard) *UserModule {
	return &UserModule{Users: users, Password: password, Guard: guard}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/users")

	authLimiter := m.Guard.limit("auth", 10, middleware.KeyByIPAndPath())
	g.POST("/register", authLimiter, m.Users.Register)
	g.POST("/login", authLimiter, m.Users.Login)
	g.POST("/password/forgot", m.Guard.limit("forgot", 5, middleware.KeyByIPAndPath()), m.Password.ForgotPassword)
	g.POST("/password/reset", authLimiter, m.Password.ResetPassword)

	auth := g.Group("", m.Guard.Authenticated()...)
	{
		auth.GET("/profile", m.Users.GetProfile)
		auth.PUT("/profile", m.Users.UpdateProfile)
		auth.DELETE("/profile", m.Users.DeleteProfile)
		auth.PUT("/profile/password", m.Users.ChangePassword)
		auth.PUT("/profile/image", m.Users.UploadImage)

		auth.GET("/wishlist", m.Users.Wishlist)
		auth.POST("/wishlist/:productId", m.Users.AddToWishlist)
		auth.DELETE("/wishlist/:productId", m.Users.RemoveFromWishlist)
	}

	admin := g.Group("", m.Guard.Admin()...)
	{
		admin.GET("", m.Users.ListUsers)
		admin.GET("/search", m.Users.SearchUsers)
		admin.PUT("/:id/block", m.Users.SetBlocked)
		admin.DELETE("/:id", m.Users.DeleteUser)
	}
}
