package router

import (
	"github.com/gin-gonic/gin"

	usershandler "user_service/internal/feature/users/transport/handler"
	platformhandler "user_service/internal/platform/http/handler"
	"user_service/internal/platform/ratelimit"
)

func NewRouter(users *usershandler.UserHandler, health *platformhandler.HealthHandler, limiter ratelimit.Limiter) *gin.Engine {
	r := gin.Default()

	// 導通確認用（レート制限なし）
	r.GET("/healthz", health.Health)
	r.HEAD("/healthz", health.Health)

	// クライアントIPごとのレート制限を適用
	api := r.Group("/users")
	api.Use(ratelimit.Middleware(limiter))
	{
		api.POST("", users.Create)
		api.GET("", users.List)
		api.GET("/:id", users.Get)
		api.PATCH("/:id", users.Update)
		api.DELETE("/:id", users.Delete)
	}

	return r
}
