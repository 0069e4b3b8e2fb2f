// Package di provides dependency injection factories for creating application components.
package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	usersadapters "user_service/internal/feature/users/adapters"
	usersusecase "user_service/internal/feature/users/usecase"
	"user_service/internal/platform/config"
	"user_service/internal/platform/ratelimit"
)

// NewUserUsecase creates the user service backed by the GORM repository.
func NewUserUsecase(db *gorm.DB) *usersusecase.UserUsecase {
	return usersusecase.NewUserUsecase(usersadapters.NewUserPostgres(db))
}

// NewRateLimiter creates a Limiter implementation.
// If Redis is available, it returns a Redis-backed implementation shared across instances.
// Otherwise, it falls back to an in-process limiter.
func NewRateLimiter(rdb *redis.Client, cfg config.RateLimitConfig) ratelimit.Limiter {
	if rdb != nil {
		return ratelimit.NewRedisLimiter(rdb, cfg.Requests, cfg.Window)
	}
	return ratelimit.NewMemoryLimiter(cfg.Requests, cfg.Window)
}

// Models returns the models migrated on startup.
func Models() []any {
	return []any{&usersadapters.UserModel{}}
}
