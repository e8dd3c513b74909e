package handler

import (
	"cakeshop/internal/config"
	"cakeshop/internal/middleware"
	"cakeshop/internal/repository"

	"github.com/labstack/echo/v4"
)

// ログイン必須のルート
func userGuards(cfg config.Config, userRepo repository.UserRepository) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middleware.AuthJWT(cfg),
		middleware.ActiveUserGuard(userRepo),
	}
}

// 管理者のみ
func adminGuards(cfg config.Config, userRepo repository.UserRepository) []echo.MiddlewareFunc {
	return append(userGuards(cfg, userRepo), middleware.AdminRoleGuard())
}
