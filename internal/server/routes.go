package server

import (
	"context"

	"cakeshop/internal/config"
	"cakeshop/internal/handler"
	"cakeshop/internal/infra/db"
	"cakeshop/internal/infra/jwtauth"
	infraRepo "cakeshop/internal/infra/repository"
	"cakeshop/internal/usecase"
	auth "cakeshop/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// RegisterRoutes は repository → usecase → handler を組み立てて /api 以下に登録する
func RegisterRoutes(e *echo.Echo, cfg config.Config, gdb *gorm.DB, limiters Limiters) {
	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gdb)
	cakeRepo := infraRepo.NewCakeGormRepository(gdb)
	cartRepo := infraRepo.NewCartGormRepository(gdb)
	orderRepo := infraRepo.NewOrderGormRepository(gdb)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gdb)
	contactRepo := infraRepo.NewContactGormRepository(gdb)
	reportRepo := infraRepo.NewReportGormRepository(gdb)
	auditRepo := infraRepo.NewAuditLogGormRepository(gdb)
	txm := infraRepo.NewTxManagerGorm(gdb)

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(0)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := jwtauth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, auth.SystemClock{})
	cakeUC := usecase.NewCakeUsecase(txm, cakeRepo)
	cartUC := usecase.NewCartUsecase(txm, cartRepo)
	orderUC := usecase.NewOrderUsecase(txm, orderRepo, orderItemRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, orderRepo, orderItemRepo, auditRepo)
	reportUC := usecase.NewAdminReportUsecase(reportRepo, orderRepo, auditRepo)
	contactUC := usecase.NewContactUsecase(contactRepo)

	api := e.Group("/api")

	handler.NewHealthHandler(func(ctx context.Context) error {
		return db.Ping(ctx, gdb)
	}).RegisterRoutes(api)
	handler.NewAuthHandler(registerUC, loginUC).RegisterRoutes(api, cfg, userRepo, limiters.Login)
	handler.NewCakeHandler(cakeUC).RegisterRoutes(api, cfg, userRepo)
	handler.NewCartHandler(cartUC).RegisterRoutes(api, cfg, userRepo)
	handler.NewOrderHandler(orderUC).RegisterRoutes(api, cfg, userRepo)
	handler.NewAdminOrderHandler(adminOrderUC).RegisterRoutes(api, cfg, userRepo)
	handler.NewAdminReportHandler(reportUC).RegisterRoutes(api, cfg, userRepo)
	handler.NewContactHandler(contactUC).RegisterRoutes(api, cfg, userRepo, limiters.Contact)
}
