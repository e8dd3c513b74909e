package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cakeshop/internal/config"
	"cakeshop/internal/infra/db"
	"cakeshop/internal/server"

	"github.com/labstack/gommon/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	//DB接続
	gdb, err := db.Open(cfg.DB)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	//初期管理者
	if cfg.AdminEmail != "" {
		created, err := db.EnsureAdmin(context.Background(), gdb, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminUsername)
		if err != nil {
			log.Fatalf("ensure admin: %v", err)
		}
		if created {
			log.Infof("admin user created: %s", cfg.AdminEmail)
		}
	}

	srv := server.New(cfg, gdb)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
	if err := db.Close(gdb); err != nil {
		log.Errorf("db close: %v", err)
	}
}
