package app

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/app/server"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/config"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/delivery/http"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/service"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/service/auth"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/service/equipment"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/storage/minio_storage"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/storage/postgres"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/pkg/logger"
)

func Run(cfg *config.Config) {

	log := logger.New(cfg.Env)
	log.Info("Starting with Env: " + cfg.Env)

	pg, err := postgres.NewPostgresPool(cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.DBName)
	if err != nil {
		log.FatalErr("error connecting to database", err)
	}
	defer pg.Close()

	objectStorage, err := minio_storage.NewMinioStorage(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
	if err != nil {
		log.FatalErr("error connecting to object storage", err)
	}
	photoStorage, err := minio_storage.NewPhotoStorage(objectStorage, cfg.Minio.Bucket, cfg.Minio.PresignTTL)
	if err != nil {
		log.FatalErr("error preparing photo bucket", err)
	}

	tokenRepo := postgres.NewTokensPostgres(pg.Pool)
	userRepo := postgres.NewUserPostgres(pg.Pool)
	equipmentRepo := postgres.NewEquipmentPostgres(pg.Pool)

	tokenManager := auth.NewTokenManager(cfg.JWT.SecretKey, "gestion-dispositivos", cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	authService := auth.NewAuthService(log, tokenManager, userRepo, tokenRepo)
	equipmentService := equipment.NewEquipmentService(log, equipmentRepo, photoStorage)
	u := service.Collection{AuthService: authService, EquipmentService: equipmentService}

	r := http.InitRoutes(log, u, cfg.Production(), cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	srv := server.New(cfg.HTTPServer.Address, cfg.HTTPServer.Timeout, cfg.HTTPServer.IdleTimeout, r)
	srv.Start()
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info("app signal: " + s.String())
	case err := <-srv.Notify():
		log.ErrorErr("server stopped", err)
	}
	if err := srv.Shutdown(); err != nil {
		log.ErrorErr("shutdown error", err)
	}
}
