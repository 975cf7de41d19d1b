package http

import (
	"time"

	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/delivery/http/controllers"
	authcontroller "github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/delivery/http/controllers/auth"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/delivery/http/controllers/middleware"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/models"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/service"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const loginPath = "/v1/auth/login"

func InitRoutes(l logger.Log, u service.Collection, production bool, accessTTL, refreshTTL time.Duration) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	config := cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.CSRFHeaderName},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	r.Use(cors.New(config))
	r.Use(middleware.CSRF(production, loginPath))

	statusController := controllers.NewStatusHandler()
	authController := authcontroller.NewAuthHandler(
		l, u.AuthService, production,
		int(accessTTL.Seconds()), int(refreshTTL.Seconds()),
	)
	authMiddleware := middleware.NewAuthMiddlewareProvider(l, u.AuthService)
	equipmentController := controllers.NewEquipmentHandler(l, u.EquipmentService)

	v1 := r.Group("/v1", middleware.LoggingMiddleware(l))
	{
		v1.GET("/status", statusController.Status)

		auth := v1.Group("/auth")
		{
			auth.POST("/login", authController.Login)
			auth.POST("/register", authController.Register)
			auth.POST("/refresh", authController.Refresh)
			auth.POST("/logout", authController.Logout)
			auth.GET("/me", authController.Me)
			auth.GET("/csrf", authController.CSRFToken)
		}

		equipos := v1.Group("/equipos", authMiddleware.AuthMiddleware)
		{
			equipos.GET("", equipmentController.List)

			admin := equipos.Group("", middleware.RequireRoles(models.AdminRole))
			{
				admin.POST("", equipmentController.Create)
				admin.PATCH("/:equipo_id/estado", equipmentController.ChangeEstado)
				admin.PUT("/:equipo_id/foto", equipmentController.UploadPhoto)
			}
		}

		v1.GET("/centros", authMiddleware.AuthMiddleware, equipmentController.ListCenters)
	}
	return r
}
