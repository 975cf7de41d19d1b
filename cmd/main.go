package main

import (
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/app"
	"github.com/Zer051206/proyecto-gestion-dispositivos-sub000/internal/config"
	"github.com/gin-gonic/gin"
)

func main() {
	gin.SetMode(gin.ReleaseMode)
	cfg := config.MustLoad()
	app.Run(cfg)
}
