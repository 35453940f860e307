package api

import (
	_ "github.com/Ishagupta145/mcp-server/docs"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func SetupRoutes(r *gin.Engine, marketHandler *MarketHandler, logHandler *LogHandler, gatherer prometheus.Gatherer) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	r.GET("/", marketHandler.Root)
	r.GET("/health", marketHandler.Health)
	r.GET("/exchanges", marketHandler.ListExchanges)
	r.GET("/ticker/:symbol", marketHandler.GetTicker)
	r.GET("/historical/:symbol", marketHandler.GetHistorical)
	r.GET("/logs", logHandler.GetRecentLogs)
}
