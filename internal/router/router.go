package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"focustimer/internal/handler"
	"focustimer/internal/middleware"
	"focustimer/internal/service"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Timer     *handler.TimerHandler
	Records   *handler.RecordHandler
	Video     *handler.VideoHandler
	Companion *handler.CompanionHandler
}

func New(
	authService *service.AuthService,
	handlers Handlers,
	corsOrigins []string,
	logger *slog.Logger,
) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestLogger(logger), gin.Recovery(), middleware.CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/register", handlers.Auth.Register)
	auth.POST("/login", handlers.Auth.Login)

	protected := api.Group("")
	protected.Use(middleware.Auth(authService))

	protected.GET("/settings", handlers.Timer.GetSettings)
	protected.PUT("/settings", handlers.Timer.UpdateSettings)

	timer := protected.Group("/timer")
	timer.GET("", handlers.Timer.GetState)
	timer.POST("/start", handlers.Timer.Start)
	timer.POST("/pause", handlers.Timer.Pause)
	timer.POST("/resume", handlers.Timer.Resume)
	timer.POST("/stop", handlers.Timer.Stop)
	timer.POST("/switch", handlers.Timer.Switch)

	records := protected.Group("/records")
	records.GET("", handlers.Records.List)
	records.DELETE("", handlers.Records.Clear)
	records.GET("/export", handlers.Records.Export)
	records.DELETE("/:id", handlers.Records.Delete)
	records.PUT("/:id/note", handlers.Records.UpdateNote)

	protected.GET("/video/resolve", handlers.Video.Resolve)

	companion := protected.Group("/companion")
	companion.GET("", handlers.Companion.Status)
	companion.POST("/open", handlers.Companion.Open)
	companion.POST("/close", handlers.Companion.Close)
	companion.POST("/interact", handlers.Companion.Interact)
	companion.GET("/stream", handlers.Companion.Stream)

	return engine
}
