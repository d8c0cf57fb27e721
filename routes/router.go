package routes

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stoic-notes/notes/config"
	"stoic-notes/notes/database"
	"stoic-notes/notes/handlers"
	"stoic-notes/notes/middleware"
	"stoic-notes/notes/response"
)

// NewRouter builds the HTTP server used outside Lambda. gateway may be nil
// when storage is not configured.
func NewRouter(cfg config.Config, noteHandler *handlers.NoteHandler, gateway database.Gateway, logger *zap.Logger) *gin.Engine {
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	RegisterNoteRoutes(&router.RouterGroup, noteHandler)
	SetupDebugRoutes(router, cfg, gateway)

	router.NoRoute(func(c *gin.Context) {
		WriteProxyResponse(c, response.Error(http.StatusNotFound,
			fmt.Errorf("route not found: %s %s", c.Request.Method, c.Request.URL.Path)))
	})
	return router
}
