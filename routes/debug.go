package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stoic-notes/notes/config"
	"stoic-notes/notes/database"
	"stoic-notes/notes/models"
)

// SetupDebugRoutes sets up routes for debugging
func SetupDebugRoutes(router *gin.Engine, cfg config.Config, gateway database.Gateway) {
	debugGroup := router.Group("/debug")
	{
		debugGroup.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"backend": cfg.StorageBackend,
				"table":   cfg.Table,
				"time":    time.Now().UTC(),
			})
		})

		debugGroup.GET("/note-exists/:id", func(c *gin.Context) {
			if gateway == nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"exists": false, "error": "storage is not configured"})
				return
			}

			note, found, err := gateway.GetItem(c.Request.Context(), c.Param("id"))
			if err != nil {
				c.JSON(http.StatusOK, gin.H{
					"exists": false,
					"error":  err.Error(),
					"time":   time.Now().UTC(),
				})
				return
			}
			if !found {
				c.JSON(http.StatusOK, gin.H{"exists": false, "time": time.Now().UTC()})
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"exists":            true,
				models.AttrNoteID:   note.NoteID,
				models.AttrUserID:   note.UserID,
				models.AttrNotebook: note.Notebook,
				"time":              time.Now().UTC(),
			})
		})
	}
}
