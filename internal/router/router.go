package router

import (
	"cinelink/internal/handlers"
	"cinelink/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, commentHandler *handlers.CommentHandler) {
	r.Use(middleware.ResolveViewer())

	// Public routes
	api := r.Group("/api")
	{
		api.GET("/discussions/:id/comments", commentHandler.List)        // ranked comment tree
		api.GET("/discussions/:id/comments/stats", commentHandler.Stats) // discussion aggregates
	}

	// Protected routes
	authorized := r.Group("/api")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/discussions/:id/comments", commentHandler.Create) // post a comment or reply
		authorized.DELETE("/comments/:id", commentHandler.Delete)           // soft delete own comment
	}
}
