package app

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"

	"github.com/jtaylorisbell/lakebase-todo-app/internal/auth"
	"github.com/jtaylorisbell/lakebase-todo-app/internal/cache"
	"github.com/jtaylorisbell/lakebase-todo-app/internal/config"
	"github.com/jtaylorisbell/lakebase-todo-app/internal/dto"
	"github.com/jtaylorisbell/lakebase-todo-app/internal/handlers"
	"github.com/jtaylorisbell/lakebase-todo-app/internal/repo"
	"github.com/jtaylorisbell/lakebase-todo-app/internal/service"
)

const webDir = "./web"

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, db *pgxpool.Pool, rdb *redis.Client) {
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
	))

	api := r.Group("/api", auth.Identity(cfg.User))
	api.GET("/health", healthHandler(cfg, db))

	userHandler := handlers.NewUserHandler()
	api.GET("/me", userHandler.Me)

	todoRepo := repo.NewPGTodoRepo(db)
	var todoCache *cache.TodoCache
	if rdb != nil {
		todoCache = cache.NewTodoCache(rdb, cfg.Redis.DefaultTTL.Duration())
	}
	todoSvc := service.NewTodoService(todoRepo, todoCache)
	todoHandler := handlers.NewTodoHandler(todoSvc)
	registerTodoRoutes(api, todoHandler)

	// Anything that is not an API route falls through to the bundled
	// single-page client.
	r.NoRoute(spaHandler(webDir))
}

func healthHandler(cfg config.Config, db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		database := "connected"
		if err := db.Ping(ctx); err != nil {
			database = "disconnected"
		}
		c.JSON(http.StatusOK, dto.HealthResponse{
			Status:   "ok",
			Version:  cfg.App.Version,
			Database: database,
		})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerTodoRoutes(api *gin.RouterGroup, h *handlers.TodoHandler) {
	api.POST("/todos", h.Create)
	api.GET("/todos", h.List)
	api.GET("/todos/:id", h.GetByID)
	api.PUT("/todos/:id", h.Update)
	api.PATCH("/todos/:id/toggle", h.Toggle)
	api.DELETE("/todos/:id", h.Delete)
	api.GET("/stats", h.Stats)
}

// spaHandler serves static files from dir, with index.html as the fallback
// for client-side routes. API paths never reach it via NoRoute except for
// genuinely unknown endpoints, which get a JSON 404.
func spaHandler(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Detail: "not found"})
			return
		}
		path := filepath.Join(dir, filepath.Clean("/"+c.Request.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			c.File(path)
			return
		}
		c.File(filepath.Join(dir, "index.html"))
	}
}
