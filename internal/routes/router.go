// Package routes は routing を行います。
package routes

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"todo-api/internal/handlers"
	"todo-api/internal/repositories"
	"todo-api/internal/services"
)

// Options は SetupRouter の依存をまとめたものです。
type Options struct {
	Logger       *slog.Logger
	AllowOrigins []string
	RepoOptions  []repositories.Option
}

// SetupRouter はGinルーターをセットアップし、すべてのエンドポイントを登録します。
func SetupRouter(db *sql.DB, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	// /todos/ を /todos へリダイレクトせず、そのまま処理する
	r.RedirectTrailingSlash = false
	r.HandleMethodNotAllowed = true

	// RequestLogger を一番外側に置き、panic で 500 になったリクエストも記録する
	r.Use(RequestLogger(logger), gin.Recovery())

	// CORS対策
	config := cors.DefaultConfig()
	config.AllowOrigins = opts.AllowOrigins
	if len(config.AllowOrigins) == 0 {
		config.AllowOrigins = []string{"http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	r.Use(cors.New(config))

	// リポジトリ
	todoRepo := repositories.NewTodoRepository(db, opts.RepoOptions...)

	// サービス
	todoService := services.NewTodoService(todoRepo)

	// ハンドラー
	todoHandler := handlers.NewTodoHandler(todoService)

	// ルーティング
	r.GET("/api/dbcheck", todoHandler.DBCheckHandler)

	todos := r.Group("/todos")
	for _, path := range []string{"", "/"} {
		todos.POST(path, todoHandler.CreateTodoHandler)
		todos.GET(path, todoHandler.GetTodosHandler)
	}
	todos.GET("/:id", todoHandler.GetTodoByIDHandler)
	todos.PUT("/:id", todoHandler.UpdateTodoHandler)
	todos.DELETE("/:id", todoHandler.DeleteTodoHandler)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"detail": "Method Not Allowed"})
	})

	return r
}
