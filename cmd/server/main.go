package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"budgetbook/internal/auth"
	"budgetbook/internal/config"
	"budgetbook/internal/handler"
	"budgetbook/internal/middleware"
	"budgetbook/internal/service"
	"budgetbook/internal/storage/sqlite"
	"budgetbook/pkg/logging"
)

func main() {
	logging.Setup()
	cfg := config.Load()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiresIn)
	authenticator := auth.NewPasswordAuthenticator(store)

	authHandler := handler.NewAuthHandler(authenticator, jwtManager, store)
	budgetHandler := handler.NewBudgetHandler(
		service.NewBudgetService(store),
		service.NewSharingService(store),
	)
	txHandler := handler.NewTransactionHandler(service.NewTransactionService(store))
	categoryHandler := handler.NewCategoryHandler(service.NewCategoryService(store))
	checklistHandler := handler.NewChecklistHandler(service.NewChecklistService(store))

	router := newRouter(jwtManager, authHandler, budgetHandler, txHandler, categoryHandler, checklistHandler)

	// h2c keeps multiple SSE streams cheap over a single plaintext
	// connection behind the reverse proxy.
	h2cHandler := h2c.NewHandler(router, &http2.Server{})

	slog.Info("Server starting", "address", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func newRouter(
	jwtManager *auth.JWTManager,
	authHandler *handler.AuthHandler,
	budgetHandler *handler.BudgetHandler,
	txHandler *handler.TransactionHandler,
	categoryHandler *handler.CategoryHandler,
	checklistHandler *handler.ChecklistHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), cors())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Share links are the credential for these routes.
	shares := router.Group("/checklist-shares")
	{
		shares.GET("/:id", checklistHandler.ResolveShare)
		shares.GET("/:id/stream", checklistHandler.StreamShared)
		shares.POST("/:id/items/:itemId/toggle", checklistHandler.ToggleShared)
	}

	api := router.Group("/api/v1")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.NewAuthMiddleware(jwtManager).RequireAuth())
	{
		authed.GET("/auth/me", authHandler.Me)
		authed.PUT("/auth/profile", authHandler.UpdateProfile)

		authed.GET("/budgets", budgetHandler.GetBudget)
		authed.POST("/budgets", budgetHandler.CreateBudget)
		authed.POST("/budgets/copy-previous", budgetHandler.CopyPreviousMonth)
		authed.POST("/budgets/:id/share", budgetHandler.Share)
		authed.DELETE("/budgets/:id/share/:userId", budgetHandler.Unshare)
		authed.GET("/budgets/:id/members", budgetHandler.Members)

		authed.POST("/budget-items", budgetHandler.AddItem)
		authed.PUT("/budget-items/:id", budgetHandler.UpdateItem)
		authed.DELETE("/budget-items/:id", budgetHandler.DeleteItem)
		authed.POST("/budget-items/:id/repair", budgetHandler.RepairItem)

		authed.GET("/transactions", txHandler.List)
		authed.POST("/transactions", txHandler.Create)
		authed.PUT("/transactions/:id", txHandler.Update)
		authed.DELETE("/transactions/:id", txHandler.Delete)

		authed.GET("/categories", categoryHandler.List)
		authed.POST("/categories", categoryHandler.Save)
		authed.DELETE("/categories/:id", categoryHandler.Delete)

		authed.GET("/checklist-items", checklistHandler.List)
		authed.POST("/checklist-items", checklistHandler.Add)
		authed.PUT("/checklist-items/:id", checklistHandler.Update)
		authed.DELETE("/checklist-items/:id", checklistHandler.Delete)
		authed.GET("/checklist-items/stream", checklistHandler.Stream)
		authed.POST("/checklist-shares", checklistHandler.CreateShare)
	}

	return router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("Request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}
