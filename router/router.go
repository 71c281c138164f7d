package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"spendlens/api"
	"spendlens/config"
	"spendlens/database"
	_ "spendlens/docs"
	"spendlens/middleware"
	"spendlens/service"
)

// 导出和报告接口的限流：每个用户每分钟 10 次
const (
	exportRateLimit  = 10
	exportRateWindow = time.Minute
)

// SetupRouter 设置路由，ctx 结束时停止限流器的后台清理
func SetupRouter(ctx context.Context, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(log), middleware.Recovery(log))

	// 服务
	store := database.NewStore(nil)
	analyticsService := service.NewAnalyticsService(store, cfg.Analytics)
	emailService := service.NewEmailService(&cfg.Email)
	alerter := service.NewBudgetAlerter(store, emailService)

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// 消费类别（无需登录）
		expenseHandler := api.NewExpenseHandler(alerter)
		v1.GET("/categories", expenseHandler.GetCategories)

		// 需要 JWT 认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			// 用户资料
			profileHandler := api.NewProfileHandler(emailService)
			authorized.GET("/profile", profileHandler.Get)
			authorized.PUT("/profile", profileHandler.Update)
			authorized.POST("/profile/test-email", profileHandler.TestEmail)

			// 消费记录
			expenses := authorized.Group("/expenses")
			{
				expenses.POST("", expenseHandler.Create)
				expenses.GET("", expenseHandler.List)
				expenses.GET("/:id", expenseHandler.Get)
				expenses.PUT("/:id", expenseHandler.Update)
				expenses.DELETE("/:id", expenseHandler.Delete)
			}

			// 统计分析
			analyticsHandler := api.NewAnalyticsHandler(analyticsService, cfg.Analytics)
			stats := authorized.Group("/analytics")
			{
				stats.GET("/stats", analyticsHandler.Stats)
				stats.GET("/forecast", analyticsHandler.Forecast)
				stats.GET("/heatmap", analyticsHandler.Heatmap)
				stats.GET("/dashboard", analyticsHandler.Dashboard)
			}

			// 预算
			budgetHandler := api.NewBudgetHandler(analyticsService)
			budgets := authorized.Group("/budgets")
			{
				budgets.POST("", budgetHandler.Create)
				budgets.GET("", budgetHandler.List)
				budgets.GET("/progress", budgetHandler.Progress)
				budgets.PUT("/:id", budgetHandler.Update)
				budgets.DELETE("/:id", budgetHandler.Delete)
			}

			// 储蓄目标
			goalHandler := api.NewGoalHandler()
			goals := authorized.Group("/goals")
			{
				goals.POST("", goalHandler.Create)
				goals.GET("", goalHandler.List)
				goals.PUT("/:id", goalHandler.Update)
				goals.DELETE("/:id", goalHandler.Delete)
				goals.POST("/:id/contribute", goalHandler.Contribute)
			}

			// 导出和报告
			limited := authorized.Group("")
			limited.Use(middleware.RateLimit(ctx, exportRateLimit, exportRateWindow))
			{
				exportHandler := api.NewExportHandler()
				limited.GET("/export/csv", exportHandler.ExportCSV)
				limited.GET("/export/json", exportHandler.ExportJSON)
				limited.GET("/export/excel", exportHandler.ExportExcel)

				reportHandler := api.NewReportHandler(analyticsService)
				limited.GET("/reports/pdf", reportHandler.AnnualPDF)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	return r
}

// WithCORS 按配置的来源列表处理跨域请求；未配置来源时允许所有来源
func WithCORS(cfg *config.Config, h http.Handler) http.Handler {
	origins := cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID", "Accept", "Origin", "Cache-Control", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID", "Retry-After"},
		AllowCredentials: true,
	}).Handler(h)
}
