package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"spendlens/config"
	"spendlens/database"
	"spendlens/logger"
	"spendlens/middleware"
	"spendlens/router"
)

// @title SpendLens API
// @version 1.0
// @description 个人消费记账与分析 API：消费记录、统计、支出预测、日历热力图、预算与储蓄目标
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const version = "v1.0.0"

var (
	configFile  string
	port        string
	showVersion bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "外部配置文件路径（可选）")
	flag.StringVar(&configFile, "c", "", "外部配置文件路径（简写）")
	flag.StringVar(&port, "port", "", "监听端口，如: 8080 或 :8080")
	flag.StringVar(&port, "p", "", "监听端口（简写）")
	flag.BoolVar(&showVersion, "version", false, "显示版本信息")
	flag.BoolVar(&showVersion, "v", false, "显示版本信息（简写）")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Println("SpendLens", version)
		return
	}

	// 加载配置（内置配置 + 可选的外部配置覆盖）
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 命令行参数覆盖端口配置
	if port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
	}

	log := logger.New(cfg.Log)
	config.PrintConfig()

	if err := database.Init(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("数据库初始化失败")
	}

	middleware.InitJWT(cfg)

	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	r := router.SetupRouter(appCtx, cfg, log)
	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router.WithCORS(cfg, r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", cfg.Server.Port).
			Str("swagger", cfg.Server.BaseURL+"/swagger/index.html").
			Str("version", version).
			Msg("SpendLens 已启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("服务器启动失败")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	stopApp()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("服务器关闭失败")
	}
	log.Info().Msg("服务器已关闭")
}
