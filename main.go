package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"crmbridge/crm/config"
	"crmbridge/crm/pkg/crm"
	"crmbridge/crm/pkg/handler"
	"crmbridge/crm/pkg/lookup"
	_ "crmbridge/crm/pkg/reg"
	"crmbridge/tools/httpclient"
	"crmbridge/tools/ioc"
	"crmbridge/tools/logger"
)

func main() {
	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 创建日志记录器
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Starting crm bridge service...")

	if cfg.CRMInsecureSkipVerify {
		log.Warn("CRM_INSECURE_SKIP_VERIFY is on: TLS certificates of %s are NOT verified", cfg.CRMBaseURL)
	}

	// 业务日志，可选镜像到 MySQL
	journalCfg := logger.JournalConfig{
		Directory:     cfg.LogDir,
		RetentionDays: cfg.LogRetentionDays,
		Console:       log,
	}
	if cfg.LogDBEnabled {
		db, err := cfg.GetDB()
		if err != nil {
			log.Fatal("Failed to open journal database: %v", err)
			os.Exit(1)
		}
		sink := logger.NewGormSink(db)
		if err := sink.Migrate(); err != nil {
			log.Fatal("Failed to migrate journal table: %v", err)
			os.Exit(1)
		}
		journalCfg.Sink = sink
	}
	journal := logger.NewJournal(journalCfg)

	client := crm.NewClient(crm.Options{
		BaseURL:    cfg.CRMBaseURL,
		AuthToken:  cfg.CRMAuthToken,
		HTTPClient: httpclient.NewClient(cfg.HTTPClientOptions()),
		Retry:      crm.RetryPolicy{MaxAttempts: cfg.CRMMaxRetries, Backoff: cfg.CRMRetryDelay},
		Journal:    journal,
		Logger:     log,
	})

	throttle := cfg.LookupThrottle
	if throttle == 0 {
		throttle = lookup.NoThrottle
	}
	finder := lookup.NewService(lookup.Options{
		Contacts: client,
		Journal:  journal,
		Logger:   log,
		Throttle: throttle,
		IINField: cfg.IINField,
	})

	// 初始化 IOC 容器
	ioc.ConController.RegisterContainer(handler.JournalAppName, journal)
	ioc.ConController.RegisterContainer(crm.AppName, client)
	ioc.ConController.RegisterContainer(lookup.AppName, finder)

	if err := ioc.ConController.Init(); err != nil {
		log.Fatal("Failed to init ioc: %v", err)
		os.Exit(1)
	}

	if err := ioc.Api.Init(); err != nil {
		log.Fatal("Failed to init ioc: %v", err)
		os.Exit(1)
	}

	// 注册 Prometheus 指标接口
	cfg.Application.GinServer().GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 配置HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      cfg.Application.GinServer(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// 启动服务器
	go func() {
		log.Info("Server starting on port %s...", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server: %v", err)
			os.Exit(1)
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
