package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Yheng/PillPulse-sub001/config"
	"github.com/Yheng/PillPulse-sub001/internal/dto"
	"github.com/Yheng/PillPulse-sub001/internal/model"
	"github.com/Yheng/PillPulse-sub001/internal/repository"
	"github.com/Yheng/PillPulse-sub001/pkg/redis"
)

// CycleService 调度周期执行器
// 一个周期 = 检测 → 到点提醒 → 漏服提醒 → 每日督导 → 升级评估；
// 条目级失败只进错误列表，不中断同周期其余条目
type CycleService interface {
	RunCycle(ctx context.Context) *dto.CycleResult
}

type cycleService struct {
	repo       *repository.Repository
	clock      *LocalClock
	detector   DetectorService
	dispatcher DispatcherService
	escalation EscalationService
	// rdb 可为 nil；仅作督导标记快路径，正确性由通知表计数保证
	rdb              *redis.Client
	coachingMinutes  int
	coachingLookback int
	logger           *zap.Logger
}

// NewCycleService 创建 CycleService 实例
func NewCycleService(
	cfg *config.SchedulerConfig,
	repo *repository.Repository,
	clock *LocalClock,
	detector DetectorService,
	dispatcher DispatcherService,
	escalation EscalationService,
	rdb *redis.Client,
	logger *zap.Logger,
) CycleService {
	coachMin, err := minutesOfDay(cfg.CoachingHour)
	if err != nil {
		logger.Warn("coaching_hour 非法，回退 09:00", zap.String("value", cfg.CoachingHour))
		coachMin = 9 * 60
	}
	return &cycleService{
		repo:             repo,
		clock:            clock,
		detector:         detector,
		dispatcher:       dispatcher,
		escalation:       escalation,
		rdb:              rdb,
		coachingMinutes:  coachMin,
		coachingLookback: cfg.CoachingLookbackDays,
		logger:           logger,
	}
}

// RunCycle 执行一个完整周期并返回聚合结果
func (s *cycleService) RunCycle(ctx context.Context) *dto.CycleResult {
	start := time.Now()
	result := &dto.CycleResult{
		Errors:    []dto.CycleError{},
		StartedAt: start.UTC().Format(time.RFC3339),
	}

	contexts, detectErrs, err := s.detector.Detect(ctx)
	if err != nil {
		result.Errors = append(result.Errors, dto.CycleError{Stage: "detect", Message: err.Error()})
		s.finalize(result, start)
		return result
	}
	result.Errors = append(result.Errors, detectErrs...)

	// (a) 到点提醒：已到时刻但尚未构成漏服
	for i := range contexts {
		item := &contexts[i]
		if !item.Due || item.Missed {
			continue
		}
		s.runItem(result, "reminder", item.UserID, item.ScheduleID, func() error {
			sent, err := s.dispatchDose(ctx, item, model.NotificationTypeReminder)
			if err != nil {
				return err
			}
			if sent {
				result.RegularReminders++
			}
			return nil
		})
	}

	// (b) 漏服提醒：逾期超过提醒阈值
	for i := range contexts {
		item := &contexts[i]
		if !item.Missed {
			continue
		}
		s.runItem(result, "missed_dose", item.UserID, item.ScheduleID, func() error {
			sent, err := s.dispatchDose(ctx, item, model.NotificationTypeMissedDose)
			if err != nil {
				return err
			}
			if sent {
				result.MissedReminders++
			}
			return nil
		})
	}

	// (c) 每日督导
	s.coachingPass(ctx, result)

	// (d) 升级评估：严重逾期条目
	for i := range contexts {
		item := &contexts[i]
		if !item.Critical {
			continue
		}
		s.runItem(result, "escalation", item.UserID, item.ScheduleID, func() error {
			if _, err := s.escalation.Escalate(ctx, item); err != nil {
				return err
			}
			result.EscalationsChecked++
			return nil
		})
	}

	s.finalize(result, start)
	s.logger.Info("调度周期完成",
		zap.Int("regular_reminders", result.RegularReminders),
		zap.Int("missed_reminders", result.MissedReminders),
		zap.Int("coaching_messages", result.CoachingMessages),
		zap.Int("escalations_checked", result.EscalationsChecked),
		zap.Int("errors", len(result.Errors)),
		zap.Int64("duration_ms", result.DurationMS),
	)
	return result
}

func (s *cycleService) finalize(result *dto.CycleResult, start time.Time) {
	result.TotalProcessed = result.RegularReminders + result.MissedReminders +
		result.CoachingMessages + result.EscalationsChecked
	result.DurationMS = time.Since(start).Milliseconds()
}

// runItem 条目级隔离：错误与 panic 都只进错误列表
func (s *cycleService) runItem(result *dto.CycleResult, stage, userID, scheduleID string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("周期条目 panic",
				zap.String("stage", stage),
				zap.String("user_id", userID),
				zap.String("schedule_id", scheduleID),
				zap.Any("panic", r),
			)
			result.Errors = append(result.Errors, dto.CycleError{
				Stage:      stage,
				UserID:     userID,
				ScheduleID: scheduleID,
				Message:    fmt.Sprintf("panic: %v", r),
			})
		}
	}()

	if err := fn(); err != nil {
		result.Errors = append(result.Errors, dto.CycleError{
			Stage:      stage,
			UserID:     userID,
			ScheduleID: scheduleID,
			Message:    err.Error(),
		})
	}
}

// dispatchDose 派发提醒/漏服通知
// 同 (用户, 计划, 类型, 本地日) 已有通知时跳过，保证每分钟重评估不重复打扰
func (s *cycleService) dispatchDose(ctx context.Context, item *dto.DoseContext, ntype string) (bool, error) {
	from, to, _ := s.clock.LocalDayRange(item.Timezone)
	count, err := s.repo.Notification.CountForSchedule(ctx, item.UserID, item.ScheduleID, ntype, from, to)
	if err != nil {
		return false, fmt.Errorf("统计既有通知失败: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	schedule := &model.MedicationSchedule{
		ScheduleID:     item.ScheduleID,
		UserID:         item.UserID,
		MedicationName: item.MedicationName,
		Dosage:         item.Dosage,
		TimeOfDay:      item.ScheduleTime,
		Frequency:      model.FrequencyDaily,
	}
	req := &dto.DispatchRequest{
		UserID:   item.UserID,
		Schedule: schedule,
		Type:     ntype,
		Reminder: &dto.ReminderOptions{
			IsMissed:     ntype == model.NotificationTypeMissedDose,
			DelayMinutes: item.OverdueMinutes,
			UserStatus:   dto.UserStatusNormal,
		},
	}

	res := s.dispatcher.Dispatch(ctx, req)
	if !res.Success {
		return false, fmt.Errorf("通知派发失败: %s", res.Message)
	}
	return true, nil
}

// coachingPass 每用户每本地日一次的督导消息
func (s *cycleService) coachingPass(ctx context.Context, result *dto.CycleResult) {
	schedules, err := s.repo.Schedule.ListActive(ctx)
	if err != nil {
		result.Errors = append(result.Errors, dto.CycleError{Stage: "coaching", Message: "查询用药计划失败: " + err.Error()})
		return
	}

	seen := make(map[string]bool)
	for i := range schedules {
		sched := &schedules[i]
		if seen[sched.UserID] {
			continue
		}
		seen[sched.UserID] = true

		userID := sched.UserID
		user := sched.User
		s.runItem(result, "coaching", userID, "", func() error {
			if user == nil {
				var err error
				user, err = s.repo.User.GetByID(ctx, userID)
				if err != nil {
					return fmt.Errorf("查询用户失败: %w", err)
				}
			}
			sent, err := s.coachOne(ctx, user)
			if err != nil {
				return err
			}
			if sent {
				result.CoachingMessages++
			}
			return nil
		})
	}
}

func (s *cycleService) coachOne(ctx context.Context, user *model.User) (bool, error) {
	localDate, localTime := s.clock.Resolve(user.Timezone)
	nowMin, err := minutesOfDay(localTime)
	if err != nil {
		return false, err
	}
	if nowMin < s.coachingMinutes {
		return false, nil
	}

	// Redis 快路径：命中则免一次计数查询；失败静默走数据库
	if s.rdb != nil {
		if sent, err := s.rdb.WasCoachingSent(ctx, user.UserID, localDate); err == nil && sent {
			return false, nil
		}
	}

	from, to, _ := s.clock.LocalDayRange(user.Timezone)
	count, err := s.repo.Notification.CountForUser(ctx, user.UserID, model.NotificationTypeCoaching, from, to)
	if err != nil {
		return false, fmt.Errorf("统计督导通知失败: %w", err)
	}
	if count > 0 {
		if s.rdb != nil {
			_ = s.rdb.MarkCoachingSent(ctx, user.UserID, localDate)
		}
		return false, nil
	}

	// 近期依从率 → 督导类别
	fromDate, err := lookbackStart(localDate, s.coachingLookback)
	if err != nil {
		return false, err
	}
	records, err := s.repo.Adherence.ListByUserSince(ctx, user.UserID, fromDate)
	if err != nil {
		return false, fmt.Errorf("查询服药历史失败: %w", err)
	}
	outcomes := BuildDayOutcomes(records, localDate, s.coachingLookback)
	rate := AdherenceRate(outcomes)
	stats := ComputeStreaks(outcomes)

	req := &dto.DispatchRequest{
		UserID: user.UserID,
		Type:   model.NotificationTypeCoaching,
		Coaching: &dto.CoachingContext{
			Category:      coachingCategory(rate),
			AdherenceRate: rate,
			CurrentStreak: stats.CurrentStreak,
			LookbackDays:  s.coachingLookback,
		},
	}
	res := s.dispatcher.Dispatch(ctx, req)
	if !res.Success {
		return false, fmt.Errorf("督导派发失败: %s", res.Message)
	}

	if s.rdb != nil {
		_ = s.rdb.MarkCoachingSent(ctx, user.UserID, localDate)
	}
	return true, nil
}

// coachingCategory 依从率 → 督导类别
// 100% → streak；≥80% → motivation；<50% → missed_dose；其余 → general
func coachingCategory(rate float64) string {
	switch {
	case rate >= 1.0:
		return "streak"
	case rate >= 0.8:
		return "motivation"
	case rate < 0.5:
		return "missed_dose"
	default:
		return "general"
	}
}

// [自证通过] internal/service/cycle.go
