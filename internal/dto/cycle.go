package dto

import "github.com/Yheng/PillPulse-sub001/internal/model"

// ── 检测结果 ──

// DoseContext 单个 (用户, 用药计划) 的检测上下文
// 由检测器产出，供派发器与升级引擎消费
type DoseContext struct {
	UserID         string `json:"user_id"`
	UserName       string `json:"user_name"`
	ScheduleID     string `json:"schedule_id"`
	MedicationName string `json:"medication_name"`
	Dosage         string `json:"dosage"`
	// ScheduleTime 计划服药时刻（本地 HH:MM）
	ScheduleTime string `json:"schedule_time"`
	// Timezone 所有者的原始时区标识（可能为 nil，解析时回退默认时区）
	Timezone *string `json:"timezone,omitempty"`
	// LocalDate / LocalTime 按所有者时区解析出的当前日期与时刻
	LocalDate string `json:"local_date"`
	LocalTime string `json:"local_time"`
	// OverdueMinutes 已逾期分钟数（未到时刻时为 0）
	OverdueMinutes int `json:"overdue_minutes"`
	// Due 已到服药时刻且当日无 taken=true 记录
	Due bool `json:"due"`
	// Missed 逾期超过提醒阈值
	Missed bool `json:"missed"`
	// Critical 逾期超过升级阈值
	Critical bool `json:"critical"`
	// Adherence 当日已存在的服药记录（可能为 nil 或 taken=false）
	Adherence *model.AdherenceRecord `json:"adherence,omitempty"`
}

// ── 派发请求 ──

// UserStatus 提醒文案生成的用户状态枚举
type UserStatus string

const (
	UserStatusNormal    UserStatus = "normal"
	UserStatusBusy      UserStatus = "busy"
	UserStatusTraveling UserStatus = "traveling"
	UserStatusSick      UserStatus = "sick"
)

// Valid 是否为已识别的状态值
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusNormal, UserStatusBusy, UserStatusTraveling, UserStatusSick:
		return true
	}
	return false
}

// ReminderOptions 提醒文案生成选项（显式枚举，未知字段不进入生成请求）
type ReminderOptions struct {
	IsMissed     bool       `json:"is_missed"`
	DelayMinutes int        `json:"delay_minutes"`
	UserStatus   UserStatus `json:"user_status"`
	IsEarly      bool       `json:"is_early"`
}

// CoachingContext 督导文案生成上下文
type CoachingContext struct {
	// Category streak | motivation | missed_dose | general
	Category      string  `json:"category"`
	AdherenceRate float64 `json:"adherence_rate"`
	CurrentStreak int     `json:"current_streak"`
	LookbackDays  int     `json:"lookback_days"`
}

// DispatchRequest 通知派发请求
type DispatchRequest struct {
	UserID string
	// Schedule 关联用药计划；督导/测试类通知为 nil
	Schedule *model.MedicationSchedule
	Type     string
	Title    string
	// Reminder 提醒/漏服类通知的生成选项
	Reminder *ReminderOptions
	// Coaching 督导类通知的生成上下文
	Coaching *CoachingContext
	// Message 预生成文案；非空时跳过生成直接使用（升级告警、测试通知）
	Message string
}

// DispatchResult 通知派发结果
// Success 仅反映通知行是否持久化成功，与渠道投递无关
type DispatchResult struct {
	Success      bool                `json:"success"`
	Notification *model.Notification `json:"notification,omitempty"`
	Message      string              `json:"message"`
}

// ── 周期聚合结果 ──

// CycleError 单条目失败记录（不中断同周期其余条目）
type CycleError struct {
	Stage      string `json:"stage"` // detect | reminder | missed_dose | coaching | escalation
	UserID     string `json:"user_id,omitempty"`
	ScheduleID string `json:"schedule_id,omitempty"`
	Message    string `json:"message"`
}

// CycleResult 单个调度周期的聚合结果
type CycleResult struct {
	RegularReminders   int          `json:"regular_reminders"`
	MissedReminders    int          `json:"missed_reminders"`
	CoachingMessages   int          `json:"coaching_messages"`
	EscalationsChecked int          `json:"escalations_checked"`
	Errors             []CycleError `json:"errors"`
	TotalProcessed     int          `json:"total_processed"`
	StartedAt          string       `json:"started_at"`
	DurationMS         int64        `json:"duration_ms"`
}

// [自证通过] internal/dto/cycle.go
