package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Yheng/PillPulse-sub001/internal/channel"
	"github.com/Yheng/PillPulse-sub001/internal/dto"
	"github.com/Yheng/PillPulse-sub001/internal/model"
	"github.com/Yheng/PillPulse-sub001/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock ScheduleRepository ──

type mockScheduleRepo struct {
	schedules map[string]*model.MedicationSchedule
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{schedules: make(map[string]*model.MedicationSchedule)}
}

func (m *mockScheduleRepo) ListActive(_ context.Context) ([]model.MedicationSchedule, error) {
	var result []model.MedicationSchedule
	for _, s := range m.schedules {
		if s.IsActive {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].UserID != result[j].UserID {
			return result[i].UserID < result[j].UserID
		}
		return result[i].TimeOfDay < result[j].TimeOfDay
	})
	return result, nil
}

// ── Mock AdherenceRepository ──

type mockAdherenceRepo struct {
	records []model.AdherenceRecord
	// owner 映射 schedule_id → user_id，模拟 JOIN
	owner map[string]string
}

func newMockAdherenceRepo() *mockAdherenceRepo {
	return &mockAdherenceRepo{owner: make(map[string]string)}
}

func (m *mockAdherenceRepo) GetByScheduleAndDate(_ context.Context, scheduleID, date string) (*model.AdherenceRecord, error) {
	for i := range m.records {
		r := &m.records[i]
		if r.ScheduleID == scheduleID && r.RecordDate == date {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAdherenceRepo) ListByScheduleSince(_ context.Context, scheduleID, fromDate string) ([]model.AdherenceRecord, error) {
	var result []model.AdherenceRecord
	for _, r := range m.records {
		if r.ScheduleID == scheduleID && r.RecordDate >= fromDate {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RecordDate > result[j].RecordDate })
	return result, nil
}

func (m *mockAdherenceRepo) ListByUserSince(_ context.Context, userID, fromDate string) ([]model.AdherenceRecord, error) {
	var result []model.AdherenceRecord
	for _, r := range m.records {
		if m.owner[r.ScheduleID] == userID && r.RecordDate >= fromDate {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RecordDate > result[j].RecordDate })
	return result, nil
}

// ── Mock ContactRepository ──

type mockContactRepo struct {
	contacts []model.EmergencyContact
}

func newMockContactRepo() *mockContactRepo {
	return &mockContactRepo{}
}

func (m *mockContactRepo) ListNotifiable(_ context.Context, userID string, limit int) ([]model.EmergencyContact, error) {
	var result []model.EmergencyContact
	for _, c := range m.contacts {
		if c.UserID == userID && c.NotifyMissedDoses {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Priority < result[j].Priority })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	notifications []*model.Notification
	failCreate    bool
	nextID        int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	if m.failCreate {
		return fmt.Errorf("模拟写入失败")
	}
	m.nextID++
	n.NotificationID = fmt.Sprintf("notif-%d", m.nextID)
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *mockNotificationRepo) CountForSchedule(_ context.Context, userID, scheduleID, ntype string, from, to time.Time) (int64, error) {
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && n.ScheduleID != nil && *n.ScheduleID == scheduleID && n.Type == ntype &&
			!n.SentAt.Before(from) && n.SentAt.Before(to) {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) CountForUser(_ context.Context, userID, ntype string, from, to time.Time) (int64, error) {
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && n.Type == ntype && !n.SentAt.Before(from) && n.SentAt.Before(to) {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, offset, limit int) ([]model.Notification, int64, error) {
	var all []model.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			all = append(all, *n)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SentAt.After(all[j].SentAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, notificationID string) error {
	for _, n := range m.notifications {
		if n.NotificationID == notificationID {
			if n.ReadAt == nil {
				now := time.Now().UTC()
				n.ReadAt = &now
			}
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// byType 按类型过滤通知，便于断言
func (m *mockNotificationRepo) byType(ntype string) []*model.Notification {
	var result []*model.Notification
	for _, n := range m.notifications {
		if n.Type == ntype {
			result = append(result, n)
		}
	}
	return result
}

// ── Mock 生成服务 ──

type fakeGenerator struct {
	reminderText string
	coachingText string
	err          error
	calls        int
}

func (g *fakeGenerator) GenerateReminder(_ context.Context, _ *model.User, _ *model.MedicationSchedule, _ dto.ReminderOptions) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.reminderText, nil
}

func (g *fakeGenerator) GenerateCoaching(_ context.Context, _ *model.User, cctx dto.CoachingContext) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	if g.coachingText != "" {
		return g.coachingText, nil
	}
	return "督导：" + cctx.Category, nil
}

// ── Mock 投递渠道 ──

type fakeChannel struct {
	name string
	sent []channel.Message
	err  error
}

func (c *fakeChannel) Name() string { return c.name }

func (c *fakeChannel) Send(_ context.Context, msg channel.Message) error {
	c.sent = append(c.sent, msg)
	if c.err != nil {
		return c.err
	}
	return nil
}

// ── 测试用仓储聚合 ──

type testRepos struct {
	user         *mockUserRepo
	schedule     *mockScheduleRepo
	adherence    *mockAdherenceRepo
	contact      *mockContactRepo
	notification *mockNotificationRepo
}

func newTestRepos() *testRepos {
	return &testRepos{
		user:         newMockUserRepo(),
		schedule:     newMockScheduleRepo(),
		adherence:    newMockAdherenceRepo(),
		contact:      newMockContactRepo(),
		notification: newMockNotificationRepo(),
	}
}

func (r *testRepos) toRepository() *repository.Repository {
	return &repository.Repository{
		User:         r.user,
		Schedule:     r.schedule,
		Adherence:    r.adherence,
		Contact:      r.contact,
		Notification: r.notification,
	}
}

// seedUser 种子用户（返回指针便于改字段）
func (r *testRepos) seedUser(id, name, tz string) *model.User {
	u := &model.User{UserID: id, Name: name, Email: id + "@example.com"}
	if tz != "" {
		u.Timezone = &tz
	}
	r.user.users[id] = u
	return u
}

// seedSchedule 种子用药计划并关联用户
func (r *testRepos) seedSchedule(id, userID, medication, tod string) *model.MedicationSchedule {
	s := &model.MedicationSchedule{
		ScheduleID:     id,
		UserID:         userID,
		MedicationName: medication,
		Dosage:         "1片",
		TimeOfDay:      tod,
		Frequency:      model.FrequencyDaily,
		IsActive:       true,
		User:           r.user.users[userID],
	}
	r.schedule.schedules[id] = s
	r.adherence.owner[id] = userID
	return s
}

// seedRecord 种子服药记录
func (r *testRepos) seedRecord(scheduleID, date string, taken bool) {
	r.adherence.records = append(r.adherence.records, model.AdherenceRecord{
		RecordID:   fmt.Sprintf("rec-%d", len(r.adherence.records)+1),
		ScheduleID: scheduleID,
		RecordDate: date,
		Taken:      taken,
	})
}

// strptr 字符串指针辅助
func strptr(s string) *string { return &s }

// containsAll 断言文本包含全部片段
func containsAll(text string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(text, p) {
			return false
		}
	}
	return true
}

// [自证通过] internal/service/mock_repos_test.go
